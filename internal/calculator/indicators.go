package calculator

import (
	"fmt"

	"QuantLens/internal/model"
)

// ComputeIndicators derives the short and long moving averages, RSI(14) and
// Bollinger bands of series. Parameter errors fail the call; a series too short
// for a window only leaves that column null.
func ComputeIndicators(series model.Series, shortWindow, longWindow int) (*model.IndicatorFrame, error) {
	if shortWindow <= 0 {
		return nil, fmt.Errorf("%w: short window must be positive, got %d", model.ErrInvalidParameter, shortWindow)
	}
	if longWindow <= shortWindow {
		return nil, fmt.Errorf("%w: long window %d must exceed short window %d", model.ErrInvalidParameter, longWindow, shortWindow)
	}

	closes := series.Closes()
	frame := &model.IndicatorFrame{
		Bars:        series,
		ShortWindow: shortWindow,
		LongWindow:  longWindow,
	}

	var err error
	if frame.ShortMA, err = MovingAverage(closes, shortWindow); err != nil {
		return nil, fmt.Errorf("short moving average: %w", err)
	}
	if frame.LongMA, err = MovingAverage(closes, longWindow); err != nil {
		return nil, fmt.Errorf("long moving average: %w", err)
	}
	if frame.RSI, err = RSI(closes, model.RSIPeriod); err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}
	frame.UpperBand, frame.MiddleBand, frame.LowerBand, err = BollingerBands(closes, BollingerWindow, BollingerWidth)
	if err != nil {
		return nil, fmt.Errorf("bollinger bands: %w", err)
	}
	return frame, nil
}
