package calculator

import (
	"fmt"

	"QuantLens/internal/model"
)

// TakeSnapshot reads the latest bar of frame together with its 52-week and
// 30-day ranges.
func TakeSnapshot(frame *model.IndicatorFrame) (*model.Snapshot, error) {
	last, ok := frame.Bars.Last()
	if !ok {
		return nil, fmt.Errorf("%w: empty frame", model.ErrInsufficientData)
	}
	i := frame.Len() - 1
	snap := &model.Snapshot{
		Date:    last.Date,
		Price:   last.Close,
		ShortMA: frame.ShortMA[i],
		LongMA:  frame.LongMA[i],
		RSI:     frame.RSI[i],
	}

	var err error
	if snap.High52w, snap.Low52w, err = PeriodRange(frame.Bars, Lookback52Week); err != nil {
		return nil, fmt.Errorf("52-week range: %w", err)
	}
	if snap.High30d, snap.Low30d, err = PeriodRange(frame.Bars, Lookback30Day); err != nil {
		return nil, fmt.Errorf("30-day range: %w", err)
	}
	if snap.Position52w, err = RangePosition(last.Close, snap.High52w, snap.Low52w); err != nil {
		return nil, fmt.Errorf("52-week position: %w", err)
	}
	return snap, nil
}
