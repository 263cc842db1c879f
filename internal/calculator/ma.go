package calculator

import (
	"fmt"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/floats"

	"QuantLens/internal/model"
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: period must be positive", model.ErrInvalidParameter)
	}
	if len(prices) < period {
		return 0, fmt.Errorf("%w: need %d prices for SMA, have %d", model.ErrInsufficientData, period, len(prices))
	}
	return floats.Sum(prices[len(prices)-period:]) / float64(period), nil
}

// MovingAverage returns the rolling simple mean of values over window.
// The first window-1 entries are null; a window longer than values yields an all-null column.
func MovingAverage(values []float64, window int) ([]null.Float, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: window must be positive, got %d", model.ErrInvalidParameter, window)
	}
	out := make([]null.Float, len(values))
	for i := window - 1; i < len(values); i++ {
		out[i] = null.FloatFrom(floats.Sum(values[i-window+1:i+1]) / float64(window))
	}
	return out, nil
}
