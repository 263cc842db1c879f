package calculator

import (
	"fmt"
	"math"

	"QuantLens/internal/model"
)

// Trading-day lookbacks for the range helpers.
const (
	Lookback52Week = 252
	Lookback30Day  = 22
)

// PeriodRange scans the most recent lookback bars and returns the high and low.
// A series shorter than lookback is scanned in full.
func PeriodRange(bars model.Series, lookback int) (high, low float64, err error) {
	if lookback <= 0 {
		return 0, 0, fmt.Errorf("%w: lookback must be positive", model.ErrInvalidParameter)
	}
	if len(bars) == 0 {
		return 0, 0, fmt.Errorf("%w: no bars provided", model.ErrInsufficientData)
	}
	start := max(len(bars)-lookback, 0)
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars[start:] {
		high = math.Max(high, b.High)
		low = math.Min(low, b.Low)
	}
	return high, low, nil
}

// RangePosition returns where current sits within [low, high], clamped to 0.0~1.0.
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, fmt.Errorf("%w: high must be >= low", model.ErrInvalidParameter)
	}
	pos := (current - low) / (high - low)
	return math.Min(math.Max(pos, 0), 1), nil
}
