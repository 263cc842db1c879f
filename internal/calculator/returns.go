package calculator

import (
	"fmt"
	"math"

	"QuantLens/internal/model"
)

// LogReturns returns ln(p[i]/p[i-1]) for i = 1..n-1.
func LogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		out[i-1] = math.Log(prices[i] / prices[i-1])
	}
	return out
}

// PercentChange returns the move from prev to cur in percent.
func PercentChange(prev, cur float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}

// BuyAndHoldReturn returns the fractional change from the first to the last close.
func BuyAndHoldReturn(series model.Series) (float64, error) {
	if len(series) == 0 {
		return 0, fmt.Errorf("%w: empty series", model.ErrInsufficientData)
	}
	first := series[0].Close
	last := series[len(series)-1].Close
	return (last - first) / first, nil
}

// VolumeRatio compares the last volume to the mean of up to lookback volumes before it.
// A zero baseline reads as 1.0 since there is nothing to compare against.
func VolumeRatio(volumes []float64, lookback int) (float64, error) {
	if lookback <= 0 {
		return 0, fmt.Errorf("%w: lookback must be positive", model.ErrInvalidParameter)
	}
	if len(volumes) < 2 {
		return 0, fmt.Errorf("%w: need at least 2 volumes, have %d", model.ErrInsufficientData, len(volumes))
	}
	last := len(volumes) - 1
	start := max(last-lookback, 0)
	baseline, err := CalculateSMA(volumes[start:last], last-start)
	if err != nil {
		return 0, err
	}
	if baseline == 0 {
		return 1.0, nil
	}
	return volumes[last] / baseline, nil
}
