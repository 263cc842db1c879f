package calculator

import (
	"fmt"

	"github.com/guregu/null/v6"

	"QuantLens/internal/model"
)

// RSI computes the relative strength index of closes using simple rolling means
// of gains and losses over the trailing period deltas.
// Entry i is defined once period deltas exist, i.e. from index period onward.
// A window with losses but no gains reads 0, one with gains but no losses reads 100,
// and a flat window reads 50.
func RSI(closes []float64, period int) ([]null.Float, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: period must be positive", model.ErrInvalidParameter)
	}
	out := make([]null.Float, len(closes))
	if len(closes) <= period {
		return out, nil
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	for i := period; i < len(closes); i++ {
		var avgGain, avgLoss float64
		for j := i - period + 1; j <= i; j++ {
			avgGain += gains[j]
			avgLoss += losses[j]
		}
		avgGain /= float64(period)
		avgLoss /= float64(period)
		out[i] = null.FloatFrom(rsiValue(avgGain, avgLoss))
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
