package calculator

import (
	"fmt"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/stat"

	"QuantLens/internal/model"
)

// Default Bollinger band parameters.
const (
	BollingerWindow = 20
	BollingerWidth  = 2.0
)

// BollingerBands returns the rolling mean of closes with bands width sample
// standard deviations above and below it. Entries before window-1 are null.
func BollingerBands(closes []float64, window int, width float64) (upper, middle, lower []null.Float, err error) {
	if window < 2 {
		return nil, nil, nil, fmt.Errorf("%w: bollinger window must be at least 2", model.ErrInvalidParameter)
	}
	if width < 0 {
		return nil, nil, nil, fmt.Errorf("%w: bollinger width must be non-negative", model.ErrInvalidParameter)
	}
	upper = make([]null.Float, len(closes))
	middle = make([]null.Float, len(closes))
	lower = make([]null.Float, len(closes))
	for i := window - 1; i < len(closes); i++ {
		mean, std := stat.MeanStdDev(closes[i-window+1:i+1], nil)
		middle[i] = null.FloatFrom(mean)
		upper[i] = null.FloatFrom(mean + width*std)
		lower[i] = null.FloatFrom(mean - width*std)
	}
	return upper, middle, lower, nil
}
