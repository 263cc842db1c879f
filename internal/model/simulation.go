package model

// SimulationPath is one simulated price trajectory.
// Its first value is the last observed close.
type SimulationPath []float64

// Ensemble is a set of simulated paths sharing horizon, drift and volatility.
type Ensemble struct {
	Paths      []SimulationPath `json:"paths"`
	Mean       []float64        `json:"mean"`
	P5         []float64        `json:"p5"`
	P50        []float64        `json:"p50"`
	P95        []float64        `json:"p95"`
	Drift      float64          `json:"drift"`
	Volatility float64          `json:"volatility"`
	Horizon    int              `json:"horizon"`
	StartPrice float64          `json:"start_price"`
}

// PathCount returns the number of paths in the ensemble.
func (e *Ensemble) PathCount() int { return len(e.Paths) }

// ProbabilityAbove returns the share of paths whose final value exceeds price.
func (e *Ensemble) ProbabilityAbove(price float64) float64 {
	if len(e.Paths) == 0 {
		return 0
	}
	above := 0
	for _, p := range e.Paths {
		if p[len(p)-1] > price {
			above++
		}
	}
	return float64(above) / float64(len(e.Paths))
}
