// Package montecarlo simulates future price paths as geometric Brownian motion
// calibrated on historical log returns.
package montecarlo

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"QuantLens/internal/calculator"
	"QuantLens/internal/model"
)

// Option configures a simulation run.
type Option func(*options)

type options struct {
	seed   uint64
	seeded bool
}

// WithSeed makes the draws reproducible: the same series, horizon, path count
// and seed always yield the same ensemble.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// Drift returns the Itô-corrected daily drift mean(r) - var(r)/2 and the
// volatility stdev(r) of the log returns of closes. A single return has zero variance.
func Drift(closes []float64) (mu, sigma float64, err error) {
	returns := calculator.LogReturns(closes)
	if len(returns) == 0 {
		return 0, 0, fmt.Errorf("%w: need at least 2 closes, have %d", model.ErrInsufficientData, len(closes))
	}
	mean, variance := returns[0], 0.0
	if len(returns) > 1 {
		mean, variance = stat.MeanVariance(returns, nil)
	}
	return mean - 0.5*variance, math.Sqrt(variance), nil
}

// Simulate draws pathCount paths of horizonDays prices each. Every path starts at
// the last close and compounds exp(mu + sigma*Z) per step, Z standard normal.
// Draws are taken path by path, step by step, from a single source.
func Simulate(series model.Series, horizonDays, pathCount int, opts ...Option) (*model.Ensemble, error) {
	if horizonDays <= 0 {
		return nil, fmt.Errorf("%w: horizon must be positive, got %d", model.ErrInvalidParameter, horizonDays)
	}
	if pathCount <= 0 {
		return nil, fmt.Errorf("%w: path count must be positive, got %d", model.ErrInvalidParameter, pathCount)
	}
	mu, sigma, err := Drift(series.Closes())
	if err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	var src rand.Source
	if o.seeded {
		src = rand.NewPCG(o.seed, o.seed)
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	last, _ := series.Last()
	paths := make([]model.SimulationPath, pathCount)
	for p := range paths {
		path := make(model.SimulationPath, horizonDays)
		path[0] = last.Close
		for t := 1; t < horizonDays; t++ {
			path[t] = path[t-1] * math.Exp(mu+sigma*normal.Rand())
		}
		paths[p] = path
	}

	ens := &model.Ensemble{
		Paths:      paths,
		Mean:       make([]float64, horizonDays),
		P5:         make([]float64, horizonDays),
		P50:        make([]float64, horizonDays),
		P95:        make([]float64, horizonDays),
		Drift:      mu,
		Volatility: sigma,
		Horizon:    horizonDays,
		StartPrice: last.Close,
	}
	column := make([]float64, pathCount)
	for t := 0; t < horizonDays; t++ {
		for p, path := range paths {
			column[p] = path[t]
		}
		ens.Mean[t] = stat.Mean(column, nil)
		slices.Sort(column)
		ens.P5[t] = stat.Quantile(0.05, stat.Empirical, column, nil)
		ens.P50[t] = stat.Quantile(0.50, stat.Empirical, column, nil)
		ens.P95[t] = stat.Quantile(0.95, stat.Empirical, column, nil)
	}
	return ens, nil
}
