// Package spectral finds candidate price cycles in the frequency domain of a
// de-trended close series.
package spectral

import (
	"cmp"
	"fmt"
	"math/cmplx"
	"slices"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"QuantLens/internal/model"
)

// Default cycle band in trading days. Shorter periods are noise, longer ones are trend.
const (
	DefaultMinPeriod = 5.0
	DefaultMaxPeriod = 200.0
)

// AnalyzeSpectrum runs AnalyzeSpectrumBand over the default 5~200 day band.
func AnalyzeSpectrum(series model.Series) (*model.Spectrum, error) {
	return AnalyzeSpectrumBand(series, DefaultMinPeriod, DefaultMaxPeriod)
}

// AnalyzeSpectrumBand fits an OLS line to the closes, removes it, and measures the
// single-sided amplitude 2|c_k|/n of every positive-frequency DFT bin below Nyquist.
// Bins whose period n/k lies in [minPeriod, maxPeriod] are returned by period ascending;
// the dominant one is the largest amplitude among them.
//
// The closes must be finite. Gaps are not repaired.
func AnalyzeSpectrumBand(series model.Series, minPeriod, maxPeriod float64) (*model.Spectrum, error) {
	if minPeriod <= 0 || maxPeriod < minPeriod {
		return nil, fmt.Errorf("%w: period band [%g, %g]", model.ErrInvalidParameter, minPeriod, maxPeriod)
	}
	n := len(series)
	if n < 2 {
		return nil, fmt.Errorf("%w: spectrum needs at least 2 bars, have %d", model.ErrInsufficientData, n)
	}

	closes := series.Closes()
	index := make([]float64, n)
	for i := range index {
		index[i] = float64(i)
	}
	intercept, slope := stat.LinearRegression(index, closes, nil, false)

	trend := make([]float64, n)
	residual := make([]float64, n)
	for i := range closes {
		trend[i] = intercept + slope*index[i]
		residual[i] = closes[i] - trend[i]
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, residual)

	spec := &model.Spectrum{
		Trend:      trend,
		Intercept:  intercept,
		Slope:      slope,
		Components: []model.SpectralComponent{},
	}
	// k = 0 is the residual DC offset; 2k = n is the Nyquist bin, which has no
	// positive-frequency twin and is dropped along with the negative mirror.
	for k := 1; 2*k < n; k++ {
		period := 1 / fft.Freq(k)
		if period < minPeriod || period > maxPeriod {
			continue
		}
		comp := model.SpectralComponent{
			PeriodDays: period,
			Amplitude:  2 * cmplx.Abs(coeffs[k]) / float64(n),
		}
		spec.Components = append(spec.Components, comp)
		if spec.Dominant == nil || comp.Amplitude > spec.Dominant.Amplitude {
			d := comp
			spec.Dominant = &d
		}
	}

	slices.SortFunc(spec.Components, func(a, b model.SpectralComponent) int {
		return cmp.Compare(a.PeriodDays, b.PeriodDays)
	})
	return spec, nil
}

// TopComponents returns up to k components ranked by amplitude, strongest first.
func TopComponents(spec *model.Spectrum, k int) []model.SpectralComponent {
	if spec == nil || k <= 0 {
		return nil
	}
	ranked := slices.Clone(spec.Components)
	slices.SortStableFunc(ranked, func(a, b model.SpectralComponent) int {
		return cmp.Compare(b.Amplitude, a.Amplitude)
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
