package spectral

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantLens/internal/model"
)

func seriesFrom(n int, f func(i int) float64) model.Series {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(model.Series, n)
	for i := range s {
		c := f(i)
		s[i] = model.PriceBar{Date: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1}
	}
	return s
}

func sinusoid(period, amplitude float64) func(int) float64 {
	return func(i int) float64 {
		return 100 + 0.05*float64(i) + amplitude*math.Sin(2*math.Pi*float64(i)/period)
	}
}

func TestAnalyzeSpectrum_DominantCycle(t *testing.T) {
	spec, err := AnalyzeSpectrum(seriesFrom(500, sinusoid(30, 5)))
	require.NoError(t, err)
	require.NotNil(t, spec.Dominant)
	assert.InDelta(t, 30.0, spec.Dominant.PeriodDays, 1.0)
}

func TestAnalyzeSpectrum_ExactBin(t *testing.T) {
	// 600 bars hold exactly 20 cycles, so the energy sits in bin k=20.
	spec, err := AnalyzeSpectrum(seriesFrom(600, sinusoid(30, 5)))
	require.NoError(t, err)
	require.NotNil(t, spec.Dominant)
	assert.InDelta(t, 30.0, spec.Dominant.PeriodDays, 1e-9)
	assert.InDelta(t, 5.0, spec.Dominant.Amplitude, 0.1)
}

func TestAnalyzeSpectrum_TrendRemoved(t *testing.T) {
	spec, err := AnalyzeSpectrum(seriesFrom(300, func(i int) float64 { return 3 + 2*float64(i) }))
	require.NoError(t, err)
	assert.InDelta(t, 3.0, spec.Intercept, 1e-6)
	assert.InDelta(t, 2.0, spec.Slope, 1e-9)
	require.Len(t, spec.Trend, 300)
	assert.InDelta(t, 3.0+2*299, spec.Trend[299], 1e-6)
	for _, c := range spec.Components {
		assert.Less(t, c.Amplitude, 1e-6)
	}
}

func TestAnalyzeSpectrum_BandAndOrdering(t *testing.T) {
	spec, err := AnalyzeSpectrum(seriesFrom(1000, sinusoid(45, 3)))
	require.NoError(t, err)
	require.NotEmpty(t, spec.Components)
	for i, c := range spec.Components {
		assert.GreaterOrEqual(t, c.PeriodDays, DefaultMinPeriod)
		assert.LessOrEqual(t, c.PeriodDays, DefaultMaxPeriod)
		assert.GreaterOrEqual(t, c.Amplitude, 0.0)
		if i > 0 {
			assert.Greater(t, c.PeriodDays, spec.Components[i-1].PeriodDays)
		}
	}
	for _, c := range spec.Components {
		assert.LessOrEqual(t, c.Amplitude, spec.Dominant.Amplitude)
	}
}

func TestAnalyzeSpectrum_EmptyBand(t *testing.T) {
	// Four bars only reach a period of 4 days.
	spec, err := AnalyzeSpectrum(seriesFrom(4, func(i int) float64 { return float64(10 + i%2) }))
	require.NoError(t, err)
	assert.Empty(t, spec.Components)
	assert.Nil(t, spec.Dominant)
}

func TestAnalyzeSpectrum_Errors(t *testing.T) {
	_, err := AnalyzeSpectrum(seriesFrom(1, func(int) float64 { return 1 }))
	assert.ErrorIs(t, err, model.ErrInsufficientData)

	_, err = AnalyzeSpectrumBand(seriesFrom(50, sinusoid(10, 1)), 20, 10)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	_, err = AnalyzeSpectrumBand(seriesFrom(50, sinusoid(10, 1)), 0, 10)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
}

func TestTopComponents(t *testing.T) {
	spec := &model.Spectrum{Components: []model.SpectralComponent{
		{PeriodDays: 5, Amplitude: 1},
		{PeriodDays: 10, Amplitude: 3},
		{PeriodDays: 20, Amplitude: 2},
	}}
	top := TopComponents(spec, 2)
	require.Len(t, top, 2)
	assert.Equal(t, 10.0, top[0].PeriodDays)
	assert.Equal(t, 20.0, top[1].PeriodDays)
	assert.Equal(t, 5.0, spec.Components[0].PeriodDays, "input must stay sorted by period")
	assert.Nil(t, TopComponents(nil, 3))
}
