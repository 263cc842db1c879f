package model

// SpectralComponent is one positive-frequency bin of a de-trended close series.
type SpectralComponent struct {
	PeriodDays float64 `json:"period_days"`
	Amplitude  float64 `json:"amplitude"`
}

// Spectrum is the result of a cycle analysis.
// Components are restricted to the period band and ordered by period ascending.
// Dominant is nil when no component falls inside the band.
type Spectrum struct {
	Trend      []float64           `json:"trend"`
	Intercept  float64             `json:"intercept"`
	Slope      float64             `json:"slope"`
	Components []SpectralComponent `json:"components"`
	Dominant   *SpectralComponent  `json:"dominant,omitempty"`
}
