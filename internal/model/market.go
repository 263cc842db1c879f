package model

import (
	"fmt"
	"time"
)

// PriceBar represents a single daily candlestick bar.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Series is a date-ordered run of daily bars for one ticker.
// It is treated as immutable once returned by a provider.
type Series []PriceBar

// Closes returns the close prices in order.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}
	return closes
}

// Volumes returns the traded volumes as floats, in order.
func (s Series) Volumes() []float64 {
	vols := make([]float64, len(s))
	for i, b := range s {
		vols[i] = float64(b.Volume)
	}
	return vols
}

// Last returns the most recent bar. ok is false for an empty series.
func (s Series) Last() (bar PriceBar, ok bool) {
	if len(s) == 0 {
		return PriceBar{}, false
	}
	return s[len(s)-1], true
}

// Validate checks the ordering and value invariants of the series.
func (s Series) Validate() error {
	for i, b := range s {
		if b.Close <= 0 || b.Open <= 0 || b.High <= 0 || b.Low <= 0 {
			return fmt.Errorf("bar %d (%s): prices must be positive", i, b.Date.Format("2006-01-02"))
		}
		if b.Volume < 0 {
			return fmt.Errorf("bar %d (%s): volume must be non-negative", i, b.Date.Format("2006-01-02"))
		}
		if i > 0 && !b.Date.After(s[i-1].Date) {
			return fmt.Errorf("bar %d (%s): dates must be strictly increasing", i, b.Date.Format("2006-01-02"))
		}
	}
	return nil
}
