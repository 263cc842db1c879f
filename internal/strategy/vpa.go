package strategy

import (
	"fmt"

	"QuantLens/internal/calculator"
	"QuantLens/internal/model"
)

// Volume-price thresholds. Moves are in percent, volume as a multiple of the baseline.
const (
	StrongMovePct     = 1.5
	StrongVolumeRatio = 1.2
	QuietMovePct      = 0.5
	QuietVolumeRatio  = 0.8
	LimitMovePct      = 3.0

	// VolumeLookback is the number of prior sessions averaged for the volume baseline.
	VolumeLookback = 20
)

// ClassifyMove labels a day's move by price change and relative volume.
// The bands overlap, so order matters: strong moves on heavy volume win, then the
// extremes of 3% or more either way, then quiet moves on light volume.
func ClassifyMove(pctChange, volumeRatio float64) model.VPASignal {
	switch {
	case pctChange > StrongMovePct && volumeRatio > StrongVolumeRatio:
		return model.VPAStrongUpVolume
	case pctChange < -StrongMovePct && volumeRatio > StrongVolumeRatio:
		return model.VPAStrongDownVolume
	case pctChange >= LimitMovePct:
		return model.VPALimitUp
	case pctChange <= -LimitMovePct:
		return model.VPALimitDown
	case pctChange > QuietMovePct && volumeRatio < QuietVolumeRatio:
		return model.VPAQuietAccumulation
	case pctChange < -QuietMovePct && volumeRatio < QuietVolumeRatio:
		return model.VPAQuietDistribution
	default:
		return model.VPANeutral
	}
}

// BuildHoldingSignal measures the latest session of a basket constituent:
// the close-to-close change in percent and the volume against the prior 20 sessions.
func BuildHoldingSignal(h model.Holding, series model.Series) (model.HoldingSignal, error) {
	if len(series) < 2 {
		return model.HoldingSignal{}, fmt.Errorf("%w: %s needs 2 bars, have %d", model.ErrInsufficientData, h.Ticker, len(series))
	}
	prev, last := series[len(series)-2], series[len(series)-1]
	pct := calculator.PercentChange(prev.Close, last.Close)
	ratio, err := calculator.VolumeRatio(series.Volumes(), VolumeLookback)
	if err != nil {
		return model.HoldingSignal{}, fmt.Errorf("volume ratio for %s: %w", h.Ticker, err)
	}
	return model.HoldingSignal{
		Ticker:         h.Ticker,
		WeightPercent:  h.WeightPercent,
		PctChange:      pct,
		VolumeRatio:    ratio,
		Classification: ClassifyMove(pct, ratio),
	}, nil
}
