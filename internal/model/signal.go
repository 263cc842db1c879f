package model

// VPASignal classifies a single day's price move against its relative volume.
type VPASignal string

const (
	VPAStrongUpVolume    VPASignal = "STRONG_UP_VOLUME"
	VPAQuietAccumulation VPASignal = "QUIET_ACCUMULATION"
	VPAStrongDownVolume  VPASignal = "STRONG_DOWN_VOLUME"
	VPAQuietDistribution VPASignal = "QUIET_DISTRIBUTION"
	VPALimitUp           VPASignal = "LIMIT_UP"
	VPALimitDown         VPASignal = "LIMIT_DOWN"
	VPANeutral           VPASignal = "NEUTRAL"
)

// ForceClass is the net classification of a basket's bull/bear weight.
type ForceClass string

const (
	ForceAllInBull ForceClass = "ALL_IN_BULL"
	ForceLeanBull  ForceClass = "LEAN_BULL"
	ForceNeutral   ForceClass = "NEUTRAL"
	ForceLeanBear  ForceClass = "LEAN_BEAR"
	ForceAllInBear ForceClass = "ALL_IN_BEAR"
)

// Holding is one constituent of a basket with its weight in percent.
type Holding struct {
	Ticker        string  `json:"ticker"`
	Name          string  `json:"name,omitempty"`
	WeightPercent float64 `json:"weight_percent"`
}

// HoldingSignal is the daily move of one basket constituent.
type HoldingSignal struct {
	Ticker         string    `json:"ticker"`
	WeightPercent  float64   `json:"weight_percent"`
	PctChange      float64   `json:"pct_change"`
	VolumeRatio    float64   `json:"volume_ratio"`
	Classification VPASignal `json:"classification"`
}

// Force is the weighted bull/bear balance of a basket.
type Force struct {
	Bull           float64    `json:"bull"`
	Bear           float64    `json:"bear"`
	Net            float64    `json:"net"`
	Classification ForceClass `json:"classification"`
}

// FactorScore is one factor's contribution to a Scorecard.
type FactorScore struct {
	Name       string  `json:"name"`
	RawScore   float64 `json:"raw_score"`
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
	Commentary string  `json:"commentary"`
}

// Stance is the label a Scorecard total maps to.
type Stance struct {
	Label    string  `json:"label"`
	MinScore float64 `json:"min_score"`
}

// Scorecard weighs where the latest bar sits relative to its own indicators.
// Positive totals lean oversold, negative totals lean overheated.
type Scorecard struct {
	Factors    []FactorScore `json:"factors"`
	TotalScore float64       `json:"total_score"`
	Stance     Stance        `json:"stance"`
	Warning    string        `json:"warning,omitempty"`
}
