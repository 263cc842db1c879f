package model

import "time"

// Fundamentals is a best-effort key/value view of company data.
// Missing keys are normal; an empty map means the lookup failed.
type Fundamentals map[string]any

// Fundamental keys read by the formatter.
const (
	FundTrailingPE      = "trailingPE"
	FundTrailingEPS     = "trailingEps"
	FundPriceToBook     = "priceToBook"
	FundDividendYield   = "dividendYield"
	FundBusinessSummary = "longBusinessSummary"
	FundLongName        = "longName"
)

// Report bundles every analysis of one ticker.
type Report struct {
	RunID      string           `json:"run_id"`
	Ticker     string           `json:"ticker"`
	Start      time.Time        `json:"start"`
	End        time.Time        `json:"end"`
	Frame      *IndicatorFrame  `json:"frame"`
	Crossovers []CrossoverEvent `json:"crossovers"`
	Snapshot   *Snapshot        `json:"snapshot,omitempty"`
	Scorecard  *Scorecard       `json:"scorecard,omitempty"`
	Backtest   *BacktestResult  `json:"backtest,omitempty"`
	Spectrum   *Spectrum        `json:"spectrum,omitempty"`
	Simulation *Ensemble        `json:"simulation,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// BasketReport is the force evaluation of a basket's constituents for the latest session.
type BasketReport struct {
	RunID     string          `json:"run_id"`
	Symbol    string          `json:"symbol"`
	Holdings  []HoldingSignal `json:"holdings"`
	Skipped   []string        `json:"skipped,omitempty"`
	Force     Force           `json:"force"`
	CreatedAt time.Time       `json:"created_at"`
}
