package recorder

import (
	"context"
	"time"

	"github.com/guregu/null/v6"

	"QuantLens/internal/model"
)

// Run kinds stored in analysis_runs.kind.
const (
	KindAnalyze  = "analyze"
	KindCycle    = "cycle"
	KindSimulate = "simulate"
)

// PeakCount is the number of strongest spectral components kept per run.
const PeakCount = 5

// RunSummary is one row of analysis_runs.
type RunSummary struct {
	RunID          string
	Ticker         string
	Kind           string
	CreatedAt      time.Time
	LastPrice      null.Float
	RSI            null.Float
	Stance         null.String
	DominantPeriod null.Float
	SimP50         null.Float
}

// Recorder persists analysis history.
type Recorder interface {
	RecordAnalysis(report *model.Report) error
	RecordBasket(report *model.BasketReport) error
	RecentRuns(ctx context.Context, ticker string, limit int) ([]RunSummary, error)
	Close() error
}

// KindOf tells which operation produced a report.
func KindOf(r *model.Report) string {
	switch {
	case r.Frame != nil:
		return KindAnalyze
	case r.Spectrum != nil && r.Simulation == nil:
		return KindCycle
	default:
		return KindSimulate
	}
}
