package recorder

import (
	"context"

	"QuantLens/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAnalysis(_ *model.Report) error     { return nil }
func (n *NoopRecorder) RecordBasket(_ *model.BasketReport) error { return nil }
func (n *NoopRecorder) Close() error                             { return nil }

func (n *NoopRecorder) RecentRuns(context.Context, string, int) ([]RunSummary, error) {
	return nil, nil
}
