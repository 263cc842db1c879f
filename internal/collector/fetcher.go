package collector

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"QuantLens/internal/model"
)

// Fetcher defines the interface for fetching daily price series.
type Fetcher interface {
	FetchSeries(ctx context.Context, ticker string, start, end time.Time) (model.Series, error)
	Name() string
}

// FundamentalsFetcher looks up company data. It never fails: a missing ticker or an
// unreachable source yields an empty map.
type FundamentalsFetcher interface {
	FetchInfo(ctx context.Context, ticker string) model.Fundamentals
}

// Provider adapts a Fetcher to the analytics contract: failures are logged and
// surface as an empty series, and only series satisfying model.Series.Validate pass through.
type Provider struct {
	Fetcher Fetcher
	log     zerolog.Logger
}

// NewProvider wraps fetcher with logging.
func NewProvider(fetcher Fetcher, logger zerolog.Logger) *Provider {
	return &Provider{
		Fetcher: fetcher,
		log:     logger.With().Str("component", "provider").Str("source", fetcher.Name()).Logger(),
	}
}

// Fetch returns the daily bars of ticker in [start, end], or an empty series on any failure.
func (p *Provider) Fetch(ctx context.Context, ticker string, start, end time.Time) model.Series {
	series, err := p.Fetcher.FetchSeries(ctx, ticker, start, end)
	if err != nil {
		p.log.Warn().Err(err).Str("ticker", ticker).Msg("fetch series failed")
		return model.Series{}
	}
	if err := series.Validate(); err != nil {
		p.log.Warn().Err(err).Str("ticker", ticker).Msg("discarding invalid series")
		return model.Series{}
	}
	p.log.Debug().Str("ticker", ticker).Int("bars", len(series)).Msg("series fetched")
	return series
}
