package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"QuantLens/internal/calculator"
	"QuantLens/internal/model"
	"QuantLens/internal/montecarlo"
	"QuantLens/internal/spectral"
	"QuantLens/internal/strategy"
)

// Metrics receives timings and outcomes of collector operations.
type Metrics interface {
	ObserveDuration(op string, d time.Duration)
	IncError(op string)
	SetDominantCycle(ticker string, days float64)
}

type nopMetrics struct{}

func (nopMetrics) ObserveDuration(string, time.Duration) {}
func (nopMetrics) IncError(string)                       {}
func (nopMetrics) SetDominantCycle(string, float64)      {}

// Settings holds the analysis parameters of a Collector.
type Settings struct {
	Market             Market
	ShortWindow        int
	LongWindow         int
	HistoryYears       int
	CycleYears         int
	HorizonDays        int
	Paths              int
	Seed               uint64
	Seeded             bool
	MinPeriod          float64
	MaxPeriod          float64
	InitialCapital     float64
	BasketLookbackDays int
	Concurrency        int
}

// Collector orchestrates data fetching and analysis.
type Collector struct {
	Provider     *Provider
	Fundamentals FundamentalsFetcher
	Composition  CompositionSource
	Settings     Settings
	Metrics      Metrics

	log zerolog.Logger
	now func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(provider *Provider, fundamentals FundamentalsFetcher, composition CompositionSource, settings Settings, logger zerolog.Logger) *Collector {
	return &Collector{
		Provider:     provider,
		Fundamentals: fundamentals,
		Composition:  composition,
		Settings:     settings,
		Metrics:      nopMetrics{},
		log:          logger.With().Str("component", "collector").Logger(),
		now:          time.Now,
	}
}

// Analyze runs the full analysis of one ticker: indicators, crossovers, scorecard,
// backtest, cycle spectrum and price simulation over the configured history.
func (c *Collector) Analyze(ctx context.Context, rawTicker string) (*model.Report, error) {
	defer c.observe("analyze", time.Now())
	report, err := c.analyze(ctx, NormalizeTicker(rawTicker, c.Settings.Market))
	if err != nil {
		c.Metrics.IncError("analyze")
		return nil, err
	}
	c.log.Info().
		Str("ticker", report.Ticker).
		Str("run_id", report.RunID).
		Int("bars", report.Frame.Len()).
		Int("crossovers", len(report.Crossovers)).
		Str("stance", report.Scorecard.Stance.Label).
		Msg("analysis complete")
	return report, nil
}

func (c *Collector) analyze(ctx context.Context, ticker string) (*model.Report, error) {
	report, series, err := c.newReport(ctx, ticker, c.Settings.HistoryYears, c.Settings.LongWindow)
	if err != nil {
		return nil, err
	}

	frame, err := calculator.ComputeIndicators(series, c.Settings.ShortWindow, c.Settings.LongWindow)
	if err != nil {
		return nil, fmt.Errorf("compute indicators: %w", err)
	}
	report.Frame = frame
	report.Crossovers = calculator.DetectCrossovers(frame)

	if report.Snapshot, err = calculator.TakeSnapshot(frame); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	report.Scorecard = strategy.Evaluate(report.Snapshot)

	if report.Backtest, err = strategy.Backtest(frame, c.Settings.InitialCapital); err != nil {
		return nil, fmt.Errorf("backtest: %w", err)
	}
	if report.Spectrum, err = c.spectrum(ticker, series); err != nil {
		return nil, err
	}
	if report.Simulation, err = c.simulate(series); err != nil {
		return nil, err
	}
	return report, nil
}

// Cycle runs only the spectrum analysis, over the longer cycle history.
func (c *Collector) Cycle(ctx context.Context, rawTicker string) (*model.Report, error) {
	defer c.observe("cycle", time.Now())
	ticker := NormalizeTicker(rawTicker, c.Settings.Market)

	report, series, err := c.newReport(ctx, ticker, c.Settings.CycleYears, 2)
	if err != nil {
		c.Metrics.IncError("cycle")
		return nil, err
	}
	if report.Spectrum, err = c.spectrum(ticker, series); err != nil {
		c.Metrics.IncError("cycle")
		return nil, err
	}
	return report, nil
}

// Simulate runs only the Monte Carlo simulation.
func (c *Collector) Simulate(ctx context.Context, rawTicker string) (*model.Report, error) {
	defer c.observe("simulate", time.Now())
	ticker := NormalizeTicker(rawTicker, c.Settings.Market)

	report, series, err := c.newReport(ctx, ticker, c.Settings.HistoryYears, 2)
	if err != nil {
		c.Metrics.IncError("simulate")
		return nil, err
	}
	if report.Simulation, err = c.simulate(series); err != nil {
		c.Metrics.IncError("simulate")
		return nil, err
	}
	return report, nil
}

// Info returns the normalized ticker and its fundamentals.
func (c *Collector) Info(ctx context.Context, rawTicker string) (string, model.Fundamentals) {
	defer c.observe("info", time.Now())
	ticker := NormalizeTicker(rawTicker, c.Settings.Market)
	return ticker, c.Fundamentals.FetchInfo(ctx, ticker)
}

// Basket fetches every constituent of a basket concurrently and aggregates the
// weighted bull/bear force of their latest session. Constituents without enough
// data are listed as skipped.
func (c *Collector) Basket(ctx context.Context, rawSymbol string) (*model.BasketReport, error) {
	defer c.observe("basket", time.Now())
	symbol := NormalizeTicker(rawSymbol, c.Settings.Market)

	holdings, err := c.Composition.Holdings(ctx, symbol)
	if err != nil {
		c.Metrics.IncError("basket")
		return nil, fmt.Errorf("composition of %s: %w", symbol, err)
	}

	end := c.now()
	start := end.AddDate(0, 0, -c.Settings.BasketLookbackDays)
	signals := make([]*model.HoldingSignal, len(holdings))

	var mu sync.Mutex
	var skipped []string
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.Settings.Concurrency, 1))
	for i, h := range holdings {
		g.Go(func() error {
			series := c.Provider.Fetch(gctx, h.Ticker, start, end)
			sig, err := strategy.BuildHoldingSignal(h, series)
			if err != nil {
				c.log.Debug().Err(err).Str("basket", symbol).Str("ticker", h.Ticker).Msg("holding skipped")
				mu.Lock()
				skipped = append(skipped, h.Ticker)
				mu.Unlock()
				return nil
			}
			signals[i] = &sig
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("basket %s: %w", symbol, err)
	}

	report := &model.BasketReport{
		RunID:     uuid.NewString(),
		Symbol:    symbol,
		Skipped:   skipped,
		CreatedAt: c.now(),
	}
	for _, s := range signals {
		if s != nil {
			report.Holdings = append(report.Holdings, *s)
		}
	}
	if len(report.Holdings) == 0 {
		c.Metrics.IncError("basket")
		return nil, fmt.Errorf("%w: no holding of %s has enough data", model.ErrInsufficientData, symbol)
	}
	report.Force = strategy.AggregateForce(report.Holdings)

	c.log.Info().
		Str("basket", symbol).
		Int("holdings", len(report.Holdings)).
		Int("skipped", len(skipped)).
		Str("force", string(report.Force.Classification)).
		Float64("net", report.Force.Net).
		Msg("basket evaluated")
	return report, nil
}

// newReport fetches years of history for ticker and fails with ErrInsufficientData
// when fewer than minBars come back.
func (c *Collector) newReport(ctx context.Context, ticker string, years, minBars int) (*model.Report, model.Series, error) {
	if ticker == "" {
		return nil, nil, fmt.Errorf("%w: empty ticker", model.ErrInvalidParameter)
	}
	end := c.now()
	start := end.AddDate(-years, 0, 0)
	series := c.Provider.Fetch(ctx, ticker, start, end)
	if len(series) < minBars {
		return nil, nil, fmt.Errorf("%w: %s has %d bars, need %d", model.ErrInsufficientData, ticker, len(series), minBars)
	}
	return &model.Report{
		RunID:     uuid.NewString(),
		Ticker:    ticker,
		Start:     series[0].Date,
		End:       series[len(series)-1].Date,
		CreatedAt: end,
	}, series, nil
}

func (c *Collector) spectrum(ticker string, series model.Series) (*model.Spectrum, error) {
	spec, err := spectral.AnalyzeSpectrumBand(series, c.Settings.MinPeriod, c.Settings.MaxPeriod)
	if err != nil {
		return nil, fmt.Errorf("spectrum: %w", err)
	}
	if spec.Dominant != nil {
		c.Metrics.SetDominantCycle(ticker, spec.Dominant.PeriodDays)
	}
	return spec, nil
}

func (c *Collector) simulate(series model.Series) (*model.Ensemble, error) {
	var opts []montecarlo.Option
	if c.Settings.Seeded {
		opts = append(opts, montecarlo.WithSeed(c.Settings.Seed))
	}
	ens, err := montecarlo.Simulate(series, c.Settings.HorizonDays, c.Settings.Paths, opts...)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	return ens, nil
}

func (c *Collector) observe(op string, started time.Time) {
	c.Metrics.ObserveDuration(op, time.Since(started))
}
