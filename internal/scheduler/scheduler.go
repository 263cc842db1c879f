package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"QuantLens/internal/collector"
	"QuantLens/internal/model"
	"QuantLens/internal/notifier"
	"QuantLens/internal/recorder"
)

// Sender delivers a formatted message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Invalidator drops cached price data of a ticker.
type Invalidator interface {
	Invalidate(ctx context.Context, ticker string) error
}

// Scheduler runs the cron tasks and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  Sender
	Recorder  recorder.Recorder
	Cache     Invalidator // nil when prices are not cached
	Watchlist []string
	Baskets   []string
	Ctx       context.Context

	log zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, sender Sender, rec recorder.Recorder, watchlist, baskets []string, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  sender,
		Recorder:  rec,
		Watchlist: watchlist,
		Baskets:   baskets,
		Ctx:       ctx,
		log:       logger.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterAll registers the daily watchlist and basket tasks.
func (s *Scheduler) RegisterAll(dailyCron, basketCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.watchlistTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	if len(s.Baskets) == 0 {
		return nil
	}
	if _, err := s.Cron.AddFunc(basketCron, s.basketTask); err != nil {
		return fmt.Errorf("register basket task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes the watchlist and basket tasks immediately (RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.watchlistTask()
	s.basketTask()
}

func (s *Scheduler) watchlistTask() {
	s.log.Info().Strs("watchlist", s.Watchlist).Msg("running watchlist task")
	for _, ticker := range s.Watchlist {
		if s.Ctx.Err() != nil {
			return
		}
		s.trySend(s.analyze(s.Ctx, ticker))
	}
}

func (s *Scheduler) basketTask() {
	for _, basket := range s.Baskets {
		if s.Ctx.Err() != nil {
			return
		}
		s.log.Info().Str("basket", basket).Msg("running basket task")
		s.trySend(s.basket(s.Ctx, basket))
	}
}

const helpText = `Commands:
/analyze TICKER  full analysis
/refresh TICKER  drop cached prices, then analyze
/cycle TICKER  dominant price cycle (FFT)
/simulate TICKER  Monte Carlo price range
/basket SYMBOL  bull/bear force of an ETF
/info TICKER  fundamentals
/history [TICKER]  recorded runs
/watchlist  analyze the watchlist now
/learn  glossary`

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	needsArg := map[string]string{
		"/analyze":  "TICKER",
		"/refresh":  "TICKER",
		"/cycle":    "TICKER",
		"/simulate": "TICKER",
		"/info":     "TICKER",
		"/basket":   "SYMBOL",
	}
	if what, ok := needsArg[cmd]; ok && arg == "" {
		return fmt.Sprintf("Usage: %s %s", cmd, what)
	}

	switch cmd {
	case "/analyze":
		return s.analyze(ctx, arg)
	case "/refresh":
		if s.Cache != nil {
			ticker := collector.NormalizeTicker(arg, s.Collector.Settings.Market)
			if err := s.Cache.Invalidate(ctx, ticker); err != nil {
				s.log.Warn().Err(err).Str("ticker", ticker).Msg("invalidate cache")
			}
		}
		return s.analyze(ctx, arg)
	case "/cycle":
		rep, err := s.Collector.Cycle(ctx, arg)
		if err != nil {
			return notifier.FormatError(arg, err)
		}
		s.record(rep)
		return notifier.FormatCycle(rep)
	case "/simulate":
		rep, err := s.Collector.Simulate(ctx, arg)
		if err != nil {
			return notifier.FormatError(arg, err)
		}
		s.record(rep)
		return notifier.FormatSimulation(rep)
	case "/basket":
		return s.basket(ctx, arg)
	case "/info":
		ticker, info := s.Collector.Info(ctx, arg)
		return notifier.FormatFundamentals(ticker, info)
	case "/history":
		ticker := ""
		if arg != "" {
			ticker = collector.NormalizeTicker(arg, s.Collector.Settings.Market)
		}
		runs, err := s.Recorder.RecentRuns(ctx, ticker, 10)
		if err != nil {
			s.log.Error().Err(err).Msg("read history")
			return "❌ History unavailable."
		}
		return notifier.FormatHistory(ticker, runs)
	case "/watchlist":
		go s.watchlistTask()
		return fmt.Sprintf("Analyzing %d tickers...", len(s.Watchlist))
	case "/learn":
		return notifier.Glossary
	default:
		return helpText
	}
}

func (s *Scheduler) analyze(ctx context.Context, ticker string) string {
	rep, err := s.Collector.Analyze(ctx, ticker)
	if err != nil {
		s.log.Error().Err(err).Str("ticker", ticker).Msg("analyze")
		return notifier.FormatError(ticker, err)
	}
	s.record(rep)
	return notifier.FormatReport(rep)
}

func (s *Scheduler) basket(ctx context.Context, symbol string) string {
	rep, err := s.Collector.Basket(ctx, symbol)
	if err != nil {
		s.log.Error().Err(err).Str("basket", symbol).Msg("basket")
		return notifier.FormatError(symbol, err)
	}
	if err := s.Recorder.RecordBasket(rep); err != nil {
		s.log.Error().Err(err).Str("run_id", rep.RunID).Msg("record basket")
	}
	return notifier.FormatBasket(rep)
}

func (s *Scheduler) record(rep *model.Report) {
	if err := s.Recorder.RecordAnalysis(rep); err != nil {
		s.log.Error().Err(err).Str("run_id", rep.RunID).Msg("record analysis")
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
