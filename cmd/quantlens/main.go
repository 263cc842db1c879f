package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"QuantLens/internal/cache"
	"QuantLens/internal/collector"
	"QuantLens/internal/config"
	"QuantLens/internal/logger"
	"QuantLens/internal/metrics"
	"QuantLens/internal/notifier"
	"QuantLens/internal/recorder"
	"QuantLens/internal/scheduler"
)

func main() {
	cfgPath := configPath()
	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot.Fatal().Err(err).Msg("load config")
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	if err != nil {
		boot.Fatal().Err(err).Msg("init logger")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Str("config", cfgPath).Msg("QuantLens starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics
	var rec *metrics.Recorder
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		rec = metrics.New()
		metricsSrv = &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: rec.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info().Str("addr", cfg.Metrics.ListenAddr).Msg("metrics server listening")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server")
			}
		}()
	}

	// Data source
	var fetcher collector.Fetcher
	var fundamentals collector.FundamentalsFetcher
	switch cfg.DataSource.Provider {
	case "mock":
		m := &collector.MockFetcher{}
		fetcher, fundamentals = m, m
	default:
		y := collector.NewYahooFetcher(cfg.DataSource.BaseURL, cfg.Proxy)
		fetcher, fundamentals = y, y
	}

	var priceCache scheduler.Invalidator
	if cfg.Cache.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(cfg.Cache.RedisAddr, cfg.Cache.Password, cfg.Cache.DB, log)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, running without cache")
		} else {
			defer rdb.Close()
			cf := cache.NewCachingFetcher(rdb, cfg.Cache.TTL, fetcher, cfg.Cache.Namespace)
			cinfo := cache.NewCachingFundamentals(rdb, cfg.Cache.InfoTTL, fundamentals, cfg.Cache.Namespace)
			if rec != nil {
				cf.WithMetrics(rec)
			}
			fetcher, fundamentals = cf, cinfo
			priceCache = cf
		}
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")

	var primary collector.CompositionSource
	if cfg.DataSource.CompositionURL != "" {
		primary = collector.NewRESTComposition(cfg.DataSource.CompositionURL, cfg.DataSource.APIKey, cfg.Proxy)
	}
	composition := collector.NewFallbackComposition(primary, collector.DefaultComposition, log)

	col := collector.NewCollector(collector.NewProvider(fetcher, log), fundamentals, composition, cfg.Settings(), log)

	// Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
	if rec != nil {
		col.Metrics = rec
		tn.Metrics = rec
	}

	// History recorder
	var history recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			history = sr
		}
	}
	defer history.Close()

	sched := scheduler.NewScheduler(ctx, col, tn, history, cfg.Watchlist, cfg.Baskets, log)
	sched.Cache = priceCache
	if err := sched.RegisterAll(cfg.Schedule.DailyCron, cfg.Schedule.BasketCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("telegram polling started")

	if cfg.RunOnStart {
		log.Info().Msg("RUN_ON_START enabled, running watchlist now")
		go sched.RunNow()
	}

	log.Info().Strs("watchlist", cfg.Watchlist).Strs("baskets", cfg.Baskets).Msg("QuantLens is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	sched.Stop()
	if metricsSrv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	log.Info().Msg("QuantLens stopped")
}

// configPath returns CONFIG_PATH, or the default location when unset.
func configPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}
