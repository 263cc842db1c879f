package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"QuantLens/internal/collector"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token" validate:"required"`
		ChatID   string `yaml:"chat_id" validate:"required"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider       string `yaml:"provider" default:"yahoo" validate:"oneof=yahoo mock"`
		BaseURL        string `yaml:"base_url" default:"https://query1.finance.yahoo.com" validate:"required,url"`
		CompositionURL string `yaml:"composition_url" validate:"omitempty,url"`
		APIKey         string `yaml:"api_key"`
		Market         string `yaml:"market" default:"TW" validate:"oneof=TW US"`
	} `yaml:"data_source"`
	Analysis struct {
		ShortWindow        int     `yaml:"short_window" default:"20" validate:"gt=0"`
		LongWindow         int     `yaml:"long_window" default:"60" validate:"gtfield=ShortWindow"`
		HistoryYears       int     `yaml:"history_years" default:"2" validate:"gte=1,lte=30"`
		CycleYears         int     `yaml:"cycle_years" default:"5" validate:"gte=1,lte=30"`
		HorizonDays        int     `yaml:"horizon_days" default:"30" validate:"gte=1,lte=3650"`
		Paths              int     `yaml:"paths" default:"1000" validate:"gte=1,lte=100000"`
		Seed               *uint64 `yaml:"seed"`
		MinPeriod          float64 `yaml:"min_period" default:"5" validate:"gt=0"`
		MaxPeriod          float64 `yaml:"max_period" default:"200" validate:"gtfield=MinPeriod"`
		InitialCapital     float64 `yaml:"initial_capital" default:"1000000" validate:"gt=0"`
		BasketLookbackDays int     `yaml:"basket_lookback_days" default:"45" validate:"gte=30"`
		Concurrency        int     `yaml:"concurrency" default:"4" validate:"gte=1,lte=32"`
	} `yaml:"analysis"`
	Watchlist []string `yaml:"watchlist"`
	Baskets   []string `yaml:"baskets"`

	Schedule struct {
		DailyCron  string `yaml:"daily_cron" default:"0 40 13 * * 1-5" validate:"required"`
		BasketCron string `yaml:"basket_cron" default:"0 45 13 * * 1-5" validate:"required"`
	} `yaml:"schedule"`
	Cache struct {
		RedisAddr string        `yaml:"redis_addr"`
		Password  string        `yaml:"password"`
		DB        int           `yaml:"db" validate:"gte=0"`
		TTL       time.Duration `yaml:"ttl" default:"1h"`
		InfoTTL   time.Duration `yaml:"info_ttl" default:"24h"`
		Namespace string        `yaml:"namespace" default:"quantlens"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" default:"data/quantlens.db"`
	} `yaml:"database"`
	Metrics struct {
		Enabled    bool   `yaml:"enabled"`
		ListenAddr string `yaml:"listen_addr" default:":9102"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"log"`

	Proxy      string `yaml:"proxy"`
	RunOnStart bool   `yaml:"run_on_start"`
}

var validate = validator.New()

// Load reads config from a YAML file over the defaults, then applies environment
// variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if len(cfg.Watchlist) == 0 {
		cfg.Watchlist = []string{"2330", "0050"}
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"TELEGRAM_BOT_TOKEN":  &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":    &c.Telegram.ChatID,
		"DATA_PROVIDER":       &c.DataSource.Provider,
		"YAHOO_BASE_URL":      &c.DataSource.BaseURL,
		"COMPOSITION_URL":     &c.DataSource.CompositionURL,
		"COMPOSITION_API_KEY": &c.DataSource.APIKey,
		"MARKET":              &c.DataSource.Market,
		"HTTPS_PROXY":         &c.Proxy,
		"REDIS_ADDR":          &c.Cache.RedisAddr,
		"REDIS_PASSWORD":      &c.Cache.Password,
		"SQLITE_PATH":         &c.Database.SQLitePath,
		"METRICS_ADDR":        &c.Metrics.ListenAddr,
		"LOG_LEVEL":           &c.Log.Level,
		"LOG_FORMAT":          &c.Log.Format,
		"CRON_DAILY":          &c.Schedule.DailyCron,
		"CRON_BASKET":         &c.Schedule.BasketCron,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Watchlist = splitList(v)
	}
	if v := os.Getenv("BASKETS"); v != "" {
		c.Baskets = splitList(v)
	}
	if v := os.Getenv("MC_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MC_SEED: %w", err)
		}
		c.Analysis.Seed = &seed
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		c.RunOnStart = v == "true"
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		c.Metrics.Enabled = v == "true"
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks the struct rules and that both cron specs parse. All problems
// are reported together.
func (c *Config) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		for _, fe := range ve {
			errs = append(errs, fmt.Errorf("%s: failed %q (%s)", fe.Namespace(), fe.Tag(), fe.Param()))
		}
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, spec := range map[string]string{
		"schedule.daily_cron":  c.Schedule.DailyCron,
		"schedule.basket_cron": c.Schedule.BasketCron,
	} {
		if spec == "" {
			continue
		}
		if _, err := parser.Parse(spec); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Settings converts the analysis section into collector settings.
func (c *Config) Settings() collector.Settings {
	a := c.Analysis
	s := collector.Settings{
		Market:             collector.Market(c.DataSource.Market),
		ShortWindow:        a.ShortWindow,
		LongWindow:         a.LongWindow,
		HistoryYears:       a.HistoryYears,
		CycleYears:         a.CycleYears,
		HorizonDays:        a.HorizonDays,
		Paths:              a.Paths,
		MinPeriod:          a.MinPeriod,
		MaxPeriod:          a.MaxPeriod,
		InitialCapital:     a.InitialCapital,
		BasketLookbackDays: a.BasketLookbackDays,
		Concurrency:        a.Concurrency,
	}
	if a.Seed != nil {
		s.Seed, s.Seeded = *a.Seed, true
	}
	return s
}
