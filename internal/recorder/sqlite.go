package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/guregu/null/v6"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"QuantLens/internal/model"
	"QuantLens/internal/spectral"
)

// SQLiteRecorder persists analysis history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: logger.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			run_id             TEXT PRIMARY KEY,
			timestamp          INTEGER NOT NULL,
			ticker             TEXT NOT NULL,
			kind               TEXT NOT NULL,
			start_date         TEXT,
			end_date           TEXT,
			bars               INTEGER,
			last_price         REAL,
			short_ma           REAL,
			long_ma            REAL,
			rsi                REAL,
			position_52w       REAL,
			crossovers         INTEGER,
			total_score        REAL,
			stance             TEXT,
			strategy_return    REAL,
			buy_and_hold       REAL,
			trades             INTEGER,
			dominant_period    REAL,
			dominant_amplitude REAL,
			trend_slope        REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ticker_ts ON analysis_runs(ticker, timestamp)`,

		`CREATE TABLE IF NOT EXISTS spectral_peaks (
			run_id      TEXT NOT NULL,
			rank        INTEGER NOT NULL,
			period_days REAL,
			amplitude   REAL,
			PRIMARY KEY (run_id, rank)
		)`,

		`CREATE TABLE IF NOT EXISTS simulations (
			run_id      TEXT PRIMARY KEY,
			horizon     INTEGER,
			paths       INTEGER,
			start_price REAL,
			drift       REAL,
			volatility  REAL,
			final_mean  REAL,
			final_p5    REAL,
			final_p50   REAL,
			final_p95   REAL,
			prob_above  REAL
		)`,

		`CREATE TABLE IF NOT EXISTS basket_snapshots (
			run_id         TEXT PRIMARY KEY,
			timestamp      INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			bull           REAL,
			bear           REAL,
			net            REAL,
			classification TEXT,
			holdings       INTEGER,
			skipped        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_basket_symbol_ts ON basket_snapshots(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS basket_holdings (
			run_id         TEXT NOT NULL,
			ticker         TEXT NOT NULL,
			weight         REAL,
			pct_change     REAL,
			volume_ratio   REAL,
			classification TEXT,
			PRIMARY KEY (run_id, ticker)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordAnalysis writes one run and, when present, its spectral peaks and
// simulation summary in a single transaction.
func (r *SQLiteRecorder) RecordAnalysis(rep *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var (
		bars                                int
		lastPrice, shortMA, longMA, rsi     null.Float
		pos52w, totalScore                  null.Float
		stance                              null.String
		stratRet, bah                       null.Float
		trades                              null.Int
		domPeriod, domAmplitude, trendSlope null.Float
	)
	if rep.Frame != nil {
		bars = rep.Frame.Len()
	}
	if s := rep.Snapshot; s != nil {
		lastPrice = null.FloatFrom(s.Price)
		shortMA, longMA, rsi = s.ShortMA, s.LongMA, s.RSI
		pos52w = null.FloatFrom(s.Position52w)
	}
	if sc := rep.Scorecard; sc != nil {
		totalScore = null.FloatFrom(sc.TotalScore)
		stance = null.StringFrom(sc.Stance.Label)
	}
	if bt := rep.Backtest; bt != nil {
		stratRet = null.FloatFrom(bt.StrategyReturn)
		bah = null.FloatFrom(bt.BuyAndHold)
		trades = null.IntFrom(int64(bt.Trades))
	}
	if sp := rep.Spectrum; sp != nil {
		trendSlope = null.FloatFrom(sp.Slope)
		if sp.Dominant != nil {
			domPeriod = null.FloatFrom(sp.Dominant.PeriodDays)
			domAmplitude = null.FloatFrom(sp.Dominant.Amplitude)
		}
	}
	if !lastPrice.Valid && rep.Simulation != nil {
		lastPrice = null.FloatFrom(rep.Simulation.StartPrice)
	}

	_, err = tx.Exec(`INSERT INTO analysis_runs
		(run_id, timestamp, ticker, kind, start_date, end_date, bars,
		 last_price, short_ma, long_ma, rsi, position_52w, crossovers,
		 total_score, stance, strategy_return, buy_and_hold, trades,
		 dominant_period, dominant_amplitude, trend_slope)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rep.RunID, rep.CreatedAt.Unix(), rep.Ticker, KindOf(rep),
		rep.Start.Format(time.DateOnly), rep.End.Format(time.DateOnly), bars,
		lastPrice, shortMA, longMA, rsi, pos52w, len(rep.Crossovers),
		totalScore, stance, stratRet, bah, trades,
		domPeriod, domAmplitude, trendSlope,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, c := range spectral.TopComponents(rep.Spectrum, PeakCount) {
		if _, err := tx.Exec(`INSERT INTO spectral_peaks (run_id, rank, period_days, amplitude) VALUES (?,?,?,?)`,
			rep.RunID, i+1, c.PeriodDays, c.Amplitude); err != nil {
			return fmt.Errorf("insert peak: %w", err)
		}
	}

	if e := rep.Simulation; e != nil && e.Horizon > 0 {
		last := e.Horizon - 1
		_, err = tx.Exec(`INSERT INTO simulations
			(run_id, horizon, paths, start_price, drift, volatility,
			 final_mean, final_p5, final_p50, final_p95, prob_above)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			rep.RunID, e.Horizon, e.PathCount(), e.StartPrice, e.Drift, e.Volatility,
			e.Mean[last], e.P5[last], e.P50[last], e.P95[last], e.ProbabilityAbove(e.StartPrice),
		)
		if err != nil {
			return fmt.Errorf("insert simulation: %w", err)
		}
	}

	return tx.Commit()
}

// RecordBasket writes the basket force and every evaluated holding.
func (r *SQLiteRecorder) RecordBasket(rep *model.BasketReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO basket_snapshots
		(run_id, timestamp, symbol, bull, bear, net, classification, holdings, skipped)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		rep.RunID, rep.CreatedAt.Unix(), rep.Symbol,
		rep.Force.Bull, rep.Force.Bear, rep.Force.Net, string(rep.Force.Classification),
		len(rep.Holdings), strings.Join(rep.Skipped, ","),
	)
	if err != nil {
		return fmt.Errorf("insert basket: %w", err)
	}

	for _, h := range rep.Holdings {
		if _, err := tx.Exec(`INSERT INTO basket_holdings
			(run_id, ticker, weight, pct_change, volume_ratio, classification)
			VALUES (?,?,?,?,?,?)`,
			rep.RunID, h.Ticker, h.WeightPercent, h.PctChange, h.VolumeRatio, string(h.Classification),
		); err != nil {
			return fmt.Errorf("insert holding %s: %w", h.Ticker, err)
		}
	}
	return tx.Commit()
}

// RecentRuns returns the latest runs of ticker, newest first. An empty ticker
// matches every ticker.
func (r *SQLiteRecorder) RecentRuns(ctx context.Context, ticker string, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `SELECT
		a.run_id, a.ticker, a.kind, a.timestamp, a.last_price, a.rsi, a.stance,
		a.dominant_period, s.final_p50
		FROM analysis_runs a LEFT JOIN simulations s ON s.run_id = a.run_id
		WHERE (? = '' OR a.ticker = ?)
		ORDER BY a.timestamp DESC, a.rowid DESC
		LIMIT ?`, ticker, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var ts int64
		if err := rows.Scan(&s.RunID, &s.Ticker, &s.Kind, &ts, &s.LastPrice, &s.RSI, &s.Stance,
			&s.DominantPeriod, &s.SimP50); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.CreatedAt = time.Unix(ts, 0).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
