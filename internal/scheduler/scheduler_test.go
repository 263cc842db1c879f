package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantLens/internal/collector"
	"QuantLens/internal/model"
	"QuantLens/internal/recorder"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

type fakeCache struct {
	invalidated []string
}

func (f *fakeCache) Invalidate(_ context.Context, ticker string) error {
	f.invalidated = append(f.invalidated, ticker)
	return nil
}

func newTestScheduler(t *testing.T, f *collector.MockFetcher) (*Scheduler, *fakeSender) {
	t.Helper()
	comp := collector.StaticComposition{"TEST": {
		{Ticker: "AAA", WeightPercent: 60},
		{Ticker: "BBB", WeightPercent: 40},
	}}
	settings := collector.Settings{
		Market:             collector.MarketTW,
		ShortWindow:        10,
		LongWindow:         60,
		HistoryYears:       2,
		CycleYears:         3,
		HorizonDays:        20,
		Paths:              50,
		Seed:               1,
		Seeded:             true,
		MinPeriod:          5,
		MaxPeriod:          200,
		InitialCapital:     10000,
		BasketLookbackDays: 45,
		Concurrency:        2,
	}
	col := collector.NewCollector(collector.NewProvider(f, zerolog.Nop()), f, comp, settings, zerolog.Nop())

	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "sched.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })

	sender := &fakeSender{}
	s := NewScheduler(context.Background(), col, sender, rec, []string{"2330", "AAPL"}, []string{"TEST"}, zerolog.Nop())
	return s, sender
}

func TestHandleCommand_Help(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{})
	assert.Equal(t, helpText, s.HandleCommand(context.Background(), ""))
	assert.Equal(t, helpText, s.HandleCommand(context.Background(), "/unknown"))
	assert.Equal(t, "Usage: /analyze TICKER", s.HandleCommand(context.Background(), "/analyze"))
	assert.Equal(t, "Usage: /basket SYMBOL", s.HandleCommand(context.Background(), "/basket"))
	assert.Contains(t, s.HandleCommand(context.Background(), "/learn"), "Glossary")
}

func TestHandleCommand_AnalyzeAndHistory(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{Price: 600})
	ctx := context.Background()

	reply := s.HandleCommand(ctx, "/analyze 2330")
	assert.Contains(t, reply, "<b>2330.TW</b>")
	assert.Contains(t, reply, "Scorecard")
	assert.Contains(t, reply, "Dominant cycle")

	reply = s.HandleCommand(ctx, "/Analyze@QuantLensBot aapl")
	assert.Contains(t, reply, "<b>AAPL</b>")

	history := s.HandleCommand(ctx, "/history 2330")
	assert.Contains(t, history, "2330.TW analyze")
	assert.NotContains(t, history, "AAPL")

	all := s.HandleCommand(ctx, "/history")
	assert.Contains(t, all, "all tickers")
	assert.Contains(t, all, "AAPL analyze")
}

func TestHandleCommand_Refresh(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{})
	ctx := context.Background()

	// no cache configured: plain analysis
	assert.Contains(t, s.HandleCommand(ctx, "/refresh 2330"), "<b>2330.TW</b>")

	c := &fakeCache{}
	s.Cache = c
	reply := s.HandleCommand(ctx, "/refresh 2330")
	assert.Contains(t, reply, "<b>2330.TW</b>")
	assert.Equal(t, []string{"2330.TW"}, c.invalidated)

	assert.Equal(t, "Usage: /refresh TICKER", s.HandleCommand(ctx, "/refresh"))
	assert.Equal(t, []string{"2330.TW"}, c.invalidated)
}

func TestHandleCommand_CycleSimulateInfo(t *testing.T) {
	f := &collector.MockFetcher{Info: map[string]model.Fundamentals{
		"2330.TW": {model.FundTrailingPE: 25.5, model.FundLongName: "TSMC"},
	}}
	s, _ := newTestScheduler(t, f)
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/cycle 2330"), "Dominant cycle")
	assert.Contains(t, s.HandleCommand(ctx, "/simulate 2330"), "50 paths, 20 days")
	info := s.HandleCommand(ctx, "/info 2330")
	assert.Contains(t, info, "TSMC (2330.TW)")
	assert.Contains(t, info, "PE: 25.50")
	assert.Contains(t, s.HandleCommand(ctx, "/info 9999"), "No data for 9999.TW")

	runs, err := s.Recorder.RecentRuns(ctx, "2330.TW", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	kinds := []string{runs[0].Kind, runs[1].Kind}
	assert.ElementsMatch(t, []string{recorder.KindCycle, recorder.KindSimulate}, kinds)
}

func TestHandleCommand_Basket(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{})
	reply := s.HandleCommand(context.Background(), "/basket test")
	assert.Contains(t, reply, "<b>TEST</b>")
	assert.Contains(t, reply, "AAA (60.0%)")
	assert.Contains(t, reply, "Force: <b>")

	assert.Contains(t, s.HandleCommand(context.Background(), "/basket NOPE"), "❌")
}

func TestHandleCommand_FetchFailure(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{Err: errors.New("offline")})
	assert.Contains(t, s.HandleCommand(context.Background(), "/analyze 2330"), "not found or not enough data")
}

func TestRunNow(t *testing.T) {
	s, sender := newTestScheduler(t, &collector.MockFetcher{})
	s.RunNow()

	require.Len(t, sender.sent, 3)
	assert.Contains(t, sender.sent[0], "2330.TW")
	assert.Contains(t, sender.sent[1], "AAPL")
	assert.Contains(t, sender.sent[2], "TEST")
}

func TestRegisterAll(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{})
	require.NoError(t, s.RegisterAll("0 40 13 * * 1-5", "0 45 13 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 2)

	s, _ = newTestScheduler(t, &collector.MockFetcher{})
	s.Baskets = nil
	require.NoError(t, s.RegisterAll("0 40 13 * * 1-5", "bad"))
	assert.Len(t, s.Cron.Entries(), 1)

	s, _ = newTestScheduler(t, &collector.MockFetcher{})
	assert.Error(t, s.RegisterAll("not a cron", "0 45 13 * * 1-5"))
}
