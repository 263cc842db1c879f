package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantLens/internal/model"
)

type stubFetcher struct {
	series model.Series
	info   model.Fundamentals
	err    error
	calls  int
}

func (s *stubFetcher) Name() string { return "stub" }

func (s *stubFetcher) FetchSeries(context.Context, string, time.Time, time.Time) (model.Series, error) {
	s.calls++
	return s.series, s.err
}

func (s *stubFetcher) FetchInfo(context.Context, string) model.Fundamentals {
	s.calls++
	return s.info
}

type countingMetrics map[string]int

func (m countingMetrics) IncCache(result string) { m[result]++ }

var (
	start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end   = time.Date(2024, 2, 1, 15, 30, 0, 0, time.UTC)
)

const seriesKey = "quantlens:series:AAPL:2024-01-01:2024-02-01"

func sampleSeries() model.Series {
	return model.Series{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Open: 10.5, High: 12, Low: 10, Close: 11.5, Volume: 200},
	}
}

func TestNewCachingFetcher_Defaults(t *testing.T) {
	c := NewCachingFetcher(nil, 0, &stubFetcher{}, "")
	assert.Equal(t, DefaultTTL, c.ttl)
	assert.Equal(t, DefaultNamespace, c.namespace)
	assert.Equal(t, "stub+redis", c.Name())
}

func TestCachingFetcher_NilRedis(t *testing.T) {
	inner := &stubFetcher{series: sampleSeries()}
	c := NewCachingFetcher(nil, time.Hour, inner, "")

	out, err := c.FetchSeries(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, 1, inner.calls)
}

func TestCachingFetcher_Hit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached, _ := json.Marshal(sampleSeries())
	mock.ExpectGet(seriesKey).SetVal(string(cached))

	inner := &stubFetcher{}
	metrics := countingMetrics{}
	c := NewCachingFetcher(rdb, time.Hour, inner, "").WithMetrics(metrics)

	out, err := c.FetchSeries(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	assert.Equal(t, sampleSeries(), out)
	assert.Zero(t, inner.calls)
	assert.Equal(t, 1, metrics["hit"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingFetcher_Miss(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	want, _ := json.Marshal(sampleSeries())
	mock.ExpectGet(seriesKey).RedisNil()
	mock.ExpectSet(seriesKey, want, time.Hour).SetVal("OK")

	inner := &stubFetcher{series: sampleSeries()}
	metrics := countingMetrics{}
	c := NewCachingFetcher(rdb, time.Hour, inner, "").WithMetrics(metrics)

	out, err := c.FetchSeries(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, metrics["miss"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingFetcher_EmptyResultNotCached(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet(seriesKey).RedisNil()

	c := NewCachingFetcher(rdb, time.Hour, &stubFetcher{}, "")
	out, err := c.FetchSeries(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingFetcher_InnerError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	boom := errors.New("upstream down")
	mock.ExpectGet(seriesKey).RedisNil()

	c := NewCachingFetcher(rdb, time.Hour, &stubFetcher{err: boom}, "")
	_, err := c.FetchSeries(context.Background(), "AAPL", start, end)
	assert.ErrorIs(t, err, boom)
}

func TestCachingFetcher_CorruptedEntry(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	want, _ := json.Marshal(sampleSeries())
	mock.ExpectGet(seriesKey).SetVal("not json")
	mock.ExpectDel(seriesKey).SetVal(1)
	mock.ExpectSet(seriesKey, want, time.Hour).SetVal("OK")

	inner := &stubFetcher{series: sampleSeries()}
	c := NewCachingFetcher(rdb, time.Hour, inner, "")
	out, err := c.FetchSeries(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingFetcher_Invalidate(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectScan(0, "quantlens:series:SPX_500:*", 200).SetVal([]string{"quantlens:series:SPX_500:a:b"}, 0)
	mock.ExpectDel("quantlens:series:SPX_500:a:b").SetVal(1)

	c := NewCachingFetcher(rdb, time.Hour, &stubFetcher{}, "")
	require.NoError(t, c.Invalidate(context.Background(), "SPX 500"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingFundamentals(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	info := model.Fundamentals{model.FundTrailingPE: 25.5}
	want, _ := json.Marshal(info)
	mock.ExpectGet("quantlens:info:2330.TW").RedisNil()
	mock.ExpectSet("quantlens:info:2330.TW", want, 6*time.Hour).SetVal("OK")
	mock.ExpectGet("quantlens:info:2330.TW").SetVal(string(want))

	inner := &stubFetcher{info: info}
	c := NewCachingFundamentals(rdb, 6*time.Hour, inner, "")

	assert.Equal(t, info, c.FetchInfo(context.Background(), "2330.TW"))
	assert.Equal(t, info, c.FetchInfo(context.Background(), "2330.TW"))
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingFundamentals_EmptyNotCached(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("quantlens:info:NOPE").RedisNil()

	c := NewCachingFundamentals(rdb, time.Hour, &stubFetcher{info: model.Fundamentals{}}, "")
	assert.Empty(t, c.FetchInfo(context.Background(), "NOPE"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
