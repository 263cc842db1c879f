package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"QuantLens/internal/collector"
	"QuantLens/internal/model"
)

const (
	DefaultTTL       = time.Hour
	DefaultNamespace = "quantlens"
)

// Metrics counts cache lookups by result ("hit" or "miss").
type Metrics interface {
	IncCache(result string)
}

type nopMetrics struct{}

func (nopMetrics) IncCache(string) {}

// CachingFetcher decorates a collector.Fetcher with Redis caching.
// A nil client bypasses the cache.
type CachingFetcher struct {
	inner     collector.Fetcher
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	metrics   Metrics
}

// NewCachingFetcher wraps inner. A ttl of 0 means DefaultTTL and an empty
// namespace means DefaultNamespace.
func NewCachingFetcher(rdb *redis.Client, ttl time.Duration, inner collector.Fetcher, namespace string) *CachingFetcher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &CachingFetcher{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		metrics:   nopMetrics{},
	}
}

// WithMetrics sets the lookup counter.
func (c *CachingFetcher) WithMetrics(m Metrics) *CachingFetcher {
	if m != nil {
		c.metrics = m
	}
	return c
}

func (c *CachingFetcher) Name() string { return c.inner.Name() + "+redis" }

// FetchSeries checks the cache first and falls back to the inner fetcher.
// Empty results are not cached.
func (c *CachingFetcher) FetchSeries(ctx context.Context, ticker string, start, end time.Time) (model.Series, error) {
	if c.rdb == nil {
		return c.inner.FetchSeries(ctx, ticker, start, end)
	}

	key := c.seriesKey(ticker, start, end)
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out model.Series
		if err := json.Unmarshal(b, &out); err == nil {
			c.metrics.IncCache("hit")
			return out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}
	c.metrics.IncCache("miss")

	out, err := c.inner.FetchSeries(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// Invalidate drops every cached series of ticker.
func (c *CachingFetcher) Invalidate(ctx context.Context, ticker string) error {
	if c.rdb == nil {
		return nil
	}
	return deleteByPattern(ctx, c.rdb, fmt.Sprintf("%s:series:%s:*", c.namespace, safe(ticker)))
}

func (c *CachingFetcher) seriesKey(ticker string, start, end time.Time) string {
	return fmt.Sprintf("%s:series:%s:%s:%s",
		c.namespace,
		safe(ticker),
		start.Format(time.DateOnly),
		end.Format(time.DateOnly),
	)
}

// CachingFundamentals decorates a collector.FundamentalsFetcher. Only non-empty
// answers are cached, so a failed lookup is retried on the next call.
type CachingFundamentals struct {
	inner     collector.FundamentalsFetcher
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

func NewCachingFundamentals(rdb *redis.Client, ttl time.Duration, inner collector.FundamentalsFetcher, namespace string) *CachingFundamentals {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &CachingFundamentals{inner: inner, rdb: rdb, ttl: ttl, namespace: namespace}
}

func (c *CachingFundamentals) FetchInfo(ctx context.Context, ticker string) model.Fundamentals {
	if c.rdb == nil {
		return c.inner.FetchInfo(ctx, ticker)
	}

	key := fmt.Sprintf("%s:info:%s", c.namespace, safe(ticker))
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out model.Fundamentals
		if err := json.Unmarshal(b, &out); err == nil {
			return out
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	out := c.inner.FetchInfo(ctx, ticker)
	if len(out) == 0 {
		return out
	}
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out
}

func deleteByPattern(ctx context.Context, rdb *redis.Client, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			return nil
		}
	}
}

// safe replaces characters that would break the key layout.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, ":", "_")
}
