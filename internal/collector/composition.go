package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"QuantLens/internal/model"
)

// CompositionSource returns the constituents of a basket (an ETF) with their weights.
type CompositionSource interface {
	Holdings(ctx context.Context, basket string) ([]model.Holding, error)
}

// RESTComposition reads basket holdings from a JSON endpoint.
// The payload is either an array of {ticker, name, weight} or an object with a "holdings" array.
type RESTComposition struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTComposition creates a composition client with optional proxy support.
func NewRESTComposition(baseURL, apiKey, proxyURL string) *RESTComposition {
	return &RESTComposition{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (r *RESTComposition) Holdings(ctx context.Context, basket string) ([]model.Holding, error) {
	endpoint := fmt.Sprintf("%s/api/v1/etf/holdings?symbol=%s", r.BaseURL, url.QueryEscape(basket))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if r.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.APIKey)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch holdings: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read holdings: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch holdings: status %d, body: %s", resp.StatusCode, string(body))
	}
	return parseHoldings(body)
}

func parseHoldings(body []byte) ([]model.Holding, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode holdings: invalid json")
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		root = root.Get("holdings")
	}
	var holdings []model.Holding
	for _, item := range root.Array() {
		ticker := strings.TrimSpace(item.Get("ticker").String())
		if ticker == "" {
			continue
		}
		holdings = append(holdings, model.Holding{
			Ticker:        strings.ToUpper(ticker),
			Name:          item.Get("name").String(),
			WeightPercent: item.Get("weight").Float(),
		})
	}
	if len(holdings) == 0 {
		return nil, fmt.Errorf("decode holdings: no holdings in payload")
	}
	return holdings, nil
}

// StaticComposition serves a built-in snapshot of basket holdings.
type StaticComposition map[string][]model.Holding

func (s StaticComposition) Holdings(_ context.Context, basket string) ([]model.Holding, error) {
	h, ok := s[strings.ToUpper(basket)]
	if !ok {
		return nil, fmt.Errorf("no built-in composition for %q", basket)
	}
	out := make([]model.Holding, len(h))
	copy(out, h)
	return out, nil
}

// DefaultComposition is the fallback table of top holdings. Weights drift; the live
// source is preferred whenever it answers.
var DefaultComposition = StaticComposition{
	"0050.TW": {
		{Ticker: "2330.TW", Name: "TSMC", WeightPercent: 48.0},
		{Ticker: "2317.TW", Name: "Hon Hai", WeightPercent: 5.2},
		{Ticker: "2454.TW", Name: "MediaTek", WeightPercent: 4.5},
		{Ticker: "2308.TW", Name: "Delta Electronics", WeightPercent: 2.2},
		{Ticker: "2382.TW", Name: "Quanta", WeightPercent: 1.9},
		{Ticker: "2881.TW", Name: "Fubon Financial", WeightPercent: 1.8},
		{Ticker: "2891.TW", Name: "CTBC Financial", WeightPercent: 1.6},
		{Ticker: "2882.TW", Name: "Cathay Financial", WeightPercent: 1.5},
		{Ticker: "3711.TW", Name: "ASE Technology", WeightPercent: 1.3},
		{Ticker: "2303.TW", Name: "UMC", WeightPercent: 1.2},
	},
	"QQQ": {
		{Ticker: "NVDA", Name: "NVIDIA", WeightPercent: 9.0},
		{Ticker: "MSFT", Name: "Microsoft", WeightPercent: 8.5},
		{Ticker: "AAPL", Name: "Apple", WeightPercent: 7.5},
		{Ticker: "AMZN", Name: "Amazon", WeightPercent: 5.5},
		{Ticker: "AVGO", Name: "Broadcom", WeightPercent: 5.0},
		{Ticker: "META", Name: "Meta Platforms", WeightPercent: 3.8},
		{Ticker: "NFLX", Name: "Netflix", WeightPercent: 3.0},
		{Ticker: "TSLA", Name: "Tesla", WeightPercent: 2.8},
		{Ticker: "GOOGL", Name: "Alphabet A", WeightPercent: 2.6},
		{Ticker: "GOOG", Name: "Alphabet C", WeightPercent: 2.5},
	},
}

// FallbackComposition asks Primary first and serves Fallback when it fails.
type FallbackComposition struct {
	Primary  CompositionSource
	Fallback CompositionSource
	log      zerolog.Logger
}

// NewFallbackComposition chains primary and fallback. A nil primary serves the fallback only.
func NewFallbackComposition(primary, fallback CompositionSource, logger zerolog.Logger) *FallbackComposition {
	return &FallbackComposition{
		Primary:  primary,
		Fallback: fallback,
		log:      logger.With().Str("component", "composition").Logger(),
	}
}

func (f *FallbackComposition) Holdings(ctx context.Context, basket string) ([]model.Holding, error) {
	if f.Primary != nil {
		h, err := f.Primary.Holdings(ctx, basket)
		if err == nil {
			return h, nil
		}
		f.log.Warn().Err(err).Str("basket", basket).Msg("live composition unavailable, using built-in table")
	}
	return f.Fallback.Holdings(ctx, basket)
}
