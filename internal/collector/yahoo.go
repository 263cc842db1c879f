package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/tidwall/gjson"

	"QuantLens/internal/model"
)

// DefaultYahooBaseURL is the public Yahoo Finance query host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher and FundamentalsFetcher using the Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewYahooFetcher creates a new Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(baseURL, proxyURL string) *YahooFetcher {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	return &YahooFetcher{
		BaseURL: baseURL,
		Client:  newHTTPClient(proxyURL),
	}
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// FetchSeries fetches split- and dividend-adjusted daily bars of ticker between start and end inclusive.
func (f *YahooFetcher) FetchSeries(ctx context.Context, ticker string, start, end time.Time) (model.Series, error) {
	if ticker == "" {
		return nil, fmt.Errorf("yahoo: empty ticker")
	}
	if end.Before(start) {
		return nil, fmt.Errorf("yahoo: end %s before start %s", end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	q := url.Values{}
	q.Set("period1", fmt.Sprint(start.Unix()))
	q.Set("period2", fmt.Sprint(end.AddDate(0, 0, 1).Unix()))
	q.Set("interval", "1d")
	q.Set("events", "div,split")
	q.Set("includeAdjustedClose", "true")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(ticker), q.Encode())

	body, err := f.get(ctx, u)
	if err != nil {
		return nil, err
	}
	return parseChart(body)
}

func (f *YahooFetcher) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// parseChart decodes a v8 chart payload. Bars with a null price (holidays, halted
// sessions) are skipped, and OHLC are scaled by adjclose/close when adjclose is present.
// Bars are keyed by their trading date in the exchange time zone; a repeated date keeps the later bar.
func parseChart(body []byte) (model.Series, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("yahoo decode: invalid json")
	}
	if e := gjson.GetBytes(body, "chart.error"); e.IsObject() {
		return nil, fmt.Errorf("yahoo api error: %s", e.Get("description").String())
	}
	result := gjson.GetBytes(body, "chart.result.0")
	timestamps := result.Get("timestamp").Array()
	if len(timestamps) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned")
	}

	loc := time.UTC
	if tz := result.Get("meta.exchangeTimezoneName").String(); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()
	adjCloses := result.Get("indicators.adjclose.0.adjclose").Array()

	byDate := make(map[time.Time]model.PriceBar, len(timestamps))
	for i, ts := range timestamps {
		o, h, l, c := at(opens, i), at(highs, i), at(lows, i), at(closes, i)
		if !isNumber(o) || !isNumber(h) || !isNumber(l) || !isNumber(c) || c.Float() <= 0 {
			continue
		}
		factor := 1.0
		if adj := at(adjCloses, i); isNumber(adj) && adj.Float() > 0 {
			factor = adj.Float() / c.Float()
		}
		local := time.Unix(ts.Int(), 0).In(loc)
		date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
		byDate[date] = model.PriceBar{
			Date:   date,
			Open:   o.Float() * factor,
			High:   h.Float() * factor,
			Low:    l.Float() * factor,
			Close:  c.Float() * factor,
			Volume: at(volumes, i).Int(),
		}
	}

	bars := make(model.Series, 0, len(byDate))
	for _, b := range byDate {
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func at(values []gjson.Result, i int) gjson.Result {
	if i < len(values) {
		return values[i]
	}
	return gjson.Result{}
}

func isNumber(r gjson.Result) bool { return r.Type == gjson.Number }
