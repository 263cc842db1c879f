package collector

import (
	"context"
	"math"
	"time"

	"QuantLens/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64
	Series map[string]model.Series
	Info   map[string]model.Fundamentals
	Err    error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(_ context.Context, ticker string, start, end time.Time) (model.Series, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if s, ok := m.Series[ticker]; ok {
		return s, nil
	}
	return generateMockBars(m.Price, start, end), nil
}

func (m *MockFetcher) FetchInfo(_ context.Context, ticker string) model.Fundamentals {
	if info, ok := m.Info[ticker]; ok {
		return info
	}
	return model.Fundamentals{}
}

// generateMockBars emits one bar per weekday in [start, end]: a slow uptrend with a
// 40-session cycle on top, so every analysis has something to find.
func generateMockBars(basePrice float64, start, end time.Time) model.Series {
	if basePrice <= 0 {
		basePrice = 100
	}
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	var bars model.Series
	for i := 0; !day.After(end); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		p := basePrice * (1 + float64(i)*0.0005 + 0.05*math.Sin(2*math.Pi*float64(i)/40))
		bars = append(bars, model.PriceBar{
			Date:   day,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000 + int64(i%5)*50000,
		})
		i++
	}
	return bars
}
