package notifier

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"

	"QuantLens/internal/model"
	"QuantLens/internal/recorder"
)

func sampleReport() *model.Report {
	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }
	return &model.Report{
		Ticker: "2330.TW",
		Start:  day(1),
		End:    day(14),
		Frame: &model.IndicatorFrame{
			Bars:        model.Series{{Date: day(14), Close: 1020}},
			ShortWindow: 20,
			LongWindow:  60,
			UpperBand:   []null.Float{null.FloatFrom(1050)},
			MiddleBand:  []null.Float{null.FloatFrom(1000)},
			LowerBand:   []null.Float{null.FloatFrom(950)},
		},
		Crossovers: []model.CrossoverEvent{
			{Date: day(3), Price: 980, Direction: model.CrossGolden},
			{Date: day(10), Price: 1010, Direction: model.CrossDeath},
		},
		Snapshot: &model.Snapshot{
			Price:       1020,
			ShortMA:     null.FloatFrom(1001),
			LongMA:      null.Float{},
			RSI:         null.FloatFrom(75.2),
			High52w:     1100,
			Low52w:      700,
			Position52w: 0.8,
		},
		Scorecard: &model.Scorecard{
			Factors:    []model.FactorScore{{Name: "RSI", RawScore: -1.5, Weight: 0.3, Weighted: -0.45, Commentary: "RSI=75"}},
			TotalScore: -0.45,
			Stance:     model.Stance{Label: "Neutral"},
			Warning:    "RSI 75 is above 70: overbought zone",
		},
		Backtest: &model.BacktestResult{StrategyReturn: 0.1234, BuyAndHold: -0.05, Trades: 2},
		Spectrum: &model.Spectrum{Dominant: &model.SpectralComponent{PeriodDays: 41.3, Amplitude: 12}},
		Simulation: &model.Ensemble{
			Paths:      []model.SimulationPath{{1020, 1100}, {1020, 990}},
			Mean:       []float64{1020, 1045},
			P5:         []float64{1020, 995.5},
			P50:        []float64{1020, 1045},
			P95:        []float64{1020, 1094.5},
			Horizon:    2,
			StartPrice: 1020,
		},
	}
}

func TestFormatReport(t *testing.T) {
	msg := FormatReport(sampleReport())

	for _, want := range []string{
		"<b>2330.TW</b> | 2025-03-01 ~ 2025-03-14",
		"MA20: 1001.00 | MA60: N/A",
		"Bollinger: 950.00 / 1000.00 / 1050.00",
		"RSI(14): 75.2 🔥 overbought",
		"position 80%",
		"🟢 BUY  2025-03-03 @ 980.00",
		"🔴 SELL 2025-03-10 @ 1010.00",
		"Total: -0.450 → <b>Neutral</b>",
		"⚠️ RSI 75 is above 70",
		"MA crossover: +12.34% (2 trades)",
		"Buy &amp; Hold: -5.00%",
		"Dominant cycle: <b>41.3 days</b>",
		"P5 / P50 / P95: 995.50 / 1045.00 / 1094.50",
		"P(above start): 50%",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestFormatReport_CrossoverLimit(t *testing.T) {
	rep := &model.Report{Ticker: "X"}
	for i := 1; i <= 8; i++ {
		rep.Crossovers = append(rep.Crossovers, model.CrossoverEvent{
			Date: time.Date(2025, 1, i, 0, 0, 0, 0, time.UTC), Direction: model.CrossGolden,
		})
	}
	msg := FormatReport(rep)
	assert.NotContains(t, msg, "2025-01-03")
	assert.Contains(t, msg, "2025-01-04")
	assert.Contains(t, msg, "2025-01-08")
}

func TestFormatCycle(t *testing.T) {
	rep := &model.Report{
		Ticker: "AAPL",
		Spectrum: &model.Spectrum{
			Slope: 0.12,
			Components: []model.SpectralComponent{
				{PeriodDays: 10, Amplitude: 1},
				{PeriodDays: 21, Amplitude: 6},
				{PeriodDays: 63, Amplitude: 3},
				{PeriodDays: 120, Amplitude: 2},
			},
			Dominant: &model.SpectralComponent{PeriodDays: 21, Amplitude: 6},
		},
	}
	msg := FormatCycle(rep)
	assert.Contains(t, msg, "Dominant cycle: <b>21.0 days</b>")
	assert.Contains(t, msg, "1. 21.0 days")
	assert.Contains(t, msg, "2. 63.0 days")
	assert.Contains(t, msg, "3. 120.0 days")
	assert.NotContains(t, msg, "10.0 days")

	empty := FormatCycle(&model.Report{Ticker: "AAPL", Spectrum: &model.Spectrum{}})
	assert.Contains(t, empty, "No cycle inside the period band")

	assert.Contains(t, FormatCycle(&model.Report{Ticker: "AAPL"}), "Not enough data")
}

func TestFormatSimulation(t *testing.T) {
	assert.Contains(t, FormatSimulation(sampleReport()), "2 paths, 2 days")
	assert.Contains(t, FormatSimulation(&model.Report{Ticker: "X"}), "Not enough data")
}

func TestFormatBasket(t *testing.T) {
	rep := &model.BasketReport{
		Symbol: "0050.TW",
		Holdings: []model.HoldingSignal{
			{Ticker: "2317.TW", WeightPercent: 5.2, PctChange: -1.2, VolumeRatio: 0.7, Classification: model.VPAQuietDistribution},
			{Ticker: "2330.TW", WeightPercent: 48, PctChange: 2.1, VolumeRatio: 1.6, Classification: model.VPAStrongUpVolume},
		},
		Skipped: []string{"2454.TW"},
		Force:   model.Force{Bull: 48, Bear: 5.2, Net: 42.8, Classification: model.ForceAllInBull},
	}
	msg := FormatBasket(rep)

	assert.Contains(t, msg, "🔺 2330.TW (48.0%): +2.10% vol×1.60 STRONG_UP_VOLUME")
	assert.Contains(t, msg, "🔻 2317.TW (5.2%): -1.20% vol×0.70 QUIET_DISTRIBUTION")
	assert.Less(t, strings.Index(msg, "2330.TW"), strings.Index(msg, "2317.TW"), "heaviest holding first")
	assert.Contains(t, msg, "Skipped: 2454.TW")
	assert.Contains(t, msg, "Net +42.8%")
	assert.Contains(t, msg, "Force: <b>ALL_IN_BULL</b>")
	assert.Equal(t, "2317.TW", rep.Holdings[0].Ticker, "input order untouched")
}

func TestFormatFundamentals(t *testing.T) {
	info := model.Fundamentals{
		model.FundLongName:        "Apple Inc.",
		model.FundTrailingPE:      31.456,
		model.FundTrailingEPS:     6.1,
		model.FundDividendYield:   0.0044,
		model.FundBusinessSummary: "Designs <phones> & more.",
	}
	msg := FormatFundamentals("AAPL", info)
	assert.Contains(t, msg, "<b>Apple Inc. (AAPL)</b>")
	assert.Contains(t, msg, "PE: 31.46")
	assert.Contains(t, msg, "EPS: 6.10")
	assert.Contains(t, msg, "PB: N/A")
	assert.Contains(t, msg, "Yield: 0.44%")
	assert.Contains(t, msg, "Designs &lt;phones&gt; &amp; more.")

	noSummary := FormatFundamentals("AAPL", model.Fundamentals{model.FundTrailingPE: "n/a"})
	assert.Contains(t, noSummary, "PE: N/A")
	assert.Contains(t, noSummary, "No description available.")

	assert.Contains(t, FormatFundamentals("NOPE", model.Fundamentals{}), "❌ No data for NOPE")
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "No recorded runs.", FormatHistory("", nil))

	msg := FormatHistory("2330.TW", []recorder.RunSummary{{
		Ticker:         "2330.TW",
		Kind:           recorder.KindAnalyze,
		CreatedAt:      time.Date(2025, 3, 14, 13, 40, 0, 0, time.UTC),
		LastPrice:      null.FloatFrom(1020),
		RSI:            null.FloatFrom(61.4),
		Stance:         null.StringFrom("Neutral"),
		DominantPeriod: null.FloatFrom(40),
	}})
	assert.Contains(t, msg, "2025-03-14 13:40 2330.TW analyze close=1020.00 RSI=61 Neutral cycle=40.0d")
	assert.NotContains(t, msg, "P50")
}

func TestFormatError(t *testing.T) {
	err := fmt.Errorf("wrap: %w", model.ErrInsufficientData)
	assert.Contains(t, FormatError("ZZZ", err), "not found or not enough data")
	assert.Contains(t, FormatError("ZZZ", fmt.Errorf("boom <x>")), "boom &lt;x&gt;")
}
