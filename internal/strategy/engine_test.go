package strategy

import (
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantLens/internal/calculator"
	"QuantLens/internal/model"
)

func TestEvaluate_Oversold(t *testing.T) {
	snap := &model.Snapshot{
		Price:       80,
		ShortMA:     null.FloatFrom(85),
		LongMA:      null.FloatFrom(100),
		RSI:         null.FloatFrom(20),
		High52w:     130,
		Low52w:      79,
		Position52w: 0.02,
		High30d:     95,
		Low30d:      80,
	}
	card := Evaluate(snap)
	require.Len(t, card.Factors, 4)
	assert.InDelta(t, 1.925, card.TotalScore, 1e-9)
	assert.Equal(t, "Deeply oversold", card.Stance.Label)
	assert.Contains(t, card.Warning, "oversold")
}

func TestEvaluate_Overheated(t *testing.T) {
	snap := &model.Snapshot{
		Price:       130,
		ShortMA:     null.FloatFrom(125),
		LongMA:      null.FloatFrom(100),
		RSI:         null.FloatFrom(85),
		High52w:     130.5,
		Low52w:      90,
		Position52w: 0.99,
		High30d:     130.5,
		Low30d:      118,
	}
	card := Evaluate(snap)
	var pos model.FactorScore
	for _, f := range card.Factors {
		if f.Name == "52w position" {
			pos = f
		}
	}
	assert.Equal(t, -2.0, pos.RawScore)
	assert.InDelta(t, -1.85, card.TotalScore, 1e-9)
	assert.Equal(t, "Overheated", card.Stance.Label)
	assert.Contains(t, card.Warning, "overbought")
}

func TestEvaluate_PositionCap(t *testing.T) {
	// Near the 52-week high but RSI and MA deviation are calm, so the position caps at -1.
	snap := &model.Snapshot{
		Price:       101,
		ShortMA:     null.FloatFrom(100),
		LongMA:      null.FloatFrom(100),
		RSI:         null.FloatFrom(50),
		High52w:     101.2,
		Low52w:      80,
		Position52w: 0.99,
		High30d:     110,
		Low30d:      90,
	}
	card := Evaluate(snap)
	assert.Equal(t, -1.0, card.Factors[2].RawScore)
	assert.Empty(t, card.Warning)
}

func TestEvaluate_MissingIndicators(t *testing.T) {
	card := Evaluate(&model.Snapshot{Price: 10, Position52w: 0.5})
	for _, f := range card.Factors {
		assert.Zero(t, f.RawScore, f.Name)
	}
	assert.Equal(t, "Neutral", card.Stance.Label)
}

func TestMapStance_AllBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		label string
	}{
		{2.0, "Deeply oversold"},
		{1.2, "Deeply oversold"},
		{1.0, "Oversold"},
		{0.6, "Oversold"},
		{0.0, "Neutral"},
		{-0.6, "Neutral"},
		{-1.0, "Overbought"},
		{-1.2, "Overbought"},
		{-1.3, "Overheated"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.label, mapStance(tt.score).Label, "score %.1f", tt.score)
	}
}

func frameFromCloses(t *testing.T, short, long int, closes ...float64) *model.IndicatorFrame {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(model.Series, len(closes))
	for i, c := range closes {
		s[i] = model.PriceBar{Date: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1}
	}
	frame, err := calculator.ComputeIndicators(s, short, long)
	require.NoError(t, err)
	return frame
}

func TestBacktest_RoundTrip(t *testing.T) {
	frame := frameFromCloses(t, 2, 4, 10, 9, 8, 7, 6, 7, 8, 9, 10, 9, 8, 7, 6)
	res, err := Backtest(frame, 1000)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Trades)
	assert.False(t, res.InPosition)
	assert.InDelta(t, 1000.0, res.FinalEquity, 1e-6)
	assert.InDelta(t, 0.0, res.StrategyReturn, 1e-9)
	assert.InDelta(t, -0.4, res.BuyAndHold, 1e-12)
}

func TestBacktest_OpenPosition(t *testing.T) {
	frame := frameFromCloses(t, 2, 4, 10, 9, 8, 7, 6, 7, 8, 9, 10)
	res, err := Backtest(frame, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Trades)
	assert.True(t, res.InPosition)
	assert.InDelta(t, 1250.0, res.FinalEquity, 1e-6)
	assert.InDelta(t, 0.25, res.StrategyReturn, 1e-9)
}

func TestBacktest_Errors(t *testing.T) {
	frame := frameFromCloses(t, 2, 4, 1, 2, 3, 4, 5)
	_, err := Backtest(frame, 0)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	_, err = Backtest(&model.IndicatorFrame{}, 1000)
	assert.ErrorIs(t, err, model.ErrInsufficientData)
}
