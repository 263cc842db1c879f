package strategy

import (
	"fmt"
	"math"

	"QuantLens/internal/model"
)

// Factor weights. They sum to 1.
const (
	weightMADeviation = 0.40
	weightRSI         = 0.30
	weightPosition    = 0.15
	weightTrend       = 0.15
)

func factor(name string, score, weight float64, commentary string) model.FactorScore {
	return model.FactorScore{
		Name:       name,
		RawScore:   score,
		Weight:     weight,
		Weighted:   score * weight,
		Commentary: commentary,
	}
}

// scoreMADeviation scores how far the price sits from the long moving average.
// Far below scores +2, far above scores -2.
func scoreMADeviation(s *model.Snapshot) model.FactorScore {
	if !s.LongMA.Valid || s.LongMA.Float64 == 0 {
		return factor("MA deviation", 0, weightMADeviation, "long MA unavailable")
	}
	deviation := (s.Price - s.LongMA.Float64) / s.LongMA.Float64 * 100

	var score float64
	switch {
	case deviation <= -20:
		score = 2.0
	case deviation <= -10:
		score = 1.5
	case deviation <= -5:
		score = 1.0
	case deviation <= 0:
		score = 0.5
	case deviation <= 5:
		score = 0
	case deviation <= 10:
		score = -0.5
	case deviation <= 15:
		score = -1.0
	case deviation <= 20:
		score = -1.5
	default:
		score = -2.0
	}
	return factor("MA deviation", score, weightMADeviation, fmt.Sprintf("%+.1f%% vs long MA", deviation))
}

// scoreRSI scores the RSI(14) reading; the 30 and 70 guides sit on the ±1.5 and -1 steps.
func scoreRSI(s *model.Snapshot) model.FactorScore {
	if !s.RSI.Valid {
		return factor("RSI", 0, weightRSI, "RSI unavailable")
	}
	rsi := s.RSI.Float64
	var score float64
	switch {
	case rsi <= 25:
		score = 2.0
	case rsi <= model.RSIOversold:
		score = 1.5
	case rsi <= 40:
		score = 1.0
	case rsi <= 45:
		score = 0.5
	case rsi <= 55:
		score = 0
	case rsi <= 60:
		score = -0.5
	case rsi <= model.RSIOverbought:
		score = -1.0
	case rsi <= 80:
		score = -1.5
	default:
		score = -2.0
	}
	return factor("RSI", score, weightRSI, fmt.Sprintf("RSI=%.0f", rsi))
}

// scorePosition scores where the price sits in its 52-week range.
// Above 95% it only reaches -2 when the other factors average below -1, otherwise it caps at -1.
func scorePosition(s *model.Snapshot, otherFactorsAvg float64) model.FactorScore {
	pos := s.Position52w * 100

	var score float64
	switch {
	case pos <= 10:
		score = 2.0
	case pos <= 20:
		score = 1.5
	case pos <= 30:
		score = 1.0
	case pos <= 40:
		score = 0.5
	case pos <= 60:
		score = 0
	case pos <= 70:
		score = -0.5
	case pos <= 80:
		score = -1.0
	case pos <= 95:
		score = -1.5
	default:
		if otherFactorsAvg < -1 {
			score = -2.0
		} else {
			score = -1.0
		}
	}
	return factor("52w position", score, weightPosition, fmt.Sprintf("position=%.0f%%", pos))
}

// scoreTrend scores MA alignment and proximity to the 30-day extremes.
// Bullish alignment is price > short MA > long MA, bearish the reverse.
// The score is contrarian like the others: an extended uptrend reads negative.
func scoreTrend(s *model.Snapshot) model.FactorScore {
	if !s.ShortMA.Valid || !s.LongMA.Valid {
		return factor("Trend", 0, weightTrend, "moving averages unavailable")
	}
	short, long := s.ShortMA.Float64, s.LongMA.Float64
	bullish := s.Price > short && short > long
	bearish := s.Price < short && short < long

	near30dHigh := s.High30d > 0 && math.Abs(s.Price-s.High30d)/s.High30d < 0.01
	near30dLow := s.Low30d > 0 && math.Abs(s.Price-s.Low30d)/s.Low30d < 0.01

	switch {
	case bullish && near30dHigh:
		return factor("Trend", -1.0, weightTrend, "bullish alignment at 30d high")
	case bullish:
		return factor("Trend", -0.5, weightTrend, "bullish alignment")
	case bearish && near30dLow:
		return factor("Trend", 1.5, weightTrend, "bearish alignment at 30d low")
	case bearish:
		return factor("Trend", 1.0, weightTrend, "bearish alignment")
	default:
		return factor("Trend", 0, weightTrend, "range-bound")
	}
}
