package strategy

import (
	"fmt"

	"QuantLens/internal/model"
)

// Stances maps a scorecard total to a label, checked top down.
var Stances = []model.Stance{
	{Label: "Deeply oversold", MinScore: 1.2},
	{Label: "Oversold", MinScore: 0.6},
	{Label: "Neutral", MinScore: -0.6},
	{Label: "Overbought", MinScore: -1.2},
}

// DefaultStance is the stance for totals below every entry of Stances.
var DefaultStance = model.Stance{Label: "Overheated", MinScore: -2}

// mapStance maps a total score to a Stance.
func mapStance(totalScore float64) model.Stance {
	for _, s := range Stances {
		if totalScore >= s.MinScore {
			return s
		}
	}
	return DefaultStance
}

// Evaluate scores the latest bar of an analysis against its own indicators.
func Evaluate(snap *model.Snapshot) *model.Scorecard {
	f1 := scoreMADeviation(snap)
	f2 := scoreRSI(snap)
	f4 := scoreTrend(snap)

	otherFactorsAvg := (f1.RawScore + f2.RawScore + f4.RawScore) / 3.0
	f3 := scorePosition(snap, otherFactorsAvg)

	total := f1.Weighted + f2.Weighted + f3.Weighted + f4.Weighted
	card := &model.Scorecard{
		Factors:    []model.FactorScore{f1, f2, f3, f4},
		TotalScore: total,
		Stance:     mapStance(total),
	}

	if snap.RSI.Valid {
		switch rsi := snap.RSI.Float64; {
		case rsi >= model.RSIOverbought:
			card.Warning = fmt.Sprintf("RSI %.0f is above %.0f: overbought zone", rsi, model.RSIOverbought)
		case rsi <= model.RSIOversold:
			card.Warning = fmt.Sprintf("RSI %.0f is below %.0f: oversold zone", rsi, model.RSIOversold)
		}
	}
	return card
}
