package strategy

import "QuantLens/internal/model"

// BullTiers applies when net weight exceeds MinNet, checked in order.
var BullTiers = []struct {
	MinNet float64
	Class  model.ForceClass
}{
	{15, model.ForceAllInBull},
	{5, model.ForceLeanBull},
}

// BearTiers applies when net weight is below MaxNet, checked in order.
var BearTiers = []struct {
	MaxNet float64
	Class  model.ForceClass
}{
	{-15, model.ForceAllInBear},
	{-5, model.ForceLeanBear},
}

// mapForce maps a net bull-minus-bear weight to a ForceClass.
func mapForce(net float64) model.ForceClass {
	for _, t := range BullTiers {
		if net > t.MinNet {
			return t.Class
		}
	}
	for _, t := range BearTiers {
		if net < t.MaxNet {
			return t.Class
		}
	}
	return model.ForceNeutral
}

// AggregateForce sums the weight of rising holdings into bull and falling holdings
// into bear. Unchanged holdings count toward neither side.
func AggregateForce(holdings []model.HoldingSignal) model.Force {
	var f model.Force
	for _, h := range holdings {
		switch {
		case h.PctChange > 0:
			f.Bull += h.WeightPercent
		case h.PctChange < 0:
			f.Bear += h.WeightPercent
		}
	}
	f.Net = f.Bull - f.Bear
	f.Classification = mapForce(f.Net)
	return f
}
