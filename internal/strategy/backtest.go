package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"QuantLens/internal/calculator"
	"QuantLens/internal/model"
)

// Backtest replays the MA crossovers of frame as a long/flat strategy: all cash
// goes in at the close of a golden cross and comes out at the close of a death cross.
func Backtest(frame *model.IndicatorFrame, initialCapital float64) (*model.BacktestResult, error) {
	if initialCapital <= 0 {
		return nil, fmt.Errorf("%w: initial capital must be positive", model.ErrInvalidParameter)
	}
	last, ok := frame.Bars.Last()
	if !ok {
		return nil, fmt.Errorf("%w: no bars to backtest", model.ErrInsufficientData)
	}

	capital := decimal.NewFromFloat(initialCapital)
	cash := capital
	shares := decimal.Zero
	res := &model.BacktestResult{InitialCapital: initialCapital}

	for _, ev := range calculator.DetectCrossovers(frame) {
		price := decimal.NewFromFloat(ev.Price)
		switch {
		case ev.Direction == model.CrossGolden && !res.InPosition:
			shares = cash.Div(price)
			cash = decimal.Zero
			res.InPosition = true
			res.Trades++
		case ev.Direction == model.CrossDeath && res.InPosition:
			cash = shares.Mul(price)
			shares = decimal.Zero
			res.InPosition = false
			res.Trades++
		}
	}

	equity := cash.Add(shares.Mul(decimal.NewFromFloat(last.Close)))
	res.FinalEquity = equity.Round(2).InexactFloat64()
	res.StrategyReturn = equity.Div(capital).Sub(decimal.NewFromInt(1)).InexactFloat64()

	bh, err := calculator.BuyAndHoldReturn(frame.Bars)
	if err != nil {
		return nil, err
	}
	res.BuyAndHold = bh
	return res, nil
}
