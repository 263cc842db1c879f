package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// RSIPeriod is the fixed lookback of the RSI column.
const RSIPeriod = 14

// RSI reference levels drawn on charts and used in reports.
const (
	RSIOversold   = 30.0
	RSIOverbought = 70.0
)

// IndicatorFrame is a price series extended with derived columns.
// Every column has one entry per bar; entries that are not yet defined are null.
type IndicatorFrame struct {
	Bars        Series       `json:"bars"`
	ShortWindow int          `json:"short_window"`
	LongWindow  int          `json:"long_window"`
	ShortMA     []null.Float `json:"short_ma"`
	LongMA      []null.Float `json:"long_ma"`
	RSI         []null.Float `json:"rsi"`
	UpperBand   []null.Float `json:"upper_band"`
	MiddleBand  []null.Float `json:"middle_band"`
	LowerBand   []null.Float `json:"lower_band"`
}

// Len returns the number of bars in the frame.
func (f *IndicatorFrame) Len() int { return len(f.Bars) }

// CrossoverDirection tells which way the short MA crossed the long MA.
type CrossoverDirection string

const (
	CrossGolden CrossoverDirection = "GOLDEN"
	CrossDeath  CrossoverDirection = "DEATH"
)

// CrossoverEvent marks a bar where the short MA crossed the long MA.
type CrossoverEvent struct {
	Date      time.Time          `json:"date"`
	Index     int                `json:"index"`
	Price     float64            `json:"price"`
	Direction CrossoverDirection `json:"direction"`
}

// BacktestResult summarises an MA-crossover long/flat run.
type BacktestResult struct {
	InitialCapital float64 `json:"initial_capital"`
	FinalEquity    float64 `json:"final_equity"`
	StrategyReturn float64 `json:"strategy_return"`
	BuyAndHold     float64 `json:"buy_and_hold_return"`
	Trades         int     `json:"trades"`
	InPosition     bool    `json:"in_position"`
}

// Snapshot is the latest bar of an IndicatorFrame with its ranges.
type Snapshot struct {
	Date        time.Time  `json:"date"`
	Price       float64    `json:"price"`
	ShortMA     null.Float `json:"short_ma"`
	LongMA      null.Float `json:"long_ma"`
	RSI         null.Float `json:"rsi"`
	High52w     float64    `json:"high_52w"`
	Low52w      float64    `json:"low_52w"`
	Position52w float64    `json:"position_52w"` // 0.0 ~ 1.0
	High30d     float64    `json:"high_30d"`
	Low30d      float64    `json:"low_30d"`
}
