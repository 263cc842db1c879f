package notifier

import (
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/guregu/null/v6"

	"QuantLens/internal/model"
	"QuantLens/internal/recorder"
	"QuantLens/internal/spectral"
)

// maxCrossovers is how many of the latest crossovers a report lists.
const maxCrossovers = 5

// FormatReport formats a full analysis into a Telegram message.
func FormatReport(rep *model.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s ~ %s\n\n", html.EscapeString(rep.Ticker),
		rep.Start.Format("2006-01-02"), rep.End.Format("2006-01-02")))

	if s := rep.Snapshot; s != nil {
		b.WriteString(fmt.Sprintf("Close: %.2f\n", s.Price))
		if f := rep.Frame; f != nil {
			b.WriteString(fmt.Sprintf("MA%d: %s | MA%d: %s\n",
				f.ShortWindow, fmtNull(s.ShortMA, "%.2f"), f.LongWindow, fmtNull(s.LongMA, "%.2f")))
			if i := f.Len() - 1; i >= 0 && i < len(f.UpperBand) && f.UpperBand[i].Valid {
				b.WriteString(fmt.Sprintf("Bollinger: %.2f / %.2f / %.2f\n",
					f.LowerBand[i].Float64, f.MiddleBand[i].Float64, f.UpperBand[i].Float64))
			}
		}
		b.WriteString(fmt.Sprintf("RSI(%d): %s %s\n", model.RSIPeriod, fmtNull(s.RSI, "%.1f"), rsiZone(s.RSI)))
		b.WriteString(fmt.Sprintf("52w: %.2f ~ %.2f (position %.0f%%)\n\n", s.Low52w, s.High52w, s.Position52w*100))
	}

	if len(rep.Crossovers) > 0 {
		b.WriteString("🔀 <b>Crossovers</b>\n")
		start := max(len(rep.Crossovers)-maxCrossovers, 0)
		for _, c := range rep.Crossovers[start:] {
			b.WriteString(fmt.Sprintf("  %s %s @ %.2f\n", crossoverLabel(c.Direction), c.Date.Format("2006-01-02"), c.Price))
		}
		b.WriteString("\n")
	}

	if sc := rep.Scorecard; sc != nil {
		b.WriteString("📈 <b>Scorecard</b>\n")
		for _, f := range sc.Factors {
			b.WriteString(fmt.Sprintf("  %s (%s): %+.1f (×%.2f) = %+.3f\n",
				f.Name, html.EscapeString(f.Commentary), f.RawScore, f.Weight, f.Weighted))
		}
		b.WriteString("  ─────────────────\n")
		b.WriteString(fmt.Sprintf("  Total: %+.3f → <b>%s</b>\n", sc.TotalScore, sc.Stance.Label))
		if sc.Warning != "" {
			b.WriteString(fmt.Sprintf("  ⚠️ %s\n", sc.Warning))
		}
		b.WriteString("\n")
	}

	if bt := rep.Backtest; bt != nil {
		b.WriteString("💰 <b>Backtest</b>\n")
		b.WriteString(fmt.Sprintf("  MA crossover: %+.2f%% (%d trades)\n", bt.StrategyReturn*100, bt.Trades))
		b.WriteString(fmt.Sprintf("  Buy &amp; Hold: %+.2f%%\n", bt.BuyAndHold*100))
		if bt.InPosition {
			b.WriteString("  Currently holding\n")
		}
		b.WriteString("\n")
	}

	if rep.Spectrum != nil {
		b.WriteString(cycleLine(rep.Spectrum))
		b.WriteString("\n")
	}
	if rep.Simulation != nil {
		b.WriteString(simulationSummary(rep.Simulation))
	}
	return b.String()
}

// FormatCycle formats a cycle-only report.
func FormatCycle(rep *model.Report) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧬 <b>Cycle analysis</b> | %s\n", html.EscapeString(rep.Ticker)))
	b.WriteString(fmt.Sprintf("%s ~ %s\n\n", rep.Start.Format("2006-01-02"), rep.End.Format("2006-01-02")))

	spec := rep.Spectrum
	if spec == nil {
		b.WriteString("Not enough data.\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Trend: %+.4f per day\n", spec.Slope))
	b.WriteString(cycleLine(spec))

	if top := spectral.TopComponents(spec, 3); len(top) > 0 {
		b.WriteString("\nStrongest periods:\n")
		for i, c := range top {
			b.WriteString(fmt.Sprintf("  %d. %.1f days (amplitude %.2f)\n", i+1, c.PeriodDays, c.Amplitude))
		}
	}
	b.WriteString("\n💡 A 20-day cycle tends to rebound around the monthly MA; 60 days follows the quarterly MA.\n")
	return b.String()
}

// FormatSimulation formats a simulation-only report.
func FormatSimulation(rep *model.Report) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🎲 <b>Monte Carlo</b> | %s\n\n", html.EscapeString(rep.Ticker)))
	if rep.Simulation == nil {
		b.WriteString("Not enough data.\n")
		return b.String()
	}
	b.WriteString(simulationSummary(rep.Simulation))
	return b.String()
}

// FormatBasket formats the bull/bear force of a basket.
func FormatBasket(rep *model.BasketReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧺 <b>%s</b> | %s\n\n", html.EscapeString(rep.Symbol), rep.CreatedAt.Format("2006-01-02 15:04")))

	holdings := make([]model.HoldingSignal, len(rep.Holdings))
	copy(holdings, rep.Holdings)
	sort.SliceStable(holdings, func(i, j int) bool { return holdings[i].WeightPercent > holdings[j].WeightPercent })
	for _, h := range holdings {
		b.WriteString(fmt.Sprintf("%s %s (%.1f%%): %+.2f%% vol×%.2f %s\n",
			moveEmoji(h.PctChange), h.Ticker, h.WeightPercent, h.PctChange, h.VolumeRatio, h.Classification))
	}
	if len(rep.Skipped) > 0 {
		b.WriteString(fmt.Sprintf("Skipped: %s\n", strings.Join(rep.Skipped, ", ")))
	}

	f := rep.Force
	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("Bull %.1f%% | Bear %.1f%% | Net %+.1f%%\n", f.Bull, f.Bear, f.Net))
	b.WriteString(fmt.Sprintf("Force: <b>%s</b>\n", f.Classification))
	return b.String()
}

// FormatFundamentals formats the headline valuation numbers and the business summary.
func FormatFundamentals(ticker string, info model.Fundamentals) string {
	if len(info) == 0 {
		return fmt.Sprintf("❌ No data for %s. The ticker may be wrong or the API is unavailable.", html.EscapeString(ticker))
	}

	var b strings.Builder
	name := ticker
	if n, ok := info[model.FundLongName].(string); ok && n != "" {
		name = fmt.Sprintf("%s (%s)", n, ticker)
	}
	b.WriteString(fmt.Sprintf("📊 <b>%s</b>\n\n", html.EscapeString(name)))
	b.WriteString(fmt.Sprintf("PE: %s\n", fmtFund(info[model.FundTrailingPE], "%.2f", 1)))
	b.WriteString(fmt.Sprintf("EPS: %s\n", fmtFund(info[model.FundTrailingEPS], "%.2f", 1)))
	b.WriteString(fmt.Sprintf("PB: %s\n", fmtFund(info[model.FundPriceToBook], "%.2f", 1)))
	b.WriteString(fmt.Sprintf("Yield: %s\n", fmtFund(info[model.FundDividendYield], "%.2f%%", 100)))

	summary := "No description available."
	if s, ok := info[model.FundBusinessSummary].(string); ok && s != "" {
		summary = s
	}
	b.WriteString("\n📝 <b>Business summary</b>\n")
	b.WriteString(html.EscapeString(summary))
	b.WriteString("\n")
	return b.String()
}

// FormatHistory lists recorded runs, newest first.
func FormatHistory(ticker string, runs []recorder.RunSummary) string {
	if len(runs) == 0 {
		return "No recorded runs."
	}
	var b strings.Builder
	title := "all tickers"
	if ticker != "" {
		title = ticker
	}
	b.WriteString(fmt.Sprintf("🗂 <b>History</b> | %s\n\n", html.EscapeString(title)))
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("%s %s %s", r.CreatedAt.Format("2006-01-02 15:04"), r.Ticker, r.Kind))
		if r.LastPrice.Valid {
			b.WriteString(fmt.Sprintf(" close=%.2f", r.LastPrice.Float64))
		}
		if r.RSI.Valid {
			b.WriteString(fmt.Sprintf(" RSI=%.0f", r.RSI.Float64))
		}
		if r.Stance.Valid {
			b.WriteString(" " + r.Stance.String)
		}
		if r.DominantPeriod.Valid {
			b.WriteString(fmt.Sprintf(" cycle=%.1fd", r.DominantPeriod.Float64))
		}
		if r.SimP50.Valid {
			b.WriteString(fmt.Sprintf(" P50=%.2f", r.SimP50.Float64))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatError turns an analysis failure into a user reply.
func FormatError(ticker string, err error) string {
	if errors.Is(err, model.ErrInsufficientData) {
		return fmt.Sprintf("❌ Ticker <b>%s</b> not found or not enough data.", html.EscapeString(ticker))
	}
	return fmt.Sprintf("❌ %s: %s", html.EscapeString(ticker), html.EscapeString(err.Error()))
}

// Glossary is the reply to /learn.
const Glossary = `📚 <b>Glossary</b>

<b>MA</b>: moving average, the mean close of the last N sessions. A short MA crossing above the long MA is a golden cross (buy), below is a death cross (sell).
<b>RSI</b>: relative strength index over 14 sessions, 0 to 100. Above 70 is overbought, below 30 oversold.
<b>Bollinger bands</b>: the 20-session MA ± 2 standard deviations.
<b>FFT</b>: the fast Fourier transform splits the de-trended price into sine waves. Low frequencies are the trend, high frequencies the daily noise; a strong peak hints at a recurring cycle.
<b>Monte Carlo</b>: many random price paths drawn with the historical drift and volatility of log returns. The spread of their ends gives a range, not a forecast.
<b>Basket force</b>: the weight of rising constituents minus falling ones, read together with volume.`

func cycleLine(spec *model.Spectrum) string {
	if spec.Dominant == nil {
		return "🕵️ No cycle inside the period band.\n"
	}
	return fmt.Sprintf("🕵️ Dominant cycle: <b>%.1f days</b> (amplitude %.2f)\n", spec.Dominant.PeriodDays, spec.Dominant.Amplitude)
}

func simulationSummary(e *model.Ensemble) string {
	var b strings.Builder
	last := e.Horizon - 1
	b.WriteString(fmt.Sprintf("🎲 <b>Simulation</b>: %d paths, %d days\n", e.PathCount(), e.Horizon))
	b.WriteString(fmt.Sprintf("  Start: %.2f\n", e.StartPrice))
	if last >= 0 && last < len(e.P50) {
		b.WriteString(fmt.Sprintf("  P5 / P50 / P95: %.2f / %.2f / %.2f\n", e.P5[last], e.P50[last], e.P95[last]))
		b.WriteString(fmt.Sprintf("  Mean: %.2f\n", e.Mean[last]))
	}
	b.WriteString(fmt.Sprintf("  P(above start): %.0f%%\n", e.ProbabilityAbove(e.StartPrice)*100))
	b.WriteString(fmt.Sprintf("  Daily drift %+.4f%%, volatility %.4f%%\n", e.Drift*100, e.Volatility*100))
	return b.String()
}

func rsiZone(v null.Float) string {
	switch {
	case !v.Valid:
		return ""
	case v.Float64 >= model.RSIOverbought:
		return "🔥 overbought"
	case v.Float64 <= model.RSIOversold:
		return "🧊 oversold"
	default:
		return ""
	}
}

func crossoverLabel(d model.CrossoverDirection) string {
	if d == model.CrossGolden {
		return "🟢 BUY "
	}
	return "🔴 SELL"
}

func moveEmoji(pct float64) string {
	switch {
	case pct > 0:
		return "🔺"
	case pct < 0:
		return "🔻"
	default:
		return "▫️"
	}
}

func fmtNull(v null.Float, format string) string {
	if !v.Valid {
		return "N/A"
	}
	return fmt.Sprintf(format, v.Float64)
}

// fmtFund formats a numeric fundamental scaled by scale, N/A when missing or not a number.
func fmtFund(v any, format string, scale float64) string {
	switch n := v.(type) {
	case float64:
		return fmt.Sprintf(format, n*scale)
	case int64:
		return fmt.Sprintf(format, float64(n)*scale)
	default:
		return "N/A"
	}
}
