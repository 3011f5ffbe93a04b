package mechanics

import (
	"sort"

	"github.com/crux1s/mechanics/date"
)

// WindowMetrics is the realized result of one date window. The window is
// half-open, start <= d < end, everywhere: a row dated exactly on the end day
// belongs to the next window.
type WindowMetrics struct {
	Window date.Range

	OptionsFlow    Money // net option cash in the window
	EquityRealized Money // FIFO share gains realized in the window
	Income         Money // dividends and interest
	Total          Money

	TradesClosed int
	Wins         int
	WinRate             float64
	MedianCapturePct    float64 // short-premium trades only
	ProfitFactor        float64
	MedianPremiumPerDay Money
}

// DailyPnL is one day's realized result.
type DailyPnL struct {
	Date     date.Date
	Realized Money
}

// ComputeWindowMetrics aggregates realized P&L over a window. Equity gains
// come from replaying each ticker's full history through the FIFO engine and
// keeping only the events the window contains, so a window never re-prices
// lots it didn't close. Tickers with integrity problems are skipped and
// reported, not fatal.
func ComputeWindowMetrics(records []TransactionRecord, trades []ClosedTrade, win date.Range, cfg Config) (WindowMetrics, []Problem) {
	m := WindowMetrics{Window: win}
	var problems []Problem

	for _, r := range records {
		if !win.Contains(r.Date) {
			continue
		}
		switch {
		case r.IsOption():
			m.OptionsFlow = m.OptionsFlow.Add(r.Value)
		case r.IsIncome():
			m.Income = m.Income.Add(r.Value)
		}
	}

	for _, underlying := range underlyings(records) {
		rows := filterUnderlying(records, underlying)
		for ev, err := range FIFORealized(underlying, rows, cfg) {
			if err != nil {
				problems = append(problems, Problem{Underlying: underlying, Err: err})
				break
			}
			if win.Contains(ev.Date) {
				m.EquityRealized = m.EquityRealized.Add(ev.Gain())
			}
		}
	}
	m.Total = m.OptionsFlow.Add(m.EquityRealized).Add(m.Income)

	scoreTrades(&m, trades, cfg)
	return m, problems
}

// scoreTrades fills the trade scorecard from trades closed inside the
// window. LEAPS rides are not short premium and stay out of the capture and
// premium-per-day medians.
func scoreTrades(m *WindowMetrics, trades []ClosedTrade, cfg Config) {
	var grossWin, grossLoss Money
	var captures []float64
	var perDay []Money
	for _, t := range trades {
		if !m.Window.Contains(t.CloseDate) {
			continue
		}
		m.TradesClosed++
		if t.Won {
			m.Wins++
			grossWin = grossWin.Add(t.NetPnL)
		} else {
			grossLoss = grossLoss.Add(t.NetPnL)
		}
		if t.Credit && t.DTEOpen <= cfg.LEAPSDTEThreshold {
			captures = append(captures, t.CapturePct)
			perDay = append(perDay, t.PremiumPerDay)
		}
	}
	if m.TradesClosed > 0 {
		m.WinRate = float64(m.Wins) / float64(m.TradesClosed) * 100
	}
	m.MedianCapturePct = medianFloat(captures)
	m.MedianPremiumPerDay = medianMoney(perDay)
	if grossLoss.IsNegative() {
		m.ProfitFactor = grossWin.Ratio(grossLoss.Neg())
	} else if grossWin.IsPositive() {
		m.ProfitFactor = float64(m.Wins) // no losses: bounded stand-in
	}
}

// DailyRealized builds the per-day realized P&L series inside a window:
// option cash, FIFO share gains, dividends and interest. Share purchases are
// capital movement, not realized P&L, and never appear.
func DailyRealized(records []TransactionRecord, win date.Range, cfg Config) ([]DailyPnL, []Problem) {
	byDay := map[date.Date]Money{}
	var problems []Problem

	for _, r := range records {
		if !win.Contains(r.Date) {
			continue
		}
		if r.IsOption() || r.IsIncome() {
			byDay[r.Date] = byDay[r.Date].Add(r.Value)
		}
	}
	for _, underlying := range underlyings(records) {
		rows := filterUnderlying(records, underlying)
		for ev, err := range FIFORealized(underlying, rows, cfg) {
			if err != nil {
				problems = append(problems, Problem{Underlying: underlying, Err: err})
				break
			}
			if win.Contains(ev.Date) {
				byDay[ev.Date] = byDay[ev.Date].Add(ev.Gain())
			}
		}
	}

	series := make([]DailyPnL, 0, len(byDay))
	for d, v := range byDay {
		series = append(series, DailyPnL{Date: d, Realized: v})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series, problems
}

// underlyings returns the distinct underlyings in first-seen order.
func underlyings(records []TransactionRecord) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range records {
		if r.Underlying == "" || seen[r.Underlying] {
			continue
		}
		seen[r.Underlying] = true
		out = append(out, r.Underlying)
	}
	return out
}

func filterUnderlying(records []TransactionRecord, underlying string) []TransactionRecord {
	var out []TransactionRecord
	for _, r := range records {
		if r.Underlying == underlying {
			out = append(out, r)
		}
	}
	return out
}

func medianFloat(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

func medianMoney(xs []Money) Money {
	if len(xs) == 0 {
		return Money{}
	}
	s := append([]Money(nil), xs...)
	sort.Slice(s, func(i, j int) bool { return s[i].LessThan(s[j]) })
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return s[n/2-1].Add(s[n/2]).Div(Q(2))
}
