package mechanics

import (
	"testing"

	"github.com/crux1s/mechanics/date"
)

func TestWindowExclusiveEnd(t *testing.T) {
	rows := []TransactionRecord{
		optRow("2025-01-10", "P1", Put, Open, -1, 100), // on start: inside
		optRow("2025-01-15", "P2", Put, Open, -1, 50),
		optRow("2025-01-20", "P3", Put, Open, -1, 999), // on end: outside
	}
	win := date.Range{From: date.MustParse("2025-01-10"), To: date.MustParse("2025-01-20")}

	m, problems := ComputeWindowMetrics(rows, nil, win, DefaultConfig())
	if len(problems) != 0 {
		t.Fatalf("unexpected problems: %v", problems)
	}
	if !m.OptionsFlow.Equal(M(150)) {
		t.Errorf("options flow = %s, want $150 (end-day row excluded)", m.OptionsFlow)
	}
}

func TestWindowEquityFromFullHistory(t *testing.T) {
	// The buy happened before the window, the sell inside it. The realized
	// gain must still price against the pre-window lot.
	rows := []TransactionRecord{
		shareRow("2024-11-01", 100, -5000),
		shareRow("2025-01-15", -100, 6000),
	}
	win := date.Range{From: date.MustParse("2025-01-01"), To: date.MustParse("2025-02-01")}

	m, _ := ComputeWindowMetrics(rows, nil, win, DefaultConfig())
	if !m.EquityRealized.Equal(M(1000)) {
		t.Errorf("equity realized = %s, want $1,000", m.EquityRealized)
	}

	// Nothing realized in a window before the sell.
	early := date.Range{From: date.MustParse("2024-11-01"), To: date.MustParse("2025-01-01")}
	m, _ = ComputeWindowMetrics(rows, nil, early, DefaultConfig())
	if !m.EquityRealized.IsZero() {
		t.Errorf("early window realized %s, want nothing", m.EquityRealized)
	}
}

// Adjacent windows must partition the realized total with nothing counted
// twice or dropped.
func TestWindowPartition(t *testing.T) {
	rows := []TransactionRecord{
		shareRow("2025-01-05", 100, -5000),
		optRow("2025-01-08", "C1", Call, Open, -1, 120),
		shareRow("2025-01-10", -100, 5500), // boundary day
		divRow("2025-01-20", 30),
	}
	cfg := DefaultConfig()
	first := date.Range{From: date.MustParse("2025-01-01"), To: date.MustParse("2025-01-10")}
	second := date.Range{From: date.MustParse("2025-01-10"), To: date.MustParse("2025-02-01")}
	whole := date.Range{From: date.MustParse("2025-01-01"), To: date.MustParse("2025-02-01")}

	a, _ := ComputeWindowMetrics(rows, nil, first, cfg)
	b, _ := ComputeWindowMetrics(rows, nil, second, cfg)
	w, _ := ComputeWindowMetrics(rows, nil, whole, cfg)

	if !a.Total.Add(b.Total).Equal(w.Total) {
		t.Errorf("windows do not partition: %s + %s != %s", a.Total, b.Total, w.Total)
	}
	// The boundary-day sale belongs to the second window only.
	if !a.EquityRealized.IsZero() {
		t.Errorf("first window took the boundary sale: %s", a.EquityRealized)
	}
	if !b.EquityRealized.Equal(M(500)) {
		t.Errorf("second window equity = %s, want $500", b.EquityRealized)
	}
}

func TestWindowScorecardLEAPSExcluded(t *testing.T) {
	trades := []ClosedTrade{
		{
			CloseDate: date.MustParse("2025-01-15"), NetPnL: M(100), Won: true,
			Credit: true, DTEOpen: 30, CapturePct: 80, PremiumPerDay: M(5),
		},
		{
			CloseDate: date.MustParse("2025-01-16"), NetPnL: M(400), Won: true,
			Credit: true, DTEOpen: 200, CapturePct: 20, PremiumPerDay: M(2), // LEAPS
		},
	}
	win := date.Range{From: date.MustParse("2025-01-01"), To: date.MustParse("2025-02-01")}
	m, _ := ComputeWindowMetrics(nil, trades, win, DefaultConfig())

	if m.TradesClosed != 2 || m.Wins != 2 {
		t.Errorf("closed/wins = %d/%d, want 2/2 (LEAPS still count as trades)", m.TradesClosed, m.Wins)
	}
	if m.MedianCapturePct != 80 {
		t.Errorf("median capture = %.1f, want 80 (LEAPS excluded)", m.MedianCapturePct)
	}
	if !m.MedianPremiumPerDay.Equal(M(5)) {
		t.Errorf("median premium/day = %s, want $5", m.MedianPremiumPerDay)
	}
}

func TestWindowScorecardProfitFactor(t *testing.T) {
	trades := []ClosedTrade{
		{CloseDate: date.MustParse("2025-01-15"), NetPnL: M(300), Won: true},
		{CloseDate: date.MustParse("2025-01-16"), NetPnL: M(-100)},
	}
	win := date.Range{From: date.MustParse("2025-01-01"), To: date.MustParse("2025-02-01")}
	m, _ := ComputeWindowMetrics(nil, trades, win, DefaultConfig())

	if m.ProfitFactor != 3 {
		t.Errorf("profit factor = %.2f, want 3", m.ProfitFactor)
	}
	if m.WinRate != 50 {
		t.Errorf("win rate = %.1f, want 50", m.WinRate)
	}
}

func TestDailyRealizedExcludesPurchases(t *testing.T) {
	rows := []TransactionRecord{
		shareRow("2025-01-05", 100, -5000), // capital out, not a loss
		optRow("2025-01-05", "P1", Put, Open, -1, 150),
		shareRow("2025-01-20", -100, 5500),
		divRow("2025-01-20", 30),
	}
	win := date.Range{From: date.MustParse("2025-01-01"), To: date.MustParse("2025-02-01")}
	series, problems := DailyRealized(rows, win, DefaultConfig())
	if len(problems) != 0 {
		t.Fatalf("unexpected problems: %v", problems)
	}
	if len(series) != 2 {
		t.Fatalf("got %d days, want 2", len(series))
	}
	if !series[0].Realized.Equal(M(150)) {
		t.Errorf("day one = %s, want $150 premium only", series[0].Realized)
	}
	if !series[1].Realized.Equal(M(530)) {
		t.Errorf("day two = %s, want $500 gain + $30 dividend", series[1].Realized)
	}
}
