package mechanics

import (
	"testing"

	"github.com/crux1s/mechanics/date"
)

func tradeRow(day, symbol, order string, right Right, disp Disposition, qty, value, strike float64, expiry string) TransactionRecord {
	action := Sell
	if qty > 0 {
		action = Buy
	}
	if disp == Close && value == 0 && qty > 0 {
		action = Expiration
	}
	return TransactionRecord{
		Date:        date.MustParse(day),
		Underlying:  "ABC",
		Symbol:      symbol,
		Instrument:  EquityOption,
		Action:      action,
		Disposition: disp,
		Quantity:    Q(qty),
		Value:       M(value),
		Strike:      M(strike),
		Expiry:      date.MustParse(expiry),
		Right:       right,
		OrderID:     order,
	}
}

func TestBuildClosedTradesExpiredShortPut(t *testing.T) {
	rows := []TransactionRecord{
		tradeRow("2025-01-10", "P50", "1", Put, Open, -1, 150, 50, "2025-02-21"),
		tradeRow("2025-02-21", "P50", "", Put, Close, 1, 0, 50, "2025-02-21"),
	}
	trades := BuildClosedTrades("ABC", rows, nil, DefaultConfig())
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	tr := trades[0]
	if tr.Strategy != ShortPut {
		t.Errorf("strategy = %s, want Short Put", tr.Strategy)
	}
	if tr.CloseKind != CloseExpired {
		t.Errorf("close kind = %s, want expired", tr.CloseKind)
	}
	if !tr.NetPnL.Equal(M(150)) || !tr.Won {
		t.Errorf("pnl = %s won %v, want $150 won", tr.NetPnL, tr.Won)
	}
	if tr.DaysHeld != 42 {
		t.Errorf("days held = %d, want 42", tr.DaysHeld)
	}
	if tr.DTEOpen != 42 {
		t.Errorf("dte at open = %d, want 42", tr.DTEOpen)
	}
	if tr.CapturePct != 100 {
		t.Errorf("capture = %.1f%%, want 100%%", tr.CapturePct)
	}
	if tr.ID == "" {
		t.Error("trade has no id")
	}
}

func TestBuildClosedTradesSpreadByOrder(t *testing.T) {
	rows := []TransactionRecord{
		tradeRow("2025-01-10", "C55", "2", Call, Open, -1, 200, 55, "2025-03-21"),
		tradeRow("2025-01-10", "C60", "2", Call, Open, 1, -80, 60, "2025-03-21"),
		tradeRow("2025-02-10", "C55", "3", Call, Close, 1, -50, 55, "2025-03-21"),
		tradeRow("2025-02-10", "C60", "3", Call, Close, -1, 20, 60, "2025-03-21"),
	}
	trades := BuildClosedTrades("ABC", rows, nil, DefaultConfig())
	if len(trades) != 1 {
		t.Fatalf("order sharing did not merge the legs: got %d trades", len(trades))
	}
	tr := trades[0]
	if tr.Strategy != CallCreditSpread {
		t.Errorf("strategy = %s, want Call Credit Spread", tr.Strategy)
	}
	if !tr.DefinedRisk {
		t.Error("credit spread is defined risk")
	}
	if !tr.OpeningCredit.Equal(M(120)) {
		t.Errorf("opening credit = %s, want $120", tr.OpeningCredit)
	}
	if !tr.NetPnL.Equal(M(90)) {
		t.Errorf("net pnl = %s, want $90", tr.NetPnL)
	}
	// width 5 * 100 - 120 credit
	if !tr.CapitalRisk.Equal(M(380)) {
		t.Errorf("capital risk = %s, want $380", tr.CapitalRisk)
	}
}

func TestBuildClosedTradesRollStitching(t *testing.T) {
	rows := []TransactionRecord{
		tradeRow("2025-01-10", "P1", "A", Put, Open, -1, 150, 50, "2025-02-21"),
		tradeRow("2025-01-30", "P1", "B", Put, Close, 1, -40, 50, "2025-02-21"),
		tradeRow("2025-01-30", "P2", "C", Put, Open, -1, 110, 48, "2025-03-21"),
		tradeRow("2025-02-20", "P2", "D", Put, Close, 1, -20, 48, "2025-03-21"),
	}

	trades := BuildClosedTrades("ABC", rows, nil, DefaultConfig())
	if len(trades) != 1 {
		t.Fatalf("roll was not stitched: got %d trades", len(trades))
	}
	tr := trades[0]
	if tr.Strategy != ShortPut {
		t.Errorf("rolled short put classified as %s", tr.Strategy)
	}
	if !tr.NetPnL.Equal(M(200)) {
		t.Errorf("net pnl = %s, want $200", tr.NetPnL)
	}
	if tr.OpenDate != date.MustParse("2025-01-10") {
		t.Errorf("open date = %s, want the earliest leg under the default policy", tr.OpenDate)
	}

	cfg := DefaultConfig()
	cfg.OpenDatePolicy = OpenDateLatest
	trades = BuildClosedTrades("ABC", rows, nil, cfg)
	if trades[0].OpenDate != date.MustParse("2025-01-30") {
		t.Errorf("open date = %s, want the final roll under the latest policy", trades[0].OpenDate)
	}
}

func TestBuildClosedTradesGapTooWide(t *testing.T) {
	rows := []TransactionRecord{
		tradeRow("2025-01-10", "P1", "A", Put, Open, -1, 150, 50, "2025-02-21"),
		tradeRow("2025-01-30", "P1", "B", Put, Close, 1, -40, 50, "2025-02-21"),
		tradeRow("2025-02-10", "P2", "C", Put, Open, -1, 110, 48, "2025-03-21"), // 11 days later
		tradeRow("2025-02-20", "P2", "D", Put, Close, 1, -20, 48, "2025-03-21"),
	}
	trades := BuildClosedTrades("ABC", rows, nil, DefaultConfig())
	if len(trades) != 2 {
		t.Fatalf("distinct positions merged across the gap: got %d trades", len(trades))
	}
}

func TestBuildClosedTradesSkipsOpenGroups(t *testing.T) {
	rows := []TransactionRecord{
		tradeRow("2025-01-10", "P1", "A", Put, Open, -1, 150, 50, "2025-02-21"),
	}
	if trades := BuildClosedTrades("ABC", rows, nil, DefaultConfig()); len(trades) != 0 {
		t.Fatalf("open position scored as closed: %v", trades)
	}
}

func TestBuildClosedTradesAssignedKind(t *testing.T) {
	rows := []TransactionRecord{
		tradeRow("2025-01-10", "P50", "1", Put, Open, -1, 150, 50, "2025-02-21"),
		{
			Date:        date.MustParse("2025-02-21"),
			Underlying:  "ABC",
			Symbol:      "P50",
			Instrument:  EquityOption,
			Action:      Assignment,
			Disposition: Close,
			Quantity:    Q(1),
			Value:       M(0),
			Strike:      M(50),
			Expiry:      date.MustParse("2025-02-21"),
			Right:       Put,
		},
	}
	trades := BuildClosedTrades("ABC", rows, nil, DefaultConfig())
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	if trades[0].CloseKind != CloseAssigned {
		t.Errorf("close kind = %s, want assigned", trades[0].CloseKind)
	}
}

func TestBuildClosedTradesCoveredDetection(t *testing.T) {
	campaigns := []Campaign{{
		Underlying: "ABC",
		Entry:      date.MustParse("2025-01-01"),
		// open campaign: unbounded span
	}}
	rows := []TransactionRecord{
		tradeRow("2025-01-10", "C55", "1", Call, Open, -1, 120, 55, "2025-02-21"),
		tradeRow("2025-02-21", "C55", "", Call, Close, 1, 0, 55, "2025-02-21"),
	}
	trades := BuildClosedTrades("ABC", rows, campaigns, DefaultConfig())
	if trades[0].Strategy != CoveredCall {
		t.Errorf("strategy = %s, want Covered Call while shares are held", trades[0].Strategy)
	}
}

func TestBuildClosedTradesDeterministicIDs(t *testing.T) {
	rows := []TransactionRecord{
		tradeRow("2025-01-10", "P50", "1", Put, Open, -1, 150, 50, "2025-02-21"),
		tradeRow("2025-02-21", "P50", "", Put, Close, 1, 0, 50, "2025-02-21"),
	}
	a := BuildClosedTrades("ABC", rows, nil, DefaultConfig())
	b := BuildClosedTrades("ABC", rows, nil, DefaultConfig())
	if a[0].ID != b[0].ID {
		t.Error("same statement must produce the same trade ids")
	}
}
