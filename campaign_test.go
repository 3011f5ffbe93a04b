package mechanics

import (
	"strings"
	"testing"

	"github.com/crux1s/mechanics/date"
)

func optRow(day, symbol string, right Right, disp Disposition, qty, value float64) TransactionRecord {
	action := Sell
	if qty > 0 {
		action = Buy
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
		Right:       right,
		Strike:      M(50),
		Expiry:      date.MustParse(day).Add(30),
	}
}

func assignShares(day string, qty, value float64) TransactionRecord {
	return TransactionRecord{
		Date:       date.MustParse(day),
		Underlying: "ABC",
		Symbol:     "ABC",
		Instrument: Equity,
		Action:     Assignment,
		Quantity:   Q(qty),
		Value:      M(value),
	}
}

func divRow(day string, value float64) TransactionRecord {
	return TransactionRecord{
		Date:       date.MustParse(day),
		Underlying: "ABC",
		Action:     Dividend,
		Value:      M(value),
	}
}

// A full wheel cycle: short put, assignment, covered call, dividend,
// called away.
func wheelCycle() []TransactionRecord {
	return []TransactionRecord{
		optRow("2025-01-05", "ABC 250117P00050000", Put, Open, -1, 150),
		assignShares("2025-01-17", 100, -5000),
		optRow("2025-02-01", "ABC 250321C00055000", Call, Open, -1, 120),
		divRow("2025-02-10", 30),
		assignShares("2025-03-21", -100, 5500),
		optRow("2025-03-21", "ABC 250321C00055000", Call, Close, 1, 0),
	}
}

func TestBuildCampaignsWheelCycle(t *testing.T) {
	campaigns, err := BuildCampaigns("ABC", wheelCycle(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(campaigns) != 1 {
		t.Fatalf("got %d campaigns, want 1", len(campaigns))
	}
	c := campaigns[0]

	if c.IsOpen() {
		t.Error("campaign should be closed")
	}
	if c.Entry != date.MustParse("2025-01-17") || c.Exit != date.MustParse("2025-03-21") {
		t.Errorf("span = %s, want [2025-01-17, 2025-03-21)", c.Span())
	}
	// The put premium was earned before entry and stays standalone; the
	// option removal on the exit day falls outside the half-open span.
	if !c.Premiums.Equal(M(120)) {
		t.Errorf("premiums = %s, want $120", c.Premiums)
	}
	if !c.Dividends.Equal(M(30)) {
		t.Errorf("dividends = %s, want $30", c.Dividends)
	}
	if !c.RealizedShares.Equal(M(500)) {
		t.Errorf("realized share gain = %s, want $500", c.RealizedShares)
	}
	if !c.RealizedPnL().Equal(M(650)) {
		t.Errorf("realized pnl = %s, want $650", c.RealizedPnL())
	}

	var traced bool
	for _, ev := range c.Events {
		if ev.Kind == EventAssignment && strings.Contains(ev.Detail, "ABC 250117P00050000") {
			traced = true
			if !ev.Cash.IsZero() {
				t.Errorf("assignment trace carries cash %s, want zero", ev.Cash)
			}
		}
	}
	if !traced {
		t.Error("entry assignment not traced back to the short put")
	}
}

func TestBuildCampaignsLifetime(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Lifetime = true

	rows := wheelCycle()
	// A second cycle after the first flat.
	rows = append(rows,
		assignShares("2025-05-16", 100, -4500),
		optRow("2025-06-01", "ABC 250718C00050000", Call, Open, -1, 90),
	)

	campaigns, err := BuildCampaigns("ABC", rows, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(campaigns) != 1 {
		t.Fatalf("lifetime mode got %d campaigns, want 1", len(campaigns))
	}
	c := campaigns[0]
	if !c.IsOpen() {
		t.Error("lifetime campaign must stay open across flats")
	}
	// 120 + 0 (exit-day removal, now in span) + 90
	if !c.Premiums.Equal(M(210)) {
		t.Errorf("premiums = %s, want $210", c.Premiums)
	}
	if !c.Shares.Equal(Q(100)) {
		t.Errorf("shares = %s, want 100", c.Shares)
	}
	if !c.RealizedShares.Equal(M(500)) {
		t.Errorf("realized share gain carried over = %s, want $500", c.RealizedShares)
	}
}

func TestCampaignBlendedAndEffectiveBasis(t *testing.T) {
	rows := []TransactionRecord{
		shareRow("2025-01-10", 60, -3000), // below the wheel threshold
		shareRow("2025-01-20", 60, -3600), // crosses it: campaign takes all 120
		optRow("2025-02-01", "ABC 250321C00055000", Call, Open, -1, 60),
	}
	campaigns, err := BuildCampaigns("ABC", rows, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(campaigns) != 1 {
		t.Fatalf("got %d campaigns, want 1", len(campaigns))
	}
	c := campaigns[0]
	if c.Entry != date.MustParse("2025-01-20") {
		t.Errorf("entry = %s, want the threshold-crossing buy", c.Entry)
	}
	if !c.Shares.Equal(Q(120)) || !c.ShareCost.Equal(M(6600)) {
		t.Fatalf("position = %s shares costing %s, want 120 / $6,600", c.Shares, c.ShareCost)
	}
	if !c.BlendedBasis().Equal(M(55)) {
		t.Errorf("blended basis = %s, want $55", c.BlendedBasis())
	}
	if !c.EffectiveBasis().Equal(M(54.5)) {
		t.Errorf("effective basis = %s, want $54.50", c.EffectiveBasis())
	}
}

func TestCampaignSplit(t *testing.T) {
	rows := []TransactionRecord{
		shareRow("2025-01-10", 100, -5000),
		{
			Date:       date.MustParse("2025-02-01"),
			Underlying: "ABC",
			Action:     Split,
			Quantity:   Q(400),
		},
	}
	campaigns, err := BuildCampaigns("ABC", rows, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	c := campaigns[0]
	if !c.Shares.Equal(Q(400)) {
		t.Errorf("post-split shares = %s, want 400", c.Shares)
	}
	if !c.ShareCost.Equal(M(5000)) {
		t.Errorf("post-split cost = %s, want unchanged $5,000", c.ShareCost)
	}
	if !c.BlendedBasis().Equal(M(12.5)) {
		t.Errorf("post-split basis = %s, want $12.50", c.BlendedBasis())
	}
}

func TestCampaignOrphaned(t *testing.T) {
	rows := []TransactionRecord{
		shareRow("2025-01-10", 100, -5000),
		shareRow("2025-02-01", -150, 7500), // sells more than the ledger delivered
	}
	campaigns, err := BuildCampaigns("ABC", rows, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	c := campaigns[0]
	if !c.Orphaned {
		t.Error("campaign should be flagged orphaned")
	}
	if !c.IsOpen() {
		t.Error("orphaned campaign must stay open")
	}
}
