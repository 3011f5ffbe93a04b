package mechanics

import (
	"sort"

	"github.com/crux1s/mechanics/date"
)

// AlertLevel grades how close an open option is to expiry.
type AlertLevel string

const (
	AlertNone AlertLevel = ""
	AlertWarn AlertLevel = "warn"
	AlertCrit AlertLevel = "critical"
)

// OpenPosition is one option symbol with a nonzero net position.
type OpenPosition struct {
	Symbol   string
	Right    Right
	Quantity Quantity // signed net contracts
	Strike   Money
	Expiry   date.Date
	DTE      int
	Alert    AlertLevel
}

// OpenUnderlying groups a ticker's open option positions under the strategy
// they currently form.
type OpenUnderlying struct {
	Underlying string
	Strategy   Strategy
	Positions  []OpenPosition
}

// Analysis is the full result of one pass over a statement.
type Analysis struct {
	AsOf date.Date

	WheelTickers      []string
	PureOptionTickers []string
	Campaigns         map[string][]Campaign
	Chains            []Chain
	Trades            []ClosedTrade
	OpenPositions     []OpenUnderlying

	ClosedCampaignPnL  Money // banked by campaigns that came back to flat
	OpenCampaignBanked Money // realized so far inside still-open campaigns
	StandalonePnL      Money // option, income and share P&L outside any campaign
	CapitalDeployed    Money
	NetDeposited       Money

	Problems []Problem
}

// TotalRealized returns everything the account has banked.
func (a *Analysis) TotalRealized() Money {
	return a.ClosedCampaignPnL.Add(a.OpenCampaignBanked).Add(a.StandalonePnL)
}

// RealizedROR returns the realized return on net deposits, in percent.
func (a *Analysis) RealizedROR() float64 {
	if !a.NetDeposited.IsPositive() {
		return 0
	}
	return a.TotalRealized().Ratio(a.NetDeposited) * 100
}

// Compute runs the whole pipeline over a statement: campaigns for wheel
// tickers, chains and closed trades for every ticker with options, open
// positions with expiry alerts, and the account totals. A data problem on
// one ticker is recorded and skips that ticker only.
func Compute(records []TransactionRecord, asOf date.Date, cfg Config) *Analysis {
	SortRecords(records)

	a := &Analysis{
		AsOf:      asOf,
		Campaigns: map[string][]Campaign{},
	}
	minShares := Q(cfg.WheelMinShares)

	for _, r := range records {
		if r.Action == Deposit || r.Action == Withdrawal {
			a.NetDeposited = a.NetDeposited.Add(r.Value)
		}
	}

	for _, underlying := range underlyings(records) {
		rows := filterUnderlying(records, underlying)

		wheel := false
		hasOptions := false
		for _, r := range rows {
			if r.IsShare() && r.Quantity.GreaterThanOrEqual(minShares) {
				wheel = true
			}
			if r.IsOption() {
				hasOptions = true
			}
		}

		var campaigns []Campaign
		if wheel {
			var err error
			campaigns, err = BuildCampaigns(underlying, rows, cfg)
			if err != nil {
				a.Problems = append(a.Problems, Problem{Underlying: underlying, Err: err})
				continue
			}
			a.WheelTickers = append(a.WheelTickers, underlying)
			a.Campaigns[underlying] = campaigns
			for _, c := range campaigns {
				if c.IsOpen() {
					a.OpenCampaignBanked = a.OpenCampaignBanked.Add(c.RealizedPnL())
					a.CapitalDeployed = a.CapitalDeployed.Add(c.ShareCost)
					if c.Orphaned {
						a.Problems = append(a.Problems, Problem{Underlying: underlying,
							Err: &DataIntegrityError{Underlying: underlying, Date: c.Entry, Reason: "campaign shares could not be reconciled"}})
					}
				} else {
					a.ClosedCampaignPnL = a.ClosedCampaignPnL.Add(c.RealizedPnL())
				}
			}
			// Option and income cash no campaign span absorbed.
			for _, r := range rows {
				if !r.IsOption() && !r.IsIncome() {
					continue
				}
				if !anyCovers(campaigns, r.Date) {
					a.StandalonePnL = a.StandalonePnL.Add(r.Value)
				}
			}
		} else if hasOptions {
			a.PureOptionTickers = append(a.PureOptionTickers, underlying)
		}

		if !wheel {
			// Standalone tickers: option and income cash plus FIFO share
			// gains, with remaining long lots counted as deployed capital.
			book := NewLotBook(underlying, cfg)
			failed := false
			for _, r := range rows {
				if r.IsOption() || r.IsIncome() {
					a.StandalonePnL = a.StandalonePnL.Add(r.Value)
					continue
				}
				if err := book.Apply(r); err != nil {
					a.Problems = append(a.Problems, Problem{Underlying: underlying, Err: err})
					failed = true
					break
				}
			}
			if !failed {
				for _, ev := range book.Events() {
					a.StandalonePnL = a.StandalonePnL.Add(ev.Gain())
				}
				a.CapitalDeployed = a.CapitalDeployed.Add(book.RemainingCost())
			}
		}

		if hasOptions {
			a.Chains = append(a.Chains, BuildChains(underlying, rows, cfg)...)
			a.Trades = append(a.Trades, BuildClosedTrades(underlying, rows, campaigns, cfg)...)
			if open := openPositions(underlying, rows, campaigns, asOf, cfg); open != nil {
				a.OpenPositions = append(a.OpenPositions, *open)
			}
		}
	}

	sort.SliceStable(a.Trades, func(i, j int) bool {
		return a.Trades[i].CloseDate.Before(a.Trades[j].CloseDate)
	})
	return a
}

func anyCovers(campaigns []Campaign, d date.Date) bool {
	for _, c := range campaigns {
		if c.Covers(d) {
			return true
		}
	}
	return false
}

// openPositions nets a ticker's option rows per symbol and names the
// structure the survivors form.
func openPositions(underlying string, rows []TransactionRecord, campaigns []Campaign, asOf date.Date, cfg Config) *OpenUnderlying {
	eps := cfg.Eps()

	type acc struct {
		net    Quantity
		sample TransactionRecord
	}
	bySym := map[string]*acc{}
	var order []string
	for _, r := range rows {
		if !r.IsOption() {
			continue
		}
		s, ok := bySym[r.Symbol]
		if !ok {
			s = &acc{sample: r}
			bySym[r.Symbol] = s
			order = append(order, r.Symbol)
		}
		s.net = s.net.Add(r.Quantity)
	}

	out := &OpenUnderlying{Underlying: underlying}
	var sigs []LegSig
	var credit Money
	for _, sym := range order {
		s := bySym[sym]
		if s.net.WithinOf(eps) {
			continue
		}
		dte := s.sample.Expiry.Sub(asOf)
		alert := AlertNone
		switch {
		case dte <= cfg.DTEAlertCrit:
			alert = AlertCrit
		case dte <= cfg.DTEAlertWarn:
			alert = AlertWarn
		}
		out.Positions = append(out.Positions, OpenPosition{
			Symbol:   sym,
			Right:    s.sample.Right,
			Quantity: s.net,
			Strike:   s.sample.Strike,
			Expiry:   s.sample.Expiry,
			DTE:      dte,
			Alert:    alert,
		})
		sigs = append(sigs, LegSig{
			Right:  s.sample.Right,
			Short:  s.net.IsNegative(),
			Strike: s.sample.Strike,
			Expiry: s.sample.Expiry,
			Qty:    s.net.Abs(),
		})
		credit = credit.Add(s.sample.Value)
	}
	if len(out.Positions) == 0 {
		return nil
	}

	covered := false
	for _, c := range campaigns {
		if c.IsOpen() && c.Shares.IsPositive() {
			covered = true
		}
	}
	out.Strategy = Classify(sigs, credit, covered, underlying, cfg).Strategy
	return out
}
