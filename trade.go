package mechanics

import (
	"fmt"
	"sort"

	"github.com/crux1s/mechanics/date"
	"github.com/google/uuid"
)

// CloseKind says how a trade ended.
type CloseKind string

const (
	CloseExpired   CloseKind = "expired"
	CloseAssigned  CloseKind = "assigned"
	CloseExercised CloseKind = "exercised"
	CloseTraded    CloseKind = "closed"
)

// TradeLeg is one option row inside a closed trade.
type TradeLeg struct {
	Date     date.Date
	Symbol   string
	Action   Action
	Right    Right
	Quantity Quantity
	Cash     Money
	Strike   Money
	Expiry   date.Date
	Opening  bool
}

// ClosedTrade is a fully-flat group of option legs: every order of the
// structure plus every roll stitched onto it, scored as one unit.
type ClosedTrade struct {
	ID          string
	Underlying  string
	Strategy    Strategy
	DefinedRisk bool

	OpenDate  date.Date
	CloseDate date.Date
	DaysHeld  int
	DTEOpen   int

	OpeningCredit Money
	NetPnL        Money
	CapitalRisk   Money
	CapturePct    float64 // realized share of the opening credit, credit trades only
	AnnualizedPct float64 // return on capital risk, annualized and capped
	PremiumPerDay Money

	CloseKind CloseKind
	Won       bool
	Credit    bool
	Legs      []TradeLeg
}

// tradeNamespace scopes the deterministic trade IDs. Same statement in,
// same IDs out.
var tradeNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// BuildClosedTrades groups one ticker's option rows into trades. Legs that
// share an order ID are one trade; a close that leaves a right flat followed
// by an open on the same right within cfg.RollChainGapDays is stitched into
// the same trade. Only groups whose every symbol nets to flat are scored;
// anything still open is left for the open-position view.
func BuildClosedTrades(underlying string, records []TransactionRecord, campaigns []Campaign, cfg Config) []ClosedTrade {
	eps := cfg.Eps()

	var legs []TransactionRecord
	for _, r := range records {
		if r.IsOption() {
			legs = append(legs, r)
		}
	}
	if len(legs) == 0 {
		return nil
	}

	// Every row of one option symbol is one position; the union-find runs
	// over symbols, so closes without an order ID stay with their opens.
	symIdx := map[string]int{}
	var symbols []string
	for _, l := range legs {
		if _, ok := symIdx[l.Symbol]; !ok {
			symIdx[l.Symbol] = len(symbols)
			symbols = append(symbols, l.Symbol)
		}
	}
	uf := newUnionFind(len(symbols))

	// Same order, same trade.
	byOrder := map[string]int{}
	for _, l := range legs {
		if l.OrderID == "" {
			continue
		}
		if first, ok := byOrder[l.OrderID]; ok {
			uf.union(first, symIdx[l.Symbol])
		} else {
			byOrder[l.OrderID] = symIdx[l.Symbol]
		}
	}

	// Roll stitching: a close that flattens a right, then an open on that
	// right within the gap, is the same position kept alive.
	type flatMark struct {
		on  date.Date
		sym int
		ok  bool
	}
	net := map[Right]Quantity{}
	lastFlat := map[Right]flatMark{}
	for _, l := range legs {
		if l.IsOpening() {
			if mark := lastFlat[l.Right]; mark.ok && l.Date.Sub(mark.on) <= cfg.RollChainGapDays {
				uf.union(mark.sym, symIdx[l.Symbol])
			}
			lastFlat[l.Right] = flatMark{}
		}
		net[l.Right] = net[l.Right].Add(l.Quantity)
		if l.IsClosing() && net[l.Right].WithinOf(eps) {
			lastFlat[l.Right] = flatMark{on: l.Date, sym: symIdx[l.Symbol], ok: true}
		}
	}

	// Groups come out of a map; order them by first symbol so runs over the
	// same statement are identical.
	var sets [][]int
	for _, members := range uf.groups() {
		sets = append(sets, members)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i][0] < sets[j][0] })

	var trades []ClosedTrade
	for _, symSet := range sets {
		inSet := map[string]bool{}
		for _, s := range symSet {
			inSet[symbols[s]] = true
		}
		var members []int
		for i, l := range legs {
			if inSet[l.Symbol] {
				members = append(members, i)
			}
		}
		if trade, ok := scoreGroup(underlying, legs, members, campaigns, cfg); ok {
			trades = append(trades, trade)
		}
	}
	sort.SliceStable(trades, func(i, j int) bool {
		if !trades[i].CloseDate.Equal(trades[j].CloseDate) {
			return trades[i].CloseDate.Before(trades[j].CloseDate)
		}
		return trades[i].OpenDate.Before(trades[j].OpenDate)
	})
	return trades
}

func scoreGroup(underlying string, legs []TransactionRecord, members []int, campaigns []Campaign, cfg Config) (ClosedTrade, bool) {
	eps := cfg.Eps()

	perSymbol := map[string]Quantity{}
	for _, i := range members {
		perSymbol[legs[i].Symbol] = perSymbol[legs[i].Symbol].Add(legs[i].Quantity)
	}
	for _, q := range perSymbol {
		if !q.WithinOf(eps) {
			return ClosedTrade{}, false
		}
	}

	t := ClosedTrade{Underlying: underlying, CloseKind: CloseTraded}
	var openDates []date.Date

	for _, i := range members {
		l := legs[i]
		opening := l.IsOpening()
		t.Legs = append(t.Legs, TradeLeg{
			Date: l.Date, Symbol: l.Symbol, Action: l.Action, Right: l.Right,
			Quantity: l.Quantity, Cash: l.Value, Strike: l.Strike, Expiry: l.Expiry,
			Opening: opening,
		})
		t.NetPnL = t.NetPnL.Add(l.Value)
		if opening {
			t.OpeningCredit = t.OpeningCredit.Add(l.Value)
			openDates = append(openDates, l.Date)
		} else {
			if t.CloseDate.IsZero() || l.Date.After(t.CloseDate) {
				t.CloseDate = l.Date
			}
			switch l.Action {
			case Assignment:
				t.CloseKind = CloseAssigned
			case Exercise:
				if t.CloseKind != CloseAssigned {
					t.CloseKind = CloseExercised
				}
			case Expiration:
				if t.CloseKind == CloseTraded {
					t.CloseKind = CloseExpired
				}
			}
		}
	}
	if len(openDates) == 0 || t.CloseDate.IsZero() {
		return ClosedTrade{}, false
	}

	first, last := openDates[0], openDates[0]
	for _, d := range openDates[1:] {
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	if cfg.OpenDatePolicy == OpenDateLatest {
		t.OpenDate = last
	} else {
		t.OpenDate = first
	}

	t.DaysHeld = t.CloseDate.Sub(t.OpenDate)
	if t.DaysHeld < 1 {
		t.DaysHeld = 1
	}

	// A rolled position keeps the character it opened with, so the
	// structure is read off the initial legs only.
	sigBySymbol := map[string]*LegSig{}
	var sigOrder []string
	for _, leg := range t.Legs {
		if !leg.Opening || !leg.Date.Equal(first) {
			continue
		}
		s, ok := sigBySymbol[leg.Symbol]
		if !ok {
			s = &LegSig{Right: leg.Right, Short: leg.Quantity.IsNegative(), Strike: leg.Strike, Expiry: leg.Expiry}
			sigBySymbol[leg.Symbol] = s
			sigOrder = append(sigOrder, leg.Symbol)
		}
		s.Qty = s.Qty.Add(leg.Quantity.Abs())
	}
	var sigs []LegSig
	for _, sym := range sigOrder {
		sigs = append(sigs, *sigBySymbol[sym])
	}
	covered := false
	for _, c := range campaigns {
		if c.Covers(t.OpenDate) || c.Covers(t.CloseDate) {
			covered = true
			break
		}
	}
	cl := Classify(sigs, t.OpeningCredit, covered, underlying, cfg)
	t.Strategy = cl.Strategy
	t.DefinedRisk = cl.DefinedRisk
	t.CapitalRisk = cl.CapitalRisk

	// DTE at open, from the earliest short opening leg.
	for _, sym := range sigOrder {
		s := sigBySymbol[sym]
		if s.Short {
			t.DTEOpen = s.Expiry.Sub(t.OpenDate)
			break
		}
	}

	t.Credit = t.OpeningCredit.IsPositive()
	t.Won = t.NetPnL.IsPositive()
	if t.Credit {
		t.CapturePct = t.NetPnL.Ratio(t.OpeningCredit) * 100
	}
	t.PremiumPerDay = t.NetPnL.Div(Q(t.DaysHeld))
	ann := t.NetPnL.Ratio(t.CapitalRisk) * 365 / float64(t.DaysHeld) * 100
	if ann > cfg.AnnReturnCap {
		ann = cfg.AnnReturnCap
	}
	if ann < -cfg.AnnReturnCap {
		ann = -cfg.AnnReturnCap
	}
	t.AnnualizedPct = ann

	t.ID = uuid.NewSHA1(tradeNamespace, fmt.Appendf(nil, "%s|%s|%s|%s", underlying, t.OpenDate, t.CloseDate, t.NetPnL)).String()
	return t, true
}
