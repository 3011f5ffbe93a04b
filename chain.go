package mechanics

import (
	"sort"

	"github.com/crux1s/mechanics/date"
)

// ChainLeg is one option row inside a roll chain. Companion marks a long
// leg opened alongside the chain's short position, the protective or
// structural side of a spread. Companion legs ride the chain they accompany
// instead of starting chains of their own.
type ChainLeg struct {
	Date      date.Date
	Symbol    string
	Action    Action
	Quantity  Quantity
	Cash      Money
	Strike    Money
	Expiry    date.Date
	Companion bool
}

// Chain is a sequence of option positions on one underlying and right that
// the trader kept alive by rolling: each re-open came within the roll gap of
// the previous flat.
type Chain struct {
	Underlying string
	Right      Right
	Legs       []ChainLeg
	Open       bool
}

// OpenDate returns the date of the chain's first leg.
func (c Chain) OpenDate() date.Date {
	if len(c.Legs) == 0 {
		return date.Date{}
	}
	return c.Legs[0].Date
}

// CloseDate returns the date of the chain's last leg, zero while open.
func (c Chain) CloseDate() date.Date {
	if c.Open || len(c.Legs) == 0 {
		return date.Date{}
	}
	return c.Legs[len(c.Legs)-1].Date
}

// NetCredit returns the chain's total cash flow across all legs.
func (c Chain) NetCredit() Money {
	var total Money
	for _, l := range c.Legs {
		total = total.Add(l.Cash)
	}
	return total
}

// Rolls counts the times the chain re-opened after going flat.
func (c Chain) Rolls() int {
	rolls := 0
	for i := 1; i < len(c.Legs); i++ {
		if c.Legs[i].Quantity.IsNegative() && c.Legs[i-1].Quantity.IsPositive() {
			rolls++
		}
	}
	return rolls
}

// chainBuilder accumulates one in-flight chain, tracking the per-symbol net
// contract position so spreads don't read as flat.
type chainBuilder struct {
	chain    Chain
	pos      map[string]Quantity
	flatOn   date.Date
	hasShort bool
}

func (b *chainBuilder) flat(eps Quantity) bool {
	for _, q := range b.pos {
		if !q.WithinOf(eps) {
			return false
		}
	}
	return true
}

func (b *chainBuilder) add(r TransactionRecord, companion bool, eps Quantity) {
	b.chain.Legs = append(b.chain.Legs, ChainLeg{
		Date:      r.Date,
		Symbol:    r.Symbol,
		Action:    r.Action,
		Quantity:  r.Quantity,
		Cash:      r.Value,
		Strike:    r.Strike,
		Expiry:    r.Expiry,
		Companion: companion,
	})
	b.pos[r.Symbol] = b.pos[r.Symbol].Add(r.Quantity)
	if b.pos[r.Symbol].WithinOf(eps) {
		delete(b.pos, r.Symbol)
	}
	if r.IsShortOpen() {
		b.hasShort = true
	}
	if b.flat(eps) {
		b.flatOn = r.Date
	}
}

// BuildChains groups one ticker's option rows into roll chains, one pass per
// right. A chain continues across a flat when the next opening comes within
// cfg.RollChainGapDays of it; a longer pause starts a new chain.
func BuildChains(underlying string, records []TransactionRecord, cfg Config) []Chain {
	eps := cfg.Eps()
	var chains []Chain

	for _, right := range []Right{Put, Call} {
		var cur *chainBuilder
		finish := func() {
			if cur == nil {
				return
			}
			cur.chain.Open = !cur.flat(eps)
			chains = append(chains, cur.chain)
			cur = nil
		}
		for _, r := range records {
			if !r.IsOption() || r.Right != right {
				continue
			}
			if r.IsOpening() {
				if cur != nil && cur.flat(eps) && r.Date.Sub(cur.flatOn) > cfg.RollChainGapDays {
					finish()
				}
				if cur == nil {
					cur = &chainBuilder{
						chain: Chain{Underlying: underlying, Right: right},
						pos:   map[string]Quantity{},
					}
				}
				// A long opened next to an existing short position is the
				// structural side of a spread, not a chain of its own.
				companion := r.IsLongOpen() && cur.hasShort && !cur.flat(eps)
				cur.add(r, companion, eps)
				continue
			}
			if r.IsClosing() && cur != nil {
				cur.add(r, false, eps)
			}
		}
		finish()
	}

	sort.SliceStable(chains, func(i, j int) bool {
		return chains[i].OpenDate().Before(chains[j].OpenDate())
	})
	return chains
}
