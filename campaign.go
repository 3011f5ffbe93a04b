package mechanics

import (
	"fmt"

	"github.com/crux1s/mechanics/date"
)

// EventKind names an entry in a campaign's timeline.
type EventKind string

const (
	EventEntry      EventKind = "entry"
	EventBuy        EventKind = "buy"
	EventSell       EventKind = "sell"
	EventSplit      EventKind = "split"
	EventAssignment EventKind = "assignment"
	EventPremium    EventKind = "premium"
	EventDividend   EventKind = "dividend"
	EventExit       EventKind = "exit"
)

// CampaignEvent is one dated entry in a campaign's timeline.
type CampaignEvent struct {
	Date   date.Date
	Kind   EventKind
	Detail string
	Cash   Money
}

// Campaign is one wheel cycle on a single underlying: shares are acquired
// (often by put assignment), premium is collected against them, and the
// campaign closes when the position returns to flat.
type Campaign struct {
	Underlying string
	Entry      date.Date
	Exit       date.Date // zero while the campaign is open

	Shares         Quantity // current share position, zero once closed
	ShareCost      Money    // cost of the current position at blended basis
	RealizedShares Money    // share gains realized inside the campaign
	Premiums       Money    // net option cash absorbed by the campaign
	Dividends      Money

	Events   []CampaignEvent
	Orphaned bool // reconciliation gap: more shares left than ever arrived
	Lifetime bool
}

// IsOpen reports whether the campaign has not yet returned to flat.
func (c Campaign) IsOpen() bool { return c.Exit.IsZero() }

// Span returns the campaign's date range. The end is exclusive, so rows on
// the exit day belong to whatever comes after the campaign. Open campaigns
// are unbounded on the right.
func (c Campaign) Span() date.Range { return date.Range{From: c.Entry, To: c.Exit} }

// Covers reports whether a row dated d belongs to this campaign.
func (c Campaign) Covers(d date.Date) bool { return c.Span().Contains(d) }

// BlendedBasis returns the running weighted-average cost per share, or zero
// when flat.
func (c Campaign) BlendedBasis() Money {
	if !c.Shares.IsPositive() {
		return Money{}
	}
	return c.ShareCost.Div(c.Shares)
}

// EffectiveBasis returns the per-share basis after premium and dividend
// income is credited against the position, the "house money" view.
func (c Campaign) EffectiveBasis() Money {
	if !c.Shares.IsPositive() {
		return Money{}
	}
	return c.ShareCost.Sub(c.Premiums).Sub(c.Dividends).Div(c.Shares)
}

// RealizedPnL returns everything the campaign has banked: realized share
// gains plus premiums plus dividends. For a closed campaign this is its
// final result.
func (c Campaign) RealizedPnL() Money {
	return c.RealizedShares.Add(c.Premiums).Add(c.Dividends)
}

// BuildCampaigns scans one ticker's chronological rows and produces its
// campaigns, oldest first. At most the last campaign is open.
//
// Share accounting runs on the first pass: a campaign starts when the share
// position first reaches cfg.WheelMinShares, absorbs buys and sells at
// blended basis, and closes when the position returns to flat (unless
// cfg.Lifetime is set, which keeps one campaign open across flats). A second
// pass attributes option and income rows to the campaign whose span covers
// them, so window math and campaign math agree on every boundary.
func BuildCampaigns(underlying string, records []TransactionRecord, cfg Config) ([]Campaign, error) {
	eps := cfg.Eps()
	minShares := Q(cfg.WheelMinShares)

	var campaigns []Campaign
	var cur *Campaign
	var position Quantity // running share position, tracked outside campaigns too
	var cost Money        // cost of the running position at blended basis

	for _, r := range records {
		switch {
		case r.Action == Split:
			if position.WithinOf(eps) {
				continue
			}
			ratio := r.Quantity.Div(position)
			if !ratio.IsPositive() {
				return nil, &DataIntegrityError{
					Underlying: underlying, Date: r.Date, Row: r.Index,
					Reason: "split with post-split quantity inconsistent with the tracked position",
				}
			}
			position = r.Quantity // broker count wins
			if cur != nil {
				cur.Shares = position
				cur.ShareCost = cost
				cur.Events = append(cur.Events, CampaignEvent{
					Date: r.Date, Kind: EventSplit,
					Detail: fmt.Sprintf("split %s, now %s shares", ratio, position),
				})
			}

		case r.IsShare():
			if r.Quantity.WithinOf(eps) {
				if r.Value.IsZero() {
					continue
				}
				return nil, &DataIntegrityError{
					Underlying: underlying, Date: r.Date, Row: r.Index,
					Reason: "zero-quantity share row with nonzero cash value",
				}
			}
			if r.Quantity.IsPositive() {
				position = position.Add(r.Quantity)
				cost = cost.Add(r.Value.Neg())
				if cur == nil && position.GreaterThanOrEqual(minShares) {
					campaigns = append(campaigns, Campaign{
						Underlying: underlying,
						Entry:      r.Date,
						Lifetime:   cfg.Lifetime,
					})
					cur = &campaigns[len(campaigns)-1]
					cur.Events = append(cur.Events, CampaignEvent{
						Date: r.Date, Kind: EventEntry,
						Detail: fmt.Sprintf("%s shares", position),
						Cash:   cost.Neg(),
					})
					if r.Action == Assignment {
						traceAssignmentEntry(cur, r, records)
					}
				} else if cur != nil {
					kind := EventBuy
					if r.Action == Assignment {
						kind = EventAssignment
					}
					cur.Events = append(cur.Events, CampaignEvent{
						Date: r.Date, Kind: kind,
						Detail: fmt.Sprintf("%s shares", r.Quantity),
						Cash:   r.Value,
					})
				}
				if cur != nil {
					cur.Shares = position
					cur.ShareCost = cost
				}
			} else {
				sold := r.Quantity.Abs()
				var blended Money
				if position.GreaterThan(eps) {
					blended = cost.Div(position)
				}
				costOut := blended.Mul(sold.Min(position.Max(Q(0))))
				position = position.Sub(sold)
				cost = cost.Sub(costOut)
				if cur != nil {
					cur.RealizedShares = cur.RealizedShares.Add(r.Value.Sub(costOut))
					cur.Events = append(cur.Events, CampaignEvent{
						Date: r.Date, Kind: EventSell,
						Detail: fmt.Sprintf("%s shares", sold),
						Cash:   r.Value,
					})
				}
				if position.LessThan(eps.Neg()) {
					// More shares left than the ledger ever delivered. Flag
					// and keep the campaign open rather than fake an exit.
					if cur != nil {
						cur.Orphaned = true
						cur.Shares = Q(0)
						cur.ShareCost = Money{}
					}
					position = Q(0)
					cost = Money{}
				} else if cur != nil {
					cur.Shares = position
					cur.ShareCost = cost
					if position.WithinOf(eps) && !cfg.Lifetime {
						cur.Exit = r.Date
						cur.Events = append(cur.Events, CampaignEvent{Date: r.Date, Kind: EventExit})
						cur = nil
						position = Q(0)
						cost = Money{}
					}
				}
			}
		}
	}

	attributeIncome(campaigns, records)
	return campaigns, nil
}

// traceAssignmentEntry links an assignment-driven entry back to the short
// option that was assigned. The option's premium stays where it was earned,
// before the campaign began, so the trace carries zero cash.
func traceAssignmentEntry(c *Campaign, entry TransactionRecord, records []TransactionRecord) {
	// Shares delivered to us means a short put was assigned.
	want := Put
	if entry.Quantity.IsNegative() {
		want = Call
	}
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if !r.Date.Before(entry.Date) {
			continue
		}
		if r.IsShortOpen() && r.Right == want {
			c.Events = append(c.Events, CampaignEvent{
				Date: entry.Date, Kind: EventAssignment,
				Detail: fmt.Sprintf("assigned from %s sold %s", r.Symbol, r.Date),
			})
			return
		}
	}
	c.Events = append(c.Events, CampaignEvent{
		Date: entry.Date, Kind: EventAssignment,
		Detail: "assigned, originating short option not found",
	})
}

// attributeIncome assigns option and income rows to the campaign whose span
// covers them. Rows no span covers stay standalone and are picked up by the
// analysis layer.
func attributeIncome(campaigns []Campaign, records []TransactionRecord) {
	for _, r := range records {
		var kind EventKind
		switch {
		case r.IsOption():
			kind = EventPremium
		case r.IsIncome():
			kind = EventDividend
		default:
			continue
		}
		for i := range campaigns {
			c := &campaigns[i]
			if !c.Covers(r.Date) {
				continue
			}
			if kind == EventPremium {
				c.Premiums = c.Premiums.Add(r.Value)
			} else {
				c.Dividends = c.Dividends.Add(r.Value)
			}
			c.Events = append(c.Events, CampaignEvent{
				Date: r.Date, Kind: kind, Detail: r.Symbol, Cash: r.Value,
			})
			break
		}
	}
}
