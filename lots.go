package mechanics

import (
	"iter"

	"github.com/crux1s/mechanics/date"
)

// Lot is an open parcel of shares. Quantity is always positive; whether the
// parcel is long or short is determined by the queue holding it. For long
// lots PerShare is the acquisition cost per share, for short lots it is the
// sale price received per share.
type Lot struct {
	Open     date.Date
	Quantity Quantity
	PerShare Money
}

// Cost returns the total money attached to the lot.
func (l Lot) Cost() Money { return l.PerShare.Mul(l.Quantity) }

// RealizedEvent is one matched batch: a single ledger row matched against one
// or more open lots of the opposite side.
type RealizedEvent struct {
	Date      date.Date
	Quantity  Quantity // shares matched, positive
	Proceeds  Money
	CostBasis Money
}

// Gain returns the realized gain of the event.
func (e RealizedEvent) Gain() Money { return e.Proceeds.Sub(e.CostBasis) }

// LotBook runs FIFO share accounting for a single underlying. Buys cover the
// oldest short lots before extending the long side; sells close the oldest
// long lots before opening shorts. Each matched row emits exactly one
// realized event.
type LotBook struct {
	underlying string
	eps        Quantity
	longs      []Lot
	shorts     []Lot
	events     []RealizedEvent
}

// NewLotBook returns an empty book for one underlying.
func NewLotBook(underlying string, cfg Config) *LotBook {
	return &LotBook{underlying: underlying, eps: cfg.Eps()}
}

// Apply feeds one ledger row into the book. Non-share rows other than splits
// are ignored, so callers may replay a full per-ticker history unfiltered.
func (b *LotBook) Apply(r TransactionRecord) error {
	if r.Action == Split {
		return b.applySplit(r)
	}
	if !r.IsShare() {
		return nil
	}
	if r.Quantity.WithinOf(b.eps) {
		if r.Value.IsZero() {
			return nil
		}
		return &DataIntegrityError{
			Underlying: b.underlying,
			Date:       r.Date,
			Row:        r.Index,
			Reason:     "zero-quantity share row with nonzero cash value",
		}
	}
	// Cash always flows against the shares, so this is positive for both
	// sides of the trade. Zero-cost deliveries price at zero.
	perShare := r.Value.Div(r.Quantity).Neg()
	if r.Quantity.IsPositive() {
		b.buy(r.Date, r.Quantity, perShare)
	} else {
		b.sell(r.Date, r.Quantity.Abs(), perShare)
	}
	return nil
}

func (b *LotBook) buy(on date.Date, qty Quantity, perShare Money) {
	var matched Quantity
	var proceeds, basis Money
	for len(b.shorts) > 0 && qty.GreaterThan(b.eps) {
		lot := &b.shorts[0]
		take := qty.Min(lot.Quantity)
		matched = matched.Add(take)
		proceeds = proceeds.Add(lot.PerShare.Mul(take))
		basis = basis.Add(perShare.Mul(take))
		qty = qty.Sub(take)
		lot.Quantity = lot.Quantity.Sub(take)
		if lot.Quantity.WithinOf(b.eps) {
			b.shorts = b.shorts[1:]
		}
	}
	if matched.GreaterThan(b.eps) {
		b.events = append(b.events, RealizedEvent{Date: on, Quantity: matched, Proceeds: proceeds, CostBasis: basis})
	}
	if qty.GreaterThan(b.eps) {
		b.longs = append(b.longs, Lot{Open: on, Quantity: qty, PerShare: perShare})
	}
}

func (b *LotBook) sell(on date.Date, qty Quantity, perShare Money) {
	var matched Quantity
	var proceeds, basis Money
	for len(b.longs) > 0 && qty.GreaterThan(b.eps) {
		lot := &b.longs[0]
		take := qty.Min(lot.Quantity)
		matched = matched.Add(take)
		proceeds = proceeds.Add(perShare.Mul(take))
		basis = basis.Add(lot.PerShare.Mul(take))
		qty = qty.Sub(take)
		lot.Quantity = lot.Quantity.Sub(take)
		if lot.Quantity.WithinOf(b.eps) {
			b.longs = b.longs[1:]
		}
	}
	if matched.GreaterThan(b.eps) {
		b.events = append(b.events, RealizedEvent{Date: on, Quantity: matched, Proceeds: proceeds, CostBasis: basis})
	}
	if qty.GreaterThan(b.eps) {
		b.shorts = append(b.shorts, Lot{Open: on, Quantity: qty, PerShare: perShare})
	}
}

// applySplit rescales every open lot in place: quantity times the ratio,
// per-share money divided by it. The split row's Quantity carries the
// broker-reported post-split net position, which is authoritative over the
// tracked running total: any residual after rescaling lands on the newest lot.
func (b *LotBook) applySplit(r TransactionRecord) error {
	net := b.NetQuantity()
	if net.WithinOf(b.eps) {
		return nil
	}
	ratio := r.Quantity.Div(net)
	if !ratio.IsPositive() {
		return &DataIntegrityError{
			Underlying: b.underlying,
			Date:       r.Date,
			Row:        r.Index,
			Reason:     "split with post-split quantity inconsistent with the tracked position",
		}
	}
	for i := range b.longs {
		b.longs[i].Quantity = b.longs[i].Quantity.Mul(ratio)
		b.longs[i].PerShare = b.longs[i].PerShare.Div(ratio)
	}
	for i := range b.shorts {
		b.shorts[i].Quantity = b.shorts[i].Quantity.Mul(ratio)
		b.shorts[i].PerShare = b.shorts[i].PerShare.Div(ratio)
	}
	if diff := r.Quantity.Sub(b.NetQuantity()); !diff.IsZero() {
		if len(b.longs) > 0 {
			last := &b.longs[len(b.longs)-1]
			last.Quantity = last.Quantity.Add(diff)
		} else if len(b.shorts) > 0 {
			last := &b.shorts[len(b.shorts)-1]
			last.Quantity = last.Quantity.Sub(diff)
		}
	}
	return nil
}

// OpenLongs returns the residual long lots, oldest first.
func (b *LotBook) OpenLongs() []Lot { return b.longs }

// OpenShorts returns the residual short lots, oldest first.
func (b *LotBook) OpenShorts() []Lot { return b.shorts }

// NetQuantity returns the signed net share position.
func (b *LotBook) NetQuantity() Quantity {
	var net Quantity
	for _, lot := range b.longs {
		net = net.Add(lot.Quantity)
	}
	for _, lot := range b.shorts {
		net = net.Sub(lot.Quantity)
	}
	return net
}

// RemainingCost returns the total acquisition cost still tied up in open
// long lots.
func (b *LotBook) RemainingCost() Money {
	var total Money
	for _, lot := range b.longs {
		total = total.Add(lot.Cost())
	}
	return total
}

// Events returns the realized events emitted so far, in order.
func (b *LotBook) Events() []RealizedEvent { return b.events }

// FIFORealized replays a ticker's rows through a fresh book and yields each
// realized event as it is produced. The sequence is restartable; a data
// integrity problem surfaces as a terminal non-nil error.
func FIFORealized(underlying string, records []TransactionRecord, cfg Config) iter.Seq2[RealizedEvent, error] {
	return func(yield func(RealizedEvent, error) bool) {
		book := NewLotBook(underlying, cfg)
		for _, r := range records {
			n := len(book.events)
			if err := book.Apply(r); err != nil {
				yield(RealizedEvent{}, err)
				return
			}
			for _, ev := range book.events[n:] {
				if !yield(ev, nil) {
					return
				}
			}
		}
	}
}
