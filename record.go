package mechanics

import (
	"fmt"
	"sort"

	"github.com/crux1s/mechanics/date"
)

// Instrument identifies the kind of contract a ledger row trades.
type Instrument string

const (
	Equity       Instrument = "EQUITY"
	EquityOption Instrument = "EQUITY_OPTION"
	FutureOption Instrument = "FUTURE_OPTION"
)

// Action is the broker-reported nature of a ledger row.
type Action string

const (
	Buy        Action = "BUY"
	Sell       Action = "SELL"
	Assignment Action = "ASSIGNMENT"
	Exercise   Action = "EXERCISE"
	Expiration Action = "EXPIRATION"
	Dividend   Action = "DIVIDEND"
	Interest   Action = "INTEREST"
	Transfer   Action = "TRANSFER"
	Deposit    Action = "DEPOSIT"
	Withdrawal Action = "WITHDRAWAL"
	Fee        Action = "FEE"
	Split      Action = "SPLIT"
)

// Right is the option right of a row, empty for non-option rows.
type Right string

const (
	Call Right = "CALL"
	Put  Right = "PUT"
)

// Disposition is the broker's open/close tag on a position-affecting row.
type Disposition string

const (
	Open          Disposition = "OPEN"
	Close         Disposition = "CLOSE"
	NoDisposition Disposition = ""
)

// TransactionRecord is one normalized ledger row. Records are immutable once
// built; every stage of the engine consumes the same slice.
//
// Quantity is signed: positive for shares or contracts received, negative for
// shares or contracts delivered. Value is the signed total cash effect of the
// row, fees included: positive cash in, negative cash out.
type TransactionRecord struct {
	Date        date.Date
	Seq         int // intra-day ordinal preserving broker statement order
	Underlying  string
	Symbol      string // OCC-style option symbol, or the ticker for shares
	Instrument  Instrument
	Action      Action
	Disposition Disposition
	Quantity    Quantity
	Value       Money
	Strike      Money
	Expiry      date.Date
	Right       Right
	OrderID     string
	Description string
	Index       int // row index in the original statement, for diagnostics
}

// IsOption reports whether the row trades an option contract.
func (r TransactionRecord) IsOption() bool {
	return r.Instrument == EquityOption || r.Instrument == FutureOption
}

// IsShare reports whether the row moves shares of the underlying. Assignments
// and exercises deliver or receive shares and count here when the row is an
// equity row.
func (r TransactionRecord) IsShare() bool {
	if r.Instrument != Equity {
		return false
	}
	switch r.Action {
	case Buy, Sell, Assignment, Exercise, Transfer:
		return true
	}
	return false
}

// IsOpening reports whether an option row opens a position.
func (r TransactionRecord) IsOpening() bool {
	return r.IsOption() && r.Disposition == Open
}

// IsClosing reports whether an option row closes a position. Expirations,
// assignments and exercises always close.
func (r TransactionRecord) IsClosing() bool {
	if !r.IsOption() {
		return false
	}
	switch r.Action {
	case Expiration, Assignment, Exercise:
		return true
	}
	return r.Disposition == Close
}

// IsShortOpen reports whether the row sells an option to open.
func (r TransactionRecord) IsShortOpen() bool {
	return r.IsOpening() && r.Quantity.IsNegative()
}

// IsLongOpen reports whether the row buys an option to open.
func (r TransactionRecord) IsLongOpen() bool {
	return r.IsOpening() && r.Quantity.IsPositive()
}

// IsIncome reports whether the row is pure cash income for the underlying.
func (r TransactionRecord) IsIncome() bool {
	return r.Action == Dividend || r.Action == Interest
}

// DTE returns the option's days to expiry as seen from the row's own date.
func (r TransactionRecord) DTE() int {
	if r.Expiry.IsZero() {
		return 0
	}
	return r.Expiry.Sub(r.Date)
}

// Validate enforces the structural rules a row must satisfy before any stage
// may consume it.
func (r TransactionRecord) Validate() error {
	if r.Date.IsZero() {
		return fmt.Errorf("row %d: missing date", r.Index)
	}
	if r.Underlying == "" && r.Instrument != "" {
		return fmt.Errorf("row %d: missing underlying", r.Index)
	}
	if r.IsOption() {
		if r.Right != Call && r.Right != Put {
			return fmt.Errorf("row %d (%s): option row without a right", r.Index, r.Symbol)
		}
		if r.Expiry.IsZero() {
			return fmt.Errorf("row %d (%s): option row without an expiry", r.Index, r.Symbol)
		}
		if !r.Strike.IsPositive() {
			return fmt.Errorf("row %d (%s): option row without a strike", r.Index, r.Symbol)
		}
	}
	switch r.Action {
	case Buy:
		if r.Quantity.IsNegative() {
			return fmt.Errorf("row %d (%s): buy with negative quantity %s", r.Index, r.Underlying, r.Quantity)
		}
	case Sell:
		if r.Quantity.IsPositive() {
			return fmt.Errorf("row %d (%s): sell with positive quantity %s", r.Index, r.Underlying, r.Quantity)
		}
	}
	return nil
}

// SortRecords orders rows chronologically, in place. Ties on the day are
// broken by the intra-day ordinal, then by original row index, so the order
// is total and every run over the same statement is identical.
func SortRecords(records []TransactionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}
		return a.Index < b.Index
	})
}
