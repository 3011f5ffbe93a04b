package mechanics

import (
	"fmt"

	"github.com/crux1s/mechanics/date"
)

// DataIntegrityError reports a ledger row the engine refuses to interpret.
// It aborts processing of the named underlying only; other underlyings in the
// same statement are unaffected.
type DataIntegrityError struct {
	Underlying string
	Date       date.Date
	Row        int // row index in the original statement
	Reason     string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("%s: %s on %s (row %d)", e.Underlying, e.Reason, e.Date, e.Row)
}

// Problem is a non-fatal finding surfaced by the analysis, attached to the
// underlying it concerns.
type Problem struct {
	Underlying string
	Err        error
}

func (p Problem) String() string { return p.Err.Error() }
