package date

import "fmt"

// Range is a half-open date range [From, To): From is included, To is not.
//
// Every windowed computation in the engine uses the same half-open test, so
// an event dated exactly on a window's end day falls in the next window,
// never in both. A zero To means the range is unbounded on the right.
type Range struct{ From, To Date }

// Contains reports whether d falls inside the range: From <= d < To.
// A zero From means no lower bound; a zero To means no upper bound.
func (r Range) Contains(d Date) bool {
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !d.Before(r.To) {
		return false
	}
	return true
}

// Days returns the number of days the range spans, or 0 when unbounded.
func (r Range) Days() int {
	if r.From.IsZero() || r.To.IsZero() {
		return 0
	}
	return r.To.Sub(r.From)
}

// Previous returns the range of equal length immediately before r,
// ending where r starts. Unbounded ranges have no previous range.
func (r Range) Previous() (Range, bool) {
	n := r.Days()
	if n == 0 {
		return Range{}, false
	}
	return Range{From: r.From.Add(-n), To: r.From}, true
}

func (r Range) String() string {
	from, to := "...", "..."
	if !r.From.IsZero() {
		from = r.From.String()
	}
	if !r.To.IsZero() {
		to = r.To.String()
	}
	return fmt.Sprintf("[%s, %s)", from, to)
}
