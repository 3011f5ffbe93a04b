package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/crux1s/mechanics/date"
)

// parseWindow resolves a window flag into a half-open date range ending the
// day after asOf, so the analysis date itself is included. Accepted values
// are the presets 30d, 90d, ytd, 1y and all, or an explicit
// "YYYY-MM-DD..YYYY-MM-DD" range.
func parseWindow(s string, asOf date.Date) (date.Range, error) {
	end := asOf.Add(1)
	switch strings.ToLower(s) {
	case "all":
		return date.Range{}, nil
	case "30d":
		return date.Range{From: asOf.Add(-29), To: end}, nil
	case "90d":
		return date.Range{From: asOf.Add(-89), To: end}, nil
	case "ytd":
		return date.Range{From: date.New(asOf.Year(), time.January, 1), To: end}, nil
	case "1y":
		return date.Range{From: asOf.AddMonth(-12).Add(1), To: end}, nil
	}

	from, to, ok := strings.Cut(s, "..")
	if !ok {
		return date.Range{}, fmt.Errorf("unknown window %q: want 30d, 90d, ytd, 1y, all or from..to", s)
	}
	f, err := date.Parse(from)
	if err != nil {
		return date.Range{}, err
	}
	t, err := date.Parse(to)
	if err != nil {
		return date.Range{}, err
	}
	if !f.Before(t) {
		return date.Range{}, fmt.Errorf("empty window %q", s)
	}
	return date.Range{From: f, To: t}, nil
}
