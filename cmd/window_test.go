package cmd

import (
	"testing"

	"github.com/crux1s/mechanics/date"
)

func TestParseWindowPresets(t *testing.T) {
	asOf := date.MustParse("2025-06-15")
	tests := []struct {
		in   string
		from string
		to   string
	}{
		{"30d", "2025-05-17", "2025-06-16"},
		{"90d", "2025-03-18", "2025-06-16"},
		{"ytd", "2025-01-01", "2025-06-16"},
		{"1y", "2024-06-16", "2025-06-16"},
		{"2025-01-01..2025-02-01", "2025-01-01", "2025-02-01"},
	}
	for _, tc := range tests {
		win, err := parseWindow(tc.in, asOf)
		if err != nil {
			t.Errorf("parseWindow(%q): %v", tc.in, err)
			continue
		}
		if win.From != date.MustParse(tc.from) || win.To != date.MustParse(tc.to) {
			t.Errorf("parseWindow(%q) = %s, want [%s, %s)", tc.in, win, tc.from, tc.to)
		}
	}
}

func TestParseWindowAll(t *testing.T) {
	win, err := parseWindow("all", date.MustParse("2025-06-15"))
	if err != nil {
		t.Fatal(err)
	}
	if !win.From.IsZero() || !win.To.IsZero() {
		t.Errorf("all = %s, want unbounded", win)
	}
	if !win.Contains(date.MustParse("1999-01-01")) {
		t.Error("unbounded window must contain everything")
	}
}

func TestParseWindowRejects(t *testing.T) {
	for _, in := range []string{"7w", "2025-02-01..2025-01-01", "..", "last-tuesday"} {
		if _, err := parseWindow(in, date.MustParse("2025-06-15")); err == nil {
			t.Errorf("parseWindow(%q) accepted", in)
		}
	}
}
