package date

import "testing"

func TestSub(t *testing.T) {
	testCases := []struct {
		a, b string
		want int
	}{
		{"2025-01-10", "2025-01-10", 0},
		{"2025-01-15", "2025-01-10", 5},
		{"2025-01-10", "2025-01-15", -5},
		{"2025-03-01", "2025-02-01", 28},
		{"2024-03-01", "2024-02-01", 29}, // leap year
	}
	for _, tc := range testCases {
		if got := MustParse(tc.a).Sub(MustParse(tc.b)); got != tc.want {
			t.Errorf("Sub(%s, %s) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{From: MustParse("2025-01-10"), To: MustParse("2025-01-20")}

	testCases := []struct {
		name string
		d    string
		want bool
	}{
		{"before start", "2025-01-09", false},
		{"on start is inside", "2025-01-10", true},
		{"middle", "2025-01-15", true},
		{"day before end", "2025-01-19", true},
		{"on end is outside", "2025-01-20", false},
		{"after end", "2025-01-21", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Contains(MustParse(tc.d)); got != tc.want {
				t.Errorf("Contains(%s) = %v, want %v", tc.d, got, tc.want)
			}
		})
	}
}

func TestRangeContainsUnbounded(t *testing.T) {
	open := Range{From: MustParse("2025-01-10")}
	if !open.Contains(MustParse("2099-12-31")) {
		t.Error("unbounded range should contain any later date")
	}
	if open.Contains(MustParse("2025-01-09")) {
		t.Error("unbounded range should still enforce the lower bound")
	}
}

func TestRangePrevious(t *testing.T) {
	r := Range{From: MustParse("2025-01-10"), To: MustParse("2025-01-20")}
	prev, ok := r.Previous()
	if !ok {
		t.Fatal("bounded range must have a previous range")
	}
	want := Range{From: MustParse("2024-12-31"), To: MustParse("2025-01-10")}
	if prev != want {
		t.Errorf("Previous() = %v, want %v", prev, want)
	}
	// An event on the shared boundary belongs to exactly one of the two.
	boundary := MustParse("2025-01-10")
	if prev.Contains(boundary) || !r.Contains(boundary) {
		t.Error("boundary date must belong to the later window only")
	}

	if _, ok := (Range{From: MustParse("2025-01-10")}).Previous(); ok {
		t.Error("unbounded range must not have a previous range")
	}
}
