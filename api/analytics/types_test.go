package analytics

import (
	"testing"
	"time"
)

func TestResolveWindowExplicit(t *testing.T) {
	w := ResolveWindow("2025-06-01", "2025-06-30", 30)
	if w.Start.Format("2006-01-02") != "2025-06-01" || w.End.Format("2006-01-02") != "2025-06-30" {
		t.Errorf("window = %v..%v", w.Start, w.End)
	}
	if w.Days() != 30 {
		t.Errorf("days = %d, want 30", w.Days())
	}
}

func TestResolveWindowFallbacks(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
	}{
		{"missing both", "", ""},
		{"missing end", "2025-06-01", ""},
		{"unparsable", "junk", "2025-06-30"},
		{"inverted", "2025-06-30", "2025-06-01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ResolveWindow(tc.start, tc.end, 30)
			if w.Days() != 30 {
				t.Errorf("fallback window days = %d, want 30", w.Days())
			}
			today := time.Now().UTC().Format("2006-01-02")
			if w.End.Format("2006-01-02") != today {
				t.Errorf("fallback window must end today, got %s", w.End.Format("2006-01-02"))
			}
		})
	}
}

func TestResolveWindowDefaultDaysGuard(t *testing.T) {
	w := ResolveWindow("", "", 0)
	if w.Days() != 30 {
		t.Errorf("non-positive defaultDays must fall back to 30, got %d", w.Days())
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{Start: day("2025-06-01"), End: day("2025-06-07")}
	if !w.Contains(day("2025-06-01")) || !w.Contains(day("2025-06-07")) {
		t.Error("window bounds are inclusive")
	}
	if w.Contains(day("2025-05-31")) || w.Contains(day("2025-06-08")) {
		t.Error("window must exclude days outside the range")
	}
	// time-of-day within a boundary day still counts
	if !w.Contains(day("2025-06-07").Add(23 * time.Hour)) {
		t.Error("end-day timestamps must be contained")
	}
}

func TestWindowDaysSingle(t *testing.T) {
	w := Window{Start: day("2025-06-05"), End: day("2025-06-05")}
	if w.Days() != 1 {
		t.Errorf("single-day window days = %d, want 1", w.Days())
	}
}
