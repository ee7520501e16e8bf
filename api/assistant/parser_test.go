package assistant

import (
	"testing"
	"time"
)

var parseNow = time.Date(2025, 6, 4, 15, 30, 0, 0, time.UTC) // a Wednesday

func TestParsePlainText(t *testing.T) {
	p := Parse("write the quarterly report", parseNow)
	if p.Title != "write the quarterly report" {
		t.Errorf("title = %q", p.Title)
	}
	if p.Priority != "medium" || p.Points != 10 || p.DueDate != nil {
		t.Errorf("defaults wrong: %+v", p)
	}
}

func TestParseStripsFiller(t *testing.T) {
	cases := map[string]string{
		"create a task to call the vendor": "call the vendor",
		"remind me to send the invoice":    "send the invoice",
		"please add review the contract":   "review the contract",
	}
	for input, want := range cases {
		if p := Parse(input, parseNow); p.Title != want {
			t.Errorf("Parse(%q).Title = %q, want %q", input, p.Title, want)
		}
	}
}

func TestParsePriorityWords(t *testing.T) {
	p := Parse("urgent fix the login page", parseNow)
	if p.Priority != "high" {
		t.Errorf("priority = %q, want high", p.Priority)
	}
	if p.Title != "fix the login page" {
		t.Errorf("priority word must be stripped from title, got %q", p.Title)
	}

	p = Parse("tidy the backlog whenever", parseNow)
	if p.Priority != "low" {
		t.Errorf("priority = %q, want low", p.Priority)
	}
}

func TestParseExplicitDate(t *testing.T) {
	p := Parse("ship the release by 2025-06-20", parseNow)
	if p.DueDate == nil || p.DueDate.Format("2006-01-02") != "2025-06-20" {
		t.Fatalf("due date = %v, want 2025-06-20", p.DueDate)
	}
	if p.Title != "ship the release" {
		t.Errorf("date phrase must be stripped, got %q", p.Title)
	}
}

func TestParseRelativeDates(t *testing.T) {
	p := Parse("pay rent tomorrow", parseNow)
	if p.DueDate == nil || p.DueDate.Format("2006-01-02") != "2025-06-05" {
		t.Errorf("tomorrow = %v, want 2025-06-05", p.DueDate)
	}

	p = Parse("plan sprint next week", parseNow)
	if p.DueDate == nil || p.DueDate.Format("2006-01-02") != "2025-06-11" {
		t.Errorf("next week = %v, want 2025-06-11", p.DueDate)
	}
}

func TestParseWeekday(t *testing.T) {
	// parseNow is Wednesday; "friday" resolves to the coming Friday
	p := Parse("submit expenses by friday", parseNow)
	if p.DueDate == nil || p.DueDate.Format("2006-01-02") != "2025-06-06" {
		t.Fatalf("friday = %v, want 2025-06-06", p.DueDate)
	}
	// same weekday rolls a full week forward
	p = Parse("review metrics on wednesday", parseNow)
	if p.DueDate == nil || p.DueDate.Format("2006-01-02") != "2025-06-11" {
		t.Errorf("wednesday = %v, want 2025-06-11", p.DueDate)
	}
}

func TestParsePoints(t *testing.T) {
	p := Parse("refactor the billing module worth 50 points", parseNow)
	if p.Points != 50 {
		t.Errorf("points = %d, want 50", p.Points)
	}
	if p.Title != "refactor the billing module" {
		t.Errorf("points phrase must be stripped, got %q", p.Title)
	}
}

func TestParseCombined(t *testing.T) {
	p := Parse("create a task to prepare the demo asap by 2025-06-10 worth 25 pts", parseNow)
	if p.Title != "prepare the demo" {
		t.Errorf("title = %q", p.Title)
	}
	if p.Priority != "high" {
		t.Errorf("priority = %q, want high", p.Priority)
	}
	if p.DueDate == nil || p.DueDate.Format("2006-01-02") != "2025-06-10" {
		t.Errorf("due date = %v", p.DueDate)
	}
	if p.Points != 25 {
		t.Errorf("points = %d, want 25", p.Points)
	}
}

func TestParseNeverReturnsEmptyTitle(t *testing.T) {
	p := Parse("tomorrow", parseNow)
	if p.Title == "" {
		t.Error("title must fall back to the raw text, never empty")
	}
}
