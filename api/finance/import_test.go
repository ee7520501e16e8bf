package finance

import (
	"strings"
	"testing"
)

func TestHeaderIndex(t *testing.T) {
	idx, err := headerIndex([]string{" Date ", "AMOUNT", "Category", "Description", "Billable"})
	if err != nil {
		t.Fatalf("headerIndex: %v", err)
	}
	if idx["date"] != 0 || idx["amount"] != 1 || idx["billable"] != 4 {
		t.Errorf("index wrong: %v", idx)
	}
}

func TestHeaderIndexMissingRequired(t *testing.T) {
	if _, err := headerIndex([]string{"date", "category"}); err == nil {
		t.Error("missing amount column must error")
	}
	if _, err := headerIndex([]string{"amount", "category"}); err == nil {
		t.Error("missing date column must error")
	}
}

func TestParseImportDateLayouts(t *testing.T) {
	for _, s := range []string{"2025-06-15", "15-06-2025", "06/15/2025", "2025/06/15"} {
		d, err := parseImportDate(s)
		if err != nil {
			t.Errorf("parseImportDate(%q): %v", s, err)
			continue
		}
		if d.Year() != 2025 || d.Month() != 6 || d.Day() != 15 {
			t.Errorf("parseImportDate(%q) = %v", s, d)
		}
	}
	if _, err := parseImportDate("June 15th"); err == nil {
		t.Error("unparsable date must error")
	}
}

func TestCellAtOutOfRange(t *testing.T) {
	idx := map[string]int{"date": 0, "amount": 1, "description": 3}
	row := []string{"2025-06-15", "42.50"}
	if got := cellAt(row, idx, "description"); got != "" {
		t.Errorf("short row must yield empty cell, got %q", got)
	}
	if got := cellAt(row, idx, "amount"); got != "42.50" {
		t.Errorf("cellAt amount = %q", got)
	}
}

func TestParseExpenseFileCSV(t *testing.T) {
	csvData := "date,amount,category\n2025-06-01,12.50,travel\n2025-06-02,8,meals\n"
	rows, err := parseExpenseFile(nopFile{strings.NewReader(csvData)}, ".csv")
	if err != nil {
		t.Fatalf("parseExpenseFile: %v", err)
	}
	if len(rows) != 3 || rows[1][1] != "12.50" {
		t.Errorf("rows = %v", rows)
	}
}

func TestParseExpenseFileUnsupported(t *testing.T) {
	if _, err := parseExpenseFile(nopFile{strings.NewReader("")}, ".pdf"); err == nil {
		t.Error("unsupported extension must error")
	}
}

// nopFile adapts a strings.Reader to multipart.File for parser tests.
type nopFile struct{ *strings.Reader }

func (nopFile) Close() error { return nil }
