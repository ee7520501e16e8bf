package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"FlowdeskSaas/api/constants"
	"FlowdeskSaas/internal/config"
)

// Typed rows for every entity set the pipeline consumes. Rows are validated and
// defaulted at the fetch boundary; downstream calculators trust these shapes.

type TaskRow struct {
	ID          string
	Title       string
	Status      string
	Priority    string
	OwnerID     string
	CreatedAt   time.Time
	CompletedAt *time.Time
	DueDate     *time.Time
	Points      int
}

type DealRow struct {
	ID        string
	Title     string
	Value     decimal.Decimal
	Stage     string
	ClientID  string
	OwnerID   string
	CreatedAt time.Time
}

// Terminal returns true once the deal can no longer move stages.
func (d DealRow) Terminal() bool {
	return d.Stage == constants.StageClosedWon || d.Stage == constants.StageClosedLost
}

type InvoiceRow struct {
	ID          string
	ClientID    string
	TotalAmount decimal.Decimal
	Status      string
	DueDate     *time.Time
	CreatedAt   time.Time
}

type ExpenseRow struct {
	ID          string
	Description string
	Amount      decimal.Decimal
	Category    string
	Vendor      string
	Date        time.Time
	Billable    bool
}

type PaymentRow struct {
	ID          string
	Amount      decimal.Decimal
	Status      string
	InvoiceID   *string
	DealID      *string
	PaymentDate time.Time
}

type RevenueRow struct {
	ID              string
	Amount          decimal.Decimal
	Type            string
	TransactionDate time.Time
	ClientID        *string
}

type NotificationRow struct {
	ID        string
	Type      string
	Read      bool
	CreatedAt time.Time
}

type ActivityRow struct {
	ID        string
	Type      string
	CreatedAt time.Time
}

type AchievementRow struct {
	ID       string
	MedalKey string
	EarnedAt time.Time
}

type UserStatsRow struct {
	UserID         string
	TotalPoints    int
	Level          int
	CurrentStreak  int
	TasksCompleted int
}

// UserInfo is the resolved caller/target identity attached to every payload.
type UserInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"is_admin"`
}

// Window is the inclusive [start, end] date range scoping an aggregation.
type Window struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of calendar days in the window, inclusive.
func (w Window) Days() int {
	start := truncateDay(w.Start)
	end := truncateDay(w.End)
	return int(end.Sub(start).Hours()/24) + 1
}

// Contains reports whether t falls on a day inside the window.
func (w Window) Contains(t time.Time) bool {
	d := truncateDay(t)
	return !d.Before(truncateDay(w.Start)) && !d.After(truncateDay(w.End))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ResolveWindow parses the requested bounds. A missing, unparsable, or inverted
// range collapses to the trailing defaultDays ending today rather than erroring.
func ResolveWindow(startStr, endStr string, defaultDays int) Window {
	if defaultDays <= 0 {
		defaultDays = config.DefaultWindowDays
	}
	now := truncateDay(time.Now().UTC())
	fallback := Window{Start: now.AddDate(0, 0, -(defaultDays - 1)), End: now}

	if startStr == "" || endStr == "" {
		return fallback
	}
	start, err1 := time.Parse(constants.DateFormat, startStr)
	end, err2 := time.Parse(constants.DateFormat, endStr)
	if err1 != nil || err2 != nil || end.Before(start) {
		return fallback
	}
	return Window{Start: truncateDay(start), End: truncateDay(end)}
}

// Period is the window echoed back in the response payload.
type Period struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
}

func (w Window) Period() Period {
	return Period{
		StartDate: w.Start.Format(constants.DateFormat),
		EndDate:   w.End.Format(constants.DateFormat),
		Days:      w.Days(),
	}
}
