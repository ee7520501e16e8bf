package analytics

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"FlowdeskSaas/api/constants"
)

// fakeStore serves canned rows per user and lets individual fetches be forced
// to fail or panic.
type fakeStore struct {
	users    map[string]UserInfo
	tasks    map[string][]TaskRow
	deals    map[string][]DealRow
	invoices map[string][]InvoiceRow
	payments map[string][]PaymentRow
	stats    map[string]UserStatsRow

	failDeals  bool
	panicTasks bool
}

func (f *fakeStore) UserInfo(_ context.Context, userID string) (UserInfo, error) {
	u, ok := f.users[userID]
	if !ok {
		return UserInfo{}, errors.New("no such user")
	}
	return u, nil
}

func (f *fakeStore) Tasks(_ context.Context, userID string, _ Window) ([]TaskRow, error) {
	if f.panicTasks {
		panic("tasks fetch exploded")
	}
	return f.tasks[userID], nil
}

func (f *fakeStore) Deals(_ context.Context, userID string, _ Window) ([]DealRow, error) {
	if f.failDeals {
		return nil, errors.New("deals unavailable")
	}
	return f.deals[userID], nil
}

func (f *fakeStore) Invoices(_ context.Context, userID string, _ Window) ([]InvoiceRow, error) {
	return f.invoices[userID], nil
}

func (f *fakeStore) Expenses(_ context.Context, _ string, _ Window) ([]ExpenseRow, error) {
	return nil, nil
}

func (f *fakeStore) Payments(_ context.Context, userID string, _ Window) ([]PaymentRow, error) {
	return f.payments[userID], nil
}

func (f *fakeStore) Revenue(_ context.Context, _ string, _ Window) ([]RevenueRow, error) {
	return nil, nil
}

func (f *fakeStore) Notifications(_ context.Context, _ string, _ Window) ([]NotificationRow, error) {
	return nil, nil
}

func (f *fakeStore) Activity(_ context.Context, _ string, _ Window) ([]ActivityRow, error) {
	return nil, nil
}

func (f *fakeStore) Achievements(_ context.Context, _ string, _ Window) ([]AchievementRow, error) {
	return nil, nil
}

func (f *fakeStore) UserStats(_ context.Context, userID string) (UserStatsRow, error) {
	return f.stats[userID], nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: map[string]UserInfo{
			"admin-1":  {ID: "admin-1", Name: "Ada", Role: "admin", IsAdmin: true},
			"member-1": {ID: "member-1", Name: "Max", Role: "member"},
			"member-2": {ID: "member-2", Name: "Mia", Role: "member"},
		},
		tasks: map[string][]TaskRow{
			"member-1": {
				{ID: "t1", Status: constants.TaskStatusCompleted, CreatedAt: day("2025-06-01"), CompletedAt: dayPtr("2025-06-03")},
				{ID: "t2", Status: constants.TaskStatusTodo, CreatedAt: day("2025-06-02")},
			},
			"member-2": {
				{ID: "t3", Status: constants.TaskStatusTodo, CreatedAt: day("2025-06-02")},
			},
		},
		deals: map[string][]DealRow{
			"member-1": {
				{ID: "d1", Value: decimal.NewFromInt(1000), Stage: constants.StageClosedWon, CreatedAt: day("2025-06-02")},
			},
		},
		invoices: map[string][]InvoiceRow{
			"member-1": {
				{ID: "i1", TotalAmount: decimal.NewFromInt(200), Status: constants.InvoicePaid, CreatedAt: day("2025-06-01")},
			},
		},
		payments: map[string][]PaymentRow{
			"member-1": {
				{Amount: decimal.NewFromInt(200), Status: constants.PaymentCompleted, PaymentDate: day("2025-06-02")},
			},
		},
		stats: map[string]UserStatsRow{
			"member-1": {UserID: "member-1", TotalPoints: 120, Level: 2, CurrentStreak: 4},
		},
	}
}

func buildReq(callerID, targetID string) Request {
	return Request{
		CallerID:     callerID,
		TargetUserID: targetID,
		StartDate:    "2025-06-01",
		EndDate:      "2025-06-07",
	}
}

func TestBuildNonAdminRedirectedToSelf(t *testing.T) {
	orc := NewOrchestrator(newFakeStore(), Config{DefaultWindowDays: 30})
	payload, err := orc.Build(context.Background(), buildReq("member-1", "member-2"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if payload.UserInfo.ID != "member-1" {
		t.Errorf("non-admin target must be silently redirected to self, got %q", payload.UserInfo.ID)
	}
	if payload.Analytics.Tasks.Total != 2 {
		t.Errorf("payload must hold the caller's data, got %d tasks", payload.Analytics.Tasks.Total)
	}
}

func TestBuildAdminCanTargetOtherUser(t *testing.T) {
	orc := NewOrchestrator(newFakeStore(), Config{DefaultWindowDays: 30})
	payload, err := orc.Build(context.Background(), buildReq("admin-1", "member-2"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if payload.UserInfo.ID != "member-2" {
		t.Errorf("admin target = %q, want member-2", payload.UserInfo.ID)
	}
	if payload.Analytics.Tasks.Total != 1 {
		t.Errorf("got %d tasks, want member-2's 1", payload.Analytics.Tasks.Total)
	}
}

func TestBuildUnknownCallerErrors(t *testing.T) {
	orc := NewOrchestrator(newFakeStore(), Config{DefaultWindowDays: 30})
	if _, err := orc.Build(context.Background(), buildReq("ghost", "")); err == nil {
		t.Error("unknown caller must return an error")
	}
}

func TestBuildIdempotent(t *testing.T) {
	orc := NewOrchestrator(newFakeStore(), Config{DefaultWindowDays: 30})
	req := buildReq("member-1", "")
	req.IncludeCharts = true

	first, err := orc.Build(context.Background(), req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := orc.Build(context.Background(), req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("same request must produce identical payloads")
	}
}

func TestBuildPartialFailureDegrades(t *testing.T) {
	store := newFakeStore()
	store.failDeals = true
	orc := NewOrchestrator(store, Config{DefaultWindowDays: 30})

	payload, err := orc.Build(context.Background(), buildReq("member-1", ""))
	if err != nil {
		t.Fatalf("a failed branch must not abort the build: %v", err)
	}
	if payload.Analytics.CRM.TotalDeals != 0 {
		t.Errorf("failed deals fetch must degrade to empty, got %d", payload.Analytics.CRM.TotalDeals)
	}
	// the other branches still populate
	if payload.Analytics.Tasks.Total != 2 {
		t.Errorf("tasks must survive a deals failure, got %d", payload.Analytics.Tasks.Total)
	}
	if payload.Analytics.Finance.TotalInvoices != 1 {
		t.Errorf("finance must survive a deals failure, got %d", payload.Analytics.Finance.TotalInvoices)
	}
}

func TestBuildBranchPanicRecovered(t *testing.T) {
	store := newFakeStore()
	store.panicTasks = true
	orc := NewOrchestrator(store, Config{DefaultWindowDays: 30})

	payload, err := orc.Build(context.Background(), buildReq("member-1", ""))
	if err != nil {
		t.Fatalf("a panicking branch must not abort the build: %v", err)
	}
	if payload.Analytics.Tasks.Total != 0 {
		t.Errorf("panicking tasks fetch must degrade to empty, got %d", payload.Analytics.Tasks.Total)
	}
	if payload.Analytics.CRM.TotalDeals != 1 {
		t.Errorf("deals must survive a tasks panic, got %d", payload.Analytics.CRM.TotalDeals)
	}
}

func TestBuildChartsOnlyWhenRequested(t *testing.T) {
	orc := NewOrchestrator(newFakeStore(), Config{DefaultWindowDays: 30})

	req := buildReq("member-1", "")
	payload, err := orc.Build(context.Background(), req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if payload.Charts != nil {
		t.Error("charts must be omitted unless requested")
	}

	req.IncludeCharts = true
	payload, err = orc.Build(context.Background(), req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if payload.Charts == nil {
		t.Fatal("charts requested but missing")
	}
	if len(payload.Charts.Tasks) != 7 {
		t.Errorf("task series length = %d, want 7", len(payload.Charts.Tasks))
	}
}

func TestBuildPeriodEchoesWindow(t *testing.T) {
	orc := NewOrchestrator(newFakeStore(), Config{DefaultWindowDays: 30})
	payload, err := orc.Build(context.Background(), buildReq("member-1", ""))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := Period{StartDate: "2025-06-01", EndDate: "2025-06-07", Days: 7}
	if payload.Period != want {
		t.Errorf("period = %+v, want %+v", payload.Period, want)
	}
}
