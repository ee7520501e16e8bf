package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"FlowdeskSaas/api/constants"
)

func day(s string) time.Time {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func TestCalcTaskMetrics(t *testing.T) {
	tasks := []TaskRow{
		{ID: "t1", Status: constants.TaskStatusCompleted, CreatedAt: day("2025-06-01"), CompletedAt: dayPtr("2025-06-03")},
		{ID: "t2", Status: constants.TaskStatusTodo, CreatedAt: day("2025-06-02")},
	}
	m := CalcTaskMetrics(tasks)
	if m.Total != 2 || m.Completed != 1 {
		t.Fatalf("got total=%d completed=%d, want 2/1", m.Total, m.Completed)
	}
	if m.CompletionRate != 50 {
		t.Errorf("completion rate = %d, want 50", m.CompletionRate)
	}
	if m.AverageCompletionTimeDays != 2 {
		t.Errorf("avg completion days = %v, want 2", m.AverageCompletionTimeDays)
	}
}

func TestCalcTaskMetricsEmpty(t *testing.T) {
	m := CalcTaskMetrics(nil)
	if m.CompletionRate != 0 || m.AverageCompletionTimeDays != 0 {
		t.Errorf("empty input must yield zero rate and zero average, got %+v", m)
	}
}

func TestCalcCRMMetrics(t *testing.T) {
	deals := []DealRow{
		{ID: "d1", Value: decimal.NewFromInt(1000), Stage: constants.StageClosedWon},
		{ID: "d2", Value: decimal.NewFromInt(500), Stage: "Proposal"},
	}
	m := CalcCRMMetrics(deals)
	if m.ConversionRate != 50 {
		t.Errorf("conversion rate = %d, want 50", m.ConversionRate)
	}
	if m.PipelineValue != 500 {
		t.Errorf("pipeline value = %v, want 500", m.PipelineValue)
	}
	if m.WonDeals != 1 || m.OpenDeals != 1 || m.LostDeals != 0 {
		t.Errorf("deal breakdown wrong: %+v", m)
	}
}

func TestCalcCRMMetricsZeroDeals(t *testing.T) {
	m := CalcCRMMetrics(nil)
	if m.ConversionRate != 0 || m.PipelineValue != 0 {
		t.Errorf("no deals must yield zero conversion and pipeline, got %+v", m)
	}
}

func TestCalcRevenueMetrics(t *testing.T) {
	revenue := []RevenueRow{
		{Amount: decimal.NewFromInt(300), Type: "sales"},
		{Amount: decimal.NewFromInt(200), Type: "commission"},
	}
	deals := []DealRow{
		{Value: decimal.NewFromInt(1000), Stage: constants.StageClosedWon},
		{Value: decimal.NewFromInt(400), Stage: "Negotiation"},
	}
	m := CalcRevenueMetrics(revenue, deals)
	if m.Direct != 500 {
		t.Errorf("direct = %v, want 500", m.Direct)
	}
	if m.CRMRevenue != 1000 {
		t.Errorf("crm revenue = %v, want 1000 (only Closed Won counts)", m.CRMRevenue)
	}
	if m.Total != 1500 {
		t.Errorf("total = %v, want 1500", m.Total)
	}
	if m.Sales != 300 || m.Commission != 200 {
		t.Errorf("by-type breakdown wrong: %+v", m)
	}
	if m.AverageDealSize != 700 {
		t.Errorf("average deal size = %v, want 700", m.AverageDealSize)
	}
}

func TestCalcFinanceMetricsSettledInvoice(t *testing.T) {
	invoices := []InvoiceRow{
		{ID: "i1", TotalAmount: decimal.NewFromInt(200), Status: constants.InvoicePaid},
	}
	payments := []PaymentRow{
		{Amount: decimal.NewFromInt(200), Status: constants.PaymentCompleted},
	}
	m := CalcFinanceMetrics(invoices, payments, nil)
	if m.OutstandingAmount != 0 {
		t.Errorf("outstanding = %v, want 0", m.OutstandingAmount)
	}
	if m.PaymentCompletionRate != 100 {
		t.Errorf("payment completion rate = %d, want 100", m.PaymentCompletionRate)
	}
}

func TestCalcFinanceMetricsIgnoresNonCompletedPayments(t *testing.T) {
	invoices := []InvoiceRow{
		{ID: "i1", TotalAmount: decimal.NewFromInt(500), Status: constants.InvoiceSent},
	}
	payments := []PaymentRow{
		{Amount: decimal.NewFromInt(100), Status: constants.PaymentCompleted},
		{Amount: decimal.NewFromInt(200), Status: constants.PaymentRefunded},
		{Amount: decimal.NewFromInt(150), Status: constants.PaymentFailed},
		{Amount: decimal.NewFromInt(50), Status: constants.PaymentPending},
	}
	m := CalcFinanceMetrics(invoices, payments, nil)
	if m.OutstandingAmount != 400 {
		t.Errorf("outstanding = %v, want 400 (only completed payments reduce it)", m.OutstandingAmount)
	}
}

func TestCalcFinanceMetricsExpenses(t *testing.T) {
	expenses := []ExpenseRow{
		{Amount: decimal.NewFromInt(120), Billable: true},
		{Amount: decimal.NewFromInt(80)},
	}
	m := CalcFinanceMetrics(nil, nil, expenses)
	if m.TotalExpenses != 200 || m.BillableExpenses != 120 {
		t.Errorf("expenses wrong: total=%v billable=%v", m.TotalExpenses, m.BillableExpenses)
	}
	if m.PaymentCompletionRate != 0 {
		t.Errorf("rate with zero invoices must be 0, got %d", m.PaymentCompletionRate)
	}
}

func TestCalcPerformanceMetrics(t *testing.T) {
	tasks := TaskMetrics{Total: 5, CompletionRate: 50}
	stats := UserStatsRow{TotalPoints: 500, Level: 6, CurrentStreak: 3}
	m := CalcPerformanceMetrics(tasks, stats, nil)
	// 0.5*50 + 0.3*min(500/1000,1)*100 + 0.2*min(5/10,1)*100 = 25 + 15 + 10
	if m.ProductivityScore != 50 {
		t.Errorf("productivity score = %d, want 50", m.ProductivityScore)
	}
}

func TestCalcPerformanceMetricsCapped(t *testing.T) {
	tasks := TaskMetrics{Total: 50, CompletionRate: 100}
	stats := UserStatsRow{TotalPoints: 10000}
	m := CalcPerformanceMetrics(tasks, stats, nil)
	if m.ProductivityScore != 100 {
		t.Errorf("score must cap at 100, got %d", m.ProductivityScore)
	}
}

func TestCalcNotificationMetrics(t *testing.T) {
	n := []NotificationRow{{Read: true}, {Read: false}, {Read: false}}
	m := CalcNotificationMetrics(n)
	if m.Total != 3 || m.Unread != 2 {
		t.Fatalf("got total=%d unread=%d, want 3/2", m.Total, m.Unread)
	}
	if m.ReadRate != 33 {
		t.Errorf("read rate = %d, want 33", m.ReadRate)
	}
}

func TestCalcTimeMetricsOnTimeRate(t *testing.T) {
	w := Window{Start: day("2025-06-01"), End: day("2025-06-10")}
	tasks := []TaskRow{
		{Status: constants.TaskStatusCompleted, DueDate: dayPtr("2025-06-05"), CompletedAt: dayPtr("2025-06-04")},
		{Status: constants.TaskStatusCompleted, DueDate: dayPtr("2025-06-05"), CompletedAt: dayPtr("2025-06-07")},
		{Status: constants.TaskStatusTodo, DueDate: dayPtr("2025-06-02")},
		{Status: constants.TaskStatusTodo},
	}
	m := CalcTimeMetrics(tasks, []ActivityRow{{}, {}, {}, {}, {}}, w)
	if m.TasksWithDueDate != 3 {
		t.Errorf("tasks with due date = %d, want 3", m.TasksWithDueDate)
	}
	if m.TasksPastDue != 2 {
		t.Errorf("past due = %d, want 2", m.TasksPastDue)
	}
	if m.OnTimeDeliveryRate != 33 {
		t.Errorf("on-time rate = %d, want 33", m.OnTimeDeliveryRate)
	}
	if m.AvgEventsPerDay != 0.5 {
		t.Errorf("avg events/day = %v, want 0.5", m.AvgEventsPerDay)
	}
}

func TestSafeRateZeroDenominator(t *testing.T) {
	if got := safeRate(5, 0); got != 0 {
		t.Errorf("safeRate(5,0) = %d, want 0", got)
	}
	if got := safeRate(1, 3); got != 33 {
		t.Errorf("safeRate(1,3) = %d, want 33", got)
	}
	if got := safeRate(2, 3); got != 67 {
		t.Errorf("safeRate(2,3) = %d, want 67", got)
	}
}
