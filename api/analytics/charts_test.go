package analytics

import (
	"testing"

	"github.com/shopspring/decimal"

	"FlowdeskSaas/api/constants"
)

func TestBuildTaskSeriesGapFree(t *testing.T) {
	w := Window{Start: day("2025-06-01"), End: day("2025-06-07")}
	tasks := []TaskRow{
		{CreatedAt: day("2025-06-01"), CompletedAt: dayPtr("2025-06-03")},
		{CreatedAt: day("2025-06-03")},
	}
	series := BuildTaskSeries(tasks, w)
	if len(series) != w.Days() {
		t.Fatalf("series length = %d, want %d", len(series), w.Days())
	}
	for i := 1; i < len(series); i++ {
		if series[i].Date <= series[i-1].Date {
			t.Fatalf("series not strictly ascending at %d: %s then %s", i, series[i-1].Date, series[i].Date)
		}
	}
	if series[0].Created != 1 || series[2].Created != 1 || series[2].Completed != 1 {
		t.Errorf("buckets wrong: %+v", series)
	}
	// days with no rows stay present with zero values
	if series[5].Created != 0 || series[5].Completed != 0 {
		t.Errorf("empty day must be zero-valued, got %+v", series[5])
	}
}

func TestBuildTaskSeriesSingleDay(t *testing.T) {
	w := Window{Start: day("2025-06-01"), End: day("2025-06-01")}
	series := BuildTaskSeries(nil, w)
	if len(series) != 1 {
		t.Fatalf("single-day window must yield one point, got %d", len(series))
	}
}

func TestBuildRevenueSeriesComposition(t *testing.T) {
	w := Window{Start: day("2025-06-01"), End: day("2025-06-03")}
	revenue := []RevenueRow{
		{Amount: decimal.NewFromInt(100), TransactionDate: day("2025-06-01")},
	}
	deals := []DealRow{
		{Value: decimal.NewFromInt(500), Stage: constants.StageClosedWon, CreatedAt: day("2025-06-01")},
		{Value: decimal.NewFromInt(900), Stage: "Proposal", CreatedAt: day("2025-06-02")},
	}
	series := BuildRevenueSeries(revenue, deals, w)
	if len(series) != 3 {
		t.Fatalf("series length = %d, want 3", len(series))
	}
	if series[0].Amount != 600 {
		t.Errorf("day 1 amount = %v, want 600 (direct + won deal)", series[0].Amount)
	}
	if series[1].Amount != 0 {
		t.Errorf("open deal must not contribute, got %v", series[1].Amount)
	}
}

func TestBuildCashflowSeriesCollectedOnlyCompleted(t *testing.T) {
	w := Window{Start: day("2025-06-01"), End: day("2025-06-02")}
	invoices := []InvoiceRow{
		{TotalAmount: decimal.NewFromInt(400), CreatedAt: day("2025-06-01")},
	}
	payments := []PaymentRow{
		{Amount: decimal.NewFromInt(150), Status: constants.PaymentCompleted, PaymentDate: day("2025-06-02")},
		{Amount: decimal.NewFromInt(999), Status: constants.PaymentRefunded, PaymentDate: day("2025-06-02")},
	}
	expenses := []ExpenseRow{
		{Amount: decimal.NewFromInt(75), Date: day("2025-06-01")},
	}
	series := BuildCashflowSeries(invoices, payments, expenses, w)
	if series[0].Invoiced != 400 || series[0].Expensed != 75 {
		t.Errorf("day 1 wrong: %+v", series[0])
	}
	if series[1].Collected != 150 {
		t.Errorf("collected = %v, want 150 (refunded payment excluded)", series[1].Collected)
	}
}

func TestBuildDealSeriesRowsOutsideWindowIgnored(t *testing.T) {
	w := Window{Start: day("2025-06-01"), End: day("2025-06-02")}
	deals := []DealRow{
		{Value: decimal.NewFromInt(100), CreatedAt: day("2025-05-20")},
		{Value: decimal.NewFromInt(200), CreatedAt: day("2025-06-02")},
	}
	series := BuildDealSeries(deals, w)
	if len(series) != 2 {
		t.Fatalf("series length = %d, want 2", len(series))
	}
	if series[0].Created != 0 || series[1].Created != 1 || series[1].Value != 200 {
		t.Errorf("out-of-window deal leaked into series: %+v", series)
	}
}
