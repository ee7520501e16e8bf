package analytics

import (
	"math"

	"github.com/shopspring/decimal"

	"FlowdeskSaas/api/constants"
)

// Metric calculators are pure functions over the fetched row sets. Every ratio
// with a zero denominator yields 0, never NaN or an error.

type TaskMetrics struct {
	Total                     int     `json:"total"`
	Completed                 int     `json:"completed"`
	InProgress                int     `json:"in_progress"`
	Todo                      int     `json:"todo"`
	Review                    int     `json:"review"`
	CompletionRate            int     `json:"completion_rate"`
	AverageCompletionTimeDays float64 `json:"average_completion_time_days"`
}

func CalcTaskMetrics(tasks []TaskRow) TaskMetrics {
	m := TaskMetrics{Total: len(tasks)}
	var sumDays float64
	var timed int
	for _, t := range tasks {
		switch t.Status {
		case constants.TaskStatusCompleted:
			m.Completed++
		case constants.TaskStatusInProgress:
			m.InProgress++
		case constants.TaskStatusReview:
			m.Review++
		default:
			m.Todo++
		}
		if t.CompletedAt != nil && !t.CreatedAt.IsZero() {
			sumDays += t.CompletedAt.Sub(t.CreatedAt).Hours() / 24
			timed++
		}
	}
	m.CompletionRate = safeRate(m.Completed, m.Total)
	if timed > 0 {
		m.AverageCompletionTimeDays = round2(sumDays / float64(timed))
	}
	return m
}

type RevenueMetrics struct {
	Total           float64 `json:"total"`
	Direct          float64 `json:"direct"`
	CRMRevenue      float64 `json:"crm_revenue"`
	Sales           float64 `json:"sales"`
	Commission      float64 `json:"commission"`
	Bonus           float64 `json:"bonus"`
	Project         float64 `json:"project"`
	AverageDealSize float64 `json:"average_deal_size"`
}

// CalcRevenueMetrics sums direct revenue entries plus the value of Closed Won
// deals. Payments never contribute to revenue; they settle invoices.
func CalcRevenueMetrics(revenue []RevenueRow, deals []DealRow) RevenueMetrics {
	direct := decimal.Zero
	byType := map[string]decimal.Decimal{}
	for _, r := range revenue {
		direct = direct.Add(r.Amount)
		byType[r.Type] = byType[r.Type].Add(r.Amount)
	}

	won := decimal.Zero
	dealSum := decimal.Zero
	for _, d := range deals {
		dealSum = dealSum.Add(d.Value)
		if d.Stage == constants.StageClosedWon {
			won = won.Add(d.Value)
		}
	}

	m := RevenueMetrics{
		Direct:     toMoney(direct),
		CRMRevenue: toMoney(won),
		Total:      toMoney(direct.Add(won)),
		Sales:      toMoney(byType["sales"]),
		Commission: toMoney(byType["commission"]),
		Bonus:      toMoney(byType["bonus"]),
		Project:    toMoney(byType["project"]),
	}
	if len(deals) > 0 {
		m.AverageDealSize = toMoney(dealSum.Div(decimal.NewFromInt(int64(len(deals)))))
	}
	return m
}

type CRMMetrics struct {
	TotalDeals     int     `json:"total_deals"`
	WonDeals       int     `json:"won_deals"`
	LostDeals      int     `json:"lost_deals"`
	OpenDeals      int     `json:"open_deals"`
	ConversionRate int     `json:"conversion_rate"`
	PipelineValue  float64 `json:"pipeline_value"`
}

func CalcCRMMetrics(deals []DealRow) CRMMetrics {
	m := CRMMetrics{TotalDeals: len(deals)}
	pipeline := decimal.Zero
	for _, d := range deals {
		switch d.Stage {
		case constants.StageClosedWon:
			m.WonDeals++
		case constants.StageClosedLost:
			m.LostDeals++
		}
		if !d.Terminal() {
			m.OpenDeals++
			pipeline = pipeline.Add(d.Value)
		}
	}
	m.ConversionRate = safeRate(m.WonDeals, m.TotalDeals)
	m.PipelineValue = toMoney(pipeline)
	return m
}

type FinanceMetrics struct {
	TotalInvoiced         float64 `json:"total_invoiced"`
	TotalInvoices         int     `json:"total_invoices"`
	PaidInvoices          int     `json:"paid_invoices"`
	OverdueInvoices       int     `json:"overdue_invoices"`
	OutstandingAmount     float64 `json:"outstanding_amount"`
	PaymentCompletionRate int     `json:"payment_completion_rate"`
	TotalExpenses         float64 `json:"total_expenses"`
	BillableExpenses      float64 `json:"billable_expenses"`
}

// CalcFinanceMetrics reconciles invoices against payments. Only payments with
// status completed reduce the outstanding balance; refunded and failed payments
// never count, at every call site.
func CalcFinanceMetrics(invoices []InvoiceRow, payments []PaymentRow, expenses []ExpenseRow) FinanceMetrics {
	m := FinanceMetrics{TotalInvoices: len(invoices)}

	invoiced := decimal.Zero
	for _, i := range invoices {
		invoiced = invoiced.Add(i.TotalAmount)
		switch i.Status {
		case constants.InvoicePaid:
			m.PaidInvoices++
		case constants.InvoiceOverdue:
			m.OverdueInvoices++
		}
	}

	collected := decimal.Zero
	for _, p := range payments {
		if p.Status == constants.PaymentCompleted {
			collected = collected.Add(p.Amount)
		}
	}

	expensed := decimal.Zero
	billable := decimal.Zero
	for _, e := range expenses {
		expensed = expensed.Add(e.Amount)
		if e.Billable {
			billable = billable.Add(e.Amount)
		}
	}

	m.TotalInvoiced = toMoney(invoiced)
	m.OutstandingAmount = toMoney(invoiced.Sub(collected))
	m.PaymentCompletionRate = safeRate(m.PaidInvoices, m.TotalInvoices)
	m.TotalExpenses = toMoney(expensed)
	m.BillableExpenses = toMoney(billable)
	return m
}

type PerformanceMetrics struct {
	ProductivityScore int `json:"productivity_score"`
	TotalPoints       int `json:"total_points"`
	Level             int `json:"level"`
	CurrentStreak     int `json:"current_streak"`
	MedalsEarned      int `json:"medals_earned"`
}

// CalcPerformanceMetrics derives the bounded productivity composite:
// 0.5*completion_rate + 0.3*min(points/1000,1)*100 + 0.2*min(tasks/10,1)*100.
func CalcPerformanceMetrics(tasks TaskMetrics, stats UserStatsRow, achievements []AchievementRow) PerformanceMetrics {
	pointsFactor := math.Min(float64(stats.TotalPoints)/1000, 1) * 100
	volumeFactor := math.Min(float64(tasks.Total)/10, 1) * 100
	score := int(math.Round(0.5*float64(tasks.CompletionRate) + 0.3*pointsFactor + 0.2*volumeFactor))

	return PerformanceMetrics{
		ProductivityScore: score,
		TotalPoints:       stats.TotalPoints,
		Level:             stats.Level,
		CurrentStreak:     stats.CurrentStreak,
		MedalsEarned:      len(achievements),
	}
}

type NotificationMetrics struct {
	Total    int `json:"total"`
	Unread   int `json:"unread"`
	ReadRate int `json:"read_rate"`
}

func CalcNotificationMetrics(notifications []NotificationRow) NotificationMetrics {
	m := NotificationMetrics{Total: len(notifications)}
	read := 0
	for _, n := range notifications {
		if n.Read {
			read++
		} else {
			m.Unread++
		}
	}
	m.ReadRate = safeRate(read, m.Total)
	return m
}

type TimeMetrics struct {
	TasksWithDueDate   int     `json:"tasks_with_due_date"`
	TasksPastDue       int     `json:"tasks_past_due"`
	ActivityEvents     int     `json:"activity_events"`
	AvgEventsPerDay    float64 `json:"avg_events_per_day"`
	OnTimeDeliveryRate int     `json:"on_time_delivery_rate"`
}

// CalcTimeMetrics summarizes deadline discipline and engagement over the window.
func CalcTimeMetrics(tasks []TaskRow, activity []ActivityRow, w Window) TimeMetrics {
	m := TimeMetrics{ActivityEvents: len(activity)}
	onTime := 0
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		m.TasksWithDueDate++
		if t.CompletedAt != nil {
			if !t.CompletedAt.After(*t.DueDate) {
				onTime++
			} else {
				m.TasksPastDue++
			}
		} else if t.DueDate.Before(w.End) && t.Status != constants.TaskStatusCompleted {
			m.TasksPastDue++
		}
	}
	m.OnTimeDeliveryRate = safeRate(onTime, m.TasksWithDueDate)
	if days := w.Days(); days > 0 {
		m.AvgEventsPerDay = round2(float64(len(activity)) / float64(days))
	}
	return m
}

// safeRate returns round(100*part/total), defined as 0 when total is 0.
func safeRate(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toMoney(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
