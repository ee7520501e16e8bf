package analytics

import (
	"github.com/shopspring/decimal"

	"FlowdeskSaas/api/constants"
)

// Chart series builders bucket rows into one point per calendar day, inclusive
// and ascending. A day with no rows still gets a zero-valued point so the series
// length always equals the window's day count and charts render without gaps.

type TaskSeriesPoint struct {
	Date      string `json:"date"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}

func BuildTaskSeries(tasks []TaskRow, w Window) []TaskSeriesPoint {
	points := make([]TaskSeriesPoint, 0, w.Days())
	index := map[string]int{}
	for d := truncateDay(w.Start); !d.After(truncateDay(w.End)); d = d.AddDate(0, 0, 1) {
		key := d.Format(constants.DateFormat)
		index[key] = len(points)
		points = append(points, TaskSeriesPoint{Date: key})
	}
	for _, t := range tasks {
		if i, ok := index[t.CreatedAt.Format(constants.DateFormat)]; ok {
			points[i].Created++
		}
		if t.CompletedAt != nil {
			if i, ok := index[t.CompletedAt.Format(constants.DateFormat)]; ok {
				points[i].Completed++
			}
		}
	}
	return points
}

type RevenueSeriesPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// BuildRevenueSeries buckets direct revenue entries plus Closed Won deal values
// by day, matching the revenue.total composition.
func BuildRevenueSeries(revenue []RevenueRow, deals []DealRow, w Window) []RevenueSeriesPoint {
	daily := map[string]decimal.Decimal{}
	for _, r := range revenue {
		key := r.TransactionDate.Format(constants.DateFormat)
		daily[key] = daily[key].Add(r.Amount)
	}
	for _, d := range deals {
		if d.Stage != constants.StageClosedWon {
			continue
		}
		key := d.CreatedAt.Format(constants.DateFormat)
		daily[key] = daily[key].Add(d.Value)
	}

	points := make([]RevenueSeriesPoint, 0, w.Days())
	for d := truncateDay(w.Start); !d.After(truncateDay(w.End)); d = d.AddDate(0, 0, 1) {
		key := d.Format(constants.DateFormat)
		points = append(points, RevenueSeriesPoint{Date: key, Amount: toMoney(daily[key])})
	}
	return points
}

type DealSeriesPoint struct {
	Date    string  `json:"date"`
	Created int     `json:"created"`
	Value   float64 `json:"value"`
}

func BuildDealSeries(deals []DealRow, w Window) []DealSeriesPoint {
	counts := map[string]int{}
	values := map[string]decimal.Decimal{}
	for _, d := range deals {
		key := d.CreatedAt.Format(constants.DateFormat)
		counts[key]++
		values[key] = values[key].Add(d.Value)
	}

	points := make([]DealSeriesPoint, 0, w.Days())
	for d := truncateDay(w.Start); !d.After(truncateDay(w.End)); d = d.AddDate(0, 0, 1) {
		key := d.Format(constants.DateFormat)
		points = append(points, DealSeriesPoint{Date: key, Created: counts[key], Value: toMoney(values[key])})
	}
	return points
}

type CashflowSeriesPoint struct {
	Date      string  `json:"date"`
	Invoiced  float64 `json:"invoiced"`
	Collected float64 `json:"collected"`
	Expensed  float64 `json:"expensed"`
}

// BuildCashflowSeries tracks invoiced vs collected vs expensed amounts per day.
// Only completed payments count as collected.
func BuildCashflowSeries(invoices []InvoiceRow, payments []PaymentRow, expenses []ExpenseRow, w Window) []CashflowSeriesPoint {
	invoiced := map[string]decimal.Decimal{}
	collected := map[string]decimal.Decimal{}
	expensed := map[string]decimal.Decimal{}

	for _, i := range invoices {
		key := i.CreatedAt.Format(constants.DateFormat)
		invoiced[key] = invoiced[key].Add(i.TotalAmount)
	}
	for _, p := range payments {
		if p.Status != constants.PaymentCompleted {
			continue
		}
		key := p.PaymentDate.Format(constants.DateFormat)
		collected[key] = collected[key].Add(p.Amount)
	}
	for _, e := range expenses {
		key := e.Date.Format(constants.DateFormat)
		expensed[key] = expensed[key].Add(e.Amount)
	}

	points := make([]CashflowSeriesPoint, 0, w.Days())
	for d := truncateDay(w.Start); !d.After(truncateDay(w.End)); d = d.AddDate(0, 0, 1) {
		key := d.Format(constants.DateFormat)
		points = append(points, CashflowSeriesPoint{
			Date:      key,
			Invoiced:  toMoney(invoiced[key]),
			Collected: toMoney(collected[key]),
			Expensed:  toMoney(expensed[key]),
		})
	}
	return points
}

// Charts is the combined chart section of the payload.
type Charts struct {
	Tasks    []TaskSeriesPoint     `json:"tasks"`
	Revenue  []RevenueSeriesPoint  `json:"revenue"`
	Deals    []DealSeriesPoint     `json:"deals"`
	Cashflow []CashflowSeriesPoint `json:"cashflow"`
}
