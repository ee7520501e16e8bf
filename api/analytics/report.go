package analytics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"FlowdeskSaas/api"
	"FlowdeskSaas/api/constants"
)

// ExportReport renders the comprehensive payload as a downloadable XLSX
// workbook: one summary sheet of metrics, one sheet of insights.
func ExportReport(orc *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		payload, ok := buildPayload(orc, w, r, false)
		if !ok {
			return
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Summary"
		f.SetSheetName("Sheet1", sheet)

		rows := [][]interface{}{
			{"Flowdesk Analytics Report"},
			{"User", payload.UserInfo.Name},
			{"Period", fmt.Sprintf("%s to %s (%d days)", payload.Period.StartDate, payload.Period.EndDate, payload.Period.Days)},
			{},
			{"Tasks"},
			{"Total", payload.Analytics.Tasks.Total},
			{"Completed", payload.Analytics.Tasks.Completed},
			{"Completion rate (%)", payload.Analytics.Tasks.CompletionRate},
			{"Avg completion time (days)", payload.Analytics.Tasks.AverageCompletionTimeDays},
			{},
			{"Revenue"},
			{"Total", payload.Analytics.Revenue.Total},
			{"Direct", payload.Analytics.Revenue.Direct},
			{"CRM revenue", payload.Analytics.Revenue.CRMRevenue},
			{"Average deal size", payload.Analytics.Revenue.AverageDealSize},
			{},
			{"CRM"},
			{"Total deals", payload.Analytics.CRM.TotalDeals},
			{"Won", payload.Analytics.CRM.WonDeals},
			{"Conversion rate (%)", payload.Analytics.CRM.ConversionRate},
			{"Pipeline value", payload.Analytics.CRM.PipelineValue},
			{},
			{"Finance"},
			{"Total invoiced", payload.Analytics.Finance.TotalInvoiced},
			{"Outstanding", payload.Analytics.Finance.OutstandingAmount},
			{"Payment completion rate (%)", payload.Analytics.Finance.PaymentCompletionRate},
			{"Total expenses", payload.Analytics.Finance.TotalExpenses},
			{},
			{"Performance"},
			{"Productivity score", payload.Analytics.Performance.ProductivityScore},
			{"Total points", payload.Analytics.Performance.TotalPoints},
			{"Current streak", payload.Analytics.Performance.CurrentStreak},
		}
		for i, row := range rows {
			for j, val := range row {
				cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
				f.SetCellValue(sheet, cell, val)
			}
		}

		insightSheet := "Insights"
		f.NewSheet(insightSheet)
		headers := []string{"Category", "Type", "Title", "Description", "Priority"}
		for j, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(j+1, 1)
			f.SetCellValue(insightSheet, cell, h)
		}
		for i, in := range payload.Insights {
			values := []interface{}{in.Category, in.Type, in.Title, in.Description, in.Priority}
			for j, val := range values {
				cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
				f.SetCellValue(insightSheet, cell, val)
			}
		}

		filename := fmt.Sprintf("analytics_%s_%s.xlsx", payload.UserInfo.ID, time.Now().Format("20060102"))
		w.Header().Set(constants.ContentTypeText, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		if err := f.Write(w); err != nil {
			api.LogError("write analytics report: %v", err)
		}
	}
}
