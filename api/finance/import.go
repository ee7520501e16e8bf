package finance

import (
	"encoding/csv"
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"FlowdeskSaas/api"
	"FlowdeskSaas/api/constants"
)

func parseExpenseFile(file multipart.File, ext string) ([][]string, error) {
	switch ext {
	case ".csv":
		r := csv.NewReader(file)
		r.FieldsPerRecord = -1
		return r.ReadAll()
	case ".xlsx":
		f, err := excelize.OpenReader(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return f.GetRows(f.GetSheetName(0))
	case ".xls":
		wb, err := xls.OpenReader(file, "utf-8")
		if err != nil {
			return nil, err
		}
		sheet := wb.GetSheet(0)
		if sheet == nil {
			return nil, errors.New("xls file has no sheets")
		}
		rows := make([][]string, 0, int(sheet.MaxRow)+1)
		for i := 0; i <= int(sheet.MaxRow); i++ {
			row := sheet.Row(i)
			if row == nil {
				continue
			}
			vals := make([]string, 0, row.LastCol())
			for j := 0; j < row.LastCol(); j++ {
				vals = append(vals, row.Col(j))
			}
			rows = append(rows, vals)
		}
		return rows, nil
	}
	return nil, errors.New("unsupported file type: " + ext)
}

// headerIndex maps the expected import columns to their positions in the
// uploaded header row.
func headerIndex(header []string) (map[string]int, error) {
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, want := range []string{"date", "amount"} {
		if _, ok := idx[want]; !ok {
			return nil, errors.New("missing required column: " + want)
		}
	}
	return idx, nil
}

func cellAt(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseImportDate(s string) (time.Time, error) {
	for _, layout := range []string{constants.DateFormat, "02-01-2006", "01/02/2006", "2006/01/02"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, errors.New("unparsable date: " + s)
}

// ImportExpenses bulk-loads expenses from an uploaded .xlsx, .xls, or .csv
// file. Rows are staged with pgx CopyFrom under a batch id; invalid rows are
// skipped and reported back by row number.
func ImportExpenses(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrFileUploadFailed)
			return
		}
		userID := r.FormValue(constants.KeyUserID)
		if userID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrMissingUserID)
			return
		}
		files := r.MultipartForm.File["file"]
		if len(files) == 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "No files uploaded")
			return
		}

		batchID := uuid.New().String()
		imported := 0
		skipped := []map[string]interface{}{}

		for _, fh := range files {
			file, err := fh.Open()
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Failed to open file: "+fh.Filename)
				return
			}
			ext := strings.ToLower(filepath.Ext(fh.Filename))
			records, err := parseExpenseFile(file, ext)
			file.Close()
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidFileFormat)
				return
			}
			if len(records) < 2 {
				api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrEmptyFile)
				return
			}
			idx, err := headerIndex(records[0])
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidHeaders+": "+err.Error())
				return
			}

			copyRows := [][]interface{}{}
			for n, row := range records[1:] {
				amountStr := cellAt(row, idx, "amount")
				amount, err := decimal.NewFromString(amountStr)
				if err != nil || !amount.IsPositive() {
					skipped = append(skipped, map[string]interface{}{
						"file": fh.Filename, "row": n + 2, "reason": "invalid amount: " + amountStr,
					})
					continue
				}
				expenseDate, err := parseImportDate(cellAt(row, idx, "date"))
				if err != nil {
					skipped = append(skipped, map[string]interface{}{
						"file": fh.Filename, "row": n + 2, "reason": err.Error(),
					})
					continue
				}
				category := cellAt(row, idx, "category")
				if category == "" {
					category = "general"
				}
				billable, _ := strconv.ParseBool(cellAt(row, idx, "billable"))

				copyRows = append(copyRows, []interface{}{
					userID, amount, category, cellAt(row, idx, "description"),
					cellAt(row, idx, "vendor"), expenseDate, billable, batchID,
				})
			}

			if len(copyRows) > 0 {
				count, err := pool.CopyFrom(ctx,
					pgx.Identifier{"expenses"},
					[]string{"user_id", "amount", "category", "description", "vendor", "expense_date", "billable", "import_batch_id"},
					pgx.CopyFromRows(copyRows),
				)
				if err != nil {
					api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
					return
				}
				imported += int(count)
			}
		}

		api.LogInfo("expense import batch %s for user %s: %d imported, %d skipped", batchID, userID, imported, len(skipped))
		api.RespondWithData(w, map[string]interface{}{
			"batch_id": batchID,
			"imported": imported,
			"skipped":  skipped,
		})
	}
}
