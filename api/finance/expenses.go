package finance

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"FlowdeskSaas/api"
	"FlowdeskSaas/api/constants"
)

type ExpenseRequest struct {
	UserID      string  `json:"user_id"`
	ExpenseID   string  `json:"expense_id,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
	Vendor      string  `json:"vendor,omitempty"`
	ExpenseDate string  `json:"expense_date,omitempty"`
	Billable    bool    `json:"billable,omitempty"`
}

func CreateExpense(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExpenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		amount := decimal.NewFromFloat(req.Amount)
		if !amount.IsPositive() {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Expense amount must be positive")
			return
		}
		expenseDate := time.Now().UTC()
		if req.ExpenseDate != "" {
			d, err := time.Parse(constants.DateFormat, req.ExpenseDate)
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Invalid expense_date, expected YYYY-MM-DD")
				return
			}
			expenseDate = d
		}
		var expenseID string
		err := pool.QueryRow(r.Context(), `
			INSERT INTO expenses (user_id, amount, category, description, vendor, expense_date, billable, created_at)
			VALUES ($1, $2, COALESCE(NULLIF($3,''), 'general'), $4, $5, $6, $7, now())
			RETURNING id`,
			req.UserID, amount, req.Category, req.Description, req.Vendor, expenseDate, req.Billable,
		).Scan(&expenseID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		api.RespondWithData(w, map[string]interface{}{"expense_id": expenseID})
	}
}

func GetExpenses(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExpenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		rows, err := pool.Query(r.Context(), `
			SELECT id, COALESCE(amount,0)::float8, category, COALESCE(description,''),
			       COALESCE(vendor,''), expense_date, COALESCE(billable,false), created_at
			FROM expenses
			WHERE user_id = $1
			ORDER BY expense_date DESC`, req.UserID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		defer rows.Close()

		expenses := []map[string]interface{}{}
		for rows.Next() {
			var (
				id, category, description, vendor string
				amount                            float64
				billable                          bool
				expenseDate, createdAt            time.Time
			)
			if err := rows.Scan(&id, &amount, &category, &description, &vendor, &expenseDate, &billable, &createdAt); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
				return
			}
			expenses = append(expenses, map[string]interface{}{
				"id": id, "amount": amount, "category": category,
				"description": description, "vendor": vendor, "billable": billable,
				"expense_date": expenseDate.Format(constants.DateFormat),
				"created_at":   createdAt.Format(constants.DateTimeFormat),
			})
		}
		api.RespondWithData(w, expenses)
	}
}

func DeleteExpense(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExpenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		if req.ExpenseID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Missing expense_id")
			return
		}
		tag, err := pool.Exec(r.Context(), `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, req.ExpenseID, req.UserID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		if tag.RowsAffected() == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.CodeNotFound, constants.ErrRecordNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
