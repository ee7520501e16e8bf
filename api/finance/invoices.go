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

type InvoiceRequest struct {
	UserID    string  `json:"user_id"`
	InvoiceID string  `json:"invoice_id,omitempty"`
	ClientID  string  `json:"client_id,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
	Status    string  `json:"status,omitempty"`
	DueDate   string  `json:"due_date,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

// Invoice status flow: draft -> sent -> paid, with sent -> overdue applied by
// the nightly sweep. Paid is terminal.
var invoiceTransitions = map[string][]string{
	constants.InvoiceDraft:   {constants.InvoiceSent},
	constants.InvoiceSent:    {constants.InvoicePaid, constants.InvoiceOverdue},
	constants.InvoiceOverdue: {constants.InvoicePaid},
	constants.InvoicePaid:    {},
}

func invoiceTransitionAllowed(from, to string) bool {
	for _, s := range invoiceTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func CreateInvoice(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req InvoiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		amount := decimal.NewFromFloat(req.Amount)
		if !amount.IsPositive() {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Invoice amount must be positive")
			return
		}
		var dueDate interface{}
		if req.DueDate != "" {
			d, err := time.Parse(constants.DateFormat, req.DueDate)
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Invalid due_date, expected YYYY-MM-DD")
				return
			}
			dueDate = d
		}
		var invoiceID string
		err := pool.QueryRow(r.Context(), `
			INSERT INTO invoices (owner_id, client_id, amount, status, due_date, notes, created_at)
			VALUES ($1, NULLIF($2,''), $3, $4, $5, $6, now())
			RETURNING id`,
			req.UserID, req.ClientID, amount, constants.InvoiceDraft, dueDate, req.Notes,
		).Scan(&invoiceID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		api.RespondWithData(w, map[string]interface{}{"invoice_id": invoiceID, "status": constants.InvoiceDraft})
	}
}

func GetInvoices(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req InvoiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		query := `
			SELECT id, COALESCE(client_id::text,''), COALESCE(amount,0)::float8, status,
			       due_date, COALESCE(notes,''), created_at
			FROM invoices
			WHERE owner_id = $1`
		args := []interface{}{req.UserID}
		if req.Status != "" {
			query += ` AND status = $2`
			args = append(args, req.Status)
		}
		query += ` ORDER BY created_at DESC`

		rows, err := pool.Query(r.Context(), query, args...)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		defer rows.Close()

		invoices := []map[string]interface{}{}
		for rows.Next() {
			var (
				id, clientID, status, notes string
				amount                      float64
				dueDate                     *time.Time
				createdAt                   time.Time
			)
			if err := rows.Scan(&id, &clientID, &amount, &status, &dueDate, &notes, &createdAt); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
				return
			}
			inv := map[string]interface{}{
				"id": id, "client_id": clientID, "amount": amount,
				"status": status, "notes": notes,
				"created_at": createdAt.Format(constants.DateTimeFormat),
			}
			if dueDate != nil {
				inv["due_date"] = dueDate.Format(constants.DateFormat)
			}
			invoices = append(invoices, inv)
		}
		api.RespondWithData(w, invoices)
	}
}

func UpdateInvoiceStatus(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req InvoiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		if req.InvoiceID == "" || req.Status == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Missing invoice_id or status")
			return
		}

		ctx := r.Context()
		tx, err := pool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrTxStartFailed+err.Error())
			return
		}
		defer tx.Rollback(ctx)

		var current string
		err = tx.QueryRow(ctx, `
			SELECT status FROM invoices
			WHERE id = $1 AND owner_id = $2
			FOR UPDATE`, req.InvoiceID, req.UserID).Scan(&current)
		if err != nil {
			api.RespondWithError(w, http.StatusNotFound, constants.CodeNotFound, constants.ErrRecordNotFound)
			return
		}
		if !invoiceTransitionAllowed(current, req.Status) {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput,
				"Invalid invoice status transition from "+current+" to "+req.Status)
			return
		}
		if req.Status == constants.InvoicePaid {
			_, err = tx.Exec(ctx, `
				UPDATE invoices SET status = $1, paid_at = now(), updated_at = now()
				WHERE id = $2`, req.Status, req.InvoiceID)
		} else {
			_, err = tx.Exec(ctx, `
				UPDATE invoices SET status = $1, updated_at = now()
				WHERE id = $2`, req.Status, req.InvoiceID)
		}
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrTxCommitFailed+err.Error())
			return
		}
		api.RespondWithData(w, map[string]interface{}{"invoice_id": req.InvoiceID, "status": req.Status})
	}
}

func DeleteInvoice(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req InvoiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		if req.InvoiceID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Missing invoice_id")
			return
		}
		tag, err := pool.Exec(r.Context(), `
			DELETE FROM invoices WHERE id = $1 AND owner_id = $2 AND status = $3`,
			req.InvoiceID, req.UserID, constants.InvoiceDraft)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		if tag.RowsAffected() == 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Only draft invoices can be deleted")
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
