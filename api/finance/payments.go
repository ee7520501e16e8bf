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

type PaymentRequest struct {
	UserID    string  `json:"user_id"`
	PaymentID string  `json:"payment_id,omitempty"`
	InvoiceID string  `json:"invoice_id,omitempty"`
	DealID    string  `json:"deal_id,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
	Status    string  `json:"status,omitempty"`
}

type RevenueRequest struct {
	UserID      string  `json:"user_id"`
	Amount      float64 `json:"amount,omitempty"`
	RevenueType string  `json:"revenue_type,omitempty"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date,omitempty"`
}

var paymentStatuses = map[string]bool{
	constants.PaymentPending:    true,
	constants.PaymentProcessing: true,
	constants.PaymentCompleted:  true,
	constants.PaymentFailed:     true,
	constants.PaymentRefunded:   true,
}

var revenueTypes = map[string]bool{
	"sales": true, "commission": true, "bonus": true,
	"project": true, "retainer": true, "other": true,
}

// RecordPayment inserts a client payment. A completed payment against a sent
// or overdue invoice marks that invoice paid when the sum of completed
// payments covers its amount.
func RecordPayment(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		amount := decimal.NewFromFloat(req.Amount)
		if !amount.IsPositive() {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Payment amount must be positive")
			return
		}
		status := req.Status
		if status == "" {
			status = constants.PaymentCompleted
		}
		if !paymentStatuses[status] {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Unknown payment status: "+status)
			return
		}

		ctx := r.Context()
		tx, err := pool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrTxStartFailed+err.Error())
			return
		}
		defer tx.Rollback(ctx)

		var paymentID string
		err = tx.QueryRow(ctx, `
			INSERT INTO client_payments (user_id, invoice_id, deal_id, amount, payment_status, payment_date, created_at)
			VALUES ($1, NULLIF($2,''), NULLIF($3,''), $4, $5, now(), now())
			RETURNING id`,
			req.UserID, req.InvoiceID, req.DealID, amount, status,
		).Scan(&paymentID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}

		invoiceSettled := false
		if status == constants.PaymentCompleted && req.InvoiceID != "" {
			var invoiceAmount, paidTotal float64
			err = tx.QueryRow(ctx, `
				SELECT i.amount::float8,
				       COALESCE((SELECT SUM(p.amount) FROM client_payments p
				                 WHERE p.invoice_id = i.id AND p.payment_status = $2), 0)::float8
				FROM invoices i
				WHERE i.id = $1 AND i.owner_id = $3 AND i.status IN ($4, $5)
				FOR UPDATE`,
				req.InvoiceID, constants.PaymentCompleted, req.UserID,
				constants.InvoiceSent, constants.InvoiceOverdue).Scan(&invoiceAmount, &paidTotal)
			if err == nil && paidTotal >= invoiceAmount {
				if _, err = tx.Exec(ctx, `
					UPDATE invoices SET status = $1, paid_at = now(), updated_at = now()
					WHERE id = $2`, constants.InvoicePaid, req.InvoiceID); err != nil {
					api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
					return
				}
				invoiceSettled = true
			}
		}

		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrTxCommitFailed+err.Error())
			return
		}
		api.RespondWithData(w, map[string]interface{}{
			"payment_id":      paymentID,
			"status":          status,
			"invoice_settled": invoiceSettled,
		})
	}
}

func GetPayments(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		rows, err := pool.Query(r.Context(), `
			SELECT id, COALESCE(invoice_id::text,''), COALESCE(deal_id::text,''),
			       COALESCE(amount,0)::float8, payment_status, payment_date
			FROM client_payments
			WHERE user_id = $1
			ORDER BY payment_date DESC`, req.UserID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		defer rows.Close()

		payments := []map[string]interface{}{}
		for rows.Next() {
			var (
				id, invoiceID, dealID, status string
				amount                        float64
				paymentDate                   time.Time
			)
			if err := rows.Scan(&id, &invoiceID, &dealID, &amount, &status, &paymentDate); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
				return
			}
			payments = append(payments, map[string]interface{}{
				"id": id, "invoice_id": invoiceID, "deal_id": dealID,
				"amount": amount, "payment_status": status,
				"payment_date": paymentDate.Format(constants.DateTimeFormat),
			})
		}
		api.RespondWithData(w, payments)
	}
}

func CreateRevenueEntry(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RevenueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		amount := decimal.NewFromFloat(req.Amount)
		if !amount.IsPositive() {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Revenue amount must be positive")
			return
		}
		revenueType := req.RevenueType
		if revenueType == "" {
			revenueType = "sales"
		}
		if !revenueTypes[revenueType] {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Unknown revenue_type: "+revenueType)
			return
		}
		txDate := time.Now().UTC()
		if req.Date != "" {
			d, err := time.Parse(constants.DateFormat, req.Date)
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Invalid date, expected YYYY-MM-DD")
				return
			}
			txDate = d
		}
		var entryID string
		err := pool.QueryRow(r.Context(), `
			INSERT INTO user_revenue (user_id, amount, revenue_type, description, transaction_date, created_at)
			VALUES ($1, $2, $3, $4, $5, now())
			RETURNING id`,
			req.UserID, amount, revenueType, req.Description, txDate,
		).Scan(&entryID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		api.RespondWithData(w, map[string]interface{}{"revenue_id": entryID, "revenue_type": revenueType})
	}
}

func GetRevenueEntries(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RevenueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		rows, err := pool.Query(r.Context(), `
			SELECT id, COALESCE(amount,0)::float8, revenue_type, COALESCE(description,''), transaction_date
			FROM user_revenue
			WHERE user_id = $1
			ORDER BY transaction_date DESC`, req.UserID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		defer rows.Close()

		entries := []map[string]interface{}{}
		for rows.Next() {
			var (
				id, revenueType, description string
				amount                       float64
				txDate                       time.Time
			)
			if err := rows.Scan(&id, &amount, &revenueType, &description, &txDate); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
				return
			}
			entries = append(entries, map[string]interface{}{
				"id": id, "amount": amount, "revenue_type": revenueType,
				"description":      description,
				"transaction_date": txDate.Format(constants.DateFormat),
			})
		}
		api.RespondWithData(w, entries)
	}
}
