package crm

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"FlowdeskSaas/api"
	"FlowdeskSaas/api/constants"
)

type ClientRequest struct {
	UserID   string `json:"user_id"`
	ClientID string `json:"client_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Company  string `json:"company,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Status   string `json:"status,omitempty"`
}

type DealRequest struct {
	UserID   string  `json:"user_id"`
	DealID   string  `json:"deal_id,omitempty"`
	ClientID string  `json:"client_id,omitempty"`
	Title    string  `json:"title,omitempty"`
	Value    float64 `json:"value,omitempty"`
	Stage    string  `json:"stage,omitempty"`
}

// Pipeline stages in board order. The last two are terminal: a deal that
// reaches them is frozen.
var pipelineStages = []string{
	"Lead", "Qualified", "Proposal", "Negotiation",
	constants.StageClosedWon, constants.StageClosedLost,
}

func validStage(stage string) bool {
	for _, s := range pipelineStages {
		if s == stage {
			return true
		}
	}
	return false
}

func terminalStage(stage string) bool {
	return stage == constants.StageClosedWon || stage == constants.StageClosedLost
}

func CreateClient(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ClientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		if req.Name == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Missing client name")
			return
		}
		var clientID string
		err := pool.QueryRow(r.Context(), `
			INSERT INTO clients (owner_id, name, email, company, phone, status, created_at)
			VALUES ($1, $2, $3, $4, $5, COALESCE(NULLIF($6,''), 'active'), now())
			RETURNING id`,
			req.UserID, req.Name, req.Email, req.Company, req.Phone, req.Status,
		).Scan(&clientID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		api.RespondWithData(w, map[string]interface{}{"client_id": clientID})
	}
}

func GetClients(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ClientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		rows, err := pool.Query(r.Context(), `
			SELECT id, name, COALESCE(email,''), COALESCE(company,''), COALESCE(phone,''), status, created_at
			FROM clients
			WHERE owner_id = $1
			ORDER BY created_at DESC`, req.UserID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		defer rows.Close()

		clients := []map[string]interface{}{}
		for rows.Next() {
			var id, name, email, company, phone, status string
			var createdAt time.Time
			if err := rows.Scan(&id, &name, &email, &company, &phone, &status, &createdAt); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
				return
			}
			clients = append(clients, map[string]interface{}{
				"id": id, "name": name, "email": email, "company": company,
				"phone": phone, "status": status,
				"created_at": createdAt.Format(constants.DateTimeFormat),
			})
		}
		api.RespondWithData(w, clients)
	}
}

func UpdateClient(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ClientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		if req.ClientID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Missing client_id")
			return
		}
		tag, err := pool.Exec(r.Context(), `
			UPDATE clients SET
				name    = COALESCE(NULLIF($1,''), name),
				email   = COALESCE(NULLIF($2,''), email),
				company = COALESCE(NULLIF($3,''), company),
				phone   = COALESCE(NULLIF($4,''), phone),
				status  = COALESCE(NULLIF($5,''), status),
				updated_at = now()
			WHERE id = $6 AND owner_id = $7`,
			req.Name, req.Email, req.Company, req.Phone, req.Status, req.ClientID, req.UserID)
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

func DeleteClient(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ClientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		if req.ClientID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Missing client_id")
			return
		}
		tag, err := pool.Exec(r.Context(), `DELETE FROM clients WHERE id = $1 AND owner_id = $2`, req.ClientID, req.UserID)
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

func CreateDeal(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DealRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		if req.Title == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Missing deal title")
			return
		}
		stage := req.Stage
		if stage == "" {
			stage = "Lead"
		}
		if !validStage(stage) {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Unknown pipeline stage: "+stage)
			return
		}
		value := decimal.NewFromFloat(req.Value)
		if value.IsNegative() {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Deal value cannot be negative")
			return
		}
		var dealID string
		err := pool.QueryRow(r.Context(), `
			INSERT INTO deals (owner_id, client_id, title, value, stage, created_at)
			VALUES ($1, NULLIF($2,''), $3, $4, $5, now())
			RETURNING id`,
			req.UserID, req.ClientID, req.Title, value, stage,
		).Scan(&dealID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		api.RespondWithData(w, map[string]interface{}{"deal_id": dealID, "stage": stage})
	}
}

func GetDeals(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DealRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		rows, err := pool.Query(r.Context(), `
			SELECT id, COALESCE(client_id::text,''), title, COALESCE(value,0)::float8, stage, created_at, closed_at
			FROM deals
			WHERE owner_id = $1
			ORDER BY created_at DESC`, req.UserID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		defer rows.Close()

		deals := []map[string]interface{}{}
		for rows.Next() {
			var (
				id, clientID, title, stage string
				value                      float64
				createdAt                  time.Time
				closedAt                   *time.Time
			)
			if err := rows.Scan(&id, &clientID, &title, &value, &stage, &createdAt, &closedAt); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
				return
			}
			d := map[string]interface{}{
				"id": id, "client_id": clientID, "title": title,
				"value": value, "stage": stage,
				"created_at": createdAt.Format(constants.DateTimeFormat),
			}
			if closedAt != nil {
				d["closed_at"] = closedAt.Format(constants.DateTimeFormat)
			}
			deals = append(deals, d)
		}
		api.RespondWithData(w, deals)
	}
}

// MoveDealStage advances or retreats a deal on the pipeline board. Deals in a
// terminal stage are frozen and reject further moves.
func MoveDealStage(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DealRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		if req.DealID == "" || req.Stage == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Missing deal_id or stage")
			return
		}
		if !validStage(req.Stage) {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Unknown pipeline stage: "+req.Stage)
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
			SELECT stage FROM deals
			WHERE id = $1 AND owner_id = $2
			FOR UPDATE`, req.DealID, req.UserID).Scan(&current)
		if err != nil {
			api.RespondWithError(w, http.StatusNotFound, constants.CodeNotFound, constants.ErrRecordNotFound)
			return
		}
		if terminalStage(current) {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput,
				"Deal is already closed ("+current+") and cannot be moved")
			return
		}

		if terminalStage(req.Stage) {
			_, err = tx.Exec(ctx, `
				UPDATE deals SET stage = $1, closed_at = now(), updated_at = now()
				WHERE id = $2`, req.Stage, req.DealID)
		} else {
			_, err = tx.Exec(ctx, `
				UPDATE deals SET stage = $1, updated_at = now()
				WHERE id = $2`, req.Stage, req.DealID)
		}
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrTxCommitFailed+err.Error())
			return
		}
		api.RespondWithData(w, map[string]interface{}{"deal_id": req.DealID, "stage": req.Stage})
	}
}

func DeleteDeal(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DealRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		if req.DealID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Missing deal_id")
			return
		}
		tag, err := pool.Exec(r.Context(), `DELETE FROM deals WHERE id = $1 AND owner_id = $2`, req.DealID, req.UserID)
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

// GetPipelineSummary aggregates open deal counts and values per stage, in
// board order.
func GetPipelineSummary(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DealRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		rows, err := pool.Query(r.Context(), `
			SELECT stage, COUNT(*), COALESCE(SUM(value),0)::float8
			FROM deals
			WHERE owner_id = $1
			GROUP BY stage`, req.UserID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		defer rows.Close()

		byStage := map[string]map[string]interface{}{}
		for rows.Next() {
			var stage string
			var count int
			var total float64
			if err := rows.Scan(&stage, &count, &total); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
				return
			}
			byStage[stage] = map[string]interface{}{
				"stage": stage, "count": count,
				"total_value": decimal.NewFromFloat(total).Round(2).InexactFloat64(),
			}
		}

		summary := []map[string]interface{}{}
		for _, stage := range pipelineStages {
			if s, ok := byStage[stage]; ok {
				summary = append(summary, s)
			} else {
				summary = append(summary, map[string]interface{}{
					"stage": stage, "count": 0, "total_value": 0.0,
				})
			}
		}
		api.RespondWithData(w, summary)
	}
}
