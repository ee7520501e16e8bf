package assistant

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"FlowdeskSaas/api"
	"FlowdeskSaas/api/constants"
	"FlowdeskSaas/internal/serviceiface"
)

type AssistantService struct {
	cfg  map[string]interface{}
	pool *pgxpool.Pool
}

func NewAssistantService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &AssistantService{cfg: cfg, pool: pool}
}

func (s *AssistantService) Name() string { return "assistant" }

func (s *AssistantService) Start() error {
	go StartAssistantService(s.cfg, s.pool)
	return nil
}

func (s *AssistantService) Stop() error { return nil }

type assistantRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// CreateTaskFromText interprets a natural-language request and creates the
// corresponding task, echoing back what was understood.
func CreateTaskFromText(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assistantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		if req.Text == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Missing text")
			return
		}
		parsed := Parse(req.Text, time.Now())

		ctx := r.Context()
		tx, err := pool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrTxStartFailed+err.Error())
			return
		}
		defer tx.Rollback(ctx)

		var dueDate interface{}
		if parsed.DueDate != nil {
			dueDate = *parsed.DueDate
		}
		var taskID string
		err = tx.QueryRow(ctx, `
			INSERT INTO tasks (owner_id, title, status, priority, due_date, points, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
			RETURNING id`,
			req.UserID, parsed.Title, constants.TaskStatusTodo, parsed.Priority, dueDate, parsed.Points,
		).Scan(&taskID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO activity_feed (user_id, activity_type, description, created_at)
			VALUES ($1, 'assistant_task_created', $2, now())`,
			req.UserID, "Assistant created task: "+parsed.Title)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrTxCommitFailed+err.Error())
			return
		}

		resp := map[string]interface{}{
			"task_id":  taskID,
			"title":    parsed.Title,
			"priority": parsed.Priority,
			"points":   parsed.Points,
		}
		if parsed.DueDate != nil {
			resp["due_date"] = parsed.DueDate.Format(constants.DateFormat)
		}
		api.RespondWithData(w, resp)
	}
}

func StartAssistantService(cfg map[string]interface{}, pool *pgxpool.Pool) {
	port := 3643
	if cfg != nil {
		if p, ok := cfg["port"].(int); ok && p > 0 {
			port = p
		}
	}

	router := mux.NewRouter()
	router.Use(api.RecoverMiddleware(), api.SessionMiddleware())

	router.Handle("/assistant/task", CreateTaskFromText(pool)).Methods(http.MethodPost)

	log.Printf("Assistant Service started on :%d", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), router); err != nil {
		log.Fatalf("Assistant Service failed: %v", err)
	}
}
