package tasks

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"FlowdeskSaas/api"
	"FlowdeskSaas/api/constants"
)

type TaskRequest struct {
	UserID      string `json:"user_id"`
	TaskID      string `json:"task_id,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	Points      int    `json:"points,omitempty"`
}

// allowedTransitions is the forward path of the kanban board. A completed task
// is terminal and cannot move again.
var allowedTransitions = map[string][]string{
	constants.TaskStatusTodo:       {constants.TaskStatusInProgress},
	constants.TaskStatusInProgress: {constants.TaskStatusTodo, constants.TaskStatusReview},
	constants.TaskStatusReview:     {constants.TaskStatusInProgress, constants.TaskStatusCompleted},
	constants.TaskStatusCompleted:  {},
}

func transitionAllowed(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func CreateTask(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		if req.Title == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Missing task title")
			return
		}
		status := req.Status
		if status == "" {
			status = constants.TaskStatusTodo
		}
		priority := req.Priority
		if priority == "" {
			priority = "medium"
		}
		points := req.Points
		if points <= 0 {
			points = 10
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

		var taskID string
		err := pool.QueryRow(r.Context(), `
			INSERT INTO tasks (owner_id, title, description, status, priority, due_date, points, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			RETURNING id`,
			req.UserID, req.Title, req.Description, status, priority, dueDate, points,
		).Scan(&taskID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		api.RespondWithData(w, map[string]interface{}{"task_id": taskID, "status": status})
	}
}

func GetTasks(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		query := `
			SELECT id, title, COALESCE(description,''), status, COALESCE(priority,'medium'),
			       due_date, points, created_at, completed_at
			FROM tasks
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

		tasks := []map[string]interface{}{}
		for rows.Next() {
			var (
				id, title, description, status, priority string
				dueDate, completedAt                     *time.Time
				points                                   int
				createdAt                                time.Time
			)
			if err := rows.Scan(&id, &title, &description, &status, &priority, &dueDate, &points, &createdAt, &completedAt); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
				return
			}
			t := map[string]interface{}{
				"id": id, "title": title, "description": description,
				"status": status, "priority": priority, "points": points,
				"created_at": createdAt.Format(constants.DateTimeFormat),
			}
			if dueDate != nil {
				t["due_date"] = dueDate.Format(constants.DateFormat)
			}
			if completedAt != nil {
				t["completed_at"] = completedAt.Format(constants.DateTimeFormat)
			}
			tasks = append(tasks, t)
		}
		api.RespondWithData(w, tasks)
	}
}

// GetKanbanBoard returns the user's open tasks grouped by board column.
func GetKanbanBoard(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		rows, err := pool.Query(r.Context(), `
			SELECT id, title, status, COALESCE(priority,'medium'), due_date, points
			FROM tasks
			WHERE owner_id = $1
			ORDER BY created_at ASC`, req.UserID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		defer rows.Close()

		board := map[string][]map[string]interface{}{
			constants.TaskStatusTodo:       {},
			constants.TaskStatusInProgress: {},
			constants.TaskStatusReview:     {},
			constants.TaskStatusCompleted:  {},
		}
		for rows.Next() {
			var (
				id, title, status, priority string
				dueDate                     *time.Time
				points                      int
			)
			if err := rows.Scan(&id, &title, &status, &priority, &dueDate, &points); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
				return
			}
			t := map[string]interface{}{"id": id, "title": title, "priority": priority, "points": points}
			if dueDate != nil {
				t["due_date"] = dueDate.Format(constants.DateFormat)
			}
			board[status] = append(board[status], t)
		}
		api.RespondWithData(w, board)
	}
}

func UpdateTask(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		if req.TaskID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Missing task_id")
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
		tag, err := pool.Exec(r.Context(), `
			UPDATE tasks SET
				title       = COALESCE(NULLIF($1,''), title),
				description = COALESCE(NULLIF($2,''), description),
				priority    = COALESCE(NULLIF($3,''), priority),
				due_date    = COALESCE($4, due_date),
				points      = CASE WHEN $5 > 0 THEN $5 ELSE points END,
				updated_at  = now()
			WHERE id = $6 AND owner_id = $7`,
			req.Title, req.Description, req.Priority, dueDate, req.Points, req.TaskID, req.UserID)
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

// UpdateTaskStatus moves a task along the board. Completing a task awards its
// points to user_stats and records the event in the activity feed.
func UpdateTaskStatus(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		if req.TaskID == "" || req.Status == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Missing task_id or status")
			return
		}

		ctx := r.Context()
		tx, err := pool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrTxStartFailed+err.Error())
			return
		}
		defer tx.Rollback(ctx)

		var current, title string
		var points int
		err = tx.QueryRow(ctx, `
			SELECT status, title, points FROM tasks
			WHERE id = $1 AND owner_id = $2
			FOR UPDATE`, req.TaskID, req.UserID).Scan(&current, &title, &points)
		if err != nil {
			api.RespondWithError(w, http.StatusNotFound, constants.CodeNotFound, constants.ErrRecordNotFound)
			return
		}
		if !transitionAllowed(current, req.Status) {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput,
				"Invalid status transition from "+current+" to "+req.Status)
			return
		}

		completing := req.Status == constants.TaskStatusCompleted
		if completing {
			_, err = tx.Exec(ctx, `
				UPDATE tasks SET status = $1, completed_at = now(), updated_at = now()
				WHERE id = $2`, req.Status, req.TaskID)
		} else {
			_, err = tx.Exec(ctx, `
				UPDATE tasks SET status = $1, completed_at = NULL, updated_at = now()
				WHERE id = $2`, req.Status, req.TaskID)
		}
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}

		if completing {
			if err := awardTaskPoints(ctx, tx, req.UserID, title, points); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
				return
			}
		}

		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrTxCommitFailed+err.Error())
			return
		}
		api.RespondWithData(w, map[string]interface{}{
			"task_id":        req.TaskID,
			"status":         req.Status,
			"points_awarded": completing,
		})
	}
}

// awardTaskPoints credits the task's point value to user_stats (upsert) and
// appends a task_completed event to the activity feed, in the caller's tx.
func awardTaskPoints(ctx context.Context, tx pgx.Tx, userID, title string, points int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO user_stats (user_id, total_points, tasks_completed, level, updated_at)
		VALUES ($1, $2, 1, 1, now())
		ON CONFLICT (user_id) DO UPDATE SET
			total_points    = user_stats.total_points + EXCLUDED.total_points,
			tasks_completed = user_stats.tasks_completed + 1,
			level           = GREATEST(1, (user_stats.total_points + EXCLUDED.total_points) / 100 + 1),
			updated_at      = now()`,
		userID, points)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO activity_feed (user_id, activity_type, description, created_at)
		VALUES ($1, 'task_completed', $2, now())`,
		userID, "Completed task: "+title)
	return err
}

func DeleteTask(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		if req.TaskID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Missing task_id")
			return
		}
		tag, err := pool.Exec(r.Context(), `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, req.TaskID, req.UserID)
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
