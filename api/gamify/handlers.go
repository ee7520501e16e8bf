package gamify

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"FlowdeskSaas/api"
	"FlowdeskSaas/api/constants"
)

type GamifyRequest struct {
	UserID   string `json:"user_id"`
	HabitID  string `json:"habit_id,omitempty"`
	Name     string `json:"name,omitempty"`
	MedalKey string `json:"medal_key,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// Medal definitions: key -> title and the points awarded when earned.
var medals = map[string]struct {
	Title  string
	Points int
}{
	"first_task":    {"First Task Done", 10},
	"task_streak_7": {"Week-Long Streak", 50},
	"task_100":      {"Century of Tasks", 200},
	"deal_closer":   {"Deal Closer", 100},
	"invoice_pro":   {"Invoice Pro", 75},
	"habit_builder": {"Habit Builder", 60},
}

// GetUserStats returns the user's points, level, streak, and completion
// counters, creating the row lazily on first read.
func GetUserStats(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GamifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		var totalPoints, level, currentStreak, longestStreak, tasksCompleted int
		err := pool.QueryRow(r.Context(), `
			INSERT INTO user_stats (user_id, total_points, level, current_streak, longest_streak, tasks_completed, updated_at)
			VALUES ($1, 0, 1, 0, 0, 0, now())
			ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
			RETURNING total_points, level, current_streak, longest_streak, tasks_completed`,
			req.UserID,
		).Scan(&totalPoints, &level, &currentStreak, &longestStreak, &tasksCompleted)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		api.RespondWithData(w, map[string]interface{}{
			"total_points":    totalPoints,
			"level":           level,
			"current_streak":  currentStreak,
			"longest_streak":  longestStreak,
			"tasks_completed": tasksCompleted,
		})
	}
}

func GetAchievements(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GamifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		rows, err := pool.Query(r.Context(), `
			SELECT medal_key, earned_at
			FROM user_achievements
			WHERE user_id = $1
			ORDER BY earned_at DESC`, req.UserID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		defer rows.Close()

		earned := []map[string]interface{}{}
		for rows.Next() {
			var medalKey string
			var earnedAt time.Time
			if err := rows.Scan(&medalKey, &earnedAt); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
				return
			}
			title := medalKey
			if m, ok := medals[medalKey]; ok {
				title = m.Title
			}
			earned = append(earned, map[string]interface{}{
				"medal_key": medalKey,
				"title":     title,
				"earned_at": earnedAt.Format(constants.DateTimeFormat),
			})
		}
		api.RespondWithData(w, earned)
	}
}

// AwardAchievement grants a medal once per user and credits its point value.
// Awarding an already-earned medal is a no-op success.
func AwardAchievement(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GamifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		medal, ok := medals[req.MedalKey]
		if !ok {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Unknown medal_key: "+req.MedalKey)
			return
		}

		ctx := r.Context()
		tx, err := pool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrTxStartFailed+err.Error())
			return
		}
		defer tx.Rollback(ctx)

		tag, err := tx.Exec(ctx, `
			INSERT INTO user_achievements (user_id, medal_key, earned_at)
			VALUES ($1, $2, now())
			ON CONFLICT (user_id, medal_key) DO NOTHING`,
			req.UserID, req.MedalKey)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		newlyEarned := tag.RowsAffected() > 0
		if newlyEarned {
			_, err = tx.Exec(ctx, `
				UPDATE user_stats SET total_points = total_points + $1, updated_at = now()
				WHERE user_id = $2`, medal.Points, req.UserID)
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
				return
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO activity_feed (user_id, activity_type, description, created_at)
				VALUES ($1, 'medal_earned', $2, now())`,
				req.UserID, "Earned medal: "+medal.Title)
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
				return
			}
		}
		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrTxCommitFailed+err.Error())
			return
		}
		api.RespondWithData(w, map[string]interface{}{
			"medal_key":     req.MedalKey,
			"newly_earned":  newlyEarned,
			"points_earned": medal.Points,
		})
	}
}

func CreateHabit(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GamifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		if req.Name == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Missing habit name")
			return
		}
		var habitID string
		err := pool.QueryRow(r.Context(), `
			INSERT INTO habits (user_id, name, current_streak, longest_streak, created_at)
			VALUES ($1, $2, 0, 0, now())
			RETURNING id`,
			req.UserID, req.Name,
		).Scan(&habitID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		api.RespondWithData(w, map[string]interface{}{"habit_id": habitID})
	}
}

func GetHabits(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GamifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		rows, err := pool.Query(r.Context(), `
			SELECT id, name, current_streak, longest_streak, last_completed_at
			FROM habits
			WHERE user_id = $1
			ORDER BY created_at ASC`, req.UserID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		defer rows.Close()

		habits := []map[string]interface{}{}
		for rows.Next() {
			var (
				id, name                     string
				currentStreak, longestStreak int
				lastCompletedAt              *time.Time
			)
			if err := rows.Scan(&id, &name, &currentStreak, &longestStreak, &lastCompletedAt); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
				return
			}
			h := map[string]interface{}{
				"id": id, "name": name,
				"current_streak": currentStreak, "longest_streak": longestStreak,
			}
			if lastCompletedAt != nil {
				h["last_completed_at"] = lastCompletedAt.Format(constants.DateTimeFormat)
				h["completed_today"] = lastCompletedAt.UTC().Format(constants.DateFormat) == time.Now().UTC().Format(constants.DateFormat)
			} else {
				h["completed_today"] = false
			}
			habits = append(habits, h)
		}
		api.RespondWithData(w, habits)
	}
}

// CompleteHabit marks today's completion. A second completion on the same day
// is rejected; completing after a missed day restarts the streak at 1.
func CompleteHabit(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GamifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		if req.HabitID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Missing habit_id")
			return
		}

		ctx := r.Context()
		tx, err := pool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrTxStartFailed+err.Error())
			return
		}
		defer tx.Rollback(ctx)

		var currentStreak, longestStreak int
		var lastCompletedAt *time.Time
		err = tx.QueryRow(ctx, `
			SELECT current_streak, longest_streak, last_completed_at
			FROM habits
			WHERE id = $1 AND user_id = $2
			FOR UPDATE`, req.HabitID, req.UserID).Scan(&currentStreak, &longestStreak, &lastCompletedAt)
		if err != nil {
			api.RespondWithError(w, http.StatusNotFound, constants.CodeNotFound, constants.ErrRecordNotFound)
			return
		}

		today := time.Now().UTC().Truncate(24 * time.Hour)
		if lastCompletedAt != nil {
			last := lastCompletedAt.UTC().Truncate(24 * time.Hour)
			if last.Equal(today) {
				api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Habit already completed today")
				return
			}
			if last.Equal(today.AddDate(0, 0, -1)) {
				currentStreak++
			} else {
				currentStreak = 1
			}
		} else {
			currentStreak = 1
		}
		if currentStreak > longestStreak {
			longestStreak = currentStreak
		}

		_, err = tx.Exec(ctx, `
			UPDATE habits SET current_streak = $1, longest_streak = $2, last_completed_at = now()
			WHERE id = $3`, currentStreak, longestStreak, req.HabitID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		_, err = tx.Exec(ctx, `
			UPDATE user_stats SET total_points = total_points + 5, updated_at = now()
			WHERE user_id = $1`, req.UserID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrTxCommitFailed+err.Error())
			return
		}
		api.RespondWithData(w, map[string]interface{}{
			"habit_id":       req.HabitID,
			"current_streak": currentStreak,
			"longest_streak": longestStreak,
		})
	}
}

// GetLeaderboard ranks users by total points, default top 10.
func GetLeaderboard(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GamifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		limit := req.Limit
		if limit <= 0 || limit > 100 {
			limit = 10
		}
		rows, err := pool.Query(r.Context(), `
			SELECT s.user_id, u.full_name, s.total_points, s.level, s.current_streak
			FROM user_stats s
			JOIN users u ON u.id = s.user_id
			ORDER BY s.total_points DESC, u.full_name ASC
			LIMIT $1`, limit)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		defer rows.Close()

		board := []map[string]interface{}{}
		rank := 0
		for rows.Next() {
			var userID, name string
			var totalPoints, level, streak int
			if err := rows.Scan(&userID, &name, &totalPoints, &level, &streak); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
				return
			}
			rank++
			board = append(board, map[string]interface{}{
				"rank": rank, "user_id": userID, "name": name,
				"total_points": totalPoints, "level": level, "current_streak": streak,
			})
		}
		api.RespondWithData(w, board)
	}
}
