package notification

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

type NotificationService struct {
	cfg  map[string]interface{}
	pool *pgxpool.Pool
}

func NewNotificationService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &NotificationService{cfg: cfg, pool: pool}
}

func (s *NotificationService) Name() string { return "notify" }

func (s *NotificationService) Start() error {
	go StartNotificationService(s.cfg, s.pool)
	return nil
}

func (s *NotificationService) Stop() error { return nil }

type notifyRequest struct {
	UserID         string `json:"user_id"`
	NotificationID string `json:"notification_id,omitempty"`
	Title          string `json:"title,omitempty"`
	Message        string `json:"message,omitempty"`
	Type           string `json:"type,omitempty"`
	UnreadOnly     bool   `json:"unread_only,omitempty"`
}

func CreateNotification(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req notifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		if req.Title == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Missing notification title")
			return
		}
		notifType := req.Type
		if notifType == "" {
			notifType = "info"
		}
		var notificationID string
		err := pool.QueryRow(r.Context(), `
			INSERT INTO notifications (user_id, title, message, type, read, created_at)
			VALUES ($1, $2, $3, $4, false, now())
			RETURNING id`,
			req.UserID, req.Title, req.Message, notifType,
		).Scan(&notificationID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		api.RespondWithData(w, map[string]interface{}{"notification_id": notificationID})
	}
}

func GetNotifications(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req notifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		query := `
			SELECT id, title, COALESCE(message,''), type, read, created_at
			FROM notifications
			WHERE user_id = $1`
		if req.UnreadOnly {
			query += ` AND read = false`
		}
		query += ` ORDER BY created_at DESC LIMIT 100`

		rows, err := pool.Query(r.Context(), query, req.UserID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		defer rows.Close()

		notifications := []map[string]interface{}{}
		for rows.Next() {
			var (
				id, title, message, notifType string
				read                          bool
				createdAt                     time.Time
			)
			if err := rows.Scan(&id, &title, &message, &notifType, &read, &createdAt); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
				return
			}
			notifications = append(notifications, map[string]interface{}{
				"id": id, "title": title, "message": message,
				"type": notifType, "read": read,
				"created_at": createdAt.Format(constants.DateTimeFormat),
			})
		}
		api.RespondWithData(w, notifications)
	}
}

func GetUnreadCount(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req notifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		var count int
		err := pool.QueryRow(r.Context(), `
			SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = false`,
			req.UserID).Scan(&count)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		api.RespondWithData(w, map[string]interface{}{"unread": count})
	}
}

func MarkRead(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req notifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		if req.NotificationID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "Missing notification_id")
			return
		}
		tag, err := pool.Exec(r.Context(), `
			UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`,
			req.NotificationID, req.UserID)
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

func MarkAllRead(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req notifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		tag, err := pool.Exec(r.Context(), `
			UPDATE notifications SET read = true WHERE user_id = $1 AND read = false`,
			req.UserID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError, constants.ErrDBPrefix+err.Error())
			return
		}
		api.RespondWithData(w, map[string]interface{}{"marked": tag.RowsAffected()})
	}
}

func StartNotificationService(cfg map[string]interface{}, pool *pgxpool.Pool) {
	port := 3743
	if cfg != nil {
		if p, ok := cfg["port"].(int); ok && p > 0 {
			port = p
		}
	}

	router := mux.NewRouter()
	router.Use(api.RecoverMiddleware(), api.SessionMiddleware())

	router.Handle("/notify/create", CreateNotification(pool)).Methods(http.MethodPost)
	router.Handle("/notify/list", GetNotifications(pool)).Methods(http.MethodPost)
	router.Handle("/notify/unread", GetUnreadCount(pool)).Methods(http.MethodPost)
	router.Handle("/notify/read", MarkRead(pool)).Methods(http.MethodPost)
	router.Handle("/notify/read-all", MarkAllRead(pool)).Methods(http.MethodPost)

	log.Printf("Notification Service started on :%d", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), router); err != nil {
		log.Fatalf("Notification Service failed: %v", err)
	}
}
