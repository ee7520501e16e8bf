package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"FlowdeskSaas/api/auth"
	"FlowdeskSaas/api/constants"
)

type contextKey string

const (
	UserIDKey  contextKey = "userID"
	SessionKey contextKey = "session"
)

// GetUserIDFromCtx returns the authenticated caller id set by SessionMiddleware.
func GetUserIDFromCtx(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// GetSessionFromCtx returns the caller session set by SessionMiddleware.
func GetSessionFromCtx(ctx context.Context) *auth.UserSession {
	if session, ok := ctx.Value(SessionKey).(*auth.UserSession); ok {
		return session
	}
	return nil
}

// SessionMiddleware extracts user_id from the JSON or multipart body, validates it
// against the active sessions, and attaches the caller identity to the context.
// The body is re-buffered for downstream handlers.
func SessionMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID string
			ct := r.Header.Get(constants.ContentTypeText)
			if strings.HasPrefix(ct, constants.ContentTypeJSON) && (r.Method == http.MethodPost || r.Method == http.MethodPut) {
				bodyBytes, _ := io.ReadAll(r.Body)
				var bodyMap map[string]interface{}
				if err := json.Unmarshal(bodyBytes, &bodyMap); err == nil {
					if uid, ok := bodyMap[constants.KeyUserID].(string); ok {
						userID = uid
					}
				}
				r.Body = io.NopCloser(strings.NewReader(string(bodyBytes)))
			} else if strings.HasPrefix(ct, constants.ContentTypeMultipart) && (r.Method == http.MethodPost || r.Method == http.MethodPut) {
				if err := r.ParseMultipartForm(32 << 20); err == nil {
					userID = r.FormValue(constants.KeyUserID)
				}
			}

			if userID == "" {
				RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrMissingUserID)
				return
			}

			session := auth.FindSessionByUserID(userID)
			if session == nil {
				RespondWithError(w, http.StatusUnauthorized, constants.CodeAccessDenied, constants.ErrInvalidSession)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RecoverMiddleware converts an unexpected panic into a structured internal-error
// response so a single bad request never takes down the service.
func RecoverMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					LogError("panic serving %s: %v", r.URL.Path, rec)
					RespondWithError(w, http.StatusInternalServerError, constants.CodeInternalError,
						fmt.Sprintf("%s: %v", constants.ErrInternalServer, rec))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
