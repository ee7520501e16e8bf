package analytics

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"FlowdeskSaas/api"
	"FlowdeskSaas/api/constants"
)

// analyticsRequest mirrors the wire shape: auth user_id at the top level, the
// aggregation knobs under params.
type analyticsRequest struct {
	UserID string `json:"user_id"`
	Action string `json:"action,omitempty"`
	Params struct {
		UserID        string `json:"user_id,omitempty"`
		StartDate     string `json:"start_date,omitempty"`
		EndDate       string `json:"end_date,omitempty"`
		IncludeCharts *bool  `json:"include_charts,omitempty"`
	} `json:"params"`
}

func decodeRequest(r *http.Request) (analyticsRequest, bool) {
	var req analyticsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, false
	}
	return req, true
}

func buildPayload(orc *Orchestrator, w http.ResponseWriter, r *http.Request, defaultCharts bool) (*Payload, bool) {
	req, ok := decodeRequest(r)
	if !ok {
		api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidRequestBody)
		return nil, false
	}

	includeCharts := defaultCharts
	if req.Params.IncludeCharts != nil {
		includeCharts = *req.Params.IncludeCharts
	}

	payload, err := orc.Build(r.Context(), Request{
		CallerID:      api.GetUserIDFromCtx(r.Context()),
		TargetUserID:  req.Params.UserID,
		StartDate:     req.Params.StartDate,
		EndDate:       req.Params.EndDate,
		IncludeCharts: includeCharts,
	})
	if err != nil {
		// The only Build failures are identity resolution; surface as access denied.
		api.RespondWithError(w, http.StatusForbidden, constants.CodeAccessDenied, constants.ErrUnauthorized)
		return nil, false
	}
	return payload, true
}

// GetComprehensiveAnalytics returns the full analytics/charts/insights payload.
func GetComprehensiveAnalytics(orc *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		payload, ok := buildPayload(orc, w, r, true)
		if !ok {
			return
		}
		api.RespondWithData(w, payload)
	}
}

// GetTaskAnalytics projects the task and time sections of the payload.
func GetTaskAnalytics(orc *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		payload, ok := buildPayload(orc, w, r, true)
		if !ok {
			return
		}
		resp := map[string]interface{}{
			"analytics": map[string]interface{}{
				"tasks": payload.Analytics.Tasks,
				"time":  payload.Analytics.Time,
			},
			"insights":  filterInsights(payload.Insights, "tasks"),
			"period":    payload.Period,
			"user_info": payload.UserInfo,
		}
		if payload.Charts != nil {
			resp["charts"] = map[string]interface{}{"tasks": payload.Charts.Tasks}
		}
		api.RespondWithData(w, resp)
	}
}

// GetRevenueAnalytics projects the revenue, crm, and finance sections.
func GetRevenueAnalytics(orc *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		payload, ok := buildPayload(orc, w, r, true)
		if !ok {
			return
		}
		resp := map[string]interface{}{
			"analytics": map[string]interface{}{
				"revenue": payload.Analytics.Revenue,
				"crm":     payload.Analytics.CRM,
				"finance": payload.Analytics.Finance,
			},
			"insights":  filterInsights(payload.Insights, "crm", "finance"),
			"period":    payload.Period,
			"user_info": payload.UserInfo,
		}
		if payload.Charts != nil {
			resp["charts"] = map[string]interface{}{
				"revenue":  payload.Charts.Revenue,
				"deals":    payload.Charts.Deals,
				"cashflow": payload.Charts.Cashflow,
			}
		}
		api.RespondWithData(w, resp)
	}
}

// GetUserPerformance projects the performance section.
func GetUserPerformance(orc *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		payload, ok := buildPayload(orc, w, r, false)
		if !ok {
			return
		}
		api.RespondWithData(w, map[string]interface{}{
			"analytics": map[string]interface{}{
				"performance": payload.Analytics.Performance,
				"tasks":       payload.Analytics.Tasks,
			},
			"insights":  filterInsights(payload.Insights, "performance"),
			"period":    payload.Period,
			"user_info": payload.UserInfo,
		})
	}
}

// GetNotificationAnalytics projects the notifications section.
func GetNotificationAnalytics(orc *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		payload, ok := buildPayload(orc, w, r, false)
		if !ok {
			return
		}
		api.RespondWithData(w, map[string]interface{}{
			"analytics": map[string]interface{}{
				"notifications": payload.Analytics.Notifications,
			},
			"insights":  filterInsights(payload.Insights, "notifications"),
			"period":    payload.Period,
			"user_info": payload.UserInfo,
		})
	}
}

// GetRealTimeDashboard is the comprehensive projection pinned to today.
func GetRealTimeDashboard(orc *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		req, ok := decodeRequest(r)
		if !ok {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidRequestBody)
			return
		}
		today := time.Now().UTC().Format(constants.DateFormat)
		payload, err := orc.Build(r.Context(), Request{
			CallerID:     api.GetUserIDFromCtx(r.Context()),
			TargetUserID: req.Params.UserID,
			StartDate:    today,
			EndDate:      today,
		})
		if err != nil {
			api.RespondWithError(w, http.StatusForbidden, constants.CodeAccessDenied, constants.ErrUnauthorized)
			return
		}
		api.RespondWithData(w, payload)
	}
}

// QueryHandler dispatches the action-style request shape to the projections.
func QueryHandler(orc *Orchestrator) http.HandlerFunc {
	handlers := map[string]http.HandlerFunc{
		"get_comprehensive_analytics": GetComprehensiveAnalytics(orc),
		"get_task_analytics":          GetTaskAnalytics(orc),
		"get_revenue_analytics":       GetRevenueAnalytics(orc),
		"get_user_performance":        GetUserPerformance(orc),
		"get_notification_analytics":  GetNotificationAnalytics(orc),
		"get_real_time_dashboard":     GetRealTimeDashboard(orc),
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		var peek struct {
			Action string `json:"action"`
		}
		body, ok := rebufferBody(r)
		if !ok {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidRequestBody)
			return
		}
		if err := json.Unmarshal(body, &peek); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, constants.ErrInvalidJSON)
			return
		}
		h, found := handlers[peek.Action]
		if !found {
			api.RespondWithError(w, http.StatusBadRequest, constants.CodeInvalidInput, "unknown action: "+peek.Action)
			return
		}
		h(w, r)
	}
}

// rebufferBody reads the request body and resets it for the dispatched handler.
func rebufferBody(r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, false
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, true
}

func filterInsights(insights []Insight, categories ...string) []Insight {
	out := []Insight{}
	for _, in := range insights {
		for _, c := range categories {
			if in.Category == c {
				out = append(out, in)
				break
			}
		}
	}
	return out
}
