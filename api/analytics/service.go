package analytics

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"FlowdeskSaas/api"
	"FlowdeskSaas/internal/config"
	"FlowdeskSaas/internal/serviceiface"
)

type AnalyticsService struct {
	cfg  map[string]interface{}
	pool *pgxpool.Pool
	db   *sql.DB
}

func NewAnalyticsService(cfg map[string]interface{}, pool *pgxpool.Pool, db *sql.DB) serviceiface.Service {
	return &AnalyticsService{cfg: cfg, pool: pool, db: db}
}

func (s *AnalyticsService) Name() string { return "analytics" }

func (s *AnalyticsService) Start() error {
	go StartAnalyticsService(s.cfg, s.pool)
	return nil
}

func (s *AnalyticsService) Stop() error { return nil }

func StartAnalyticsService(cfg map[string]interface{}, pool *pgxpool.Pool) {
	port := 3843
	windowDays := config.DefaultWindowDays
	if cfg != nil {
		if p, ok := cfg["port"].(int); ok && p > 0 {
			port = p
		}
		if d, ok := cfg["default_window_days"].(int); ok && d > 0 {
			windowDays = d
		}
	}

	orc := NewOrchestrator(NewStore(pool), Config{DefaultWindowDays: windowDays})

	router := mux.NewRouter()
	router.Use(api.RecoverMiddleware(), api.SessionMiddleware())

	router.Handle("/analytics/query", QueryHandler(orc)).Methods(http.MethodPost)
	router.Handle("/analytics/comprehensive", GetComprehensiveAnalytics(orc)).Methods(http.MethodPost)
	router.Handle("/analytics/tasks", GetTaskAnalytics(orc)).Methods(http.MethodPost)
	router.Handle("/analytics/revenue", GetRevenueAnalytics(orc)).Methods(http.MethodPost)
	router.Handle("/analytics/performance", GetUserPerformance(orc)).Methods(http.MethodPost)
	router.Handle("/analytics/notifications", GetNotificationAnalytics(orc)).Methods(http.MethodPost)
	router.Handle("/analytics/realtime", GetRealTimeDashboard(orc)).Methods(http.MethodPost)
	router.Handle("/analytics/export", ExportReport(orc)).Methods(http.MethodPost)

	log.Printf("Analytics Service started on :%d", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), router); err != nil {
		log.Fatalf("Analytics Service failed: %v", err)
	}
}
