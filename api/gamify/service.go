package gamify

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"FlowdeskSaas/api"
	"FlowdeskSaas/internal/serviceiface"
)

type GamifyService struct {
	cfg  map[string]interface{}
	pool *pgxpool.Pool
}

func NewGamifyService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &GamifyService{cfg: cfg, pool: pool}
}

func (s *GamifyService) Name() string { return "gamify" }

func (s *GamifyService) Start() error {
	go StartGamifyService(s.cfg, s.pool)
	return nil
}

func (s *GamifyService) Stop() error { return nil }

func StartGamifyService(cfg map[string]interface{}, pool *pgxpool.Pool) {
	port := 3543
	if cfg != nil {
		if p, ok := cfg["port"].(int); ok && p > 0 {
			port = p
		}
	}

	router := mux.NewRouter()
	router.Use(api.RecoverMiddleware(), api.SessionMiddleware())

	router.Handle("/gamify/stats", GetUserStats(pool)).Methods(http.MethodPost)
	router.Handle("/gamify/achievements", GetAchievements(pool)).Methods(http.MethodPost)
	router.Handle("/gamify/achievements/award", AwardAchievement(pool)).Methods(http.MethodPost)
	router.Handle("/gamify/habits/create", CreateHabit(pool)).Methods(http.MethodPost)
	router.Handle("/gamify/habits/list", GetHabits(pool)).Methods(http.MethodPost)
	router.Handle("/gamify/habits/complete", CompleteHabit(pool)).Methods(http.MethodPost)
	router.Handle("/gamify/leaderboard", GetLeaderboard(pool)).Methods(http.MethodPost)

	log.Printf("Gamify Service started on :%d", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), router); err != nil {
		log.Fatalf("Gamify Service failed: %v", err)
	}
}
