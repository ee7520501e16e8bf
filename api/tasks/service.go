package tasks

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"FlowdeskSaas/api"
	"FlowdeskSaas/internal/serviceiface"
)

type TaskService struct {
	cfg  map[string]interface{}
	pool *pgxpool.Pool
}

func NewTaskService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &TaskService{cfg: cfg, pool: pool}
}

func (s *TaskService) Name() string { return "tasks" }

func (s *TaskService) Start() error {
	go StartTaskService(s.cfg, s.pool)
	return nil
}

func (s *TaskService) Stop() error { return nil }

func StartTaskService(cfg map[string]interface{}, pool *pgxpool.Pool) {
	port := 3243
	if cfg != nil {
		if p, ok := cfg["port"].(int); ok && p > 0 {
			port = p
		}
	}

	router := mux.NewRouter()
	router.Use(api.RecoverMiddleware(), api.SessionMiddleware())

	router.Handle("/tasks/create", CreateTask(pool)).Methods(http.MethodPost)
	router.Handle("/tasks/list", GetTasks(pool)).Methods(http.MethodPost)
	router.Handle("/tasks/board", GetKanbanBoard(pool)).Methods(http.MethodPost)
	router.Handle("/tasks/update", UpdateTask(pool)).Methods(http.MethodPost)
	router.Handle("/tasks/status", UpdateTaskStatus(pool)).Methods(http.MethodPost)
	router.Handle("/tasks/delete", DeleteTask(pool)).Methods(http.MethodPost)

	log.Printf("Task Service started on :%d", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), router); err != nil {
		log.Fatalf("Task Service failed: %v", err)
	}
}
