package crm

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"FlowdeskSaas/api"
	"FlowdeskSaas/internal/serviceiface"
)

type CRMService struct {
	cfg  map[string]interface{}
	pool *pgxpool.Pool
}

func NewCRMService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &CRMService{cfg: cfg, pool: pool}
}

func (s *CRMService) Name() string { return "crm" }

func (s *CRMService) Start() error {
	go StartCRMService(s.cfg, s.pool)
	return nil
}

func (s *CRMService) Stop() error { return nil }

func StartCRMService(cfg map[string]interface{}, pool *pgxpool.Pool) {
	port := 3343
	if cfg != nil {
		if p, ok := cfg["port"].(int); ok && p > 0 {
			port = p
		}
	}

	router := mux.NewRouter()
	router.Use(api.RecoverMiddleware(), api.SessionMiddleware())

	router.Handle("/crm/clients/create", CreateClient(pool)).Methods(http.MethodPost)
	router.Handle("/crm/clients/list", GetClients(pool)).Methods(http.MethodPost)
	router.Handle("/crm/clients/update", UpdateClient(pool)).Methods(http.MethodPost)
	router.Handle("/crm/clients/delete", DeleteClient(pool)).Methods(http.MethodPost)
	router.Handle("/crm/deals/create", CreateDeal(pool)).Methods(http.MethodPost)
	router.Handle("/crm/deals/list", GetDeals(pool)).Methods(http.MethodPost)
	router.Handle("/crm/deals/move", MoveDealStage(pool)).Methods(http.MethodPost)
	router.Handle("/crm/deals/delete", DeleteDeal(pool)).Methods(http.MethodPost)
	router.Handle("/crm/pipeline", GetPipelineSummary(pool)).Methods(http.MethodPost)

	log.Printf("CRM Service started on :%d", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), router); err != nil {
		log.Fatalf("CRM Service failed: %v", err)
	}
}
