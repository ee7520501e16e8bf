package finance

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"FlowdeskSaas/api"
	"FlowdeskSaas/internal/serviceiface"
)

type FinanceService struct {
	cfg  map[string]interface{}
	pool *pgxpool.Pool
}

func NewFinanceService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &FinanceService{cfg: cfg, pool: pool}
}

func (s *FinanceService) Name() string { return "finance" }

func (s *FinanceService) Start() error {
	go StartFinanceService(s.cfg, s.pool)
	return nil
}

func (s *FinanceService) Stop() error { return nil }

func StartFinanceService(cfg map[string]interface{}, pool *pgxpool.Pool) {
	port := 3443
	if cfg != nil {
		if p, ok := cfg["port"].(int); ok && p > 0 {
			port = p
		}
	}

	router := mux.NewRouter()
	router.Use(api.RecoverMiddleware(), api.SessionMiddleware())

	router.Handle("/finance/invoices/create", CreateInvoice(pool)).Methods(http.MethodPost)
	router.Handle("/finance/invoices/list", GetInvoices(pool)).Methods(http.MethodPost)
	router.Handle("/finance/invoices/status", UpdateInvoiceStatus(pool)).Methods(http.MethodPost)
	router.Handle("/finance/invoices/delete", DeleteInvoice(pool)).Methods(http.MethodPost)
	router.Handle("/finance/expenses/create", CreateExpense(pool)).Methods(http.MethodPost)
	router.Handle("/finance/expenses/list", GetExpenses(pool)).Methods(http.MethodPost)
	router.Handle("/finance/expenses/delete", DeleteExpense(pool)).Methods(http.MethodPost)
	router.Handle("/finance/expenses/import", ImportExpenses(pool)).Methods(http.MethodPost)
	router.Handle("/finance/payments/record", RecordPayment(pool)).Methods(http.MethodPost)
	router.Handle("/finance/payments/list", GetPayments(pool)).Methods(http.MethodPost)
	router.Handle("/finance/revenue/create", CreateRevenueEntry(pool)).Methods(http.MethodPost)
	router.Handle("/finance/revenue/list", GetRevenueEntries(pool)).Methods(http.MethodPost)

	log.Printf("Finance Service started on :%d", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), router); err != nil {
		log.Fatalf("Finance Service failed: %v", err)
	}
}
