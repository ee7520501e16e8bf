package analytics

import (
	"context"
	"fmt"
	"sync"

	"FlowdeskSaas/api"
)

// Config carries the orchestrator's knobs, injected at construction instead of
// read from the environment at call time.
type Config struct {
	DefaultWindowDays int
}

// Request describes one aggregation invocation.
type Request struct {
	CallerID      string
	TargetUserID  string
	StartDate     string
	EndDate       string
	IncludeCharts bool
}

// Payload is the combined aggregation response.
type Payload struct {
	Analytics Analytics `json:"analytics"`
	Charts    *Charts   `json:"charts,omitempty"`
	Insights  []Insight `json:"insights"`
	Period    Period    `json:"period"`
	UserInfo  UserInfo  `json:"user_info"`
}

// snapshot holds the fan-in result of the parallel fetches. A failed branch is
// recorded in failed and its row set stays empty, so metrics derivable from the
// other sources are still produced.
type snapshot struct {
	tasks         []TaskRow
	deals         []DealRow
	invoices      []InvoiceRow
	expenses      []ExpenseRow
	payments      []PaymentRow
	revenue       []RevenueRow
	notifications []NotificationRow
	activity      []ActivityRow
	achievements  []AchievementRow
	stats         UserStatsRow
	failed        []string
}

// Orchestrator fetches all entity sets in parallel and assembles the payload.
// It holds no state across invocations; each call is an isolated read.
type Orchestrator struct {
	store Store
	cfg   Config
}

func NewOrchestrator(store Store, cfg Config) *Orchestrator {
	if cfg.DefaultWindowDays <= 0 {
		cfg.DefaultWindowDays = 30
	}
	return &Orchestrator{store: store, cfg: cfg}
}

// Build runs one aggregation. A non-admin caller is always redirected to their
// own data regardless of the requested target; this never errors.
func (o *Orchestrator) Build(ctx context.Context, req Request) (*Payload, error) {
	caller, err := o.store.UserInfo(ctx, req.CallerID)
	if err != nil {
		return nil, fmt.Errorf("resolve caller: %w", err)
	}

	target := req.TargetUserID
	if !caller.IsAdmin || target == "" {
		target = caller.ID
	}

	user := caller
	if target != caller.ID {
		user, err = o.store.UserInfo(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("resolve target user: %w", err)
		}
	}

	window := ResolveWindow(req.StartDate, req.EndDate, o.cfg.DefaultWindowDays)

	snap := o.fetchAll(ctx, target, window)

	taskMetrics := CalcTaskMetrics(snap.tasks)
	bundle := Analytics{
		Tasks:         taskMetrics,
		Revenue:       CalcRevenueMetrics(snap.revenue, snap.deals),
		CRM:           CalcCRMMetrics(snap.deals),
		Finance:       CalcFinanceMetrics(snap.invoices, snap.payments, snap.expenses),
		Performance:   CalcPerformanceMetrics(taskMetrics, snap.stats, snap.achievements),
		Notifications: CalcNotificationMetrics(snap.notifications),
		Time:          CalcTimeMetrics(snap.tasks, snap.activity, window),
	}

	payload := &Payload{
		Analytics: bundle,
		Insights:  GenerateInsights(bundle),
		Period:    window.Period(),
		UserInfo:  user,
	}

	if req.IncludeCharts {
		payload.Charts = &Charts{
			Tasks:    BuildTaskSeries(snap.tasks, window),
			Revenue:  BuildRevenueSeries(snap.revenue, snap.deals, window),
			Deals:    BuildDealSeries(snap.deals, window),
			Cashflow: BuildCashflowSeries(snap.invoices, snap.payments, snap.expenses, window),
		}
	}

	return payload, nil
}

// fetchAll fans out one goroutine per entity set and joins them. Each branch is
// individually fault tolerant: an error or panic degrades that branch to an
// empty set instead of aborting the computation.
func (o *Orchestrator) fetchAll(ctx context.Context, userID string, w Window) snapshot {
	snap := snapshot{}

	type branchErr struct {
		name string
		err  error
	}

	var wg sync.WaitGroup
	errCh := make(chan branchErr, 10)

	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errCh <- branchErr{name: name, err: fmt.Errorf("panic: %v", r)}
				}
			}()
			if err := fn(); err != nil {
				errCh <- branchErr{name: name, err: err}
			}
		}()
	}

	run("tasks", func() error {
		rows, err := o.store.Tasks(ctx, userID, w)
		if err == nil {
			snap.tasks = rows
		}
		return err
	})
	run("deals", func() error {
		rows, err := o.store.Deals(ctx, userID, w)
		if err == nil {
			snap.deals = rows
		}
		return err
	})
	run("invoices", func() error {
		rows, err := o.store.Invoices(ctx, userID, w)
		if err == nil {
			snap.invoices = rows
		}
		return err
	})
	run("expenses", func() error {
		rows, err := o.store.Expenses(ctx, userID, w)
		if err == nil {
			snap.expenses = rows
		}
		return err
	})
	run("payments", func() error {
		rows, err := o.store.Payments(ctx, userID, w)
		if err == nil {
			snap.payments = rows
		}
		return err
	})
	run("revenue", func() error {
		rows, err := o.store.Revenue(ctx, userID, w)
		if err == nil {
			snap.revenue = rows
		}
		return err
	})
	run("notifications", func() error {
		rows, err := o.store.Notifications(ctx, userID, w)
		if err == nil {
			snap.notifications = rows
		}
		return err
	})
	run("activity", func() error {
		rows, err := o.store.Activity(ctx, userID, w)
		if err == nil {
			snap.activity = rows
		}
		return err
	})
	run("achievements", func() error {
		rows, err := o.store.Achievements(ctx, userID, w)
		if err == nil {
			snap.achievements = rows
		}
		return err
	})
	run("stats", func() error {
		st, err := o.store.UserStats(ctx, userID)
		if err == nil {
			snap.stats = st
		}
		return err
	})

	wg.Wait()
	close(errCh)

	for be := range errCh {
		snap.failed = append(snap.failed, be.name)
		api.LogError("analytics fetch %s for user %s: %v", be.name, userID, be.err)
	}

	return snap
}
