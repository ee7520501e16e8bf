package jobs

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"FlowdeskSaas/api"
	"FlowdeskSaas/api/constants"
	"FlowdeskSaas/internal/config"
	"FlowdeskSaas/internal/serviceiface"
)

// CronService runs the nightly maintenance sweeps: overdue invoice marking,
// user stats snapshots, and habit streak resets.
type CronService struct {
	cfg  map[string]interface{}
	pool *pgxpool.Pool
	cron *cron.Cron
}

func NewCronService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &CronService{cfg: cfg, pool: pool}
}

func (s *CronService) Name() string { return "cron" }

func (s *CronService) schedule(key, fallback string) string {
	if s.cfg != nil {
		if v, ok := s.cfg[key].(string); ok && v != "" {
			return v
		}
	}
	return fallback
}

func (s *CronService) Start() error {
	s.cron = cron.New()

	if _, err := s.cron.AddFunc(s.schedule("overdue_schedule", config.DefaultOverdueSchedule), s.sweepOverdueInvoices); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.schedule("snapshot_schedule", config.DefaultSnapshotSchedule), s.snapshotUserStats); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.schedule("streak_schedule", config.DefaultStreakSchedule), s.resetBrokenStreaks); err != nil {
		return err
	}

	s.cron.Start()
	api.LogInfo("cron service scheduled %d jobs", len(s.cron.Entries()))
	return nil
}

func (s *CronService) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	return nil
}

// sweepOverdueInvoices flips sent invoices whose due date has passed to
// overdue and notifies their owners.
func (s *CronService) sweepOverdueInvoices() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		UPDATE invoices
		SET status = $1, updated_at = now()
		WHERE status = $2 AND due_date IS NOT NULL AND due_date < CURRENT_DATE
		RETURNING id, owner_id`,
		constants.InvoiceOverdue, constants.InvoiceSent)
	if err != nil {
		api.LogError("overdue invoice sweep: %v", err)
		return
	}
	defer rows.Close()

	type overdue struct{ invoiceID, ownerID string }
	var flipped []overdue
	for rows.Next() {
		var o overdue
		if err := rows.Scan(&o.invoiceID, &o.ownerID); err != nil {
			api.LogError("overdue invoice sweep scan: %v", err)
			return
		}
		flipped = append(flipped, o)
	}

	for _, o := range flipped {
		if _, err := s.pool.Exec(ctx, `
			INSERT INTO notifications (user_id, title, message, type, read, created_at)
			VALUES ($1, 'Invoice overdue', $2, 'warning', false, now())`,
			o.ownerID, "Invoice "+o.invoiceID+" is past its due date"); err != nil {
			api.LogError("overdue invoice notification for %s: %v", o.invoiceID, err)
		}
	}
	api.LogInfo("overdue invoice sweep marked %d invoice(s)", len(flipped))
}

// snapshotUserStats writes a daily summary of each user's stats into the
// activity feed so the analytics time series has a durable trail.
func (s *CronService) snapshotUserStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO activity_feed (user_id, activity_type, description, created_at)
		SELECT user_id, 'daily_snapshot',
		       'Points: ' || total_points || ', level ' || level || ', streak ' || current_streak,
		       now()
		FROM user_stats`)
	if err != nil {
		api.LogError("user stats snapshot: %v", err)
		return
	}
	api.LogInfo("user stats snapshot wrote %d row(s)", tag.RowsAffected())
}

// resetBrokenStreaks zeroes habit streaks that were not kept up yesterday.
func (s *CronService) resetBrokenStreaks() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `
		UPDATE habits
		SET current_streak = 0
		WHERE current_streak > 0
		  AND (last_completed_at IS NULL OR last_completed_at::date < CURRENT_DATE - 1)`)
	if err != nil {
		api.LogError("habit streak reset: %v", err)
		return
	}
	api.LogInfo("habit streak reset cleared %d habit(s)", tag.RowsAffected())
}
