package analytics

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"FlowdeskSaas/api/constants"
)

// Store supplies the entity sets the orchestrator fans out over. Every fetch is
// scoped to one owning user and the request window.
type Store interface {
	UserInfo(ctx context.Context, userID string) (UserInfo, error)
	Tasks(ctx context.Context, userID string, w Window) ([]TaskRow, error)
	Deals(ctx context.Context, userID string, w Window) ([]DealRow, error)
	Invoices(ctx context.Context, userID string, w Window) ([]InvoiceRow, error)
	Expenses(ctx context.Context, userID string, w Window) ([]ExpenseRow, error)
	Payments(ctx context.Context, userID string, w Window) ([]PaymentRow, error)
	Revenue(ctx context.Context, userID string, w Window) ([]RevenueRow, error)
	Notifications(ctx context.Context, userID string, w Window) ([]NotificationRow, error)
	Activity(ctx context.Context, userID string, w Window) ([]ActivityRow, error)
	Achievements(ctx context.Context, userID string, w Window) ([]AchievementRow, error)
	UserStats(ctx context.Context, userID string) (UserStatsRow, error)
}

type pgxStore struct {
	pool *pgxpool.Pool
}

// NewStore wraps a pgx pool in the Store interface.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgxStore{pool: pool}
}

func (s *pgxStore) UserInfo(ctx context.Context, userID string) (UserInfo, error) {
	var info UserInfo
	// Role is re-derived from the store on every call; no cached privilege is trusted.
	err := s.pool.QueryRow(ctx, `
		SELECT id, full_name, COALESCE(role, 'member')
		FROM users
		WHERE id = $1
	`, userID).Scan(&info.ID, &info.Name, &info.Role)
	if err != nil {
		return UserInfo{}, err
	}
	info.IsAdmin = info.Role == "admin"
	return info, nil
}

func (s *pgxStore) Tasks(ctx context.Context, userID string, w Window) ([]TaskRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(title,''), COALESCE(status,'todo'), COALESCE(priority,'medium'),
		       owner_id, created_at, completed_at, due_date, COALESCE(points, 0)
		FROM tasks
		WHERE owner_id = $1 AND created_at::date BETWEEN $2 AND $3
		ORDER BY created_at
	`, userID, w.Start.Format(constants.DateFormat), w.End.Format(constants.DateFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TaskRow{}
	for rows.Next() {
		var t TaskRow
		if err := rows.Scan(&t.ID, &t.Title, &t.Status, &t.Priority, &t.OwnerID,
			&t.CreatedAt, &t.CompletedAt, &t.DueDate, &t.Points); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *pgxStore) Deals(ctx context.Context, userID string, w Window) ([]DealRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(title,''), COALESCE(value,0)::float8, COALESCE(stage,''),
		       COALESCE(client_id::text,''), owner_id, created_at
		FROM deals
		WHERE owner_id = $1 AND created_at::date BETWEEN $2 AND $3
		ORDER BY created_at
	`, userID, w.Start.Format(constants.DateFormat), w.End.Format(constants.DateFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DealRow{}
	for rows.Next() {
		var d DealRow
		var value float64
		if err := rows.Scan(&d.ID, &d.Title, &value, &d.Stage, &d.ClientID, &d.OwnerID, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Value = decimal.NewFromFloat(value)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *pgxStore) Invoices(ctx context.Context, userID string, w Window) ([]InvoiceRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(client_id::text,''), COALESCE(amount,0)::float8,
		       COALESCE(status,'draft'), due_date, created_at
		FROM invoices
		WHERE owner_id = $1 AND created_at::date BETWEEN $2 AND $3
		ORDER BY created_at
	`, userID, w.Start.Format(constants.DateFormat), w.End.Format(constants.DateFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []InvoiceRow{}
	for rows.Next() {
		var i InvoiceRow
		var amount float64
		if err := rows.Scan(&i.ID, &i.ClientID, &amount, &i.Status, &i.DueDate, &i.CreatedAt); err != nil {
			return nil, err
		}
		i.TotalAmount = decimal.NewFromFloat(amount)
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *pgxStore) Expenses(ctx context.Context, userID string, w Window) ([]ExpenseRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(description,''), COALESCE(amount,0)::float8, COALESCE(category,'general'),
		       COALESCE(vendor,''), expense_date, COALESCE(billable, false)
		FROM expenses
		WHERE user_id = $1 AND expense_date BETWEEN $2 AND $3
		ORDER BY expense_date
	`, userID, w.Start.Format(constants.DateFormat), w.End.Format(constants.DateFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ExpenseRow{}
	for rows.Next() {
		var e ExpenseRow
		var amount float64
		if err := rows.Scan(&e.ID, &e.Description, &amount, &e.Category, &e.Vendor, &e.Date, &e.Billable); err != nil {
			return nil, err
		}
		e.Amount = decimal.NewFromFloat(amount)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *pgxStore) Payments(ctx context.Context, userID string, w Window) ([]PaymentRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(amount,0)::float8, COALESCE(payment_status,'pending'),
		       invoice_id::text, deal_id::text, payment_date
		FROM client_payments
		WHERE user_id = $1 AND payment_date::date BETWEEN $2 AND $3
		ORDER BY payment_date
	`, userID, w.Start.Format(constants.DateFormat), w.End.Format(constants.DateFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PaymentRow{}
	for rows.Next() {
		var p PaymentRow
		var amount float64
		if err := rows.Scan(&p.ID, &amount, &p.Status, &p.InvoiceID, &p.DealID, &p.PaymentDate); err != nil {
			return nil, err
		}
		p.Amount = decimal.NewFromFloat(amount)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *pgxStore) Revenue(ctx context.Context, userID string, w Window) ([]RevenueRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(amount,0)::float8, COALESCE(revenue_type,'sales'),
		       transaction_date, client_id::text
		FROM user_revenue
		WHERE user_id = $1 AND transaction_date BETWEEN $2 AND $3
		ORDER BY transaction_date
	`, userID, w.Start.Format(constants.DateFormat), w.End.Format(constants.DateFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RevenueRow{}
	for rows.Next() {
		var r RevenueRow
		var amount float64
		if err := rows.Scan(&r.ID, &amount, &r.Type, &r.TransactionDate, &r.ClientID); err != nil {
			return nil, err
		}
		r.Amount = decimal.NewFromFloat(amount)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *pgxStore) Notifications(ctx context.Context, userID string, w Window) ([]NotificationRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(type,'info'), COALESCE(read, false), created_at
		FROM notifications
		WHERE user_id = $1 AND created_at::date BETWEEN $2 AND $3
		ORDER BY created_at
	`, userID, w.Start.Format(constants.DateFormat), w.End.Format(constants.DateFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []NotificationRow{}
	for rows.Next() {
		var n NotificationRow
		if err := rows.Scan(&n.ID, &n.Type, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *pgxStore) Activity(ctx context.Context, userID string, w Window) ([]ActivityRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(activity_type,''), created_at
		FROM activity_feed
		WHERE user_id = $1 AND created_at::date BETWEEN $2 AND $3
		ORDER BY created_at DESC
	`, userID, w.Start.Format(constants.DateFormat), w.End.Format(constants.DateFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ActivityRow{}
	for rows.Next() {
		var a ActivityRow
		if err := rows.Scan(&a.ID, &a.Type, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *pgxStore) Achievements(ctx context.Context, userID string, w Window) ([]AchievementRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(medal_key,''), earned_at
		FROM user_achievements
		WHERE user_id = $1 AND earned_at::date BETWEEN $2 AND $3
		ORDER BY earned_at
	`, userID, w.Start.Format(constants.DateFormat), w.End.Format(constants.DateFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []AchievementRow{}
	for rows.Next() {
		var a AchievementRow
		if err := rows.Scan(&a.ID, &a.MedalKey, &a.EarnedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *pgxStore) UserStats(ctx context.Context, userID string) (UserStatsRow, error) {
	var st UserStatsRow
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, COALESCE(total_points,0), COALESCE(level,1),
		       COALESCE(current_streak,0), COALESCE(tasks_completed,0)
		FROM user_stats
		WHERE user_id = $1
	`, userID).Scan(&st.UserID, &st.TotalPoints, &st.Level, &st.CurrentStreak, &st.TasksCompleted)
	if err != nil {
		return UserStatsRow{}, err
	}
	return st, nil
}
