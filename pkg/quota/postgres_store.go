package quota

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/muscleai/entitlement/pkg/pg"
)

// DB is the subset of pgxpool.Pool the store needs. Satisfied by
// *pgxpool.Pool, pgx.Tx and test doubles.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresStore struct {
	db  DB
	now func() time.Time
}

// NewPostgresStore returns a Store backed by the user_subscriptions table.
// All writes are single predicate-scoped UPDATE statements; there is no
// row locking across the reconciler and webhook writers.
func NewPostgresStore(db DB) Store {
	if db == nil {
		panic("quota: DB is required")
	}
	return &postgresStore{db: db, now: time.Now}
}

const recordColumns = `user_id, plan_name, monthly_analyses_limit, analyses_used_this_month,
	current_billing_cycle_start, current_billing_cycle_end, subscription_status,
	auto_renewal_enabled, purchase_token, cancelled_at, pause_start_date,
	subscription_end_date, is_subscribed, product_id, last_checked_at, updated_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(
		&rec.UserID, &rec.Plan, &rec.MonthlyLimit, &rec.UsedThisCycle,
		&rec.CycleStart, &rec.CycleEnd, &rec.Status,
		&rec.AutoRenew, &rec.PurchaseToken, &rec.CancelledAt, &rec.PausedAt,
		&rec.EndedAt, &rec.IsSubscribed, &rec.ProductID, &rec.LastCheckedAt, &rec.UpdatedAt,
	)
	if pg.IsNotFoundError(err) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *postgresStore) ActiveByUser(ctx context.Context, userID uuid.UUID) (*Record, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM user_subscriptions
		 WHERE user_id = $1 AND subscription_status = 'active'`,
		userID)
	return scanRecord(row)
}

func (s *postgresStore) ByToken(ctx context.Context, token string) (*Record, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM user_subscriptions
		 WHERE purchase_token = $1`,
		token)
	return scanRecord(row)
}

func (s *postgresStore) SetCycle(ctx context.Context, userID uuid.UUID, cycle Cycle, limit int, resetUsed bool) error {
	query := `UPDATE user_subscriptions SET
		current_billing_cycle_start = $2,
		current_billing_cycle_end = $3,
		monthly_analyses_limit = $4,
		updated_at = $5`
	if resetUsed {
		query += `, analyses_used_this_month = 0`
	}
	query += ` WHERE user_id = $1 AND subscription_status = 'active'`

	tag, err := s.db.Exec(ctx, query, userID, cycle.Start, cycle.End, limit, s.now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *postgresStore) ResetUsage(ctx context.Context, userID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE user_subscriptions SET analyses_used_this_month = 0, updated_at = $2
		 WHERE user_id = $1 AND subscription_status = 'active'`,
		userID, s.now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *postgresStore) ConsumeOne(ctx context.Context, userID uuid.UUID) (int, error) {
	// The used < limit guard rides in the UPDATE predicate so the
	// increment is atomic without an explicit lock.
	var remaining int
	err := s.db.QueryRow(ctx,
		`UPDATE user_subscriptions
		 SET analyses_used_this_month = analyses_used_this_month + 1, updated_at = $2
		 WHERE user_id = $1 AND subscription_status = 'active'
		   AND analyses_used_this_month < monthly_analyses_limit
		 RETURNING monthly_analyses_limit - analyses_used_this_month`,
		userID, s.now().UTC()).Scan(&remaining)
	if pg.IsNotFoundError(err) {
		// Guard failed or no active row; tell them apart with a read.
		if _, lookupErr := s.ActiveByUser(ctx, userID); lookupErr != nil {
			return 0, lookupErr
		}
		return 0, ErrQuotaExhausted
	}
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

func (s *postgresStore) SaveMirror(ctx context.Context, userID uuid.UUID, m Mirror) error {
	var planName *string
	if m.Plan != nil {
		name := string(*m.Plan)
		planName = &name
	}
	_, err := s.db.Exec(ctx,
		`UPDATE user_subscriptions SET
			is_subscribed = $2,
			product_id = $3,
			plan_name = COALESCE($4, plan_name),
			last_checked_at = $5,
			updated_at = $6
		 WHERE user_id = $1`,
		userID, m.IsSubscribed, m.ProductID, planName, m.CheckedAt, s.now().UTC())
	return err
}

func (s *postgresStore) ApplyLifecycle(ctx context.Context, token string, change LifecycleChange) error {
	sets := make([]string, 0, 8)
	args := []any{token}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if change.Status != nil {
		add("subscription_status", string(*change.Status))
	}
	if change.AutoRenew != nil {
		add("auto_renewal_enabled", *change.AutoRenew)
	}
	if change.CancelledAt != nil {
		add("cancelled_at", *change.CancelledAt)
	}
	if change.PausedAt != nil {
		add("pause_start_date", *change.PausedAt)
	}
	if change.EndedAt != nil {
		add("subscription_end_date", *change.EndedAt)
	}
	if change.NewCycle != nil {
		add("current_billing_cycle_start", change.NewCycle.Start)
		add("current_billing_cycle_end", change.NewCycle.End)
		sets = append(sets, "analyses_used_this_month = 0")
	}
	if change.NewLimit != nil {
		add("monthly_analyses_limit", *change.NewLimit)
	}
	if change.NewPlan != nil {
		add("plan_name", string(*change.NewPlan))
	}
	add("updated_at", s.now().UTC())

	query := `UPDATE user_subscriptions SET ` + strings.Join(sets, ", ") +
		` WHERE purchase_token = $1`

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}
