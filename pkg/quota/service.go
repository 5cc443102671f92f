package quota

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/muscleai/entitlement/pkg/plans"
)

// Service owns the billing-cycle arithmetic over quota records. Both the
// client-driven reconciliation path and the webhook handler go through it,
// so cycle rollover and limit resync behave identically on both paths.
type Service struct {
	store   Store
	catalog *plans.Catalog
	period  time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// WithMode selects the billing period length by build mode.
// Defaults to production (30 days).
func WithMode(mode plans.Mode) ServiceOption {
	return func(s *Service) { s.period = plans.BillingPeriod(mode) }
}

// WithClock overrides the time source. Useful for deterministic tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger supplies an external slog.Logger instance.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a quota Service. Panics if store or catalog is nil to
// fail fast during initialization.
func NewService(store Store, catalog *plans.Catalog, opts ...ServiceOption) *Service {
	if store == nil {
		panic("quota: Store is required")
	}
	if catalog == nil {
		panic("quota: plan catalog is required")
	}
	s := &Service{
		store:   store,
		catalog: catalog,
		period:  plans.BillingPeriod(plans.ModeProduction),
		now:     time.Now,
		logger:  newNoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetQuota returns the current quota view for the user's active record.
//
// The result is three-valued: a found Info, ErrNotSubscribed when no
// active-status row exists (free tier, not a failure), or
// ErrBackendUnavailable when the store itself failed.
func (s *Service) GetQuota(ctx context.Context, userID uuid.UUID) (*Info, error) {
	rec, err := s.store.ActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrNotSubscribed
		}
		return nil, errors.Join(ErrBackendUnavailable, err)
	}

	limit := s.limitFor(rec, rec.Plan)
	now := s.now().UTC()

	return &Info{
		Used:       rec.UsedThisCycle,
		Limit:      limit,
		Remaining:  max(limit-rec.UsedThisCycle, 0),
		NeedsReset: rec.CycleEnd != nil && now.After(*rec.CycleEnd),
	}, nil
}

// CheckAndReset runs the cycle-rollover state machine and returns the
// analyses remaining in the (possibly new) cycle.
//
// The int return is always a usable count; a non-nil error is advisory
// (the backend was unreachable and the count is a safe default or a stale
// read). Quota unavailability must never block app usage.
//
// States:
//  1. No active record: 0, no write.
//  2. Cycle never initialized: start the first cycle at now, keep usage.
//  3. Still in-cycle: no write.
//  4. Past cycle end: roll the window forward anchored at the old cycle
//     end (not now, to avoid cumulative drift across repeated late
//     checks), zero the usage counter and resync the limit.
func (s *Service) CheckAndReset(ctx context.Context, userID uuid.UUID, activePlan plans.PlanName) (int, error) {
	rec, err := s.store.ActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			s.logger.DebugContext(ctx, "no active subscription record, quota check skipped",
				slog.String("user_id", userID.String()))
			return 0, nil
		}
		return 0, errors.Join(ErrBackendUnavailable, err)
	}

	limit := s.limitFor(rec, activePlan)
	now := s.now().UTC()

	// First-ever check: the row exists but no cycle was ever started.
	if rec.CycleEnd == nil {
		cycle := Cycle{Start: now, End: now.Add(s.period)}
		if err := s.store.SetCycle(ctx, userID, cycle, limit, false); err != nil {
			s.logger.WarnContext(ctx, "failed to initialize billing cycle",
				slog.String("user_id", userID.String()), slog.Any("error", err))
			return limit - rec.UsedThisCycle, errors.Join(ErrBackendUnavailable, err)
		}
		s.logger.InfoContext(ctx, "billing cycle initialized",
			slog.String("user_id", userID.String()),
			slog.Time("cycle_end", cycle.End),
			slog.Int("limit", limit))
		return limit - rec.UsedThisCycle, nil
	}

	// Still inside the current window: read-only pass.
	if !now.After(*rec.CycleEnd) {
		return max(limit-rec.UsedThisCycle, 0), nil
	}

	// New billing period: roll forward from where the last one ended.
	cycle := Cycle{Start: *rec.CycleEnd, End: rec.CycleEnd.Add(s.period)}
	if err := s.store.SetCycle(ctx, userID, cycle, limit, true); err != nil {
		s.logger.WarnContext(ctx, "failed to reset quota for new billing period",
			slog.String("user_id", userID.String()), slog.Any("error", err))
		return max(limit-rec.UsedThisCycle, 0), errors.Join(ErrBackendUnavailable, err)
	}

	s.logger.InfoContext(ctx, "quota reset for new billing period",
		slog.String("user_id", userID.String()),
		slog.String("plan", string(rec.Plan)),
		slog.Time("new_cycle_end", cycle.End))
	return limit, nil
}

// ForceReset unconditionally zeroes the usage counter on the user's active
// row. Support and testing path.
func (s *Service) ForceReset(ctx context.Context, userID uuid.UUID) bool {
	if err := s.store.ResetUsage(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "force reset failed",
			slog.String("user_id", userID.String()), slog.Any("error", err))
		return false
	}
	return true
}

// ConsumeAnalysis spends one analysis from the current cycle and returns
// the remaining count. Returns ErrQuotaExhausted when the allowance is
// fully spent, ErrNotSubscribed when no active row exists.
func (s *Service) ConsumeAnalysis(ctx context.Context, userID uuid.UUID) (int, error) {
	remaining, err := s.store.ConsumeOne(ctx, userID)
	switch {
	case err == nil:
		return remaining, nil
	case errors.Is(err, ErrQuotaExhausted):
		return 0, ErrQuotaExhausted
	case errors.Is(err, ErrRecordNotFound):
		return 0, ErrNotSubscribed
	default:
		return 0, errors.Join(ErrBackendUnavailable, err)
	}
}

// MirrorState records the client-observed entitlement on the backend row.
// The mirror is observability-only and never authoritative; callers treat
// failures as best-effort.
func (s *Service) MirrorState(ctx context.Context, userID uuid.UUID, m Mirror) error {
	if err := s.store.SaveMirror(ctx, userID, m); err != nil {
		return errors.Join(ErrBackendUnavailable, err)
	}
	return nil
}

// limitFor prefers the stored limit and falls back to the catalog allowance
// for the given plan when the row predates limit tracking.
func (s *Service) limitFor(rec *Record, plan plans.PlanName) int {
	if rec.MonthlyLimit > 0 {
		return rec.MonthlyLimit
	}
	return s.catalog.LimitFor(plan)
}
