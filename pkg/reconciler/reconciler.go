package reconciler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/muscleai/entitlement/pkg/entitlement"
	"github.com/muscleai/entitlement/pkg/plans"
	"github.com/muscleai/entitlement/pkg/quota"
	"github.com/muscleai/entitlement/pkg/storefront"
	"github.com/muscleai/entitlement/pkg/subcache"
)

// PurchaseFetcher is the storefront query surface the reconciler depends on.
// Satisfied by *storefront.Normalizer.
type PurchaseFetcher interface {
	FetchActivePurchases(ctx context.Context) ([]storefront.NormalizedPurchase, error)
}

// QuotaLedger is the subset of the quota service the reconciler touches.
// Both calls are best-effort from the refresh flow's perspective.
type QuotaLedger interface {
	CheckAndReset(ctx context.Context, userID uuid.UUID, activePlan plans.PlanName) (int, error)
	MirrorState(ctx context.Context, userID uuid.UUID, m quota.Mirror) error
}

// Reconciler merges the storefront purchase ledger, the local last-known
// cache and the backend quota record into one entitlement state per logical
// session. One instance per user session; the in-flight guard is scoped to
// the instance, never process-global.
type Reconciler struct {
	userID  uuid.UUID
	fetcher PurchaseFetcher
	catalog *plans.Catalog
	cache   subcache.Store
	ledger  QuotaLedger // optional
	now     func() time.Time
	logger  *slog.Logger

	inFlight atomic.Bool

	mu    sync.RWMutex
	state State
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithQuotaLedger wires the backend quota service. Without it the refresh
// flow skips the quota check and backend mirror.
func WithQuotaLedger(l QuotaLedger) Option {
	return func(r *Reconciler) { r.ledger = l }
}

// WithClock overrides the time source. Useful for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger supplies an external slog.Logger instance.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Reconciler for one user session. Panics if a required
// dependency is nil to fail fast during initialization.
func New(userID uuid.UUID, fetcher PurchaseFetcher, catalog *plans.Catalog, cache subcache.Store, opts ...Option) *Reconciler {
	if fetcher == nil {
		panic("reconciler: PurchaseFetcher is required")
	}
	if catalog == nil {
		panic("reconciler: plan catalog is required")
	}
	if cache == nil {
		panic("reconciler: cache store is required")
	}
	r := &Reconciler{
		userID:  userID,
		fetcher: fetcher,
		catalog: catalog,
		cache:   cache,
		now:     time.Now,
		logger:  newNoopLogger(),
		state:   State{Loading: true, Source: SourceCold},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Current returns the state as of the last completed transition.
func (r *Reconciler) Current() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// LoadCached warms the state from the local cache before the first live
// check, so callers get an instant answer on process start. Loading stays
// true: the cached value is a placeholder until Refresh confirms it.
// Returns false on a cache miss.
func (r *Reconciler) LoadCached(ctx context.Context) bool {
	cached, err := r.cache.Load(ctx, r.userID)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to load cached subscription state", slog.Any("error", err))
		return false
	}
	if cached == nil {
		return false
	}

	r.setState(State{
		Loading:       true,
		IsSubscribed:  cached.IsSubscribed,
		ActivePlan:    cached.ActivePlan,
		ProductID:     cached.ProductID,
		PurchaseToken: cached.PurchaseToken,
		LastCheckedAt: cached.LastCheckedAt,
		Source:        SourceCache,
	})
	return true
}

// Refresh reconciles the entitlement state against the storefront and
// returns the resulting state.
//
// Only one refresh runs at a time per instance: a concurrent caller gets
// the current state back immediately with no side effects (re-entrancy
// guard, not a queue). The guard is released on every exit path.
//
// On storefront failure the last-known cached state is adopted verbatim,
// including its original LastCheckedAt; with no cache the safe default is
// "not subscribed" stamped with the current time. A refresh never surfaces
// an error to the caller: every failure degrades to a usable state.
func (r *Reconciler) Refresh(ctx context.Context) State {
	if !r.inFlight.CompareAndSwap(false, true) {
		r.logger.DebugContext(ctx, "refresh already in progress, skipping")
		return r.Current()
	}
	defer r.inFlight.Store(false)

	r.markLoading()

	purchases, err := r.fetcher.FetchActivePurchases(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "storefront check failed, falling back to cache", slog.Any("error", err))
		return r.resolveFromCache(ctx)
	}

	now := r.now().UTC()
	active := entitlement.SelectActive(r.catalog, purchases)

	var next State
	if active != nil {
		plan := active.Plan
		next = State{
			IsSubscribed:  true,
			ActivePlan:    &plan,
			ProductID:     active.ProductID,
			PurchaseToken: active.PurchaseToken,
			LastCheckedAt: now,
			Source:        SourceFresh,
		}
	} else {
		next = State{
			IsSubscribed:  false,
			LastCheckedAt: now,
			Source:        SourceFresh,
		}
	}
	r.setState(next)

	// Everything below is best-effort: quota, cache and mirror failures
	// must never abort the refresh that produced the state.
	if active != nil && r.ledger != nil {
		remaining, qerr := r.ledger.CheckAndReset(ctx, r.userID, active.Plan)
		if qerr != nil {
			r.logger.WarnContext(ctx, "quota check failed during refresh", slog.Any("error", qerr))
		} else {
			r.logger.DebugContext(ctx, "quota check complete", slog.Int("remaining", remaining))
		}
	}

	r.saveCache(ctx, next)
	r.mirror(ctx, next)

	return next
}

// Run feeds lifecycle events into Refresh until the context is cancelled
// or the event channel closes. This replaces the host framework's
// foreground-transition listener; there is no timer.
func (r *Reconciler) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.logger.DebugContext(ctx, "lifecycle event", slog.String("event", string(ev)))
			r.Refresh(ctx)
		}
	}
}

func (r *Reconciler) resolveFromCache(ctx context.Context) State {
	cached, err := r.cache.Load(ctx, r.userID)
	if err != nil {
		r.logger.WarnContext(ctx, "cache load failed", slog.Any("error", err))
		cached = nil
	}

	var next State
	if cached != nil {
		// Adopt the cached state verbatim. LastCheckedAt keeps its original
		// value: this is last-known truth, not a fresh confirmation.
		next = State{
			IsSubscribed:  cached.IsSubscribed,
			ActivePlan:    cached.ActivePlan,
			ProductID:     cached.ProductID,
			PurchaseToken: cached.PurchaseToken,
			LastCheckedAt: cached.LastCheckedAt,
			Source:        SourceCache,
		}
		if cached.IsStale(r.now().UTC()) {
			r.logger.WarnContext(ctx, "cached subscription state is stale",
				slog.Duration("age", cached.Age(r.now().UTC())))
		}
	} else {
		// Never block the user indefinitely on an unconfirmed state.
		next = State{
			IsSubscribed:  false,
			LastCheckedAt: r.now().UTC(),
			Source:        SourceDefault,
		}
	}

	r.setState(next)
	return next
}

func (r *Reconciler) saveCache(ctx context.Context, st State) {
	cached := &subcache.CachedState{
		IsSubscribed:  st.IsSubscribed,
		ActivePlan:    st.ActivePlan,
		ProductID:     st.ProductID,
		PurchaseToken: st.PurchaseToken,
		LastCheckedAt: st.LastCheckedAt,
	}
	if err := r.cache.Save(ctx, r.userID, cached); err != nil {
		r.logger.WarnContext(ctx, "failed to cache subscription state", slog.Any("error", err))
	}
}

func (r *Reconciler) mirror(ctx context.Context, st State) {
	if r.ledger == nil {
		return
	}
	err := r.ledger.MirrorState(ctx, r.userID, quota.Mirror{
		IsSubscribed: st.IsSubscribed,
		ProductID:    st.ProductID,
		Plan:         st.ActivePlan,
		CheckedAt:    st.LastCheckedAt,
	})
	if err != nil {
		r.logger.WarnContext(ctx, "backend mirror failed", slog.Any("error", err))
	}
}

func (r *Reconciler) markLoading() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Loading = true
}

func (r *Reconciler) setState(st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = st
}
