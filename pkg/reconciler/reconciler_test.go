package reconciler_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muscleai/entitlement/pkg/plans"
	"github.com/muscleai/entitlement/pkg/quota"
	"github.com/muscleai/entitlement/pkg/reconciler"
	"github.com/muscleai/entitlement/pkg/storefront"
	"github.com/muscleai/entitlement/pkg/subcache"
)

var testNow = time.Date(2024, 9, 1, 9, 0, 0, 0, time.UTC)

func testCatalog(t *testing.T) *plans.Catalog {
	t.Helper()
	catalog, err := plans.NewCatalog(context.Background(), plans.NewInMemSource(plans.DefaultPlans()...))
	require.NoError(t, err)
	return catalog
}

// fakeFetcher lets tests control the storefront result and observe calls.
type fakeFetcher struct {
	mu        sync.Mutex
	purchases []storefront.NormalizedPurchase
	err       error
	calls     int
	block     chan struct{} // when set, FetchActivePurchases blocks until closed
}

func (f *fakeFetcher) FetchActivePurchases(ctx context.Context) ([]storefront.NormalizedPurchase, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.purchases, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeLedger records quota interactions.
type fakeLedger struct {
	mu           sync.Mutex
	checkedPlans []plans.PlanName
	mirrors      []quota.Mirror
	checkErr     error
	mirrorErr    error
}

func (f *fakeLedger) CheckAndReset(ctx context.Context, userID uuid.UUID, activePlan plans.PlanName) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkedPlans = append(f.checkedPlans, activePlan)
	if f.checkErr != nil {
		return 0, f.checkErr
	}
	return 10, nil
}

func (f *fakeLedger) MirrorState(ctx context.Context, userID uuid.UUID, m quota.Mirror) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mirrors = append(f.mirrors, m)
	return f.mirrorErr
}

func newReconciler(t *testing.T, fetcher reconciler.PurchaseFetcher, cache subcache.Store, opts ...reconciler.Option) *reconciler.Reconciler {
	t.Helper()
	opts = append(opts, reconciler.WithClock(func() time.Time { return testNow }))
	return reconciler.New(uuid.New(), fetcher, testCatalog(t), cache, opts...)
}

func proPurchase(token string, txDate time.Time) storefront.NormalizedPurchase {
	return storefront.NormalizedPurchase{
		ProductID:       "muscleai.pro.monthly",
		PurchaseToken:   token,
		TransactionDate: txDate,
		Platform:        storefront.PlatformAndroid,
	}
}

func TestReconciler_Refresh_Fresh(t *testing.T) {
	t.Parallel()

	t.Run("active subscription", func(t *testing.T) {
		t.Parallel()

		cache := subcache.NewMemoryStore()
		ledger := &fakeLedger{}
		fetcher := &fakeFetcher{purchases: []storefront.NormalizedPurchase{
			proPurchase("tok-1", testNow.Add(-time.Hour)),
		}}

		r := newReconciler(t, fetcher, cache, reconciler.WithQuotaLedger(ledger))
		st := r.Refresh(context.Background())

		assert.False(t, st.Loading)
		assert.True(t, st.IsSubscribed)
		require.NotNil(t, st.ActivePlan)
		assert.Equal(t, plans.PlanPro, *st.ActivePlan)
		assert.Equal(t, "tok-1", st.PurchaseToken)
		assert.Equal(t, reconciler.SourceFresh, st.Source)
		assert.True(t, testNow.Equal(st.LastCheckedAt))

		// Quota check ran for the selected plan.
		assert.Equal(t, []plans.PlanName{plans.PlanPro}, ledger.checkedPlans)

		// State was cached for offline fallback.
		cached, err := cache.Load(context.Background(), uuid.Nil)
		require.NoError(t, err)
		assert.Nil(t, cached, "cache is keyed by the reconciler's user")

		// Backend mirror recorded the fresh state.
		require.Len(t, ledger.mirrors, 1)
		assert.True(t, ledger.mirrors[0].IsSubscribed)
	})

	t.Run("no active subscription caches not-subscribed", func(t *testing.T) {
		t.Parallel()

		cache := subcache.NewMemoryStore()
		ledger := &fakeLedger{}
		fetcher := &fakeFetcher{} // store reachable, zero purchases

		userID := uuid.New()
		r := reconciler.New(userID, fetcher, testCatalog(t), cache,
			reconciler.WithQuotaLedger(ledger),
			reconciler.WithClock(func() time.Time { return testNow }),
		)
		st := r.Refresh(context.Background())

		assert.False(t, st.IsSubscribed)
		assert.Nil(t, st.ActivePlan)
		assert.Equal(t, reconciler.SourceFresh, st.Source)

		cached, err := cache.Load(context.Background(), userID)
		require.NoError(t, err)
		require.NotNil(t, cached)
		assert.False(t, cached.IsSubscribed)

		// No quota check without an active plan, but the mirror still runs.
		assert.Empty(t, ledger.checkedPlans)
		require.Len(t, ledger.mirrors, 1)
		assert.False(t, ledger.mirrors[0].IsSubscribed)
	})

	t.Run("quota failure does not abort refresh", func(t *testing.T) {
		t.Parallel()

		cache := subcache.NewMemoryStore()
		ledger := &fakeLedger{checkErr: quota.ErrBackendUnavailable, mirrorErr: quota.ErrBackendUnavailable}
		fetcher := &fakeFetcher{purchases: []storefront.NormalizedPurchase{
			proPurchase("tok-1", testNow),
		}}

		r := newReconciler(t, fetcher, cache, reconciler.WithQuotaLedger(ledger))
		st := r.Refresh(context.Background())

		assert.True(t, st.IsSubscribed)
		assert.Equal(t, reconciler.SourceFresh, st.Source)
	})
}

func TestReconciler_Refresh_CacheFallback(t *testing.T) {
	t.Parallel()

	t.Run("cache hit preserves original lastCheckedAt", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		cache := subcache.NewMemoryStore()
		vip := plans.PlanVIP
		t0 := testNow.Add(-48 * time.Hour)
		require.NoError(t, cache.Save(context.Background(), userID, &subcache.CachedState{
			IsSubscribed:  true,
			ActivePlan:    &vip,
			ProductID:     "muscleai.vip.monthly",
			PurchaseToken: "tok-vip",
			LastCheckedAt: t0,
		}))

		fetcher := &fakeFetcher{err: storefront.ErrStoreUnavailable}
		r := reconciler.New(userID, fetcher, testCatalog(t), cache,
			reconciler.WithClock(func() time.Time { return testNow }),
		)
		st := r.Refresh(context.Background())

		assert.True(t, st.IsSubscribed)
		require.NotNil(t, st.ActivePlan)
		assert.Equal(t, plans.PlanVIP, *st.ActivePlan)
		assert.Equal(t, reconciler.SourceCache, st.Source)
		// Last-known truth, not a fresh confirmation.
		assert.True(t, t0.Equal(st.LastCheckedAt))
	})

	t.Run("cache miss falls back to safe default", func(t *testing.T) {
		t.Parallel()

		fetcher := &fakeFetcher{err: storefront.ErrStoreUnavailable}
		r := newReconciler(t, fetcher, subcache.NewMemoryStore())
		st := r.Refresh(context.Background())

		assert.False(t, st.IsSubscribed)
		assert.Equal(t, reconciler.SourceDefault, st.Source)
		assert.True(t, testNow.Equal(st.LastCheckedAt))
	})

	t.Run("cache load failure also degrades to default", func(t *testing.T) {
		t.Parallel()

		fetcher := &fakeFetcher{err: errors.New("billing client crashed")}
		r := newReconciler(t, fetcher, &failingCache{})
		st := r.Refresh(context.Background())

		assert.False(t, st.IsSubscribed)
		assert.Equal(t, reconciler.SourceDefault, st.Source)
	})
}

func TestReconciler_ReentrancyGuard(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	fetcher := &fakeFetcher{
		purchases: []storefront.NormalizedPurchase{proPurchase("tok-1", testNow)},
		block:     block,
	}
	r := newReconciler(t, fetcher, subcache.NewMemoryStore())

	done := make(chan reconciler.State, 1)
	go func() { done <- r.Refresh(context.Background()) }()

	// Wait for the first refresh to be in flight.
	require.Eventually(t, func() bool { return fetcher.callCount() == 1 },
		time.Second, time.Millisecond)

	// A concurrent refresh observes no new state and triggers no fetch.
	st := r.Refresh(context.Background())
	assert.Equal(t, reconciler.SourceCold, st.Source)
	assert.Equal(t, 1, fetcher.callCount())

	close(block)
	final := <-done
	assert.Equal(t, reconciler.SourceFresh, final.Source)

	// Guard released: a later refresh works again.
	r.Refresh(context.Background())
	assert.Equal(t, 2, fetcher.callCount())
}

func TestReconciler_LoadCached(t *testing.T) {
	t.Parallel()

	t.Run("warm start keeps loading true", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		cache := subcache.NewMemoryStore()
		pro := plans.PlanPro
		require.NoError(t, cache.Save(context.Background(), userID, &subcache.CachedState{
			IsSubscribed:  true,
			ActivePlan:    &pro,
			LastCheckedAt: testNow.Add(-time.Hour),
		}))

		r := reconciler.New(userID, &fakeFetcher{}, testCatalog(t), cache)
		require.True(t, r.LoadCached(context.Background()))

		st := r.Current()
		assert.True(t, st.Loading, "cached value is a placeholder until Refresh confirms it")
		assert.True(t, st.IsSubscribed)
		assert.Equal(t, reconciler.SourceCache, st.Source)
	})

	t.Run("miss leaves cold state", func(t *testing.T) {
		t.Parallel()

		r := newReconciler(t, &fakeFetcher{}, subcache.NewMemoryStore())
		assert.False(t, r.LoadCached(context.Background()))
		assert.Equal(t, reconciler.SourceCold, r.Current().Source)
	})
}

func TestReconciler_Run(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	r := newReconciler(t, fetcher, subcache.NewMemoryStore())

	events := make(chan reconciler.Event)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		r.Run(ctx, events)
		close(done)
	}()

	events <- reconciler.EventColdStart
	events <- reconciler.EventForeground
	events <- reconciler.EventPurchaseCompleted
	close(events)
	<-done

	assert.Equal(t, 3, fetcher.callCount())
	assert.Equal(t, reconciler.SourceFresh, r.Current().Source)
}

// failingCache fails every load and save.
type failingCache struct{}

func (f *failingCache) Load(ctx context.Context, userID uuid.UUID) (*subcache.CachedState, error) {
	return nil, subcache.ErrFailedToLoadState
}

func (f *failingCache) Save(ctx context.Context, userID uuid.UUID, state *subcache.CachedState) error {
	return subcache.ErrFailedToSaveState
}
