package plans

import (
	"context"
	"maps"
	"sync"
)

// Default storefront product IDs. Must match the products configured in the
// store console exactly.
const (
	ProductBasicMonthly = "muscleai.basic.monthly"
	ProductProMonthly   = "muscleai.pro.monthly"
	ProductVIPMonthly   = "muscleai.vip.monthly"
)

// DefaultPlans returns the built-in catalog contents: the canonical monthly
// allowance for every tier. This is the single source of truth for plan
// limits; nothing else hard-codes these numbers.
func DefaultPlans() []Plan {
	return []Plan{
		{Name: PlanBasic, ProductID: ProductBasicMonthly, MonthlyLimit: 5},
		{Name: PlanPro, ProductID: ProductProMonthly, MonthlyLimit: 20},
		{Name: PlanVIP, ProductID: ProductVIPMonthly, MonthlyLimit: 50},
	}
}

type inMemSource struct {
	mu    sync.RWMutex
	plans map[PlanName]Plan
}

// NewInMemSource returns an in-memory Source with a copy of the given plans.
// Panics if no plans are provided so a Catalog always holds at least one tier.
func NewInMemSource(plans ...Plan) Source {
	if len(plans) < 1 {
		panic("plans: at least one plan is required")
	}
	plansCopy := make(map[PlanName]Plan, len(plans))
	for _, plan := range plans {
		plansCopy[plan.Name] = plan
	}

	return &inMemSource{plans: plansCopy}
}

// Load returns a copy of all plans from memory. Copying prevents callers
// from modifying the source's internal state.
func (s *inMemSource) Load(ctx context.Context) (map[PlanName]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.plans), nil
}
