package plans

import (
	"context"
	"errors"
	"fmt"
)

// Source defines how plans are loaded into a Catalog.
type Source interface {
	Load(ctx context.Context) (map[PlanName]Plan, error)
}

// Catalog is the static mapping from plan names and storefront product IDs
// to plan definitions. It is immutable after construction; thread-safety
// relies on that immutability.
type Catalog struct {
	byName    map[PlanName]Plan
	byProduct map[string]Plan
}

// NewCatalog loads plans from the given Source and validates them.
func NewCatalog(ctx context.Context, src Source) (*Catalog, error) {
	if src == nil {
		panic("plans: Source is required")
	}

	loaded, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	if err := validatePlans(loaded); err != nil {
		return nil, err
	}

	byName := make(map[PlanName]Plan, len(loaded))
	byProduct := make(map[string]Plan, len(loaded))
	for name, plan := range loaded {
		byName[name] = plan
		byProduct[plan.ProductID] = plan
	}

	return &Catalog{byName: byName, byProduct: byProduct}, nil
}

// ByName returns the plan for a given plan name.
func (c *Catalog) ByName(name PlanName) (Plan, bool) {
	plan, ok := c.byName[name]
	return plan, ok
}

// ByProductID returns the plan mapped to a storefront product ID.
// Unrecognized product IDs return false; callers treat those purchases
// as non-subscription products.
func (c *Catalog) ByProductID(productID string) (Plan, bool) {
	plan, ok := c.byProduct[productID]
	return plan, ok
}

// LimitFor returns the canonical monthly allowance for a plan,
// or 0 for unknown plans.
func (c *Catalog) LimitFor(name PlanName) int {
	return c.byName[name].MonthlyLimit
}

// Names returns all plan names in the catalog.
func (c *Catalog) Names() []PlanName {
	names := make([]PlanName, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	return names
}

func validatePlans(loaded map[PlanName]Plan) error {
	seenProducts := make(map[string]PlanName, len(loaded))
	for name, plan := range loaded {
		if !name.Valid() {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("%w: %q", ErrUnknownPlan, name))
		}
		if plan.Name != name {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan name mismatch: map key %s != plan.Name %s", name, plan.Name))
		}
		if plan.ProductID == "" {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has no product ID", name))
		}
		if plan.MonthlyLimit <= 0 {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has non-positive monthly limit: %d", name, plan.MonthlyLimit))
		}
		if prev, dup := seenProducts[plan.ProductID]; dup {
			return errors.Join(ErrDuplicateProductID,
				fmt.Errorf("product %s mapped by both %s and %s", plan.ProductID, prev, name))
		}
		seenProducts[plan.ProductID] = name
	}
	return nil
}
