package entitlement

import (
	"time"

	"github.com/muscleai/entitlement/pkg/plans"
	"github.com/muscleai/entitlement/pkg/storefront"
)

// ActiveSubscription is the single entitlement derived from a set of
// normalized purchases. At most one instance represents truth at any
// reconciliation pass.
type ActiveSubscription struct {
	ProductID       string
	Plan            plans.PlanName
	PurchaseToken   string
	TransactionDate time.Time
}

// SelectActive chooses the active subscription from a set of normalized
// purchases. Pure and deterministic: no I/O, no clock, no logging.
//
// Purchases whose product ID does not map to a known plan are discarded.
// If several recognized purchases remain (mid-upgrade overlap), the one with
// the strictly greatest transaction date wins; on an exact tie the
// first-encountered purchase wins, keeping repeated calls with the same
// input order stable.
func SelectActive(catalog *plans.Catalog, purchases []storefront.NormalizedPurchase) *ActiveSubscription {
	var (
		best     storefront.NormalizedPurchase
		bestPlan plans.Plan
		found    bool
	)

	for _, p := range purchases {
		plan, ok := catalog.ByProductID(p.ProductID)
		if !ok {
			continue
		}
		if !found || p.TransactionDate.After(best.TransactionDate) {
			best = p
			bestPlan = plan
			found = true
		}
	}

	if !found {
		return nil
	}

	return &ActiveSubscription{
		ProductID:       best.ProductID,
		Plan:            bestPlan.Name,
		PurchaseToken:   best.PurchaseToken,
		TransactionDate: best.TransactionDate,
	}
}
