package subcache

import (
	"time"

	"github.com/muscleai/entitlement/pkg/plans"
)

// StalenessThreshold is the age past which a cached state is considered
// stale: the entitlement may have lapsed without us observing it.
const StalenessThreshold = 7 * 24 * time.Hour

// CachedState is the last successfully observed entitlement. It is written
// wholesale after every reconciliation pass and read on process start for
// instant UI before the live check completes.
//
// JSON field names match the blob format the mobile clients already persist.
type CachedState struct {
	IsSubscribed  bool            `json:"isSubscribed"`
	ActivePlan    *plans.PlanName `json:"activePlan"`
	ProductID     string          `json:"productId"`
	PurchaseToken string          `json:"purchaseToken"`
	LastCheckedAt time.Time       `json:"lastCheckedAt"`
}

// Age returns how long ago the state was last confirmed against the store.
func (s *CachedState) Age(now time.Time) time.Duration {
	return now.Sub(s.LastCheckedAt)
}

// IsStale reports whether the state is older than StalenessThreshold.
// Staleness is always computed, never stored, so a blob written long ago
// degrades without needing a rewrite.
func (s *CachedState) IsStale(now time.Time) bool {
	return s.Age(now) > StalenessThreshold
}
