package quota

import (
	"time"

	"github.com/google/uuid"

	"github.com/muscleai/entitlement/pkg/plans"
)

// Status represents the lifecycle state of a backend subscription record.
type Status string

const (
	StatusActive  Status = "active"
	StatusPastDue Status = "past_due"
	StatusPaused  Status = "paused"
	StatusExpired Status = "expired"
)

// Record is the backend quota row for a user with a subscription: the
// per-cycle usage counter, the billing-cycle window, and the lifecycle
// state the webhook handler mutates.
type Record struct {
	UserID        uuid.UUID
	Plan          plans.PlanName
	MonthlyLimit  int
	UsedThisCycle int
	CycleStart    *time.Time
	CycleEnd      *time.Time
	Status        Status
	AutoRenew     bool
	PurchaseToken string

	// Lifecycle timestamps written by the webhook handler.
	CancelledAt *time.Time
	PausedAt    *time.Time
	EndedAt     *time.Time

	// Mirror of the client-observed entitlement, observability only.
	IsSubscribed  bool
	ProductID     string
	LastCheckedAt *time.Time

	UpdatedAt time.Time
}

// Info is the read-side view of a user's quota.
type Info struct {
	Used       int
	Limit      int
	Remaining  int
	NeedsReset bool
}

// Cycle is a billing window.
type Cycle struct {
	Start time.Time
	End   time.Time
}

// Mirror carries the client-observed entitlement state for the best-effort
// backend mirror. The mirror is never authoritative.
type Mirror struct {
	IsSubscribed bool
	ProductID    string
	Plan         *plans.PlanName
	CheckedAt    time.Time
}

// LifecycleChange is a partial update applied to a record matched by
// purchase token. Nil fields are left untouched so each webhook event
// writes exactly the columns it owns.
type LifecycleChange struct {
	Status      *Status
	AutoRenew   *bool
	CancelledAt *time.Time
	PausedAt    *time.Time
	EndedAt     *time.Time

	// NewCycle zeroes the usage counter and replaces the billing window;
	// set on renewal.
	NewCycle *Cycle
	// NewLimit resyncs the stored limit to the plan's canonical allowance.
	NewLimit *int
	// NewPlan updates the plan name; always paired with NewLimit.
	NewPlan *plans.PlanName
}
