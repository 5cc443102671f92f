package reconciler

import (
	"time"

	"github.com/muscleai/entitlement/pkg/plans"
)

// Source records which path produced the current state.
type Source string

const (
	// SourceCold is the initial state before any refresh has run.
	SourceCold Source = "cold"
	// SourceFresh means the state came from a live storefront check.
	SourceFresh Source = "fresh"
	// SourceCache means the storefront was unreachable and the last-known
	// cached state was adopted.
	SourceCache Source = "cache"
	// SourceDefault means neither the store nor the cache had an answer
	// and the safe "not subscribed" default applies.
	SourceDefault Source = "default"
)

// State is the merged entitlement view exposed to presentation layers.
type State struct {
	Loading       bool
	IsSubscribed  bool
	ActivePlan    *plans.PlanName
	ProductID     string
	PurchaseToken string
	LastCheckedAt time.Time
	Source        Source
}

// Event is a process-lifecycle trigger that feeds Refresh. There is no
// internal polling timer; these three events are the only drivers.
type Event string

const (
	EventColdStart         Event = "cold_start"
	EventForeground        Event = "foreground"
	EventPurchaseCompleted Event = "purchase_completed"
)
