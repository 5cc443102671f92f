// Package reconciler merges a user's subscription entitlement across three
// weakly-consistent sources of truth: the storefront purchase ledger, the
// local last-known cache, and the backend quota record.
//
// The storefront is authoritative. A successful refresh overwrites the
// cache and best-effort mirrors the result to the backend; a failed
// storefront check degrades to the cached last-known state, and with no
// cache to the safe "not subscribed" default. Presentation layers only
// ever see a usable State, never an error.
//
// Refresh runs on three lifecycle triggers (cold start, app foreground,
// purchase completion) with no internal polling. Concurrent triggers are
// collapsed by a per-instance compare-and-swap guard.
package reconciler
