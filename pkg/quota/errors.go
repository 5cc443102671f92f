package quota

import "errors"

var (
	// ErrNotSubscribed signals that no active-status record exists for the
	// user. It is a normal state (free tier), not a failure, and is kept
	// distinct from ErrBackendUnavailable so callers can tell "user is on
	// free tier" from "backend is down".
	ErrNotSubscribed = errors.New("no active subscription record")

	// ErrBackendUnavailable wraps any quota store read/write failure.
	ErrBackendUnavailable = errors.New("quota backend unavailable")

	// ErrUnknownPurchaseToken signals a lifecycle event referencing a
	// purchase token with no matching record.
	ErrUnknownPurchaseToken = errors.New("no subscription record for purchase token")

	// ErrQuotaExhausted signals that the cycle allowance is fully spent.
	ErrQuotaExhausted = errors.New("monthly quota exhausted")

	// ErrRecordNotFound is the store-level miss reported by Store
	// implementations.
	ErrRecordNotFound = errors.New("subscription record not found")
)
