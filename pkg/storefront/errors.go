package storefront

import "errors"

var (
	// ErrStoreUnavailable wraps every storefront query failure. Callers
	// distinguish it from an empty purchase list: empty means "store
	// reachable, zero active purchases".
	ErrStoreUnavailable = errors.New("storefront unavailable")

	// ErrStoreNotInitialized indicates the underlying billing client was
	// never initialized for this session.
	ErrStoreNotInitialized = errors.New("storefront client not initialized")

	// ErrStoreOffline indicates a network-level transport failure.
	ErrStoreOffline = errors.New("storefront unreachable (offline)")

	ErrInvalidTransactionDate = errors.New("invalid transaction date encoding")
)
