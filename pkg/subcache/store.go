package subcache

import (
	"context"

	"github.com/google/uuid"
)

// Store persists the last-known subscription state per user.
//
// Save failures are best-effort from the caller's perspective: the
// reconciler logs and continues, because caching must never abort the
// refresh that produced the state being cached.
type Store interface {
	// Load returns the cached state for a user, or (nil, nil) on a cache
	// miss. An error indicates the storage handle itself failed.
	Load(ctx context.Context, userID uuid.UUID) (*CachedState, error)

	// Save overwrites the cached state for a user wholesale.
	Save(ctx context.Context, userID uuid.UUID, state *CachedState) error
}
