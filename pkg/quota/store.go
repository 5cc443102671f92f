package quota

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence interface for quota records. Every write is a
// single predicate-scoped statement (user-id or purchase-token match); there
// is no distributed lock, so concurrent writers are last-write-wins and each
// method must be safe to re-apply.
type Store interface {
	// ActiveByUser returns the active-status record for a user.
	// Returns ErrRecordNotFound when no active row exists.
	ActiveByUser(ctx context.Context, userID uuid.UUID) (*Record, error)

	// ByToken returns the record matched by purchase token regardless of
	// status. Returns ErrRecordNotFound when no row matches.
	ByToken(ctx context.Context, token string) (*Record, error)

	// SetCycle writes a new billing window and limit for the user's active
	// row. When resetUsed is true the usage counter is zeroed in the same
	// statement.
	SetCycle(ctx context.Context, userID uuid.UUID, cycle Cycle, limit int, resetUsed bool) error

	// ResetUsage unconditionally zeroes the usage counter on the active row.
	ResetUsage(ctx context.Context, userID uuid.UUID) error

	// ConsumeOne atomically increments usage on the active row, guarded by
	// used < limit. Returns the remaining count after the increment,
	// ErrQuotaExhausted when the guard fails, or ErrRecordNotFound when no
	// active row exists.
	ConsumeOne(ctx context.Context, userID uuid.UUID) (remaining int, err error)

	// SaveMirror writes the client-observed entitlement mirror columns on
	// the user's row. A user with no row is a silent no-op; the mirror
	// never provisions records.
	SaveMirror(ctx context.Context, userID uuid.UUID, m Mirror) error

	// ApplyLifecycle applies a partial update to the record matched by
	// purchase token. Returns ErrRecordNotFound when no row matches.
	ApplyLifecycle(ctx context.Context, token string, change LifecycleChange) error
}
