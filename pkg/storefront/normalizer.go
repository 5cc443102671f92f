package storefront

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// StoreClient is the storefront query interface: a single call returning the
// currently-active, non-refunded purchases for the signed-in store account.
// Implementations must return an error for "not initialized", "offline" and
// "store error" conditions rather than an empty list.
type StoreClient interface {
	ActivePurchases(ctx context.Context) ([]Purchase, error)
}

// Normalizer converts heterogeneous storefront purchase records into the
// canonical NormalizedPurchase shape.
type Normalizer struct {
	client StoreClient
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLogger supplies an external slog.Logger instance.
func WithLogger(l *slog.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithClock overrides the time source used for missing transaction dates.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		if now != nil {
			n.now = now
		}
	}
}

// NewNormalizer returns a Normalizer backed by the given store client.
// Panics if client is nil to fail fast during initialization.
func NewNormalizer(client StoreClient, opts ...Option) *Normalizer {
	if client == nil {
		panic("storefront: StoreClient is required")
	}
	n := &Normalizer{
		client: client,
		logger: newNoopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// FetchActivePurchases queries the storefront and normalizes the result.
//
// A transport or initialization failure is returned wrapped in
// ErrStoreUnavailable and is never collapsed into an empty slice; an empty
// slice strictly means the store was reachable and reported zero active
// purchases.
func (n *Normalizer) FetchActivePurchases(ctx context.Context) ([]NormalizedPurchase, error) {
	raw, err := n.client.ActivePurchases(ctx)
	if err != nil {
		n.logger.DebugContext(ctx, "storefront query failed", slog.Any("error", err))
		if errors.Is(err, ErrStoreUnavailable) {
			return nil, err
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	normalized := make([]NormalizedPurchase, 0, len(raw))
	for _, p := range raw {
		txDate := p.TransactionDate.Time
		if txDate.IsZero() {
			// The store occasionally omits the date; fall back to now so
			// selection still has a resolvable instant to order by.
			txDate = n.now().UTC()
		}
		normalized = append(normalized, NormalizedPurchase{
			ProductID:       p.ProductID,
			PurchaseToken:   p.PurchaseToken,
			TransactionDate: txDate,
			Platform:        p.Platform,
		})
	}

	n.logger.DebugContext(ctx, "fetched active purchases", slog.Int("count", len(normalized)))
	return normalized, nil
}
