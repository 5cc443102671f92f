package quota

import (
	"context"
	"errors"
	"log/slog"
)

// Lifecycle transitions applied by the webhook handler, keyed by purchase
// token. Each method issues one predicate-scoped write and is safe to
// re-apply: the storefront's delivery mechanism guarantees neither ordering
// nor at-most-once delivery.

// MarkRenewed re-activates the record, zeroes the usage counter and starts
// a fresh billing cycle. The limit (and plan, when the product ID maps to a
// known plan) is resynced to the catalog allowance.
func (s *Service) MarkRenewed(ctx context.Context, token, productID string) error {
	now := s.now().UTC()
	status := StatusActive
	change := LifecycleChange{
		Status:   &status,
		NewCycle: &Cycle{Start: now, End: now.Add(s.period)},
	}

	if plan, ok := s.catalog.ByProductID(productID); ok {
		change.NewPlan = &plan.Name
		change.NewLimit = &plan.MonthlyLimit
	} else {
		// Unknown product: keep the recorded plan, resync its limit.
		rec, err := s.store.ByToken(ctx, token)
		if err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				return ErrUnknownPurchaseToken
			}
			return errors.Join(ErrBackendUnavailable, err)
		}
		limit := s.limitFor(rec, rec.Plan)
		change.NewLimit = &limit
	}

	if err := s.applyByToken(ctx, token, change); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "subscription renewed, quota reset",
		slog.String("product_id", productID))
	return nil
}

// MarkCancelled disables auto-renew and records the cancellation time.
// Status is left untouched: the subscription stays active until the period
// ends.
func (s *Service) MarkCancelled(ctx context.Context, token string) error {
	now := s.now().UTC()
	autoRenew := false
	return s.applyByToken(ctx, token, LifecycleChange{
		AutoRenew:   &autoRenew,
		CancelledAt: &now,
	})
}

// MarkExpired marks the subscription expired and records the end time.
// Revocations are applied identically.
func (s *Service) MarkExpired(ctx context.Context, token string) error {
	now := s.now().UTC()
	status := StatusExpired
	return s.applyByToken(ctx, token, LifecycleChange{
		Status:  &status,
		EndedAt: &now,
	})
}

// MarkRecovered re-activates a subscription that came back from hold or
// grace period.
func (s *Service) MarkRecovered(ctx context.Context, token string) error {
	status := StatusActive
	autoRenew := true
	return s.applyByToken(ctx, token, LifecycleChange{
		Status:    &status,
		AutoRenew: &autoRenew,
	})
}

// MarkOnHold marks the subscription past due after a failed payment.
func (s *Service) MarkOnHold(ctx context.Context, token string) error {
	status := StatusPastDue
	return s.applyByToken(ctx, token, LifecycleChange{Status: &status})
}

// MarkInGracePeriod keeps access during the payment grace period.
func (s *Service) MarkInGracePeriod(ctx context.Context, token string) error {
	status := StatusActive
	return s.applyByToken(ctx, token, LifecycleChange{Status: &status})
}

// MarkPaused marks the subscription paused and records the pause start.
func (s *Service) MarkPaused(ctx context.Context, token string) error {
	now := s.now().UTC()
	status := StatusPaused
	return s.applyByToken(ctx, token, LifecycleChange{
		Status:   &status,
		PausedAt: &now,
	})
}

func (s *Service) applyByToken(ctx context.Context, token string, change LifecycleChange) error {
	if err := s.store.ApplyLifecycle(ctx, token, change); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return ErrUnknownPurchaseToken
		}
		return errors.Join(ErrBackendUnavailable, err)
	}
	return nil
}
