package rtdn

import (
	"context"
	"errors"
	"log/slog"

	"github.com/muscleai/entitlement/pkg/quota"
)

// SubscriptionLedger is the lifecycle surface the processor drives.
// Satisfied by *quota.Service.
type SubscriptionLedger interface {
	MarkRenewed(ctx context.Context, token, productID string) error
	MarkCancelled(ctx context.Context, token string) error
	MarkExpired(ctx context.Context, token string) error
	MarkRecovered(ctx context.Context, token string) error
	MarkOnHold(ctx context.Context, token string) error
	MarkInGracePeriod(ctx context.Context, token string) error
	MarkPaused(ctx context.Context, token string) error
}

// Processor maps decoded notifications onto subscription ledger transitions.
type Processor struct {
	ledger SubscriptionLedger
	logger *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithProcessorLogger supplies an external slog.Logger instance.
func WithProcessorLogger(l *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProcessor creates a notification processor. Panics if ledger is nil to
// fail fast during initialization.
func NewProcessor(ledger SubscriptionLedger, opts ...ProcessorOption) *Processor {
	if ledger == nil {
		panic("rtdn: SubscriptionLedger is required")
	}
	p := &Processor{
		ledger: ledger,
		logger: newNoopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process applies one developer notification to the subscription ledger.
//
// Test notifications and notification types that need no state change are
// acknowledged without touching the ledger. Notifications for a purchase
// token with no matching record are logged and dropped: acknowledging them
// is correct because redelivery cannot succeed either. Only backend write
// failures return an error, so the transport layer can signal the publisher
// to redeliver.
func (p *Processor) Process(ctx context.Context, n *DeveloperNotification) error {
	if n.TestNotification != nil {
		p.logger.InfoContext(ctx, "test notification received",
			slog.String("version", n.TestNotification.Version))
		return nil
	}

	sub := n.SubscriptionNotification
	if sub == nil {
		// One-time product and voided-purchase notifications share the
		// topic; none of them affect subscription state.
		p.logger.InfoContext(ctx, "non-subscription notification acknowledged",
			slog.String("package_name", n.PackageName))
		return nil
	}
	log := p.logger.With(
		slog.String("notification_type", sub.NotificationType.String()),
		slog.String("subscription_id", sub.SubscriptionID),
	)

	var err error
	switch sub.NotificationType {
	case TypeRenewed:
		err = p.ledger.MarkRenewed(ctx, sub.PurchaseToken, sub.SubscriptionID)
	case TypeCanceled:
		err = p.ledger.MarkCancelled(ctx, sub.PurchaseToken)
	case TypeExpired, TypeRevoked:
		err = p.ledger.MarkExpired(ctx, sub.PurchaseToken)
	case TypeRecovered:
		err = p.ledger.MarkRecovered(ctx, sub.PurchaseToken)
	case TypeOnHold:
		err = p.ledger.MarkOnHold(ctx, sub.PurchaseToken)
	case TypeInGracePeriod:
		err = p.ledger.MarkInGracePeriod(ctx, sub.PurchaseToken)
	case TypePaused:
		err = p.ledger.MarkPaused(ctx, sub.PurchaseToken)
	case TypePurchased, TypeRestarted, TypePriceChangeConfirmed, TypeDeferred, TypePauseScheduleChanged:
		// Initial purchases arrive through the client reconciliation flow;
		// the rest carry no quota-relevant state change.
		log.InfoContext(ctx, "notification acknowledged without state change")
	default:
		log.WarnContext(ctx, "unknown notification type, ignoring")
	}

	if err != nil {
		if errors.Is(err, quota.ErrUnknownPurchaseToken) {
			log.WarnContext(ctx, "notification for unknown purchase token, dropping")
			return nil
		}
		log.ErrorContext(ctx, "lifecycle transition failed", slog.Any("error", err))
		return errors.Join(ErrProcessingFailed, err)
	}
	return nil
}
