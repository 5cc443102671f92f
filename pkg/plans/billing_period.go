package plans

import "time"

// Mode selects the billing period length. The mode is a single process-wide
// configuration value, never per-user state.
type Mode string

const (
	// ModeSandbox shortens the billing cycle for pre-production testing,
	// matching the store's accelerated test renewals.
	ModeSandbox Mode = "sandbox"
	// ModeProduction uses the real 30-day cycle.
	ModeProduction Mode = "production"
)

const (
	sandboxBillingPeriod    = 5 * time.Minute
	productionBillingPeriod = 30 * 24 * time.Hour
)

// BillingPeriod returns the cycle length for the given mode.
// Unrecognized modes fall back to production to avoid accidentally
// shortening real customers' cycles.
func BillingPeriod(mode Mode) time.Duration {
	if mode == ModeSandbox {
		return sandboxBillingPeriod
	}
	return productionBillingPeriod
}
