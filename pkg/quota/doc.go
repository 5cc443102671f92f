// Package quota owns the backend-resident analysis counter: how many
// analyses a user has consumed in the current billing cycle, the cycle
// window itself, and the subscription lifecycle state the storefront's
// webhook events mutate.
//
// Two independent writers touch the same record: the client-driven
// reconciliation pass (CheckAndReset) and the webhook handler (the Mark*
// lifecycle methods). There is no distributed lock; every write is a single
// predicate-scoped statement, so writes are idempotent-safe under
// re-application but interleavings are last-write-wins.
//
// The service fails soft on the read path: quota unavailability must never
// block app usage, so CheckAndReset always returns a usable count and
// reports backend trouble only through an advisory error.
//
// Basic usage:
//
//	svc := quota.NewService(store, catalog, quota.WithMode(plans.ModeProduction))
//
//	remaining, err := svc.CheckAndReset(ctx, userID, plans.PlanPro)
//	if err != nil {
//	    // Advisory only; remaining is still a safe value.
//	}
package quota
