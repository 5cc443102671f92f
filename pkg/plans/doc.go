// Package plans defines the closed set of subscription tiers and the static
// catalog mapping each tier to its storefront product and monthly analysis
// allowance.
//
// The catalog is the single source of truth for plan limits. Both the
// client-side reconciliation path and the webhook handler resolve limits
// through it, so the two paths can never drift apart.
//
// Basic usage:
//
//	catalog, err := plans.NewCatalog(ctx, plans.NewInMemSource(plans.DefaultPlans()...))
//	if err != nil {
//	    // Handle configuration error
//	}
//
//	if plan, ok := catalog.ByProductID("muscleai.pro.monthly"); ok {
//	    fmt.Println(plan.Name, plan.MonthlyLimit) // Pro 20
//	}
//
// Plans can also be loaded from an ops-owned YAML file via NewYAMLSource.
//
// The billing cycle length is selected by a process-wide Mode: a short
// period for sandbox testing and 30 days in production. See BillingPeriod.
package plans
