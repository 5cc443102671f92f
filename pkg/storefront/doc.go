// Package storefront queries the platform billing service for the
// currently-active purchases of the signed-in store account and normalizes
// the heterogeneous records into a canonical shape.
//
// The storefront owns the purchase ledger; this package is strictly
// read-only. The key contract is the failure surface: a transport or
// initialization failure is surfaced as ErrStoreUnavailable and never
// silently converted into an empty purchase list, because "store reachable,
// zero purchases" and "store unreachable" drive different fallback paths
// upstream.
//
// Transaction dates arrive as epoch-millis numbers on Android and as date
// strings on other platforms; FlexTime absorbs both encodings.
package storefront
