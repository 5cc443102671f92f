// Package entitlement reduces a set of normalized storefront purchases to
// the single subscription the user currently holds rights to.
//
// Selection is a pure function over the plan catalog and the purchase set,
// so it can be exercised exhaustively in tests without any store or backend.
package entitlement
