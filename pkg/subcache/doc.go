// Package subcache persists the last successfully observed subscription
// state so the app keeps working when the storefront is unreachable.
//
// The cache is best-effort by design: a failed Save is logged and swallowed
// by callers, and a Load miss simply means the safe "not subscribed"
// default applies. Staleness (older than 7 days) is computed from
// LastCheckedAt by the caller, never stored as a flag.
package subcache
