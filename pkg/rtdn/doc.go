// Package rtdn receives Google Play real-time developer notifications and
// applies them to the subscription quota ledger.
//
// Notifications arrive either as Pub/Sub push envelopes with the payload
// base64-encoded under message.data, or as bare developer-notification JSON.
// Delivery is at-least-once and unordered, so every transition the processor
// applies is idempotent; re-applying a notification converges on the same
// record state.
//
// The HTTP contract is built around the publisher's retry behavior: 200
// acknowledges (including benign cases like unknown purchase tokens and
// non-subscription events, where redelivery cannot help), 400 flags payloads
// that failed to decode, and 500 requests redelivery after a backend write
// failure.
package rtdn
