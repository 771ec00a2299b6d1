// Package resilience guards calls to the external producers and the speaker
// store.
//
//   - CircuitBreaker stops calling a producer after repeated failures and lets
//     a probe through once OpenTimeout has elapsed.
//   - Bulkhead bounds how many calls run at once; FanOut runs a slice of work
//     through a bulkhead and keeps results in input order.
//
// Neither primitive retries. Retrying a failed producer call is left to the
// caller of the HTTP API.
package resilience
