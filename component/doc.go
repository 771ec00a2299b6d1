// Package component defines the lifecycle contract of speakerd's
// long-lived parts: the HTTP server, the upload stager, the speaker store
// and the transcription cache.
//
// A Registry starts components in registration order, stops them in
// reverse and aggregates their health for the readiness probe. Components
// that implement Describable or RouteProvider also feed the startup
// summary printed by bootstrap.
package component
