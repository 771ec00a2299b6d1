// Package server is the speakerd HTTP server: a Gin engine served over
// HTTP/1.1 and h2c, wrapped as a lifecycle component.
//
// # Middleware
//
// server/middleware provides the gin handlers ApplyMiddleware installs:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation into the logger context
//   - CORS: cross-origin headers and preflight handling
//   - BodySizeLimit: request body cap sized for audio uploads
//   - RequestLogger: one log line per request, by status
//   - Metrics: OpenTelemetry request counters and durations
//   - Auth, RequireScope: bearer-token authentication and scope checks
//
// # Endpoints
//
// server/endpoint provides the system routes /alive, /ready, /info and
// /metrics. The service's own /health lives in the api package.
package server
