// Package auth holds the bearer-token contract of the HTTP API.
//
// TokenValidator is what the server middleware depends on. The jwt
// subpackage issues and verifies HMAC-signed tokens, and authctx carries the
// verified claims through the request context.
package auth
