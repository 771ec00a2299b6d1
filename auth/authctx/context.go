// Package authctx carries the verified token claims of an API request.
//
//	ctx = authctx.Set(ctx, claims)
//	claims, ok := authctx.Get[*jwt.Claims](ctx)
package authctx

import "context"

type claimsKey struct{}

// Set returns a copy of ctx holding claims.
func Set(ctx context.Context, claims any) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// Get returns the request's claims when they are present and of type T.
func Get[T any](ctx context.Context) (T, bool) {
	claims, ok := ctx.Value(claimsKey{}).(T)
	return claims, ok
}
