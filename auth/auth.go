package auth

// TokenValidator turns a bearer token into claims. The HTTP middleware
// stores whatever it returns in the request context with authctx.Set.
type TokenValidator interface {
	ValidateToken(token string) (any, error)
}

// ValidatorFunc is a TokenValidator backed by a plain function, such as
// jwt.Service.ValidatorFunc().
type ValidatorFunc func(token string) (any, error)

// ValidateToken calls f.
func (f ValidatorFunc) ValidateToken(token string) (any, error) { return f(token) }
