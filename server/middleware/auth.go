package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/speakerkit/auth"
	"github.com/kbukum/speakerkit/auth/authctx"
	"github.com/kbukum/speakerkit/errors"
)

// ScopeChecker is implemented by claims that carry scopes.
type ScopeChecker interface {
	HasScope(scope string) bool
}

// Auth validates "Authorization: Bearer <token>" with validator and stores
// the claims in the request context. Paths in skip bypass authentication.
func Auth(validator auth.TokenValidator, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}
	return func(c *gin.Context) {
		if skipped[c.Request.URL.Path] || c.Request.Method == "OPTIONS" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, errors.Unauthorized("Authorization header required"))
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abort(c, errors.Unauthorized("Invalid authorization header format"))
			return
		}

		claims, err := validator.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			abort(c, errors.Unauthorized("Invalid or expired token"))
			return
		}
		c.Request = c.Request.WithContext(authctx.Set(c.Request.Context(), claims))
		c.Next()
	}
}

// RequireScope rejects requests whose claims lack scope with 403. Requests
// without claims pass, so the route stays open when Auth is not installed.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authctx.Get[ScopeChecker](c.Request.Context())
		if ok && !claims.HasScope(scope) {
			abort(c, errors.Forbidden("missing scope "+scope))
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, appErr *errors.AppError) {
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}
