package middleware // middleware provides shared request processing for handlers

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/alumni-connect/internal/apperrors"
)

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles.  It assumes JWTAuth ran
// first and stored the role under CtxRole.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	msg := "Access denied: " + strings.Join(roles, " or ") + " only"
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(string)
			if !ok || role == "" {
				return apperrors.ErrUnauthenticated
			}
			if !allowed[role] {
				return apperrors.ErrForbidden.WithMessage(msg)
			}
			return next(c)
		}
	}
}
