package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/alumni-connect/internal/apperrors"
	"github.com/iliyamo/alumni-connect/internal/utils"
)

// Context keys set by JWTAuth.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// JWTAuth returns an Echo middleware that validates the access token in the
// Authorization header and injects the subject and role into the request
// context.  The "Bearer " prefix is optional.  Handlers read the values via
// c.Get(CtxUserID) (a uint64) and c.Get(CtxRole) (a string).
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if raw == "" {
				return apperrors.ErrUnauthenticated
			}

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return apperrors.ErrInvalidToken
			}
			id, _ := claims.UserID() // already checked by ParseAccessToken

			c.Set(CtxUserID, id)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}

// bearerToken strips an optional, case-insensitive "Bearer" scheme.  A bare
// "Bearer" with no credentials yields "".
func bearerToken(header string) string {
	raw := strings.TrimSpace(header)
	if len(raw) >= 6 && strings.EqualFold(raw[:6], "Bearer") {
		rest := raw[6:]
		if rest == "" {
			return ""
		}
		if rest[0] == ' ' || rest[0] == '\t' {
			return strings.TrimSpace(rest)
		}
	}
	return raw
}
