package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userID renders the authenticated user id for cache, rate-limit and log
// keys.  Unauthenticated requests are "anon".
func userID(c echo.Context) string {
	if id, ok := c.Get(CtxUserID).(uint64); ok && id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
