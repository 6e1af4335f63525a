package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type healthResp struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// Health returns a liveness endpoint for load balancers.  When db is non-nil
// the database is pinged and a failure turns the answer into a 503.
func Health(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db == nil {
			return c.JSON(http.StatusOK, healthResp{Status: "ok"})
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, healthResp{Status: "degraded", Database: "down"})
		}
		return c.JSON(http.StatusOK, healthResp{Status: "ok", Database: "up"})
	}
}
