package handler // handler defines http handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/alumni-connect/internal/apperrors"
	"github.com/iliyamo/alumni-connect/internal/middleware"
	"github.com/iliyamo/alumni-connect/internal/service"
)

// requestTimeout bounds the storage work of a single request.
const requestTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// getUserID extracts the user_id set by JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get(middleware.CtxUserID).(type) {
	case uint64:
		return t, nil
	case int:
		if t > 0 {
			return uint64(t), nil
		}
	case int64:
		if t > 0 {
			return uint64(t), nil
		}
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// actor returns the authenticated caller.  An anonymous request yields the
// zero Actor, which every role-gated service call rejects.
func actor(c echo.Context) service.Actor {
	id, err := getUserID(c)
	if err != nil {
		return service.Actor{}
	}
	role, _ := c.Get(middleware.CtxRole).(string)
	return service.Actor{ID: id, Role: role}
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || n == 0 {
		return 0, apperrors.ErrInvalidID.WithDetail("param", name)
	}
	return n, nil
}

// bind decodes the request body into dst.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperrors.ErrValidation.WithMessage("Invalid request body").WithInternal(err)
	}
	return nil
}

type messageResp struct {
	Message string `json:"message"`
}
