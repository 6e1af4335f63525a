package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/alumni-connect/internal/apperrors"
	"github.com/iliyamo/alumni-connect/internal/logger"
)

type errorResp struct {
	Message string         `json:"message"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler renders every error returned by handlers and middleware as
// {"message", "code", "details?"}.  Server errors are logged with their
// cause; in dev mode the cause is also sent to the client.
func ErrorHandler(dev bool) echo.HTTPErrorHandler {
	log := logger.WithModule("http")
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		appErr := toAppError(err)

		resp := errorResp{Message: appErr.Message, Code: appErr.Code}
		if len(appErr.Details) > 0 || (dev && appErr.Internal != nil) {
			resp.Details = make(map[string]any, len(appErr.Details)+1)
			for k, v := range appErr.Details {
				resp.Details[k] = v
			}
			if dev && appErr.Internal != nil {
				resp.Details["cause"] = appErr.Internal.Error()
			}
		}

		if appErr.Status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.String("code", appErr.Code),
				zap.Error(appErr.Internal),
			)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(appErr.Status)
		} else {
			werr = c.JSON(appErr.Status, resp)
		}
		if werr != nil {
			log.Warn("write error response", zap.Error(werr))
		}
	}
}

// toAppError maps framework errors (unknown route, oversized body, bad
// content type) onto the same taxonomy as service errors.
func toAppError(err error) *apperrors.AppError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := fmt.Sprint(he.Message)
		var base *apperrors.AppError
		switch he.Code {
		case http.StatusNotFound:
			base = apperrors.ErrNotFound
		case http.StatusUnauthorized:
			base = apperrors.ErrUnauthenticated
		case http.StatusForbidden:
			base = apperrors.ErrForbidden
		case http.StatusBadRequest:
			base = apperrors.ErrValidation
		default:
			if he.Code >= http.StatusInternalServerError {
				return apperrors.Internal(err)
			}
			code := strings.ToUpper(strings.ReplaceAll(http.StatusText(he.Code), " ", "_"))
			if code == "" {
				code = "HTTP_ERROR"
			}
			base = apperrors.New(code, http.StatusText(he.Code), he.Code)
		}
		out := base.WithMessage(msg)
		if he.Internal != nil {
			out = out.WithInternal(he.Internal)
		}
		return out
	}
	return apperrors.From(err)
}
