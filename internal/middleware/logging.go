package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iliyamo/alumni-connect/internal/apperrors"
	"github.com/iliyamo/alumni-connect/internal/logger"
	"github.com/iliyamo/alumni-connect/internal/metrics"
)

// RequestLogger writes one structured line per request.  It runs the error
// handler itself so the logged status is the one the client receives.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("route", c.Path()),
				zap.Int("status", res.Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("ip", c.RealIP()),
				zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
				zap.String("user", userID(c)),
			}
			level := zapcore.InfoLevel
			switch {
			case res.Status >= 500:
				level = zapcore.ErrorLevel
				if err != nil {
					fields = append(fields, zap.Error(apperrors.From(err).Unwrap()))
				}
			case res.Status >= 400:
				level = zapcore.WarnLevel
			}
			if ce := logger.WithModule("http").Check(level, "request"); ce != nil {
				ce.Write(fields...)
			}
			return nil
		}
	}
}

// Metrics records request latency by method, route and status.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.APILatency.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(c.Response().Status)).
				Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
