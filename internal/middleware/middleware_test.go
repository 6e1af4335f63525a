package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/alumni-connect/internal/apperrors"
	"github.com/iliyamo/alumni-connect/internal/config"
	"github.com/iliyamo/alumni-connect/internal/logger"
	"github.com/iliyamo/alumni-connect/internal/utils"
)

const secret = "mw-secret"

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func ok(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func TestJWTAuth(t *testing.T) {
	tok, err := utils.NewAccessToken(secret, 5, "student", time.Hour, time.Now())
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		want   *apperrors.AppError
	}{
		{"missing", "", apperrors.ErrUnauthenticated},
		{"bearer only", "Bearer ", apperrors.ErrUnauthenticated},
		{"bearer no space", "bearer", apperrors.ErrUnauthenticated},
		{"bearer blanks", "Bearer \t  ", apperrors.ErrUnauthenticated},
		{"garbage", "Bearer abc", apperrors.ErrInvalidToken},
		{"wrong secret", "Bearer " + mustToken(t, "other"), apperrors.ErrInvalidToken},
		{"bearer", "Bearer " + tok.Token, nil},
		{"no prefix", tok.Token, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newContext(http.MethodGet, "/")
			if tc.header != "" {
				c.Request().Header.Set(echo.HeaderAuthorization, tc.header)
			}
			err := JWTAuth(secret)(ok)(c)
			if tc.want != nil {
				require.ErrorIs(t, err, tc.want)
				return
			}
			require.NoError(t, err)
			require.Equal(t, uint64(5), c.Get(CtxUserID))
			require.Equal(t, "student", c.Get(CtxRole))
		})
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":             "",
		"Bearer":       "",
		"Bearer ":      "",
		"  bearer   ":  "",
		"Bearer abc":   "abc",
		"BEARER  abc ": "abc",
		"abc":          "abc",
		"Bearerabc":    "Bearerabc",
		"Bearer\tabc":  "abc",
	}
	for in, want := range cases {
		require.Equal(t, want, bearerToken(in), "%q", in)
	}
}

func mustToken(t *testing.T, key string) string {
	tok, err := utils.NewAccessToken(key, 5, "student", time.Hour, time.Now())
	require.NoError(t, err)
	return tok.Token
}

func TestRequireRole(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/")
	require.ErrorIs(t, RequireRole("alumni")(ok)(c), apperrors.ErrUnauthenticated)

	c.Set(CtxRole, "student")
	require.ErrorIs(t, RequireRole("alumni")(ok)(c), apperrors.ErrForbidden)

	c.Set(CtxRole, "alumni")
	require.NoError(t, RequireRole("alumni")(ok)(c))
}

func TestRedisMiddlewaresPassThroughWithoutClient(t *testing.T) {
	mws := []echo.MiddlewareFunc{
		NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil),
		NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil, "jobs"),
		InvalidateCache(config.CacheConfig{Enabled: true}, nil, "jobs"),
	}
	for _, mw := range mws {
		for i := 0; i < 3; i++ {
			c, rec := newContext(http.MethodGet, "/api/jobs")
			require.NoError(t, mw(ok)(c))
			require.Equal(t, http.StatusOK, rec.Code)
			require.Empty(t, rec.Header().Get("X-Cache"))
		}
	}
}

func TestCacheKeyKeepsGroupReadable(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}
	c1, _ := newContext(http.MethodGet, "/api/jobs?page=1")
	c2, _ := newContext(http.MethodGet, "/api/jobs?page=2")
	c1.SetPath("/api/jobs")
	c2.SetPath("/api/jobs")

	k1 := cacheKeyFrom(cfg, "jobs", c1)
	k2 := cacheKeyFrom(cfg, "jobs", c2)
	require.NotEqual(t, k1, k2)
	require.Regexp(t, `^cache:jobs:[0-9a-f]{40}$`, k1)
	require.Equal(t, "cache:jobs:*", groupPattern(cfg, "jobs"))
}

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`[1]`))
	require.NoError(t, err)
	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	require.Equal(t, `[1]`, string(body))

	_, _, _, ok = decodePayload([]byte{1, 2})
	require.False(t, ok)
}

func TestRequestLoggerRendersErrorsOnce(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Set(zap.New(core))
	defer logger.Set(nil)

	e := echo.New()
	calls := 0
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		calls++
		_ = c.JSON(apperrors.From(err).Status, apperrors.From(err))
	}
	e.Use(RequestLogger())
	e.GET("/boom", func(c echo.Context) error { return apperrors.ErrForbidden })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, 1, calls)
	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.EqualValues(t, http.StatusForbidden, entries[0].ContextMap()["status"])
	require.Equal(t, "/boom", entries[0].ContextMap()["route"])
}
