package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "alumni")
	t.Setenv("JWT_SECRET", "s")

	cfg := Load()
	require.Equal(t, "5000", cfg.Port)
	require.Equal(t, "3306", cfg.DBPort)
	require.Equal(t, 24*60, cfg.AccessTTLMin)
	require.Equal(t, 10, cfg.BcryptCost)
	require.True(t, cfg.DBMigrate)
	require.True(t, cfg.IsDev())

	t.Setenv("APP_ENV", "prod")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")
	cfg = Load()
	require.False(t, cfg.IsDev())
	require.Equal(t, 15, cfg.AccessTTLMin)
}

func TestRateLimitNormalizedAndAuth(t *testing.T) {
	cfg := RateLimitConfig{Capacity: 0, AuthCapacity: 0, RefillInterval: 0, TTL: time.Second, Prefix: "rl"}.normalized()
	require.Equal(t, 1, cfg.Capacity)
	require.Equal(t, 1, cfg.AuthCapacity)
	require.Equal(t, 1, cfg.RefillTokens)
	require.Equal(t, time.Second, cfg.RefillInterval)
	require.Equal(t, 5*time.Second, cfg.TTL)

	t.Setenv("RATE_LIMIT_CAPACITY", "100")
	t.Setenv("RATE_LIMIT_AUTH_CAPACITY", "5")
	auth := LoadRateLimitConfig().ForAuth()
	require.Equal(t, 5, auth.Capacity)
	require.Equal(t, "rl:auth", auth.Prefix)
	require.Equal(t, "ip_route", auth.KeyStrategy)
}

func TestCacheAndServiceConfigs(t *testing.T) {
	t.Setenv("CACHE_METHODS", " get, head ,")
	cc := LoadCacheConfig()
	require.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cc.Methods)
	require.Equal(t, 30*time.Second, cc.TTL)

	require.False(t, LoadMailConfig().Enabled())
	t.Setenv("SMTP_HOST", "smtp.example.com")
	require.True(t, LoadMailConfig().Enabled())

	t.Setenv("RABBITMQ_URL", "amqp://u:p@mq:5672/")
	q := LoadQueueConfig()
	require.Equal(t, "amqp://u:p@mq:5672/", q.URL)
	require.Equal(t, "notifications.created", q.Name)

	up := LoadUploadConfig()
	require.Equal(t, int64(5<<20), up.MaxBytes)
	require.Equal(t, "/uploads", up.PublicPrefix)
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_TLS", "1")
	rc := LoadRedisConfig()
	require.Equal(t, "cache:6380", rc.Addr)
	require.True(t, rc.TLS)
}
