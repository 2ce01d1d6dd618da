package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "HTTP_ADDR", "DATABASE_URL", "CATALOG_DATABASE_URL", "JWT_SECRET", "JWT_ISSUER",
		"RABBIT_URL", "REDIS_URL", "SESSION_COOKIE_SECRET", "RL_IP_LIMIT", "RL_INGEST_LIMIT",
		"RECO_SCORER_TIMEOUT", "RECO_EXPAND_CATEGORIES", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("dev_defaults_allow_in_memory_store", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsDev())
		assert.Empty(t, cfg.DatabaseURL)
		assert.Equal(t, ":8085", cfg.HTTPAddr)
		assert.Equal(t, "tracking.events", cfg.RabbitExchange)
		assert.Equal(t, devJWTSecret, cfg.JWTSecret)
		assert.Equal(t, 2*time.Second, cfg.RecoScorerTimeout)
		assert.False(t, cfg.RecoExpandCategories)
		assert.Equal(t, 30*24*time.Hour, cfg.SessionCookieTTL)
	})

	t.Run("prod_requires_database_url", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "prod")

		cfg, err := Load()
		assert.Nil(t, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing DATABASE_URL")
	})

	t.Run("prod_requires_jwt_secret", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "prod")
		t.Setenv("DATABASE_URL", "postgres://localhost:5432/tracking")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing JWT_SECRET")
	})

	t.Run("prod_requires_rabbit_url", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "prod")
		t.Setenv("DATABASE_URL", "postgres://localhost:5432/tracking")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("SESSION_COOKIE_SECRET", "cookie-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing RABBIT_URL")
	})

	t.Run("reads_recommendation_settings", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RECO_SCORER_TIMEOUT", "750ms")
		t.Setenv("RECO_EXPAND_CATEGORIES", "true")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 750*time.Millisecond, cfg.RecoScorerTimeout)
		assert.True(t, cfg.RecoExpandCategories)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	})

	t.Run("rejects_non_positive_limits", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RL_INGEST_LIMIT", "0")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestGetDuration(t *testing.T) {
	t.Run("falls_back_on_invalid_value", func(t *testing.T) {
		t.Setenv("TEST_DUR", "soon")
		assert.Equal(t, 10*time.Second, getDuration("TEST_DUR", 10*time.Second))
	})
}

func TestGetBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "1")
	assert.True(t, getBool("TEST_BOOL", false))
	t.Setenv("TEST_BOOL", "maybe")
	assert.False(t, getBool("TEST_BOOL", false))
}
