package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-only-secret"

type Config struct {
	AppEnv string

	HTTPAddr string

	// Event store; empty in dev falls back to the in-memory store.
	DatabaseURL string
	// Catalog category tree (read-only); empty leaves the tree empty.
	CatalogDatabaseURL string

	JWTSecret string
	JWTIssuer string

	// RabbitMQ
	RabbitURL         string
	RabbitExchange    string
	RabbitIngestQueue string

	RedisURL string

	// Anonymous session cookie
	SessionCookieSecret string
	SessionCookieTTL    time.Duration
	CookieSecure        bool

	CORSAllowedOrigins []string

	// Rate Limiting
	RLEnabled     bool
	RLLimit       int
	RLWindow      time.Duration
	RLIngestLimit int

	// Recommendation
	RecoScorerTimeout    time.Duration
	RecoExpandCategories bool

	CatalogBreakerFailures uint32
	CatalogBreakerTimeout  time.Duration

	LogLevel  string
	LogFormat string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

func (c *Config) IsDev() bool { return c.AppEnv == "dev" }

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8085")
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	cfg.CatalogDatabaseURL = getEnv("CATALOG_DATABASE_URL", "")

	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.JWTIssuer = getEnv("JWT_ISSUER", "")

	cfg.RabbitURL = getEnv("RABBIT_URL", "")
	cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "tracking.events")
	cfg.RabbitIngestQueue = getEnv("RABBIT_INGEST_QUEUE", "tracking-service.ingest")

	cfg.RedisURL = getEnv("REDIS_URL", "")

	cfg.SessionCookieSecret = getEnv("SESSION_COOKIE_SECRET", "")
	cfg.SessionCookieTTL = time.Duration(getIntEnv("SESSION_COOKIE_TTL_DAYS", 30)) * 24 * time.Hour
	cfg.CookieSecure = getBool("COOKIE_SECURE", cfg.AppEnv != "dev")

	cfg.CORSAllowedOrigins = getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"})

	// Rate Limiting Defaults: 100 reqs / 1 min, ingest 600 / 1 min
	cfg.RLEnabled = getBool("RL_ENABLED", true)
	cfg.RLLimit = getIntEnv("RL_IP_LIMIT", 100)
	cfg.RLWindow = getDuration("RL_IP_WINDOW", 1*time.Minute)
	cfg.RLIngestLimit = getIntEnv("RL_INGEST_LIMIT", 600)

	cfg.RecoScorerTimeout = getDuration("RECO_SCORER_TIMEOUT", 2*time.Second)
	cfg.RecoExpandCategories = getBool("RECO_EXPAND_CATEGORIES", false)

	cfg.CatalogBreakerFailures = uint32(getIntEnv("CATALOG_BREAKER_FAILURES", 5))
	cfg.CatalogBreakerTimeout = getDuration("CATALOG_BREAKER_TIMEOUT", 30*time.Second)

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "console")

	cfg.HTTPReadTimeout = getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	cfg.HTTPWriteTimeout = getDuration("HTTP_WRITE_TIMEOUT", 20*time.Second)
	cfg.HTTPIdleTimeout = getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)

	// validation
	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("missing DATABASE_URL (required when APP_ENV != dev)")
		}
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("missing JWT_SECRET (required when APP_ENV != dev)")
		}
		if cfg.SessionCookieSecret == "" {
			return nil, fmt.Errorf("missing SESSION_COOKIE_SECRET (required when APP_ENV != dev)")
		}
		if cfg.RabbitURL == "" {
			return nil, fmt.Errorf("missing RABBIT_URL (required when APP_ENV != dev)")
		}
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.SessionCookieSecret == "" {
		cfg.SessionCookieSecret = devJWTSecret
	}
	if cfg.RLLimit <= 0 || cfg.RLIngestLimit <= 0 {
		return nil, fmt.Errorf("rate limits must be positive")
	}
	if cfg.RecoScorerTimeout <= 0 {
		return nil, fmt.Errorf("RECO_SCORER_TIMEOUT must be positive")
	}

	return cfg, nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getIntEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
