package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/tracking-service/internal/application/catalog"
	"github.com/baechuer/tracking-service/internal/application/recommend"
	"github.com/baechuer/tracking-service/internal/application/tracking"
	"github.com/baechuer/tracking-service/internal/config"
	"github.com/baechuer/tracking-service/internal/infrastructure/caching/redis"
	catalogdb "github.com/baechuer/tracking-service/internal/infrastructure/db/catalog"
	"github.com/baechuer/tracking-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/tracking-service/internal/infrastructure/memory"
	"github.com/baechuer/tracking-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/tracking-service/internal/logger"
	"github.com/baechuer/tracking-service/internal/transport/http/handlers"
	trackmw "github.com/baechuer/tracking-service/internal/transport/http/middleware"
	"github.com/baechuer/tracking-service/internal/transport/http/router"
)

type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

// store is what both the tracking service and the scorers read from.
type store interface {
	tracking.EventStore
	recommend.EventSource
}

// App holds all dependencies for the service
type App struct {
	Config *config.Config
	Server *http.Server

	DB          *sql.DB
	CatalogPool *pgxpool.Pool
	Redis       *redis.Client
	Publisher   *rabbitmq.Publisher
	Consumer    *rabbitmq.Consumer

	closers []func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}
	logger.Init()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(rootCtx, cfg)
	if err != nil {
		zlog.Fatal().Err(err).Msg("app init failed")
	}
	defer app.Close()

	if app.Consumer != nil {
		app.Consumer.Start(rootCtx)
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.AppEnv).Msg("listening")
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		zlog.Info().Msg("shutdown signal received")
	case err := <-errCh:
		zlog.Error().Err(err).Msg("http server crashed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	_ = app.Server.Shutdown(shutdownCtx)
	zlog.Info().Msg("shutdown complete")
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}
	checks := map[string]handlers.Check{}

	// 1) Event store
	var events store
	if cfg.DatabaseURL != "" {
		if u, err := url.Parse(cfg.DatabaseURL); err == nil {
			zlog.Info().
				Str("db_user", u.User.Username()).
				Str("db_host", u.Host).
				Str("db_db", u.Path).
				Msg("db config loaded")
		}
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db ping: %w", err)
		}
		app.DB = db
		app.closers = append(app.closers, func() { _ = db.Close() })
		checks["postgres"] = db.PingContext
		events = postgres.New(db)
	} else {
		zlog.Warn().Msg("DATABASE_URL empty: using in-memory event store")
		events = memory.NewEventStore()
	}

	// 2) Catalog categories
	var categories catalog.CategoryRepo
	if cfg.CatalogDatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.CatalogDatabaseURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("catalog pool: %w", err)
		}
		app.CatalogPool = pool
		app.closers = append(app.closers, pool.Close)
		checks["catalog"] = pool.Ping
		categories = catalogdb.NewBreakerRepo(catalogdb.NewCategoryRepo(pool), catalogdb.BreakerConfig{
			MaxFailures: cfg.CatalogBreakerFailures,
			OpenTimeout: cfg.CatalogBreakerTimeout,
		})
	} else {
		zlog.Warn().Msg("CATALOG_DATABASE_URL empty: category tree is empty")
		categories = memory.NewCategoryTree()
	}
	resolver := catalog.NewResolver(categories)

	// 3) Ingest limiter
	var limiter trackmw.Limiter
	if cfg.RedisURL != "" {
		rc, err := redis.New(cfg.RedisURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		app.Redis = rc
		app.closers = append(app.closers, func() { _ = rc.Close() })
		checks["redis"] = rc.Ping
		limiter = redis.NewRateLimiter(rc, cfg.RLIngestLimit, time.Minute)
	} else {
		ml := trackmw.NewMemoryLimiter(cfg.RLIngestLimit, time.Minute)
		app.closers = append(app.closers, ml.Close)
		limiter = ml
	}

	// 4) Messaging
	var pub tracking.EventPublisher = tracking.NoopPublisher{}
	if cfg.RabbitURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("rabbit publisher: %w", err)
		}
		app.Publisher = p
		app.closers = append(app.closers, func() { _ = p.Close() })
		pub = p
		zlog.Info().Str("exchange", cfg.RabbitExchange).Msg("rabbit publisher ready")
	} else {
		zlog.Warn().Msg("RABBIT_URL empty: domain events will not be published")
	}

	// 5) Application
	trackSvc := tracking.New(events, sysClock{}, pub)

	var expander recommend.CategoryExpander
	if cfg.RecoExpandCategories {
		expander = resolver
	}
	collab := recommend.NewCollaborative(events)
	content := recommend.NewContentBased(events, expander)
	popular := recommend.NewPopular(events)
	recoSvc := recommend.NewService(
		recommend.NewBlender(collab, content, popular, cfg.RecoScorerTimeout),
		collab, content, popular,
		recommend.NewSimilar(events),
	)

	if cfg.RabbitURL != "" {
		c, err := rabbitmq.NewConsumer(cfg.RabbitURL, cfg.RabbitExchange, cfg.RabbitIngestQueue, trackSvc)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("rabbit consumer: %w", err)
		}
		app.Consumer = c
		app.closers = append(app.closers, func() { _ = c.Close() })
	}

	// 6) Transport
	httpHandler := router.New(router.Handlers{
		Tracking:        handlers.NewTrackingHandler(trackSvc),
		Recommendations: handlers.NewRecommendationsHandler(recoSvc),
		Catalog:         handlers.NewCatalogHandler(resolver),
		Health:          handlers.NewHealthHandler(checks),
	}, trackmw.NewAuth(cfg.JWTSecret, cfg.JWTIssuer), limiter, cfg)

	// 7) Server
	app.Server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}
	return app, nil
}

// Close releases dependencies in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
