package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/baechuer/tracking-service/internal/config"
	"github.com/baechuer/tracking-service/internal/metrics"
	"github.com/baechuer/tracking-service/internal/transport/http/handlers"
	trackmw "github.com/baechuer/tracking-service/internal/transport/http/middleware"
)

type Handlers struct {
	Tracking        *handlers.TrackingHandler
	Recommendations *handlers.RecommendationsHandler
	Catalog         *handlers.CatalogHandler
	Health          *handlers.HealthHandler
}

func New(
	h Handlers,
	auth *trackmw.AuthMiddleware,
	ingest trackmw.Limiter,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	r.Use(trackmw.RequestID)
	r.Use(trackmw.SecurityHeaders)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(trackmw.AccessLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.RLEnabled {
		r.Use(httprate.LimitByIP(cfg.RLLimit, cfg.RLWindow))
	}

	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)
	r.Handle("/metrics", metrics.MetricsHandler())

	session := trackmw.Session(cfg.SessionCookieSecret, cfg.SessionCookieTTL, cfg.CookieSecure)

	r.Route("/tracking/v1", func(r chi.Router) {
		t, rec := h.Tracking, h.Recommendations

		r.Group(func(r chi.Router) {
			r.Use(trackmw.IngestLimit(ingest))
			r.Use(session)
			r.Post("/events", t.Record)
		})
		r.Post("/events/merge", t.Merge)

		r.Get("/events", t.List)
		r.Get("/events/user/{user_id}", t.ByUser)
		r.Get("/events/session/{session_id}", t.BySession)
		r.Get("/recent/{user_id}", t.Recent)
		r.Get("/stats/hourly", t.HourlyStats)
		r.Get("/stats/daily", t.DailyStats)
		r.Get("/stats/user/{user_id}", t.UserStats)

		r.Get("/popular", rec.Popular)
		r.Get("/recommendations/collaborative/{user_id}", rec.Collaborative)
		r.Get("/recommendations/content/{user_id}", rec.ContentBased)
		r.Get("/recommendations/similar/{product_id}", rec.Similar)
		r.Get("/recommendations/{user_id}", rec.Blended)

		r.Group(func(r chi.Router) {
			r.Use(auth.Require)
			r.With(trackmw.IngestLimit(ingest)).Post("/track", t.Track)
			r.Get("/my/recommendations", rec.Mine)
			r.Get("/my/recent", t.MyRecent)
			r.Get("/my/stats", t.MyStats)
		})
	})

	r.Route("/catalog/v1", func(r chi.Router) {
		r.Get("/categories/{category_id}/descendants", h.Catalog.Descendants)
	})

	return r
}
