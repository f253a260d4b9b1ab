package leaderboardhttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rescuerunner/runnerboard/internal/middleware"
)

type RouterConfig struct {
	CORS           middleware.CORSConfig
	RateLimiter    *middleware.RateLimiter
	Observer       middleware.RequestObserver
	MetricsHandler http.Handler
}

// NewRouter mounts the leaderboard endpoints:
//
//	GET  /scores             top board, optional ?limit=
//	POST /scores             submit a score
//	GET  /scores/{identity}  one player's standing
//	GET  /healthz
//	GET  /metrics
func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.Observer != nil {
		r.Use(middleware.Observe(cfg.Observer))
	}

	r.MethodNotAllowed(s.MethodNotAllowed)
	r.NotFound(s.NotFound)

	r.Get("/healthz", s.Health)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/scores", func(r chi.Router) {
		r.Get("/", s.Scores)
		r.With(cfg.RateLimiter.Middleware("/scores")).Post("/", s.Submit)
		r.Get("/{identity}", s.Standing)
	})

	return r
}
