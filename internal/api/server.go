package api

import (
	"net/http"

	"github.com/drive-intranet/internal/auth"
	"github.com/drive-intranet/internal/config"
	"github.com/drive-intranet/internal/drive"
	"github.com/drive-intranet/internal/health"
	"github.com/drive-intranet/internal/index"
	"github.com/drive-intranet/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// Server wires the HTTP surface of the service
type Server struct {
	cfg    *config.Config
	drive  drive.ClientInterface
	index  index.ManagerInterface
	auth   *auth.Handler
	health *health.Handler
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, driveClient drive.ClientInterface, indexManager index.ManagerInterface, authHandler *auth.Handler) *Server {
	return &Server{
		cfg:    cfg,
		drive:  driveClient,
		index:  indexManager,
		auth:   authHandler,
		health: health.NewHandler(indexManager.Ready),
	}
}

// Router builds the HTTP handler. CORS wraps everything so pre-flight
// requests never reach the session check.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(recovery)

	r.Get("/health", s.health.Health)
	r.Get("/ready", s.health.Ready)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", s.auth.Login)
		r.Get("/callback", s.auth.Callback)
		r.Post("/logout", s.auth.Logout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.auth.Middleware)

		r.Get("/me", s.auth.Me)

		r.Get("/drive/search", s.handleSearch)
		r.Get("/drive/activity", s.handleActivity)
		r.Get("/drive/files/{id}", s.handleFile)
		r.Get("/drive/files/{id}/preview", s.handlePreview)

		r.Get("/index", s.handleIndexStatus)
		r.Post("/index/refresh", s.handleIndexRefresh)
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
