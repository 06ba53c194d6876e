// Package api serves the status API while the listener is running.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adifpush/adifpush/internal/config"
	"github.com/adifpush/adifpush/internal/storage/sqlite"
	"github.com/adifpush/adifpush/internal/uploader"
	"github.com/adifpush/adifpush/pkg/logger"
)

// Router is the API router
type Router struct {
	handler    *Handler
	middleware *Middleware
	config     *config.Config
	logger     *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(up *uploader.Uploader, history *sqlite.UploadStorage, listenerAddr string, cfg *config.Config, logger *logger.Logger) *Router {
	return &Router{
		handler:    NewHandler(up, history, listenerAddr, logger),
		middleware: NewMiddleware(logger),
		config:     cfg,
		logger:     logger.Named("api-router"),
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS(r.config.Server.CORSAllowedOrigins))

	// API routes
	router.Route("/api/v1", func(router chi.Router) {
		// Health check
		router.Get("/health", r.handler.GetHealth)

		// Live run counters and listener info
		router.Get("/status", r.handler.GetStatus)

		// Upload history
		router.Get("/uploads", r.handler.GetRecentUploads)
	})

	return router
}
