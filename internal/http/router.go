package http

import (
	"context"
	"net/http"
	"time"

	"SiteJSON_Frontend/internal/logger"
	"SiteJSON_Frontend/internal/ratelimit"

	"github.com/gorilla/mux"
)

// Server represents the HTTP server with all dependencies
type Server struct {
	handler *Handler
	logger  logger.Service
	server  *http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	addr string,
	handler *Handler,
	logger logger.Service,
	rateLimiter ratelimit.Service,
	readTimeout, writeTimeout time.Duration,
) *Server {
	router := mux.NewRouter()

	srv := &Server{
		handler: handler,
		logger:  logger,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
	}

	// Register middleware (order matters: logging -> rate limiting -> cors -> recovery)
	router.Use(loggingMiddleware(logger))
	router.Use(rateLimitingMiddleware(rateLimiter, logger))
	router.Use(corsMiddleware())
	router.Use(recoveryMiddleware(logger))

	srv.registerRoutes(router)

	return srv
}

// registerRoutes sets up all API routes
func (s *Server) registerRoutes(router *mux.Router) {
	// Health check
	router.HandleFunc("/health", s.handler.HealthCheck).Methods("GET")

	// Session-backed site state
	router.HandleFunc("/api/sites/{domain}/state", s.handler.SiteState).Methods("GET")
	router.HandleFunc("/api/sites/{domain}/refresh", s.handler.RefreshSite).Methods("POST")
	router.HandleFunc("/api/analyze", s.handler.Analyze).Methods("POST")

	// Backend proxies
	router.HandleFunc("/api/sites/{domain}/alternatives", s.handler.Alternatives).Methods("GET")
	router.HandleFunc("/api/sites/{domain}", s.handler.SiteReport).Methods("GET")
	router.HandleFunc("/api/jobs/{id}", s.handler.JobStatus).Methods("GET")
	router.HandleFunc("/api/directory/{type}/{slug}", s.handler.Directory).Methods("GET")

	// Root handler
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"SiteJSON Frontend API","version":"1.0.0","endpoints":["/health","/api/sites/{domain}/state","/api/sites/{domain}/refresh","/api/analyze","/api/sites/{domain}","/api/sites/{domain}/alternatives","/api/jobs/{id}","/api/directory/{type}/{slug}"]}`))
	}).Methods("GET")
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.LogInfo(context.Background(), logger.OpServerStart, "Starting HTTP server", map[string]interface{}{
		"addr": s.server.Addr,
	})

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.LogInfo(ctx, logger.OpServerShutdown, "Shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}
