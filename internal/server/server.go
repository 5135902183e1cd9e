// Package server provides the HTTP server and routing for TickerTock.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/tickertock/internal/config"
	"github.com/aristath/tickertock/internal/di"
	watchlisthandlers "github.com/aristath/tickertock/internal/modules/watchlist/handlers"
	widgethandlers "github.com/aristath/tickertock/internal/modules/widget/handlers"
)

// defaultHandlerTimeout bounds a request. A handler cut off by it still answers
// with an error because the write deadline is longer.
const defaultHandlerTimeout = 60 * time.Second

// Config holds server configuration
type Config struct {
	Log            zerolog.Logger
	Config         *config.Config
	Port           int
	DevMode        bool
	Container      *di.Container // DI container with all services
	HandlerTimeout time.Duration // defaults to 60s
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	port           int
	container      *di.Container
	systemHandlers *SystemHandlers
	handlerTimeout time.Duration
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	c := cfg.Container

	var jobs JobCounter
	if c.Scheduler != nil {
		jobs = c.Scheduler
	}

	handlerTimeout := cfg.HandlerTimeout
	if handlerTimeout <= 0 {
		handlerTimeout = defaultHandlerTimeout
	}

	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		port:           cfg.Port,
		container:      c,
		handlerTimeout: handlerTimeout,
		systemHandlers: NewSystemHandlers(
			cfg.Log,
			c.WatchlistService,
			c.Cache,
			c.StateRepo,
			c.StateDB,
			jobs,
		),
	}

	if c.StateRepo != nil {
		c.StateRepo.SetErrorHook(s.systemHandlers.RecordStateFailure)
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// Longer than the handler timeout so a slow request still gets its answer
		WriteTimeout: handlerTimeout + handlerTimeout/2,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(middleware.Timeout(s.handlerTimeout))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		watchlistHandler := watchlisthandlers.NewHandler(s.container.WatchlistService, s.log)
		watchlistHandler.RegisterRoutes(r)

		widgetHandler := widgethandlers.NewHandler(s.container.StateRepo, s.log)
		widgetHandler.RegisterRoutes(r)

		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
		})
	})
}

// handleHealth reports liveness and whether the state database answers a ping
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	}

	if db := s.container.StateDB; db != nil {
		if err := db.QuickCheck(r.Context()); err != nil {
			s.log.Error().Err(err).Msg("State database ping failed")
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["error"] = err.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode health response")
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
