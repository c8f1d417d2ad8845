// Package server provides the HTTP API the report dashboard is built on.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/dynconv/analyzer/internal/events"
	"github.com/dynconv/analyzer/internal/modules/analysis"
	"github.com/dynconv/analyzer/internal/modules/snapshots"
)

// Config holds server configuration
type Config struct {
	Port     int
	Log      zerolog.Logger
	Store    *snapshots.Store
	Analyzer *analysis.Analyzer
	Bus      *events.Bus
	DevMode  bool
}

// Server represents the HTTP server
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      zerolog.Logger
	store    *snapshots.Store
	analyzer *analysis.Analyzer
	bus      *events.Bus
	devMode  bool
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		log:      cfg.Log.With().Str("component", "server").Logger(),
		store:    cfg.Store,
		analyzer: cfg.Analyzer,
		bus:      cfg.Bus,
		devMode:  cfg.DevMode,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if !s.devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/report", s.handleLatestReport)
		r.Get("/report/{runID}", s.handleReport)
		r.Get("/positions", s.handlePositions)
		r.Get("/runs", s.handleRuns)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/events", s.handleEvents)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
