package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/kartoza/ecmo-explorer/internal/api"
	"github.com/kartoza/ecmo-explorer/internal/backend"
	"github.com/kartoza/ecmo-explorer/internal/config"
	"github.com/kartoza/ecmo-explorer/internal/engine"
	"github.com/kartoza/ecmo-explorer/internal/journal"
	"github.com/kartoza/ecmo-explorer/internal/metrics"
	"github.com/kartoza/ecmo-explorer/internal/scenario"
)

// Server holds all the components for the service
type Server struct {
	cfg        config.Config
	httpServer *http.Server
	router     *mux.Router
	engine     *engine.Engine
	client     *backend.Client
	journal    *journal.Journal
	metrics    *metrics.PrometheusRecorder
}

// New creates a new Server with all components initialized
func New(cfg config.Config) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		router: mux.NewRouter(),
		client: backend.NewClient(cfg.Backend.URL, nil),
	}

	// Journal is optional; the service runs without it
	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			log.Printf("Warning: prediction journal not available: %v", err)
		} else {
			s.journal = j
		}
	}

	if cfg.Metrics.Enabled {
		s.metrics = metrics.NewPrometheusRecorder()
	}

	reg := scenario.Default()
	if len(cfg.Aliases) > 0 {
		reg = reg.WithAliases(cfg.Aliases)
	}

	opts := engine.Options{Timeout: cfg.Backend.Timeout}
	if s.journal != nil {
		opts.Journal = s.journal
	}
	if s.metrics != nil {
		opts.Recorder = s.metrics
	}
	s.engine = engine.New(reg, s.client, opts)

	s.setupRoutes()
	return s, nil
}

// Router returns the HTTP handler of the server
func (s *Server) Router() http.Handler {
	return s.router
}

// Engine returns the session engine
func (s *Server) Engine() *engine.Engine {
	return s.engine
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(corsMiddleware)

	// API routes
	apiRouter := s.router.PathPrefix("/api").Subrouter()
	var history api.History
	if s.journal != nil {
		history = s.journal
	}
	apiHandler := api.NewHandler(s.engine, s.client, history, s.cfg)
	apiHandler.RegisterRoutes(apiRouter)

	// Prometheus exposition
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	// Preflight for browser clients on another origin
	s.router.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

// corsMiddleware lets a UI served from another origin call the API
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

// Start begins listening for HTTP connections
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server listening on http://localhost:%d", s.cfg.Port)
	log.Printf("Prediction backend: %s", s.cfg.Backend.URL)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	// In-flight backend calls are cancelled before the journal closes
	s.engine.Close()
	if s.journal != nil {
		s.journal.Close()
	}
	return err
}
