// Package server provides the HTTP control and telemetry surface.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/handthrottle/internal/app"
	"github.com/ayusman/handthrottle/internal/capture"
	"github.com/ayusman/handthrottle/internal/server/api"
	"github.com/ayusman/handthrottle/internal/store"
)

// Config holds the server configuration. Nil fields disable the routes
// that depend on them.
type Config struct {
	Store     *store.Store
	App       *app.App
	Camera    capture.Camera
	ModelPath string
	StaticDir string
}

// Server is the HTTP server for the application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.App != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
		s.mux.Handle("/api/telemetry", NewTelemetryHandler(s.config.App))
	}

	if s.config.Store != nil {
		var recorder api.Recorder
		if s.config.App != nil {
			recorder = s.config.App
		}
		s.mux.Handle("/api/config", api.NewConfigHandler(s.config.Store))
		s.mux.Handle("/api/sessions", api.NewSessionsHandler(s.config.Store))
		s.mux.Handle("/api/samples", api.NewSamplesHandler(s.config.Store, recorder))
		s.mux.Handle("/api/train", api.NewTrainHandler(s.config.Store, s.config.ModelPath))
	}

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera))
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleStatus handles GET requests to /api/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.config.App.Status())
}
