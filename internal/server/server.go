// Package server provides the HTTP control surface for the gesture engine.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/preview"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Control actions accepted by POST /api/control.
const (
	ControlStart         = "start"
	ControlStop          = "stop"
	ControlPause         = "pause"
	ControlResume        = "resume"
	ControlTogglePause   = "toggle_pause"
	ControlShowPreview   = "show_preview"
	ControlHidePreview   = "hide_preview"
	ControlTogglePreview = "toggle_preview"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	App       *app.App
	Store     *store.Store
	Preview   *preview.Buffer
	// ConfigPath is the JSON file mirrored whenever settings change.
	ConfigPath string
	Logger     *zap.SugaredLogger
}

// Server represents the HTTP server for the settings UI and control clients.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	logger *zap.SugaredLogger

	telemetry *TelemetryHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		logger: logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.App != nil {
		holder := s.config.App.Settings()
		persist := api.Persistence{Store: s.config.Store, Path: s.config.ConfigPath}

		s.mux.HandleFunc("/api/status", s.handleStatus)
		s.mux.HandleFunc("/api/control", s.handleControl)

		configHandler := api.NewConfigHandler(holder, persist, s.logger)
		s.mux.Handle("/api/config", configHandler)
		s.mux.Handle("/api/config/", configHandler)

		bindingsHandler := api.NewBindingsHandler(holder, persist, s.logger)
		s.mux.Handle("/api/bindings", bindingsHandler)
		s.mux.Handle("/api/bindings/", bindingsHandler)

		s.telemetry = NewTelemetryHandler(s.config.App, s.logger)
		s.mux.Handle("/api/telemetry", s.telemetry)
	}

	if s.config.Store != nil {
		s.mux.Handle("/api/history", api.NewHistoryHandler(s.config.Store))
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

type statusResponse struct {
	Flags     app.FlagState  `json:"flags"`
	Telemetry app.Telemetry  `json:"telemetry"`
	Config    *config.Config `json:"config"`
	Error     string         `json:"error,omitempty"`
}

func (s *Server) status() statusResponse {
	a := s.config.App
	resp := statusResponse{
		Flags:     a.Flags().Snapshot(),
		Telemetry: a.Last(),
		Config:    a.Settings().Load(),
	}
	if err := a.Err(); err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// handleStatus handles GET /api/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.status())
}

type controlRequest struct {
	Action string `json:"action"`
}

// handleControl handles POST /api/control. Flag changes take effect at the
// next frame; stop returns once the camera has been released.
func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	a := s.config.App
	flags := a.Flags()
	switch req.Action {
	case ControlStart:
		if err := a.Start(); err != nil {
			s.logger.Errorw("start failed", "error", err)
			status := http.StatusInternalServerError
			if errors.Is(err, app.ErrNoSource) {
				status = http.StatusConflict
			}
			writeError(w, status, err.Error())
			return
		}
	case ControlStop:
		a.Stop()
	case ControlPause:
		flags.SetPaused(true)
	case ControlResume:
		flags.SetPaused(false)
	case ControlTogglePause:
		flags.TogglePaused()
	case ControlShowPreview:
		flags.SetPreviewVisible(true)
	case ControlHidePreview:
		flags.SetPreviewVisible(false)
	case ControlTogglePreview:
		flags.TogglePreview()
	default:
		writeError(w, http.StatusBadRequest, "Unknown control action")
		return
	}

	s.logger.Infow("control", "action", req.Action)
	writeJSON(w, http.StatusOK, s.status())
}

// Close detaches the server from the App.
func (s *Server) Close() {
	if s.telemetry != nil {
		s.telemetry.Close()
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
