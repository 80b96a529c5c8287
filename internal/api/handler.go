package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/kartoza/ecmo-explorer/internal/config"
	"github.com/kartoza/ecmo-explorer/internal/engine"
	"github.com/kartoza/ecmo-explorer/internal/journal"
	"github.com/kartoza/ecmo-explorer/internal/models"
	"github.com/kartoza/ecmo-explorer/internal/scenario"
)

const healthProbeTimeout = 2 * time.Second

// HealthChecker probes the prediction backend
type HealthChecker interface {
	Health(ctx context.Context) (string, error)
}

// History lists journaled predictions of a session
type History interface {
	List(ctx context.Context, sessionID string) ([]journal.Entry, error)
}

// Handler provides HTTP API endpoints
type Handler struct {
	engine  *engine.Engine
	backend HealthChecker
	history History
	cfg     config.Config
}

// NewHandler creates a new API handler. backend and history may be nil.
func NewHandler(
	eng *engine.Engine,
	backend HealthChecker,
	history History,
	cfg config.Config,
) *Handler {
	return &Handler{
		engine:  eng,
		backend: backend,
		history: history,
		cfg:     cfg,
	}
}

// RegisterRoutes sets up all API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Health and info
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
	r.HandleFunc("/info", h.handleInfo).Methods("GET")

	// Scenario definitions
	r.HandleFunc("/scenarios", h.handleListScenarios).Methods("GET")
	r.HandleFunc("/scenarios/{scenario}", h.handleGetScenario).Methods("GET")

	// Session
	r.HandleFunc("/session", h.handleSelectScenario).Methods("POST")
	r.HandleFunc("/session", h.handleGetSession).Methods("GET")
	r.HandleFunc("/session/step", h.handleSetStep).Methods("PUT")
	r.HandleFunc("/session/parameters/{key}", h.handleGetParameter).Methods("GET")
	r.HandleFunc("/session/parameters/{key}", h.handleSetParameter).Methods("PUT")
	r.HandleFunc("/session/interpretation", h.handleInterpretation).Methods("GET")
	r.HandleFunc("/session/history", h.handleHistory).Methods("GET")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Error: message})
}

// respondEngineError maps engine errors to HTTP status codes
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNoScenario):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, engine.ErrUnknownScenario), errors.Is(err, engine.ErrUnknownParameter):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrClosed):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// handleHealth returns server health status
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInfo returns server information including the backend status
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"version":         h.cfg.Version,
		"backend_url":     h.cfg.Backend.URL,
		"journal_enabled": h.history != nil,
		"metrics_enabled": h.cfg.Metrics.Enabled,
	}

	backendStatus := "unknown"
	if h.backend != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		defer cancel()
		status, err := h.backend.Health(ctx)
		if err != nil {
			backendStatus = "unreachable"
			info["backend_error"] = err.Error()
		} else {
			backendStatus = status
		}
	}
	info["backend_status"] = backendStatus

	respondJSON(w, http.StatusOK, info)
}

// handleListScenarios returns every scenario definition
func (h *Handler) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	reg := h.engine.Registry()
	defs := make([]*scenario.Definition, 0)
	for _, s := range reg.Scenarios() {
		if d, ok := reg.Definition(s); ok {
			defs = append(defs, d)
		}
	}
	respondJSON(w, http.StatusOK, defs)
}

// handleGetScenario returns one scenario definition
func (h *Handler) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["scenario"]
	s, ok := scenario.Parse(name)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown scenario: "+name)
		return
	}
	d, ok := h.engine.Registry().Definition(s)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown scenario: "+name)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

// handleSelectScenario starts a new session on a scenario
func (h *Handler) handleSelectScenario(w http.ResponseWriter, r *http.Request) {
	var req models.SelectScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s, ok := scenario.Parse(req.Scenario)
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown scenario: "+req.Scenario)
		return
	}
	if err := h.engine.SelectScenario(s); err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.engine.View())
}

// handleGetSession returns the current session view
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view := h.engine.View()
	if view.Scenario == "" {
		respondError(w, http.StatusNotFound, engine.ErrNoScenario.Error())
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// handleSetStep selects the active walkthrough parameter
func (h *Handler) handleSetStep(w http.ResponseWriter, r *http.Request) {
	var req models.SetStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.engine.SetActiveStep(req.Parameter); err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.engine.View())
}

// handleGetParameter returns the request state of one parameter
func (h *Handler) handleGetParameter(w http.ResponseWriter, r *http.Request) {
	pv, err := h.engine.Pair(mux.Vars(r)["key"])
	if err != nil {
		if errors.Is(err, engine.ErrUnknownParameter) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pv)
}

// handleSetParameter edits one parameter. The response echoes the clamped value.
func (h *Handler) handleSetParameter(w http.ResponseWriter, r *http.Request) {
	var req models.SetParameterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Value == nil {
		respondError(w, http.StatusBadRequest, "value is required")
		return
	}

	res, err := h.engine.Edit(mux.Vars(r)["key"], *req.Value)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownParameter) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondEngineError(w, err)
		return
	}
	status := http.StatusOK
	if res.Sequence != 0 {
		status = http.StatusAccepted
	}
	respondJSON(w, status, models.SetParameterResponse{
		Key:       res.Key,
		Requested: res.Requested,
		Stored:    res.Stored,
		Sequence:  res.Sequence,
	})
}

// handleInterpretation returns the interpretation of the active parameter's trajectory
func (h *Handler) handleInterpretation(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Interpretation())
}

// handleHistory returns journaled predictions of the current session
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondJSON(w, http.StatusOK, []journal.Entry{})
		return
	}
	session := h.engine.Session()
	if session == "" {
		respondJSON(w, http.StatusOK, []journal.Entry{})
		return
	}
	entries, err := h.history.List(r.Context(), session)
	if err != nil {
		log.Printf("Warning: failed to read journal: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
