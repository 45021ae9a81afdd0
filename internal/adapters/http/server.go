// Package http exposes the workflow engine over a JSON API: browse
// workflows, open sessions, advance through steps, and invoke step actions.
package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gradedesk/gradedesk/internal/workflows"
	"github.com/gradedesk/gradedesk/pkg/domain"
)

// Server routes workflow session requests.
type Server struct {
	registry *workflows.Registry
	store    workflows.Store
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// NewHandler builds the HTTP handler. gatherer backs /metrics and may be
// nil to disable the endpoint.
func NewHandler(registry *workflows.Registry, store workflows.Store, logger *slog.Logger, gatherer prometheus.Gatherer) http.Handler {
	s := &Server{
		registry: registry,
		store:    store,
		logger:   logger,
		gatherer: gatherer,
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/workflows", s.handleListWorkflows)
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/advance", s.handleAdvance)
			r.Post("/back", s.handleBack)
			r.Post("/actions/{action}", s.handleAction)
		})
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListWorkflows(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"workflows": s.registry.List()})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Workflow string `json:"workflow"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	wf, err := s.registry.Get(body.Workflow)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	state := workflows.NewState(newSessionID(), wf)
	if err := s.store.Save(r.Context(), state.ID, state); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("workflow session created", "session", state.ID, "workflow", wf.Name())
	writeJSON(w, http.StatusCreated, state)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.moveSession(w, r, func(state *workflows.State) { state.Advance() })
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.moveSession(w, r, func(state *workflows.State) { state.Back() })
}

func (s *Server) moveSession(w http.ResponseWriter, r *http.Request, move func(*workflows.State)) {
	id := chi.URLParam(r, "id")
	state, err := s.store.Load(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	move(state)
	if err := s.store.Save(r.Context(), id, state); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	action := chi.URLParam(r, "action")

	var params map[string]any
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	state, err := s.store.Load(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	wf, err := s.registry.Get(state.Workflow)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, actionErr := wf.Handle(r.Context(), state, action, params)

	// The session is saved even when the action failed so the recorded
	// step error survives.
	if err := s.store.Save(r.Context(), id, state); err != nil {
		s.writeError(w, r, err)
		return
	}

	if actionErr != nil {
		s.writeError(w, r, actionErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"result": result,
		"state":  state,
	})
}

// writeError maps domain errors onto HTTP statuses: unknown sessions and
// workflows are 404, unknown actions 400, failed tool calls 502, anything
// else 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, workflows.ErrSessionNotFound),
		errors.Is(err, workflows.ErrWorkflowNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workflows.ErrUnknownAction):
		status = http.StatusBadRequest
	default:
		if _, ok := domain.AsCallError(err); ok {
			status = http.StatusBadGateway
		}
	}

	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newSessionID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
