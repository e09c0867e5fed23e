// Package api exposes the discovery flow as a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	service "github.com/okian/cinemind/internal/app"
	"github.com/okian/cinemind/internal/domain/selection"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the session controller.
type Dependencies interface {
	CreateSession(ctx context.Context) (service.View, error)
	View(ctx context.Context, id string) (service.View, error)
	EndSession(ctx context.Context, id string) error

	Navigate(ctx context.Context, id string, page service.Page) (service.View, error)
	SignIn(ctx context.Context, id, name, email, password string) (service.View, error)

	Search(ctx context.Context, id, query string) (service.View, error)
	ClearSearch(ctx context.Context, id string) (service.View, error)
	ToggleSelection(ctx context.Context, id string, movieID int) (selection.Change, service.View, error)
	RemoveSelection(ctx context.Context, id string, movieID int) (service.View, error)
	Continue(ctx context.Context, id string) (service.View, error)

	ToggleWatched(ctx context.Context, id string, movieID int) (bool, service.View, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	sessionsHandler *SessionsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(statsProvider),
		sessionsHandler: NewSessionsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)

	h := s.sessionsHandler
	mux.HandleFunc("POST /sessions", MetricsMiddleware(h.HandleCreate, "sessions"))
	mux.HandleFunc("GET /sessions/{id}", MetricsMiddleware(h.HandleView, "session"))
	mux.HandleFunc("DELETE /sessions/{id}", MetricsMiddleware(h.HandleEnd, "session"))
	mux.HandleFunc("POST /sessions/{id}/navigate/{page}", MetricsMiddleware(h.HandleNavigate, "navigate"))
	mux.HandleFunc("POST /sessions/{id}/auth", MetricsMiddleware(h.HandleSignIn, "auth"))
	mux.HandleFunc("GET /sessions/{id}/search", MetricsMiddleware(h.HandleSearch, "search"))
	mux.HandleFunc("DELETE /sessions/{id}/search", MetricsMiddleware(h.HandleClearSearch, "search"))
	mux.HandleFunc("POST /sessions/{id}/selection/{movie_id}", MetricsMiddleware(h.HandleToggleSelection, "selection"))
	mux.HandleFunc("DELETE /sessions/{id}/selection/{movie_id}", MetricsMiddleware(h.HandleRemoveSelection, "selection"))
	mux.HandleFunc("POST /sessions/{id}/continue", MetricsMiddleware(h.HandleContinue, "continue"))
	mux.HandleFunc("POST /sessions/{id}/watched/{movie_id}", MetricsMiddleware(h.HandleToggleWatched, "watched"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps controller errors to status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", err)
	case errors.Is(err, service.ErrUnknownMovie):
		writeError(w, http.StatusNotFound, "movie_not_found", err)
	case errors.Is(err, service.ErrUnknownPage):
		writeError(w, http.StatusBadRequest, "unknown_page", err)
	case errors.Is(err, service.ErrSelectionIncomplete):
		writeError(w, http.StatusConflict, "selection_incomplete", err)
	case errors.Is(err, service.ErrWrongPage):
		writeError(w, http.StatusConflict, "wrong_page", err)
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrInvalidMovieID), errors.Is(err, ErrInvalidBody):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
