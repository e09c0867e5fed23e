package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	service "github.com/okian/cinemind/internal/app"
)

const maxBodyBytes = 1 << 16

// SessionsHandler serves the per-session page flow.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

type signInRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type selectionResponse struct {
	Change string       `json:"change"`
	View   service.View `json:"view"`
}

type watchedResponse struct {
	Watched bool         `json:"watched"`
	View    service.View `json:"view"`
}

// HandleCreate handles POST /sessions.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.CreateSession(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+v.SessionID)
	writeJSON(w, http.StatusCreated, v)
}

// HandleView handles GET /sessions/{id}.
func (h *SessionsHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.deps.View(r.Context(), r.PathValue("id")))
}

// HandleEnd handles DELETE /sessions/{id}.
func (h *SessionsHandler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.EndSession(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleNavigate handles POST /sessions/{id}/navigate/{page}.
func (h *SessionsHandler) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	page, err := service.ParsePage(r.PathValue("page"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.respond(w)(h.deps.Navigate(r.Context(), r.PathValue("id"), page))
}

// HandleSignIn handles POST /sessions/{id}/auth. An empty body is accepted.
func (h *SessionsHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeServiceError(w, fmt.Errorf("%w: %v", ErrInvalidBody, err))
		return
	}
	h.respond(w)(h.deps.SignIn(r.Context(), r.PathValue("id"), req.Name, req.Email, req.Password))
}

// HandleSearch handles GET /sessions/{id}/search?q=.
func (h *SessionsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.deps.Search(r.Context(), r.PathValue("id"), r.URL.Query().Get("q")))
}

// HandleClearSearch handles DELETE /sessions/{id}/search.
func (h *SessionsHandler) HandleClearSearch(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.deps.ClearSearch(r.Context(), r.PathValue("id")))
}

// HandleToggleSelection handles POST /sessions/{id}/selection/{movie_id}.
func (h *SessionsHandler) HandleToggleSelection(w http.ResponseWriter, r *http.Request) {
	movieID, err := parseMovieID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	change, v, err := h.deps.ToggleSelection(r.Context(), r.PathValue("id"), movieID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, selectionResponse{Change: change.Kind.String(), View: v})
}

// HandleRemoveSelection handles DELETE /sessions/{id}/selection/{movie_id}.
func (h *SessionsHandler) HandleRemoveSelection(w http.ResponseWriter, r *http.Request) {
	movieID, err := parseMovieID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.respond(w)(h.deps.RemoveSelection(r.Context(), r.PathValue("id"), movieID))
}

// HandleContinue handles POST /sessions/{id}/continue.
func (h *SessionsHandler) HandleContinue(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.deps.Continue(r.Context(), r.PathValue("id")))
}

// HandleToggleWatched handles POST /sessions/{id}/watched/{movie_id}.
func (h *SessionsHandler) HandleToggleWatched(w http.ResponseWriter, r *http.Request) {
	movieID, err := parseMovieID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	watched, v, err := h.deps.ToggleWatched(r.Context(), r.PathValue("id"), movieID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, watchedResponse{Watched: watched, View: v})
}

// respond writes v as 200 or maps err.
func (h *SessionsHandler) respond(w http.ResponseWriter) func(service.View, error) {
	return func(v service.View, err error) {
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func parseMovieID(r *http.Request) (int, error) {
	raw := r.PathValue("movie_id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMovieID, raw)
	}
	return id, nil
}
