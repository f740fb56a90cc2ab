package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"gobag/internal/model"
	"gobag/internal/service"
)

// SessionHandler handles session administration endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
	statusSvc  *service.StatusService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService, statusSvc *service.StatusService) *SessionHandler {
	return &SessionHandler{
		sessionSvc: sessionSvc,
		statusSvc:  statusSvc,
	}
}

// CreateSessionRequest is the request body for creating a session
type CreateSessionRequest struct {
	Name       string            `json:"name"`
	Type       model.SessionType `json:"type"`
	ItemListID string            `json:"itemListId,omitempty"`
	TeamCount  int               `json:"teamCount,omitempty"`
}

// CreateSessionResponse is returned after session creation
type CreateSessionResponse struct {
	Session *model.Session `json:"session"`
	Teams   []*model.Team  `json:"teams,omitempty"`
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, teams, err := h.sessionSvc.CreateSession(r.Context(), req.Name, req.Type, req.ItemListID, req.TeamCount)
	if err != nil {
		if errors.Is(err, service.ErrListNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, CreateSessionResponse{Session: session, Teams: teams})
}

// List handles GET /v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessionSvc.ListSessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// Get handles GET /v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	session, err := h.sessionSvc.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Teams handles GET /v1/sessions/{id}/teams
func (h *SessionHandler) Teams(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	teams, err := h.sessionSvc.ListTeams(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// Reset handles POST /v1/sessions/{id}/reset. Destructive: the caller's UI
// confirms before invoking.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	session, err := h.sessionSvc.Reset(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Delete handles DELETE /v1/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.sessionSvc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Status handles GET /v1/status, the connectivity probe behind the admin
// surface's online indicator.
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	online := h.statusSvc.Online(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"online": online})
}
