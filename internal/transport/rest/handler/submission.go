package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"gobag/internal/service"
	"gobag/internal/transport/rest/middleware"
)

// SubmissionHandler handles toggle and submit endpoints
type SubmissionHandler struct {
	submissionSvc *service.SubmissionService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissionSvc *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc}
}

// ToggleRequest is the request body for toggling an item
type ToggleRequest struct {
	ItemName string `json:"itemName"`
}

// ToggleTeamItem handles POST /v1/sessions/{id}/teams/{teamId}/toggle
func (h *SubmissionHandler) ToggleTeamItem(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["teamId"]

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	team, err := h.submissionSvc.ToggleTeamItem(r.Context(), teamID, req.ItemName)
	if err != nil {
		writeSubmissionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// SubmitTeam handles POST /v1/sessions/{id}/teams/{teamId}/submit
func (h *SubmissionHandler) SubmitTeam(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["teamId"]

	team, err := h.submissionSvc.SubmitTeam(r.Context(), teamID)
	if err != nil {
		writeSubmissionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// ParticipantSubmitRequest is the request body for a workshop submission
type ParticipantSubmitRequest struct {
	SelectedItems []string `json:"selectedItems"`
}

// SubmitParticipant handles POST /v1/sessions/{id}/participants/submit. The
// anonymous subject from the participant token keys the record.
func (h *SubmissionHandler) SubmitParticipant(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	subject := middleware.GetSubject(r.Context())

	var req ParticipantSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	participant, err := h.submissionSvc.SubmitParticipant(r.Context(), sessionID, subject, req.SelectedItems)
	if err != nil {
		writeSubmissionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

func writeSubmissionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrTeamNotFound), errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrWrongSessionType):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrAlreadySubmitted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSelectionLimit), errors.Is(err, service.ErrEmptySelection):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
