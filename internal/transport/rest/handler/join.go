package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"gobag/internal/service"
)

// JoinHandler handles access-code resolution
type JoinHandler struct {
	resolverSvc *service.ResolverService
}

// NewJoinHandler creates a new join handler
func NewJoinHandler(resolverSvc *service.ResolverService) *JoinHandler {
	return &JoinHandler{resolverSvc: resolverSvc}
}

// JoinRequest is the request body for joining by access code
type JoinRequest struct {
	AccessCode string `json:"accessCode"`
}

// Join handles POST /v1/join
func (h *JoinHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sc, err := h.resolverSvc.Resolve(r.Context(), req.AccessCode)
	if err != nil {
		var lookupErr *service.LookupError
		switch {
		case errors.Is(err, service.ErrInvalidFormat):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrCodeNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrDanglingItemList), errors.Is(err, service.ErrSessionNotFound):
			// Resolvable only by an administrator, not by retyping the code.
			writeError(w, http.StatusConflict, err.Error())
		case errors.As(err, &lookupErr):
			writeError(w, http.StatusServiceUnavailable, "lookup failed, please try again")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, sc)
}
