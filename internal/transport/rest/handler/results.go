package handler

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"gobag/internal/service"
)

// ResultsHandler serves aggregated session results
type ResultsHandler struct {
	aggSvc *service.AggregationService
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(aggSvc *service.AggregationService) *ResultsHandler {
	return &ResultsHandler{aggSvc: aggSvc}
}

// Get handles GET /v1/sessions/{id}/results
func (h *ResultsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	results, err := h.aggSvc.Results(r.Context(), sessionID)
	if err != nil {
		writeResultsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// ExportCSV handles GET /v1/sessions/{id}/results/csv
func (h *ResultsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	results, err := h.aggSvc.Results(r.Context(), sessionID)
	if err != nil {
		writeResultsError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="results_%s.csv"`, sessionID))
	// headers are already out, a write failure here just drops the connection
	_ = service.WriteResultsCSV(w, results)
}

func writeResultsError(w http.ResponseWriter, err error) {
	if err == service.ErrSessionNotFound {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
