package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"gobag/internal/model"
	"gobag/internal/service"
)

// ItemListHandler handles item-list registry endpoints
type ItemListHandler struct {
	listSvc      *service.ItemListService
	migrationSvc *service.MigrationService
}

// NewItemListHandler creates a new item list handler
func NewItemListHandler(listSvc *service.ItemListService, migrationSvc *service.MigrationService) *ItemListHandler {
	return &ItemListHandler{
		listSvc:      listSvc,
		migrationSvc: migrationSvc,
	}
}

// CreateListRequest is the request body for creating an item list
type CreateListRequest struct {
	Name  string       `json:"name"`
	Items []model.Item `json:"items,omitempty"`
}

// Create handles POST /v1/lists
func (h *ItemListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	list, err := h.listSvc.Create(r.Context(), req.Name, req.Items)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateName) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

// List handles GET /v1/lists. The default list is created here lazily if it
// is missing, so the admin surface always has at least one list to offer.
func (h *ItemListHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := h.listSvc.EnsureDefault(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	lists, err := h.listSvc.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

// Get handles GET /v1/lists/{id}
func (h *ItemListHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	list, err := h.listSvc.GetList(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "item list not found")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// RenameRequest is the request body for renaming a list
type RenameRequest struct {
	Name string `json:"name"`
}

// Rename handles PUT /v1/lists/{id}/name
func (h *ItemListHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.listSvc.Rename(r.Context(), id, req.Name); err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "renamed"})
}

// AddItem handles POST /v1/lists/{id}/items
func (h *ItemListHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var item model.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.listSvc.AddItem(r.Context(), id, item); err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

// RemoveItem handles DELETE /v1/lists/{id}/items/{name}
func (h *ItemListHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.listSvc.RemoveItem(r.Context(), vars["id"], vars["name"]); err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// Delete handles DELETE /v1/lists/{id}. A list still referenced by sessions
// is refused with the blocking sessions in the response so the client can
// offer migration.
func (h *ItemListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := h.listSvc.Delete(r.Context(), id)
	if err != nil {
		var inUse *service.InUseError
		switch {
		case errors.As(err, &inUse):
			writeJSON(w, http.StatusConflict, map[string]interface{}{
				"error":    err.Error(),
				"sessions": inUse.Sessions,
			})
		case errors.Is(err, service.ErrDefaultList):
			writeError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrListNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// MigrateRequest is the request body for bulk re-pointing sessions
type MigrateRequest struct {
	ToListID string `json:"toListId"`
}

// Migrate handles POST /v1/lists/{id}/migrate: re-points every session using
// this list at the given destination list.
func (h *ItemListHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	fromID := mux.Vars(r)["id"]

	var req MigrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	affected, err := h.listSvc.SessionsUsing(r.Context(), fromID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	migrated, err := h.migrationSvc.Migrate(r.Context(), fromID, req.ToListID, affected)
	if err != nil {
		var partial *service.PartialMigrationError
		switch {
		case errors.As(err, &partial):
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"error":         err.Error(),
				"migratedCount": partial.Committed,
			})
		case errors.Is(err, service.ErrSameList):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrListNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"migratedCount": migrated})
}

func writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateName):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrListNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
