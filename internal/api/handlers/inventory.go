package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/schoolhub/internal/inventory"
	"github.com/nikhilbhutani/schoolhub/internal/models"
	"github.com/nikhilbhutani/schoolhub/internal/tenant"
)

type InventoryHandler struct {
	svc *inventory.Service
}

func NewInventoryHandler(svc *inventory.Service) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// ListCategories always answers 200. A store failure renders as an empty
// list so the dashboard keeps working.
func (h *InventoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	res := h.svc.ListCategories(r.Context(), tenant.IDFromContext(r.Context()))
	cats := res.OrEmpty()
	if cats == nil {
		cats = []models.InventoryCategory{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": cats, "count": len(cats)})
}

func (h *InventoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req inventory.CreateCategoryRequest
	if !decode(w, r, &req) {
		return
	}

	c, err := h.svc.CreateCategory(r.Context(), tenant.IDFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
