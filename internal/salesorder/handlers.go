package salesorder

import (
	"net/http"

	"github.com/noah-isme/pharmacy-desk/internal/common"
)

// Handler exposes stateless quote and submit endpoints that take the whole
// order in the request body.
type Handler struct {
	Svc *Service
}

// Quote prices the posted order without submitting it.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "SALE_ORDERS_NOT_CONFIGURED", "sale order service not configured", nil)
		return
	}
	var order Order
	if err := common.DecodeJSON(w, r, &order); err != nil {
		common.WriteError(w, err)
		return
	}
	q, err := h.Svc.Quote(r.Context(), order)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": q})
}

// Create validates and submits the posted order.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "SALE_ORDERS_NOT_CONFIGURED", "sale order service not configured", nil)
		return
	}
	var order Order
	if err := common.DecodeJSON(w, r, &order); err != nil {
		common.WriteError(w, err)
		return
	}
	sub, err := h.Svc.Submit(r.Context(), "", order)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": sub})
}
