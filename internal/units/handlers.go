package units

import (
	"net/http"

	"github.com/noah-isme/pharmacy-desk/internal/common"
)

// Handler exposes the cached unit table.
type Handler struct {
	Source *Source
}

// List returns the unit definitions currently in use.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	table, err := h.Source.Table(r.Context())
	if err != nil {
		common.WriteError(w, common.NewAppError("UNITS_UNAVAILABLE", "unit definitions are unavailable", http.StatusBadGateway, err))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": table.Definitions()})
}

// Refresh drops the cached table so the next read reloads it.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Source.Invalidate(r.Context()); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
