package dashboard

import (
	"net/http"
	"time"

	"github.com/noah-isme/pharmacy-desk/internal/common"
)

// Handler exposes dashboard read endpoints.
type Handler struct {
	Svc *Service
}

// rangeFrom reads either from/to (RFC3339) or days from the query.
func (h *Handler) rangeFrom(r *http.Request) (time.Time, time.Time, bool, string) {
	query := r.URL.Query()
	fromStr := query.Get("from")
	toStr := query.Get("to")
	if fromStr != "" && toStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, false, "invalid from date"
		}
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return time.Time{}, time.Time{}, false, "invalid to date"
		}
		if !from.Before(to) {
			return time.Time{}, time.Time{}, false, "from must be before to"
		}
		return from, to, true, ""
	}
	days := h.Svc.DefaultRange
	if days <= 0 {
		days = 30
	}
	days = common.QueryInt(r, "days", days)
	// whole days so repeated calls share a cache entry
	to := h.Svc.now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	return to.AddDate(0, 0, -days), to, true, ""
}

// Sales returns accepted sales per day for the requested range.
func (h *Handler) Sales(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "DASHBOARD_NOT_CONFIGURED", "dashboard service not configured", nil)
		return
	}
	from, to, ok, msg := h.rangeFrom(r)
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", msg, nil)
		return
	}
	rows, err := h.Svc.SalesRange(r.Context(), from, to)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "DASHBOARD_ERROR", "could not load sales", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rows})
}

// PaymentStatus returns the payment kind breakdown for the requested range.
func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "DASHBOARD_NOT_CONFIGURED", "dashboard service not configured", nil)
		return
	}
	from, to, ok, msg := h.rangeFrom(r)
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", msg, nil)
		return
	}
	rows, err := h.Svc.PaymentStatus(r.Context(), from, to)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "DASHBOARD_ERROR", "could not load payment breakdown", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rows})
}
