package draft

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pharmacy-desk/internal/common"
	"github.com/noah-isme/pharmacy-desk/internal/lock"
	"github.com/noah-isme/pharmacy-desk/internal/salesorder"
)

// Orders prices and submits the order held by a draft.
type Orders interface {
	Quote(ctx context.Context, order salesorder.Order) (salesorder.Quote, error)
	Submit(ctx context.Context, draftID string, order salesorder.Order) (salesorder.Submission, error)
}

// Handler exposes draft editing endpoints.
type Handler struct {
	Store  *Store
	Orders Orders
	Logger zerolog.Logger
}

// Routes mounts the draft endpoints. submit wraps the submit route, typically
// with idempotency and rate limiting.
func (h *Handler) Routes(r chi.Router, submit ...func(http.Handler) http.Handler) {
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Post("/lines", h.AddLine)
		r.Patch("/lines/{lineId}", h.UpdateLine)
		r.Delete("/lines/{lineId}", h.RemoveLine)
		r.Put("/customer", h.SetCustomer)
		r.Put("/payment", h.SetPayment)
		r.Get("/quote", h.Quote)
		r.With(submit...).Post("/submit", h.Submit)
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "DRAFT_NOT_FOUND", "draft not found", nil)
	case errors.Is(err, ErrLineNotFound):
		common.JSONError(w, http.StatusNotFound, "LINE_NOT_FOUND", "line not found", nil)
	case errors.Is(err, lock.ErrBusy):
		common.JSONError(w, http.StatusConflict, "DRAFT_BUSY", "draft is being changed, try again", nil)
	case common.IsAppError(err):
		common.WriteError(w, err)
	default:
		h.Logger.Error().Err(err).Msg("draft_request_failed")
		common.WriteError(w, err)
	}
}

// Create starts a new draft.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	d, err := h.Store.Create(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": d})
}

// Get returns a draft.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": d})
}

// Delete discards a draft.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddLine appends a product line.
func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	var line salesorder.Line
	if err := common.DecodeJSON(w, r, &line); err != nil {
		common.WriteError(w, err)
		return
	}
	d, err := h.Store.AddLine(r.Context(), chi.URLParam(r, "id"), line)
	h.respond(w, http.StatusCreated, d, err)
}

// UpdateLine patches a product line.
func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	var patch LinePatch
	if err := common.DecodeJSON(w, r, &patch); err != nil {
		common.WriteError(w, err)
		return
	}
	d, err := h.Store.UpdateLine(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "lineId"), patch)
	h.respond(w, http.StatusOK, d, err)
}

// RemoveLine drops a product line.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	d, err := h.Store.RemoveLine(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "lineId"))
	h.respond(w, http.StatusOK, d, err)
}

// SetCustomer selects the customer.
func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CustomerID int64 `json:"customerId"`
	}
	if err := common.DecodeJSON(w, r, &body); err != nil {
		common.WriteError(w, err)
		return
	}
	d, err := h.Store.SetCustomer(r.Context(), chi.URLParam(r, "id"), body.CustomerID)
	h.respond(w, http.StatusOK, d, err)
}

// SetPayment replaces the payment section.
func (h *Handler) SetPayment(w http.ResponseWriter, r *http.Request) {
	var body Payment
	if err := common.DecodeJSON(w, r, &body); err != nil {
		common.WriteError(w, err)
		return
	}
	d, err := h.Store.SetPayment(r.Context(), chi.URLParam(r, "id"), body)
	h.respond(w, http.StatusOK, d, err)
}

func (h *Handler) respond(w http.ResponseWriter, status int, d Draft, err error) {
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, status, map[string]any{"data": d})
}

// Quote prices the draft and lists what blocks submission.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	d, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	q, err := h.Orders.Quote(r.Context(), d.Order)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": q})
}

// Submit sends the draft to the order service and discards it on success.
// The draft stays locked for the whole attempt so it cannot change mid-flight.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var sub salesorder.Submission
	err := h.Store.WithLock(r.Context(), id, func(ctx context.Context) error {
		d, err := h.Store.Get(ctx, id)
		if err != nil {
			return err
		}
		sub, err = h.Orders.Submit(ctx, d.ID, d.Order)
		if err != nil {
			return err
		}
		if err := h.Store.R.Del(context.WithoutCancel(ctx), h.Store.key(id)).Err(); err != nil {
			h.Logger.Warn().Err(err).Str("draft_id", id).Msg("draft_cleanup_failed")
		}
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": sub})
}
