package ledger

import (
	"context"
	"net/http"
	"strings"

	"github.com/noah-isme/pharmacy-desk/internal/common"
)

// Lister reads recorded submissions.
type Lister interface {
	List(ctx context.Context, outcome Outcome, limit, offset int) ([]Entry, error)
}

// Handler exposes the submission ledger.
type Handler struct {
	Store Lister
}

// List returns recent submissions. ?outcome filters by accepted, rejected or failed.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "LEDGER_NOT_CONFIGURED", "ledger not configured", nil)
		return
	}
	outcome := Outcome(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("outcome"))))
	switch outcome {
	case "", OutcomeAccepted, OutcomeRejected, OutcomeFailed:
	default:
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "outcome must be accepted, rejected or failed", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20, 100)
	entries, err := h.Store.List(r.Context(), outcome, perPage, common.Offset(page, perPage))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "LEDGER_ERROR", "could not list submissions", nil)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       entries,
		"pagination": common.Pagination{Page: page, PerPage: perPage, Returned: len(entries)},
	})
}
