package http

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"finlink/internal/domain/sync"
	"finlink/internal/shared/middleware"
)

type reconciler interface {
	SyncAll(ctx context.Context, userID int64) (*sync.SyncResult, error)
}

type balanceAggregator interface {
	ListAccounts(ctx context.Context, userID int64) ([]sync.ItemAccounts, error)
}

// SyncHandler serves manual reconciliation and balance listing.
type SyncHandler struct {
	reconciler reconciler
	balances   balanceAggregator
	log        zerolog.Logger
}

func NewSyncHandler(r reconciler, b balanceAggregator, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{reconciler: r, balances: b, log: log}
}

// HandleSync handles POST /api/sync.
func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	result, err := h.reconciler.SyncAll(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type accountsResponse struct {
	Items []sync.ItemAccounts `json:"items"`
}

// HandleAccounts handles GET /api/accounts.
func (h *SyncHandler) HandleAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	items, err := h.balances.ListAccounts(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if items == nil {
		items = []sync.ItemAccounts{}
	}

	writeJSON(w, http.StatusOK, accountsResponse{Items: items})
}
