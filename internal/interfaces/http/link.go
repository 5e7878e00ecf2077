package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"finlink/internal/domain/link"
	"finlink/internal/shared/middleware"
)

type linkService interface {
	LinkAccount(ctx context.Context, userID int64, publicToken, institutionID, institutionName string) (*link.LinkResult, error)
	Disconnect(ctx context.Context, userID int64, remoteItemID string) (*link.DisconnectResult, error)
}

// LinkHandler serves account linking and disconnection.
type LinkHandler struct {
	links linkService
	log   zerolog.Logger
}

func NewLinkHandler(links linkService, log zerolog.Logger) *LinkHandler {
	return &LinkHandler{links: links, log: log}
}

type linkRequest struct {
	PublicToken     string `json:"publicToken"`
	InstitutionID   string `json:"institutionId"`
	InstitutionName string `json:"institutionName"`
}

// HandleLink handles POST /api/link.
func (h *LinkHandler) HandleLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.PublicToken == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "publicToken is required"})
		return
	}

	result, err := h.links.LinkAccount(r.Context(), userID, req.PublicToken, req.InstitutionID, req.InstitutionName)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type disconnectRequest struct {
	ItemID string `json:"itemId"`
}

// HandleDisconnect handles DELETE /api/link.
func (h *LinkHandler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	var req disconnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.ItemID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "itemId is required"})
		return
	}

	result, err := h.links.Disconnect(r.Context(), userID, req.ItemID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
