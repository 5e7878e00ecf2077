package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"finlink/internal/domain/link"
	"finlink/internal/infrastructure/bankfeed"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors to HTTP statuses: unknown items are
// 404, upstream feed failures are 502, everything else is 500. Internal
// details stay in the log, not the response body.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var apiErr *bankfeed.APIError

	switch {
	case errors.Is(err, link.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "linked item not found"})
	case errors.As(err, &apiErr):
		log.Error().Err(err).Msg("remote feed error")
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "remote feed unavailable"})
	default:
		log.Error().Err(err).Msg("internal error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
