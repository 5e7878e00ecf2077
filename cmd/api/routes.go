package main

import (
	"net/http"

	"github.com/rs/zerolog"

	"finlink/internal/shared/config"
	"finlink/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler
// with middleware applied.
func SetupRoutes(deps *Dependencies, cfg *config.Config, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", handleHealth)

	authMiddleware := middleware.Auth(cfg.JWT.Secret)

	mux.Handle("POST /api/link", authMiddleware(http.HandlerFunc(deps.LinkHandler.HandleLink)))
	mux.Handle("DELETE /api/link", authMiddleware(http.HandlerFunc(deps.LinkHandler.HandleDisconnect)))
	mux.Handle("POST /api/sync", authMiddleware(http.HandlerFunc(deps.SyncHandler.HandleSync)))
	mux.Handle("GET /api/accounts", authMiddleware(http.HandlerFunc(deps.SyncHandler.HandleAccounts)))

	handler := middleware.Logging(log)(middleware.CORS(mux))
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(handler)
	}

	return handler
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
