package http

import (
	"encoding/json"
	"net/http"

	"github.com/dkotelnikov/go-identity-store/internal/logger"
	"github.com/dkotelnikov/go-identity-store/internal/store"
)

type Handler struct {
	store store.IdentityStore

	version string
	logger  *logger.Logger
}

func NewHandler(identityStore store.IdentityStore, version string, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		store:   identityStore,
		version: version,
		logger:  logger,
	}
}

// writeJSON serialises v into the response with the given status code.
// Encoding failures are logged; the status line has already been sent at
// that point, so the client simply receives a truncated body.
func writeJSON(w http.ResponseWriter, r *http.Request, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromRequest(r).Err(err).Msg("failed to encode response body")
	}
}
