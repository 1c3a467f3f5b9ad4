package http

import (
	"encoding/json"
	"net/http"

	"github.com/dkotelnikov/go-identity-store/internal/logger"
	"github.com/dkotelnikov/go-identity-store/models"
	"github.com/go-chi/chi/v5"
)

type loginRequest struct {
	LoginProvider       string `json:"login_provider"`
	ProviderKey         string `json:"provider_key"`
	ProviderDisplayName string `json:"provider_display_name"`
}

func (h *Handler) getLogins(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	user := h.userFromRequest(w, r)
	if user == nil {
		return
	}

	logins, err := h.store.GetLogins(r.Context(), user)
	if err != nil {
		log.Err(err).Msg("failed to list logins")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	writeJSON(w, r, logins, http.StatusOK)
}

func (h *Handler) addLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	user := h.userFromRequest(w, r)
	if user == nil {
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	if req.LoginProvider == "" || req.ProviderKey == "" {
		http.Error(w, "login_provider and provider_key are required", http.StatusBadRequest)
		return
	}

	login := &models.UserLogin{
		LoginProvider:       req.LoginProvider,
		ProviderKey:         req.ProviderKey,
		ProviderDisplayName: req.ProviderDisplayName,
	}

	if err := h.store.AddLogin(ctx, user, login); err != nil {
		log.Err(err).Msg("failed to add login")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	writeJSON(w, r, login, http.StatusCreated)
}

func (h *Handler) removeLogin(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	user := h.userFromRequest(w, r)
	if user == nil {
		return
	}

	provider := chi.URLParam(r, "provider")
	key := chi.URLParam(r, "key")

	if err := h.store.RemoveLogin(r.Context(), user, provider, key); err != nil {
		log.Err(err).Msg("failed to remove login")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
