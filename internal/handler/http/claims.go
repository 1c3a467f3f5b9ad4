package http

import (
	"encoding/json"
	"net/http"

	"github.com/dkotelnikov/go-identity-store/internal/logger"
	"github.com/dkotelnikov/go-identity-store/models"
)

type replaceClaimRequest struct {
	Old models.Claim `json:"old"`
	New models.Claim `json:"new"`
}

func (h *Handler) getClaims(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	user := h.userFromRequest(w, r)
	if user == nil {
		return
	}

	claims, err := h.store.GetClaims(r.Context(), user)
	if err != nil {
		log.Err(err).Msg("failed to list claims")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	writeJSON(w, r, claims, http.StatusOK)
}

func (h *Handler) addClaims(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	user := h.userFromRequest(w, r)
	if user == nil {
		return
	}

	var claims []models.Claim
	if err := json.NewDecoder(r.Body).Decode(&claims); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.store.AddClaims(ctx, user, claims); err != nil {
		log.Err(err).Msg("failed to add claims")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) replaceClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	user := h.userFromRequest(w, r)
	if user == nil {
		return
	}

	var req replaceClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.store.ReplaceClaim(ctx, user, req.Old, req.New); err != nil {
		log.Err(err).Msg("failed to replace claim")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeClaims(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	user := h.userFromRequest(w, r)
	if user == nil {
		return
	}

	var claims []models.Claim
	if err := json.NewDecoder(r.Body).Decode(&claims); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.store.RemoveClaims(ctx, user, claims); err != nil {
		log.Err(err).Msg("failed to remove claims")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// getUsersForClaim serves reverse claim lookup: ?type=...&value=... returns
// every account holding that claim.
func (h *Handler) getUsersForClaim(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	claim := models.Claim{
		Type:  r.URL.Query().Get("type"),
		Value: r.URL.Query().Get("value"),
	}
	if claim.Type == "" {
		http.Error(w, "type query parameter is required", http.StatusBadRequest)
		return
	}

	users, err := h.store.GetUsersForClaim(r.Context(), claim)
	if err != nil {
		log.Err(err).Msg("failed to look up users for claim")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	result := make([]userResponse, 0, len(users))
	for _, user := range users {
		result = append(result, toUserResponse(user))
	}

	writeJSON(w, r, result, http.StatusOK)
}

// getUsersForClaims is the batch form of getUsersForClaim: the body carries
// a claim list and the response is every account holding at least one of
// them, without duplicates.
func (h *Handler) getUsersForClaims(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var claims []models.Claim
	if err := json.NewDecoder(r.Body).Decode(&claims); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	users, err := h.store.GetUsersForClaims(r.Context(), claims)
	if err != nil {
		log.Err(err).Msg("failed to look up users for claims")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	result := make([]userResponse, 0, len(users))
	for _, user := range users {
		result = append(result, toUserResponse(user))
	}

	writeJSON(w, r, result, http.StatusOK)
}
