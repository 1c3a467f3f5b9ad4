package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dkotelnikov/go-identity-store/internal/logger"
	"github.com/dkotelnikov/go-identity-store/models"
	"github.com/go-chi/chi/v5"
)

type roleRequest struct {
	Name string `json:"name"`
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	role := &models.Role{
		Name:           req.Name,
		NormalizedName: strings.ToUpper(req.Name),
	}

	if err := h.store.CreateRole(ctx, role); err != nil {
		log.Err(err).Msg("failed to create role")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	writeJSON(w, r, role, http.StatusCreated)
}

func (h *Handler) getRoles(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	user := h.userFromRequest(w, r)
	if user == nil {
		return
	}

	roles, err := h.store.GetRoles(r.Context(), user)
	if err != nil {
		log.Err(err).Msg("failed to list roles")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	writeJSON(w, r, roles, http.StatusOK)
}

func (h *Handler) addToRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	user := h.userFromRequest(w, r)
	if user == nil {
		return
	}

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.store.AddToRole(ctx, user, strings.ToUpper(req.Name)); err != nil {
		log.Err(err).Msg("failed to add user to role")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeFromRole(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	user := h.userFromRequest(w, r)
	if user == nil {
		return
	}

	role := chi.URLParam(r, "role")

	if err := h.store.RemoveFromRole(r.Context(), user, strings.ToUpper(role)); err != nil {
		log.Err(err).Msg("failed to remove user from role")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getUsersInRole(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	role := chi.URLParam(r, "role")

	users, err := h.store.GetUsersInRole(r.Context(), strings.ToUpper(role))
	if err != nil {
		log.Err(err).Msg("failed to list users in role")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	result := make([]userResponse, 0, len(users))
	for _, user := range users {
		result = append(result, toUserResponse(user))
	}

	writeJSON(w, r, result, http.StatusOK)
}
