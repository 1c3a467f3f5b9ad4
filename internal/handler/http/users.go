package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dkotelnikov/go-identity-store/internal/logger"
	"github.com/dkotelnikov/go-identity-store/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type createUserRequest struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	UserName         string `json:"user_name"`
	Email            string `json:"email"`
	EmailConfirmed   bool   `json:"email_confirmed"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`

	// ConcurrencyStamp must carry the stamp from the last read of this
	// account; a stale stamp is rejected with 409.
	ConcurrencyStamp string `json:"concurrency_stamp"`
}

// userResponse is the outward representation of an account. It includes the
// concurrency stamp (needed for subsequent updates) but never credential
// material.
type userResponse struct {
	ID               string `json:"id"`
	UserName         string `json:"user_name"`
	Email            string `json:"email"`
	EmailConfirmed   bool   `json:"email_confirmed"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
	ConcurrencyStamp string `json:"concurrency_stamp"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:               user.ID.String(),
		UserName:         user.UserName,
		Email:            user.Email,
		EmailConfirmed:   user.EmailConfirmed,
		TwoFactorEnabled: user.TwoFactorEnabled,
		ConcurrencyStamp: user.ConcurrencyStamp,
	}
}

// userFromRequest resolves the {userID} path parameter to a stored account.
// Writes the error response itself and returns nil when the account cannot
// be served.
func (h *Handler) userFromRequest(w http.ResponseWriter, r *http.Request) *models.User {
	log := logger.FromRequest(r)

	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		log.Err(err).Msg("invalid user id")
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return nil
	}

	user, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		log.Err(err).Msg("failed to load user")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return nil
	}
	if user == nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return nil
	}

	return user
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if req.UserName == "" {
		http.Error(w, "user_name is required", http.StatusBadRequest)
		return
	}

	user := &models.User{
		UserName:           req.UserName,
		NormalizedUserName: strings.ToUpper(req.UserName),
		Email:              req.Email,
		NormalizedEmail:    strings.ToUpper(req.Email),
		SecurityStamp:      uuid.NewString(),
	}

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Err(err).Msg("failed to hash password")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		user.PasswordHash = string(hash)
	}

	if err := h.store.Create(ctx, user); err != nil {
		log.Err(err).Msg("failed to create user")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	log.Info().Str("user_id", user.ID.String()).Msg("user created")
	writeJSON(w, r, toUserResponse(user), http.StatusCreated)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user := h.userFromRequest(w, r)
	if user == nil {
		return
	}

	writeJSON(w, r, toUserResponse(user), http.StatusOK)
}

func (h *Handler) findUserByName(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	name := chi.URLParam(r, "name")

	user, err := h.store.FindByName(r.Context(), strings.ToUpper(name))
	if err != nil {
		log.Err(err).Msg("failed to find user by name")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}
	if user == nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	writeJSON(w, r, toUserResponse(user), http.StatusOK)
}

func (h *Handler) findUserByEmail(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	email := chi.URLParam(r, "email")

	user, err := h.store.FindByEmail(r.Context(), strings.ToUpper(email))
	if err != nil {
		log.Err(err).Msg("failed to find user by email")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}
	if user == nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	writeJSON(w, r, toUserResponse(user), http.StatusOK)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	user := h.userFromRequest(w, r)
	if user == nil {
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if req.UserName != "" {
		user.UserName = req.UserName
		user.NormalizedUserName = strings.ToUpper(req.UserName)
	}
	if req.Email != "" {
		user.Email = req.Email
		user.NormalizedEmail = strings.ToUpper(req.Email)
	}
	user.EmailConfirmed = req.EmailConfirmed
	user.TwoFactorEnabled = req.TwoFactorEnabled

	if req.ConcurrencyStamp != "" {
		user.ConcurrencyStamp = req.ConcurrencyStamp
	}

	if err := h.store.Update(ctx, user); err != nil {
		log.Err(err).Msg("failed to update user")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	writeJSON(w, r, toUserResponse(user), http.StatusOK)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	user := h.userFromRequest(w, r)
	if user == nil {
		return
	}

	// If-Match narrows the delete to a known revision of the account.
	if stamp := r.Header.Get("If-Match"); stamp != "" {
		user.ConcurrencyStamp = stamp
	}

	if err := h.store.Delete(ctx, user); err != nil {
		log.Err(err).Msg("failed to delete user")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	log.Info().Str("user_id", user.ID.String()).Msg("user deleted")
	w.WriteHeader(http.StatusNoContent)
}
