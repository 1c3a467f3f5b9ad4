package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dkotelnikov/go-identity-store/internal/store"
	"github.com/dkotelnikov/go-identity-store/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddLogin_Created(t *testing.T) {
	user := storedUser()

	var added *models.UserLogin
	mock := &mockIdentityStore{
		findByIDFn: func(_ context.Context, _ uuid.UUID) (*models.User, error) {
			return user, nil
		},
		addLoginFn: func(_ context.Context, _ *models.User, login *models.UserLogin) error {
			login.UserID = user.ID
			added = login
			return nil
		},
	}
	h := newTestHandler(t, mock)

	body := jsonBody(t, loginRequest{LoginProvider: "github", ProviderKey: "gh-42", ProviderDisplayName: "GitHub"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/"+user.ID.String()+"/logins", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Init().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, added)
	assert.Equal(t, "github", added.LoginProvider)
	assert.Equal(t, "gh-42", added.ProviderKey)
}

func TestAddLogin_MissingProvider(t *testing.T) {
	user := storedUser()

	mock := &mockIdentityStore{
		findByIDFn: func(_ context.Context, _ uuid.UUID) (*models.User, error) {
			return user, nil
		},
	}
	h := newTestHandler(t, mock)

	body := jsonBody(t, loginRequest{ProviderKey: "gh-42"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/"+user.ID.String()+"/logins", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Init().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddLogin_BindingTaken(t *testing.T) {
	user := storedUser()

	mock := &mockIdentityStore{
		findByIDFn: func(_ context.Context, _ uuid.UUID) (*models.User, error) {
			return user, nil
		},
		addLoginFn: func(_ context.Context, _ *models.User, _ *models.UserLogin) error {
			return store.ErrLoginAlreadyExists
		},
	}
	h := newTestHandler(t, mock)

	body := jsonBody(t, loginRequest{LoginProvider: "github", ProviderKey: "gh-42"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/"+user.ID.String()+"/logins", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Init().ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetLogins_Success(t *testing.T) {
	user := storedUser()

	mock := &mockIdentityStore{
		findByIDFn: func(_ context.Context, _ uuid.UUID) (*models.User, error) {
			return user, nil
		},
		getLoginsFn: func(_ context.Context, _ *models.User) ([]models.UserLogin, error) {
			return []models.UserLogin{
				{LoginProvider: "github", ProviderKey: "gh-42", ProviderDisplayName: "GitHub"},
			}, nil
		},
	}
	h := newTestHandler(t, mock)

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+user.ID.String()+"/logins", nil)
	rec := httptest.NewRecorder()

	h.Init().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var logins []models.UserLogin
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logins))
	require.Len(t, logins, 1)
	assert.Equal(t, "github", logins[0].LoginProvider)
}

func TestRemoveLogin_NoContent(t *testing.T) {
	user := storedUser()

	var gotProvider, gotKey string
	mock := &mockIdentityStore{
		findByIDFn: func(_ context.Context, _ uuid.UUID) (*models.User, error) {
			return user, nil
		},
		removeLoginFn: func(_ context.Context, _ *models.User, loginProvider, providerKey string) error {
			gotProvider, gotKey = loginProvider, providerKey
			return nil
		},
	}
	h := newTestHandler(t, mock)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/"+user.ID.String()+"/logins/github/gh-42", nil)
	rec := httptest.NewRecorder()

	h.Init().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "github", gotProvider)
	assert.Equal(t, "gh-42", gotKey)
}
