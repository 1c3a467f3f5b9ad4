package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dkotelnikov/go-identity-store/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil user", store.ErrNilUser, http.StatusBadRequest},
		{"empty role name", store.ErrEmptyRoleName, http.StatusBadRequest},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"role not found", store.ErrRoleNotFound, http.StatusNotFound},
		{"user already exists", store.ErrUserAlreadyExists, http.StatusConflict},
		{"login already exists", store.ErrLoginAlreadyExists, http.StatusConflict},
		{"duplicate claim", store.ErrDuplicateClaim, http.StatusConflict},
		{"concurrency conflict", store.ErrConcurrencyConflict, http.StatusConflict},
		{"store closed", store.ErrStoreClosed, http.StatusServiceUnavailable},
		{"statement failure", store.ErrExecutingStatement, http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFromError(tt.err))
		})
	}
}

func TestStatusFromError_WrappedSentinel(t *testing.T) {
	err := fmt.Errorf("%w: %w", store.ErrConcurrencyConflict, errors.New("stamp mismatch"))
	assert.Equal(t, http.StatusConflict, statusFromError(err))
}
