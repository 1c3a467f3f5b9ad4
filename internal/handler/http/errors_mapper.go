package http

import (
	"errors"
	"net/http"

	"github.com/dkotelnikov/go-identity-store/internal/store"
)

var errorStatusMap = map[error]int{
	store.ErrNilUser:            http.StatusBadRequest,
	store.ErrNilClaims:          http.StatusBadRequest,
	store.ErrNilLogin:           http.StatusBadRequest,
	store.ErrEmptySecurityStamp: http.StatusBadRequest,
	store.ErrEmptyRoleName:      http.StatusBadRequest,

	store.ErrUserNotFound:        http.StatusNotFound,
	store.ErrRoleNotFound:        http.StatusNotFound,
	store.ErrUserAlreadyExists:   http.StatusConflict,
	store.ErrLoginAlreadyExists:  http.StatusConflict,
	store.ErrDuplicateClaim:      http.StatusConflict,
	store.ErrConcurrencyConflict: http.StatusConflict,

	store.ErrStoreClosed: http.StatusServiceUnavailable,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
