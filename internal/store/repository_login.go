package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkotelnikov/go-identity-store/internal/logger"
	"github.com/dkotelnikov/go-identity-store/models"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
)

// loginRepository manages external login bindings in the "user_logins"
// table. A binding is keyed by (login_provider, provider_key) and belongs to
// exactly one user.
type loginRepository struct {
	logger *logger.Logger
}

func newLoginRepository(logger *logger.Logger) *loginRepository {
	logger.Debug().Msg("creating login repository")
	return &loginRepository{logger: logger}
}

// Add binds an external login to a user.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrLoginAlreadyExists]. The
//     (provider, key) pair is globally unique, so a binding held by any
//     account blocks the insert.
//   - Any other driver-level error → wrapped in [ErrExecutingStatement].
func (r *loginRepository) Add(ctx context.Context, q querier, login *models.UserLogin) error {
	log := logger.FromContext(ctx)

	_, err := q.ExecContext(ctx, insertLogin,
		login.LoginProvider,
		login.ProviderKey,
		login.ProviderDisplayName,
		login.UserID,
	)
	if err != nil {
		log.Err(err).
			Str("func", "loginRepository.Add").
			Str("user_id", login.UserID.String()).
			Str("login_provider", login.LoginProvider).
			Msg("failed to insert login")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return ErrLoginAlreadyExists
		default:
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	return nil
}

// Remove unbinds an external login from a user. Removing a binding that does
// not exist is a silent no-op.
func (r *loginRepository) Remove(ctx context.Context, q querier, userID uuid.UUID, loginProvider, providerKey string) error {
	log := logger.FromContext(ctx)

	_, err := q.ExecContext(ctx, deleteLogin, userID, loginProvider, providerKey)
	if err != nil {
		log.Err(err).
			Str("func", "loginRepository.Remove").
			Str("user_id", userID.String()).
			Str("login_provider", loginProvider).
			Msg("failed to delete login")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// List returns all external login bindings of a user, ordered by provider
// and key. Returns an empty slice when the user has none.
func (r *loginRepository) List(ctx context.Context, q querier, userID uuid.UUID) ([]models.UserLogin, error) {
	log := logger.FromContext(ctx)

	rows, queryErr := q.QueryContext(ctx, getUserLogins, userID)
	if queryErr != nil {
		log.Err(queryErr).
			Str("func", "loginRepository.List").
			Str("user_id", userID.String()).
			Msg("failed to execute query for getting user logins")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, queryErr)
	}
	defer rows.Close()

	logins := make([]models.UserLogin, 0, 4)

	for rows.Next() {
		var login models.UserLogin
		var displayName sql.NullString

		scanErr := rows.Scan(&login.LoginProvider, &login.ProviderKey, &displayName, &login.UserID)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "loginRepository.List").
				Str("user_id", userID.String()).
				Msg("failed to scan login row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		login.ProviderDisplayName = displayName.String

		logins = append(logins, login)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "loginRepository.List").
			Str("user_id", userID.String()).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return logins, nil
}

// FindUserID resolves the owner of an external login. An unknown
// (provider, key) pair is reported as [uuid.Nil] with a nil error.
func (r *loginRepository) FindUserID(ctx context.Context, q querier, loginProvider, providerKey string) (uuid.UUID, error) {
	log := logger.FromContext(ctx)

	var userID uuid.UUID

	err := q.QueryRowContext(ctx, findLoginUserID, loginProvider, providerKey).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "loginRepository.FindUserID").
			Str("login_provider", loginProvider).
			Msg("failed to scan login owner")
		return uuid.Nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return userID, nil
}
