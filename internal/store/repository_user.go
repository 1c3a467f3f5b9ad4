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

// userRepository executes user account CRUD against the "users" table.
// Methods take the execution target as a [querier] so that the same code
// runs against the bare connection or the unit-of-work transaction.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
}

// newUserRepository constructs a user repository with the provided fallback
// logger.
func newUserRepository(logger *logger.Logger) *userRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{logger: logger}
}

// Create persists a new user record.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrUserAlreadyExists].
//   - Any other driver-level error → wrapped in [ErrExecutingStatement].
func (r *userRepository) Create(ctx context.Context, q querier, user *models.User) error {
	log := logger.FromContext(ctx)

	_, err := q.ExecContext(ctx, insertUser,
		user.ID,
		user.UserName,
		user.NormalizedUserName,
		user.Email,
		user.NormalizedEmail,
		user.EmailConfirmed,
		user.PasswordHash,
		user.SecurityStamp,
		user.ConcurrencyStamp,
		user.TwoFactorEnabled,
		user.AccessFailedCount,
	)
	if err != nil {
		log.Err(err).
			Str("func", "userRepository.Create").
			Str("user_id", user.ID.String()).
			Msg("failed to insert user")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return ErrUserAlreadyExists
		default:
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	return nil
}

// Update rewrites all mutable fields of the user record, guarded by the
// optimistic concurrency stamp carried in user.ConcurrencyStamp.
//
// The CTE-based [updateUser] query returns both the updated row id and the
// stamp currently stored in the database, so a single round trip
// distinguishes the three outcomes:
//   - record not found → [ErrUserNotFound]
//   - stamp mismatch → [ErrConcurrencyConflict]
//   - success → user.ConcurrencyStamp is advanced to newStamp.
func (r *userRepository) Update(ctx context.Context, q querier, user *models.User, newStamp string) error {
	log := logger.FromContext(ctx)

	var updatedID uuid.NullUUID
	var currentDBStamp sql.NullString

	queryRowErr := q.QueryRowContext(ctx, updateUser,
		user.ID,
		user.UserName,
		user.NormalizedUserName,
		user.Email,
		user.NormalizedEmail,
		user.EmailConfirmed,
		user.PasswordHash,
		user.SecurityStamp,
		user.TwoFactorEnabled,
		user.AccessFailedCount,
		newStamp,
		user.ConcurrencyStamp,
	).Scan(&updatedID, &currentDBStamp)
	if queryRowErr != nil {
		log.Err(queryRowErr).
			Str("func", "userRepository.Update").
			Str("user_id", user.ID.String()).
			Msg("failed to execute update query")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, queryRowErr)
	}

	// not found: target_record empty -> both NULL
	if !currentDBStamp.Valid {
		log.Warn().
			Str("func", "userRepository.Update").
			Str("user_id", user.ID.String()).
			Msg("user not found")
		return ErrUserNotFound
	}

	// found but not updated -> stamp mismatch
	if !updatedID.Valid {
		log.Warn().
			Str("func", "userRepository.Update").
			Str("user_id", user.ID.String()).
			Str("db_stamp", currentDBStamp.String).
			Str("provided_stamp", user.ConcurrencyStamp).
			Msg("optimistic lock failed: concurrency stamp mismatch")
		return ErrConcurrencyConflict
	}

	user.ConcurrencyStamp = newStamp

	return nil
}

// Delete removes the user record, guarded by the optimistic concurrency
// stamp. Associated logins, claims and role assignments are removed by the
// schema's ON DELETE CASCADE rules.
//
// Outcome mapping mirrors [userRepository.Update]: [ErrUserNotFound] when
// the record is absent, [ErrConcurrencyConflict] on stamp mismatch.
func (r *userRepository) Delete(ctx context.Context, q querier, user *models.User) error {
	log := logger.FromContext(ctx)

	var deletedID uuid.NullUUID
	var currentDBStamp sql.NullString

	queryRowErr := q.QueryRowContext(ctx, deleteUser, user.ID, user.ConcurrencyStamp).Scan(&deletedID, &currentDBStamp)
	if queryRowErr != nil {
		log.Err(queryRowErr).
			Str("func", "userRepository.Delete").
			Str("user_id", user.ID.String()).
			Msg("failed to execute delete query")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, queryRowErr)
	}

	// not found: target_record empty -> both NULL
	if !currentDBStamp.Valid {
		log.Warn().
			Str("func", "userRepository.Delete").
			Str("user_id", user.ID.String()).
			Msg("user not found")
		return ErrUserNotFound
	}

	// found but not deleted -> stamp mismatch
	if !deletedID.Valid {
		log.Warn().
			Str("func", "userRepository.Delete").
			Str("user_id", user.ID.String()).
			Str("db_stamp", currentDBStamp.String).
			Str("provided_stamp", user.ConcurrencyStamp).
			Msg("optimistic lock failed: concurrency stamp mismatch on delete")
		return ErrConcurrencyConflict
	}

	return nil
}

// FindByID retrieves a user by primary key. Absence is reported as a nil
// result with a nil error.
func (r *userRepository) FindByID(ctx context.Context, q querier, id uuid.UUID) (*models.User, error) {
	return r.findOne(ctx, q, "userRepository.FindByID", findUserByID, id)
}

// FindByName retrieves a user by normalized user name. Absence is reported
// as a nil result with a nil error.
func (r *userRepository) FindByName(ctx context.Context, q querier, normalizedUserName string) (*models.User, error) {
	return r.findOne(ctx, q, "userRepository.FindByName", findUserByName, normalizedUserName)
}

// FindByEmail retrieves a user by normalized e-mail address. Absence is
// reported as a nil result with a nil error.
func (r *userRepository) FindByEmail(ctx context.Context, q querier, normalizedEmail string) (*models.User, error) {
	return r.findOne(ctx, q, "userRepository.FindByEmail", findUserByEmail, normalizedEmail)
}

func (r *userRepository) findOne(ctx context.Context, q querier, funcName, query string, arg any) (*models.User, error) {
	log := logger.FromContext(ctx)

	row := q.QueryRowContext(ctx, query, arg)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Err(err).
			Str("func", funcName).
			Msg("failed to scan user row")
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return user, nil
}

// rowScanner is the shared Scan surface of *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanUser scans one full user row (the [userColumns] list) into a fresh
// [models.User]. Nullable text columns are collapsed to empty strings.
func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var userName, normalizedUserName, email, normalizedEmail, passwordHash, securityStamp sql.NullString

	err := row.Scan(
		&user.ID,
		&userName,
		&normalizedUserName,
		&email,
		&normalizedEmail,
		&user.EmailConfirmed,
		&passwordHash,
		&securityStamp,
		&user.ConcurrencyStamp,
		&user.TwoFactorEnabled,
		&user.AccessFailedCount,
	)
	if err != nil {
		return nil, err
	}

	user.UserName = userName.String
	user.NormalizedUserName = normalizedUserName.String
	user.Email = email.String
	user.NormalizedEmail = normalizedEmail.String
	user.PasswordHash = passwordHash.String
	user.SecurityStamp = securityStamp.String

	return &user, nil
}

// scanUsers drains rows of full user records into a slice, reporting
// scan and iteration failures separately.
func scanUsers(ctx context.Context, funcName string, rows *sql.Rows) ([]*models.User, error) {
	log := logger.FromContext(ctx)

	users := make([]*models.User, 0, 10)

	for rows.Next() {
		user, scanErr := scanUser(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", funcName).
				Msg("failed to scan user row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		users = append(users, user)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", funcName).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return users, nil
}
