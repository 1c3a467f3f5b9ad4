package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkotelnikov/go-identity-store/internal/logger"
	"github.com/dkotelnikov/go-identity-store/models"
	"github.com/google/uuid"
)

// roleRepository manages the "roles" catalog and the "user_roles" junction.
// Roles are addressed by their normalized name everywhere; the display name
// is carried along for presentation only.
type roleRepository struct {
	logger *logger.Logger
}

func newRoleRepository(logger *logger.Logger) *roleRepository {
	logger.Debug().Msg("creating role repository")
	return &roleRepository{logger: logger}
}

// Create seeds a role in the catalog, refreshing the display name if a role
// with the same normalized name already exists. Returns the role id.
func (r *roleRepository) Create(ctx context.Context, q querier, role *models.Role) error {
	log := logger.FromContext(ctx)

	err := q.QueryRowContext(ctx, upsertRole, role.Name, role.NormalizedName).Scan(&role.ID)
	if err != nil {
		log.Err(err).
			Str("func", "roleRepository.Create").
			Str("normalized_name", role.NormalizedName).
			Msg("failed to upsert role")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}

// findRoleID resolves a normalized role name to its catalog id. An unknown
// role is reported as [ErrRoleNotFound].
func (r *roleRepository) findRoleID(ctx context.Context, q querier, normalizedName string) (int64, error) {
	log := logger.FromContext(ctx)

	var roleID int64

	err := q.QueryRowContext(ctx, findRoleIDByName, normalizedName).Scan(&roleID)
	if errors.Is(err, sql.ErrNoRows) {
		log.Warn().
			Str("func", "roleRepository.findRoleID").
			Str("normalized_name", normalizedName).
			Msg("role not found")
		return 0, ErrRoleNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "roleRepository.findRoleID").
			Str("normalized_name", normalizedName).
			Msg("failed to scan role id")
		return 0, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return roleID, nil
}

// AddToRole assigns a user to an existing role. The role must already be in
// the catalog ([ErrRoleNotFound] otherwise); assigning a role the user
// already holds is a silent no-op.
func (r *roleRepository) AddToRole(ctx context.Context, q querier, userID uuid.UUID, normalizedName string) error {
	log := logger.FromContext(ctx)

	roleID, err := r.findRoleID(ctx, q, normalizedName)
	if err != nil {
		return err
	}

	if _, execErr := q.ExecContext(ctx, insertUserRole, userID, roleID); execErr != nil {
		log.Err(execErr).
			Str("func", "roleRepository.AddToRole").
			Str("user_id", userID.String()).
			Str("normalized_name", normalizedName).
			Msg("failed to insert role assignment")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, execErr)
	}

	return nil
}

// RemoveFromRole removes a user's role assignment. Removing an assignment
// that does not exist, or naming an unknown role, is a silent no-op.
func (r *roleRepository) RemoveFromRole(ctx context.Context, q querier, userID uuid.UUID, normalizedName string) error {
	log := logger.FromContext(ctx)

	if _, execErr := q.ExecContext(ctx, deleteUserRole, userID, normalizedName); execErr != nil {
		log.Err(execErr).
			Str("func", "roleRepository.RemoveFromRole").
			Str("user_id", userID.String()).
			Str("normalized_name", normalizedName).
			Msg("failed to delete role assignment")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, execErr)
	}

	return nil
}

// Roles returns the display names of all roles held by a user, ordered by
// name. Returns an empty slice when the user holds none.
func (r *roleRepository) Roles(ctx context.Context, q querier, userID uuid.UUID) ([]string, error) {
	log := logger.FromContext(ctx)

	rows, queryErr := q.QueryContext(ctx, getUserRoles, userID)
	if queryErr != nil {
		log.Err(queryErr).
			Str("func", "roleRepository.Roles").
			Str("user_id", userID.String()).
			Msg("failed to execute query for getting user roles")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, queryErr)
	}
	defer rows.Close()

	roles := make([]string, 0, 4)

	for rows.Next() {
		var name string

		if scanErr := rows.Scan(&name); scanErr != nil {
			log.Err(scanErr).
				Str("func", "roleRepository.Roles").
				Str("user_id", userID.String()).
				Msg("failed to scan role row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		roles = append(roles, name)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "roleRepository.Roles").
			Str("user_id", userID.String()).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return roles, nil
}

// IsInRole reports whether a user holds the named role. An unknown role
// simply yields false.
func (r *roleRepository) IsInRole(ctx context.Context, q querier, userID uuid.UUID, normalizedName string) (bool, error) {
	log := logger.FromContext(ctx)

	var inRole bool

	err := q.QueryRowContext(ctx, isUserInRole, userID, normalizedName).Scan(&inRole)
	if err != nil {
		log.Err(err).
			Str("func", "roleRepository.IsInRole").
			Str("user_id", userID.String()).
			Str("normalized_name", normalizedName).
			Msg("failed to check role membership")
		return false, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return inRole, nil
}

// UsersInRole returns all users holding the named role, ordered by user id.
// An unknown role yields an empty slice.
func (r *roleRepository) UsersInRole(ctx context.Context, q querier, normalizedName string) ([]*models.User, error) {
	log := logger.FromContext(ctx)

	rows, queryErr := q.QueryContext(ctx, getUsersInRole, normalizedName)
	if queryErr != nil {
		log.Err(queryErr).
			Str("func", "roleRepository.UsersInRole").
			Str("normalized_name", normalizedName).
			Msg("failed to execute query for getting users in role")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, queryErr)
	}
	defer rows.Close()

	return scanUsers(ctx, "roleRepository.UsersInRole", rows)
}
