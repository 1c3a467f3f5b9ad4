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

// claimRepository manages user claims split across two tables: the shared
// "claim_definitions" catalog, which stores each distinct (type, value) pair
// exactly once, and the "user_claims" junction, which binds catalog rows to
// users.
//
// Catalog rows are append-only from the repository's point of view: they are
// deduplicated on insert and never mutated or deleted here, so every
// operation that changes what a user holds touches junction rows only.
type claimRepository struct {
	logger *logger.Logger
}

func newClaimRepository(logger *logger.Logger) *claimRepository {
	logger.Debug().Msg("creating claim repository")
	return &claimRepository{logger: logger}
}

// List returns all claims held by a user, ordered by type then value.
// Returns an empty slice when the user holds none.
func (r *claimRepository) List(ctx context.Context, q querier, userID uuid.UUID) ([]models.Claim, error) {
	log := logger.FromContext(ctx)

	rows, queryErr := q.QueryContext(ctx, getUserClaims, userID)
	if queryErr != nil {
		log.Err(queryErr).
			Str("func", "claimRepository.List").
			Str("user_id", userID.String()).
			Msg("failed to execute query for getting user claims")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, queryErr)
	}
	defer rows.Close()

	claims := make([]models.Claim, 0, 10)

	for rows.Next() {
		var claim models.Claim

		scanErr := rows.Scan(&claim.Type, &claim.Value)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "claimRepository.List").
				Str("user_id", userID.String()).
				Msg("failed to scan claim row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		claims = append(claims, claim)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "claimRepository.List").
			Str("user_id", userID.String()).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return claims, nil
}

// Add assigns a batch of claims to a user. The batch is all-or-nothing: if
// any candidate collides with a claim the user already holds, the whole
// batch is rejected with [ErrDuplicateClaim] and nothing is written.
//
// For each accepted claim the catalog row is upserted (deduplicated on
// (type, value)) and a junction row is inserted. The caller supplies q as a
// transaction so partial batches never become visible.
func (r *claimRepository) Add(ctx context.Context, q querier, userID uuid.UUID, claims []models.Claim) error {
	log := logger.FromContext(ctx)

	existing, err := r.List(ctx, q, userID)
	if err != nil {
		return err
	}

	for _, candidate := range claims {
		for _, held := range existing {
			if candidate.Equal(held) {
				log.Warn().
					Str("func", "claimRepository.Add").
					Str("user_id", userID.String()).
					Str("claim_type", candidate.Type).
					Msg("claim already assigned, rejecting whole batch")
				return ErrDuplicateClaim
			}
		}
	}

	for idx, claim := range claims {
		var claimID int64

		queryRowErr := q.QueryRowContext(ctx, upsertClaimDefinition, claim.Type, claim.Value).Scan(&claimID)
		if queryRowErr != nil {
			log.Err(queryRowErr).
				Str("func", "claimRepository.Add").
				Int("iteration", idx+1).
				Str("user_id", userID.String()).
				Msg("failed to upsert claim definition")
			return fmt.Errorf("%w: %w", ErrExecutingQuery, queryRowErr)
		}

		if _, execErr := q.ExecContext(ctx, insertUserClaim, userID, claimID); execErr != nil {
			log.Err(execErr).
				Str("func", "claimRepository.Add").
				Int("iteration", idx+1).
				Str("user_id", userID.String()).
				Msg("failed to insert user claim")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, execErr)
		}
	}

	return nil
}

// Replace swaps one claim of a user for another by repointing the user's
// junction rows from the old catalog row to the (upserted) new one. Shared
// catalog rows are never edited in place, so other holders of the old claim
// are unaffected.
//
// The operation is a silent no-op when the old claim is unknown to the
// catalog, when the user does not hold it, or when old and new are equal.
func (r *claimRepository) Replace(ctx context.Context, q querier, userID uuid.UUID, oldClaim, newClaim models.Claim) error {
	log := logger.FromContext(ctx)

	var oldID int64

	err := q.QueryRowContext(ctx, findClaimDefinitionID, oldClaim.Type, oldClaim.Value).Scan(&oldID)
	if errors.Is(err, sql.ErrNoRows) {
		// unknown claim -> nothing to replace
		return nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "claimRepository.Replace").
			Str("user_id", userID.String()).
			Msg("failed to look up old claim definition")
		return fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	var newID int64

	queryRowErr := q.QueryRowContext(ctx, upsertClaimDefinition, newClaim.Type, newClaim.Value).Scan(&newID)
	if queryRowErr != nil {
		log.Err(queryRowErr).
			Str("func", "claimRepository.Replace").
			Str("user_id", userID.String()).
			Msg("failed to upsert new claim definition")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, queryRowErr)
	}

	if newID == oldID {
		return nil
	}

	if _, execErr := q.ExecContext(ctx, repointUserClaims, userID, oldID, newID); execErr != nil {
		log.Err(execErr).
			Str("func", "claimRepository.Replace").
			Str("user_id", userID.String()).
			Msg("failed to repoint user claims")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, execErr)
	}

	return nil
}

// Remove detaches a batch of claims from a user in a single DELETE built by
// [buildRemoveClaimsQuery]. Claims the user does not hold are silently
// skipped; catalog rows are left untouched.
func (r *claimRepository) Remove(ctx context.Context, q querier, userID uuid.UUID, claims []models.Claim) error {
	log := logger.FromContext(ctx)

	if len(claims) == 0 {
		return nil
	}

	query, args, err := buildRemoveClaimsQuery(ctx, userID, claims)
	if err != nil {
		return err
	}

	if _, execErr := q.ExecContext(ctx, query, args...); execErr != nil {
		log.Err(execErr).
			Str("func", "claimRepository.Remove").
			Str("user_id", userID.String()).
			Int("claims_count", len(claims)).
			Msg("failed to delete user claims")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, execErr)
	}

	return nil
}

// UsersFor returns all users that hold the given claim, ordered by user id.
func (r *claimRepository) UsersFor(ctx context.Context, q querier, claim models.Claim) ([]*models.User, error) {
	log := logger.FromContext(ctx)

	rows, queryErr := q.QueryContext(ctx, getUsersForClaim, claim.Type, claim.Value)
	if queryErr != nil {
		log.Err(queryErr).
			Str("func", "claimRepository.UsersFor").
			Str("claim_type", claim.Type).
			Msg("failed to execute query for getting users holding claim")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, queryErr)
	}
	defer rows.Close()

	return scanUsers(ctx, "claimRepository.UsersFor", rows)
}

// UsersForAny returns all users that hold at least one of the given claims.
// Returns an empty slice for an empty claim set.
func (r *claimRepository) UsersForAny(ctx context.Context, q querier, claims []models.Claim) ([]*models.User, error) {
	log := logger.FromContext(ctx)

	if len(claims) == 0 {
		return []*models.User{}, nil
	}

	query, args, err := buildGetUsersForClaimsQuery(ctx, claims)
	if err != nil {
		return nil, err
	}

	rows, queryErr := q.QueryContext(ctx, query, args...)
	if queryErr != nil {
		log.Err(queryErr).
			Str("func", "claimRepository.UsersForAny").
			Int("claims_count", len(claims)).
			Msg("failed to execute query for getting users holding claims")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, queryErr)
	}
	defer rows.Close()

	return scanUsers(ctx, "claimRepository.UsersForAny", rows)
}
