package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dkotelnikov/go-identity-store/internal/logger"
	"github.com/dkotelnikov/go-identity-store/models"
	"github.com/google/uuid"
)

// userColumns is the canonical column list of the "users" table. Every query
// that returns full user rows selects exactly these columns in this order so
// that scanUser/scanUserRows stay in sync.
const userColumns = `id, user_name, normalized_user_name, email, normalized_email, email_confirmed, password_hash, security_stamp, concurrency_stamp, two_factor_enabled, access_failed_count`

const (
	insertUser = `INSERT INTO users (
			id,
			user_name,
			normalized_user_name,
			email,
			normalized_email,
			email_confirmed,
			password_hash,
			security_stamp,
			concurrency_stamp,
			two_factor_enabled,
			access_failed_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`

	// updateUser performs an optimistic-concurrency update. The CTE returns
	// one row regardless of the outcome:
	//   - target_record empty -> both fields NULL -> record not found
	//   - updated_id NULL, current_db_stamp non-NULL -> stamp mismatch
	//   - both non-NULL -> success
	updateUser = `
		WITH target_record AS (
			SELECT id, concurrency_stamp
			FROM users
			WHERE id = $1
		),
		updated_record AS (
			UPDATE users
			SET user_name = $2,
				normalized_user_name = $3,
				email = $4,
				normalized_email = $5,
				email_confirmed = $6,
				password_hash = $7,
				security_stamp = $8,
				two_factor_enabled = $9,
				access_failed_count = $10,
				concurrency_stamp = $11
			WHERE id = $1
				AND concurrency_stamp = $12
			RETURNING id
		)
		SELECT
			(SELECT id FROM updated_record)                  AS updated_id,
			(SELECT concurrency_stamp FROM target_record)    AS current_db_stamp;`

	// deleteUser mirrors [updateUser]: the CTE result distinguishes "not
	// found" from "stamp mismatch" without a second round trip. Associated
	// logins, claims and roles are removed by ON DELETE CASCADE.
	deleteUser = `
		WITH target_record AS (
			SELECT id, concurrency_stamp
			FROM users
			WHERE id = $1
		),
		deleted_record AS (
			DELETE FROM users
			WHERE id = $1
				AND concurrency_stamp = $2
			RETURNING id
		)
		SELECT
			(SELECT id FROM deleted_record)                  AS deleted_id,
			(SELECT concurrency_stamp FROM target_record)    AS current_db_stamp;`

	findUserByID = `SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
		LIMIT 1;`

	findUserByName = `SELECT ` + userColumns + `
		FROM users
		WHERE normalized_user_name = $1
		LIMIT 1;`

	findUserByEmail = `SELECT ` + userColumns + `
		FROM users
		WHERE normalized_email = $1
		LIMIT 1;`
)

const (
	insertLogin = `INSERT INTO user_logins (login_provider, provider_key, provider_display_name, user_id)
		VALUES ($1, $2, $3, $4);`

	deleteLogin = `DELETE FROM user_logins
		WHERE user_id = $1 AND login_provider = $2 AND provider_key = $3;`

	getUserLogins = `SELECT login_provider, provider_key, provider_display_name, user_id
		FROM user_logins
		WHERE user_id = $1
		ORDER BY login_provider, provider_key;`

	findLoginUserID = `SELECT user_id
		FROM user_logins
		WHERE login_provider = $1 AND provider_key = $2
		LIMIT 1;`
)

const (
	getUserClaims = `SELECT cd.claim_type, cd.claim_value
		FROM user_claims uc
		JOIN claim_definitions cd ON cd.id = uc.claim_id
		WHERE uc.user_id = $1
		ORDER BY cd.claim_type, cd.claim_value;`

	// upsertClaimDefinition deduplicates catalog rows on (claim_type,
	// claim_value). The no-op DO UPDATE makes RETURNING yield the id of the
	// existing row on conflict.
	upsertClaimDefinition = `INSERT INTO claim_definitions (claim_type, claim_value)
		VALUES ($1, $2)
		ON CONFLICT (claim_type, claim_value) DO UPDATE SET claim_type = EXCLUDED.claim_type
		RETURNING id;`

	insertUserClaim = `INSERT INTO user_claims (user_id, claim_id)
		VALUES ($1, $2);`

	findClaimDefinitionID = `SELECT id
		FROM claim_definitions
		WHERE claim_type = $1 AND claim_value = $2
		LIMIT 1;`

	// repointUserClaims rebinds the user's junction rows from one catalog
	// row to another. Catalog rows are shared between users and are never
	// mutated in place.
	repointUserClaims = `UPDATE user_claims
		SET claim_id = $3
		WHERE user_id = $1 AND claim_id = $2;`

	getUsersForClaim = `SELECT ` + userColumnsPrefixed + `
		FROM users u
		JOIN user_claims uc ON uc.user_id = u.id
		JOIN claim_definitions cd ON cd.id = uc.claim_id
		WHERE cd.claim_type = $1 AND cd.claim_value = $2
		ORDER BY u.id;`
)

const userColumnsPrefixed = `u.id, u.user_name, u.normalized_user_name, u.email, u.normalized_email, u.email_confirmed, u.password_hash, u.security_stamp, u.concurrency_stamp, u.two_factor_enabled, u.access_failed_count`

const (
	findRoleIDByName = `SELECT id
		FROM roles
		WHERE normalized_name = $1
		LIMIT 1;`

	// upsertRole seeds the role catalog. Roles are keyed by normalized name;
	// re-creating an existing role refreshes its display name only.
	upsertRole = `INSERT INTO roles (name, normalized_name)
		VALUES ($1, $2)
		ON CONFLICT (normalized_name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id;`

	// insertUserRole tolerates repeated assignment: adding a user to a role
	// they already hold is a silent no-op.
	insertUserRole = `INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING;`

	deleteUserRole = `DELETE FROM user_roles
		USING roles
		WHERE user_roles.role_id = roles.id
			AND user_roles.user_id = $1
			AND roles.normalized_name = $2;`

	getUserRoles = `SELECT r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.name;`

	isUserInRole = `SELECT EXISTS (
		SELECT 1
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1 AND r.normalized_name = $2
	);`

	getUsersInRole = `SELECT ` + userColumnsPrefixed + `
		FROM users u
		JOIN user_roles ur ON ur.user_id = u.id
		JOIN roles r ON r.id = ur.role_id
		WHERE r.normalized_name = $1
		ORDER BY u.id;`
)

// buildRemoveClaimsQuery dynamically builds the DELETE that detaches a batch
// of claims from a user. The claim set is matched against the catalog via a
// (type, value) disjunction built in input order, so the generated SQL is
// deterministic for identical input.
//
// Catalog rows themselves are never deleted; only user_claims junction rows
// are removed.
func buildRemoveClaimsQuery(ctx context.Context, userID uuid.UUID, claims []models.Claim) (string, []any, error) {
	log := logger.FromContext(ctx)

	pred := make(sq.Or, 0, len(claims))
	for _, claim := range claims {
		pred = append(pred, sq.And{
			sq.Eq{"claim_type": claim.Type},
			sq.Eq{"claim_value": claim.Value},
		})
	}

	// Inner predicate is rendered with ? placeholders and embedded into the
	// outer builder, which renumbers everything to $N at the end.
	predSQL, predArgs, err := pred.ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "buildRemoveClaimsQuery").
			Str("user_id", userID.String()).
			Msg("failed to build claim match predicate")
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	query, args, err := sq.Delete("user_claims").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Expr("claim_id IN (SELECT id FROM claim_definitions WHERE "+predSQL+")", predArgs...)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "buildRemoveClaimsQuery").
			Str("user_id", userID.String()).
			Msg("failed to build remove claims query")
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// buildGetUsersForClaimsQuery builds a lookup of all users that hold at
// least one of the provided claims. Used by audit tooling; the single-claim
// lookup uses the static [getUsersForClaim] query instead.
func buildGetUsersForClaimsQuery(ctx context.Context, claims []models.Claim) (string, []any, error) {
	log := logger.FromContext(ctx)

	pred := make(sq.Or, 0, len(claims))
	for _, claim := range claims {
		pred = append(pred, sq.And{
			sq.Eq{"cd.claim_type": claim.Type},
			sq.Eq{"cd.claim_value": claim.Value},
		})
	}

	query, args, err := sq.Select(
		"u.id", "u.user_name", "u.normalized_user_name",
		"u.email", "u.normalized_email", "u.email_confirmed",
		"u.password_hash", "u.security_stamp", "u.concurrency_stamp",
		"u.two_factor_enabled", "u.access_failed_count",
	).
		Distinct().
		From("users u").
		Join("user_claims uc ON uc.user_id = u.id").
		Join("claim_definitions cd ON cd.id = uc.claim_id").
		Where(pred).
		OrderBy("u.id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "buildGetUsersForClaimsQuery").
			Int("claims_count", len(claims)).
			Msg("failed to build users-for-claims query")
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}
