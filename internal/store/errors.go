package store

import "errors"

// Sentinel errors returned by store operations to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrStoreClosed is returned by every operation invoked after Close.
	// Using a closed store is a caller bug, not a recoverable condition.
	ErrStoreClosed = errors.New("identity store is closed")

	// ErrNilUser is returned when a required *models.User argument is nil.
	ErrNilUser = errors.New("user must not be nil")

	// ErrNilClaims is returned when a required claims slice is nil.
	// An empty (non-nil) slice is a valid no-op input.
	ErrNilClaims = errors.New("claims must not be nil")

	// ErrNilLogin is returned when a required *models.UserLogin argument is nil.
	ErrNilLogin = errors.New("login must not be nil")

	// ErrEmptySecurityStamp is returned by SetSecurityStamp when the
	// provided stamp is empty.
	ErrEmptySecurityStamp = errors.New("security stamp must not be empty")

	// ErrEmptyRoleName is returned by role operations when the normalized
	// role name argument is empty.
	ErrEmptyRoleName = errors.New("role name must not be empty")

	// ErrUserNotFound is returned when a mutation targets a user record
	// that does not exist in the database. Lookups report absence as a nil
	// result instead.
	ErrUserNotFound = errors.New("user was not found")

	// ErrUserAlreadyExists is returned when creating a user whose
	// identifier is already present in the database.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrConcurrencyConflict is returned when an optimistic-concurrency
	// check fails: the concurrency stamp supplied with the user does not
	// match the stamp stored in the database, meaning another writer has
	// modified the record since it was read. The caller should re-read and
	// retry.
	ErrConcurrencyConflict = errors.New("user was modified by another writer")

	// ErrDuplicateClaim is returned by AddClaims when at least one
	// candidate claim is already assigned to the user. The whole batch is
	// rejected; no claims are added.
	ErrDuplicateClaim = errors.New("claim is already assigned to the user")

	// ErrLoginAlreadyExists is returned by AddLogin when the
	// (provider, provider key) pair is already bound to an account.
	ErrLoginAlreadyExists = errors.New("login already exists")

	// ErrRoleNotFound is returned by AddToRole when the named role does
	// not exist in the role catalog.
	ErrRoleNotFound = errors.New("role was not found")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain
// logic can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open
	// transaction fails. The transaction is considered rolled back at this
	// point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
