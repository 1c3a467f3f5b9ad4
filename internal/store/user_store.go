package store

import (
	"context"
	"database/sql"
	"sync/atomic"

	"github.com/dkotelnikov/go-identity-store/internal/logger"
	"github.com/dkotelnikov/go-identity-store/models"
	"github.com/google/uuid"
)

// UserStore is the persistence facade of the identity subsystem. It exposes
// user CRUD with optimistic concurrency, in-memory field accessors and the
// login/claim/role association sub-stores over a single PostgreSQL
// connection.
//
// Write batching is controlled by AutoSaveChanges. When enabled (the
// default) every mutation is flushed immediately. When disabled, mutations
// accumulate in a shared transaction that is finalised by SaveChanges or
// discarded by Rollback/Close.
//
// A UserStore instance is not safe for concurrent mutation while
// AutoSaveChanges is disabled: the batched transaction is single-threaded
// state, matching the unit-of-work model the store implements.
type UserStore struct {
	db     *DB
	logger *logger.Logger

	users  *userRepository
	logins *loginRepository
	claims *claimRepository
	roles  *roleRepository

	// AutoSaveChanges controls whether mutations are flushed immediately
	// (true) or accumulated until SaveChanges (false).
	AutoSaveChanges bool

	tx     *sql.Tx
	closed atomic.Bool
}

// NewUserStore constructs a [UserStore] over the provided database
// connection with AutoSaveChanges enabled.
func NewUserStore(db *DB, log *logger.Logger) *UserStore {
	log.Debug().Msg("creating user store")

	return &UserStore{
		db:              db,
		logger:          log,
		users:           newUserRepository(log),
		logins:          newLoginRepository(log),
		claims:          newClaimRepository(log),
		roles:           newRoleRepository(log),
		AutoSaveChanges: true,
	}
}

// guard rejects calls on a closed store and calls with an already-cancelled
// context. Both are caller bugs surfaced before any work is attempted.
func (s *UserStore) guard(ctx context.Context) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return nil
}

// guardUser extends [UserStore.guard] with the nil check shared by every
// operation taking a user argument.
func (s *UserStore) guardUser(ctx context.Context, user *models.User) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	if user == nil {
		return ErrNilUser
	}

	return nil
}

// surface attaches the retryability classification of a failed operation to
// the log before handing the error to the caller. Domain sentinels classify
// as non-retryable; transient driver faults (connection loss, deadlock) are
// flagged so outer retry policies can branch on the log alone.
func (s *UserStore) surface(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}

	logger.FromContext(ctx).Debug().
		Str("func", op).
		Bool("retryable", s.db.errorClassificator.Classify(err) == Retryable).
		Msg("store operation failed")

	return err
}

// SaveChanges finalises the batched unit of work, committing every mutation
// accumulated since the transaction was opened. Calling it with no pending
// transaction is a no-op.
func (s *UserStore) SaveChanges(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if err := s.guard(ctx); err != nil {
		return err
	}

	if s.tx == nil {
		return nil
	}

	tx := s.tx
	s.tx = nil

	if err := tx.Commit(); err != nil {
		log.Err(err).
			Str("func", "UserStore.SaveChanges").
			Msg("failed to commit batched transaction")
		return s.surface(ctx, "UserStore.SaveChanges", ErrCommitingTransaction)
	}

	log.Debug().
		Str("func", "UserStore.SaveChanges").
		Msg("batched changes committed")

	return nil
}

// Rollback discards the batched unit of work, if any. Safe to call at any
// time, including after SaveChanges or on a store with nothing pending.
func (s *UserStore) Rollback() {
	if s.tx == nil {
		return
	}

	_ = s.tx.Rollback()
	s.tx = nil
}

// Close marks the store unusable and discards any pending batched
// transaction. Every subsequent operation fails with [ErrStoreClosed].
// The underlying database connection is owned by the caller and stays open.
// Close is idempotent.
func (s *UserStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.Rollback()
	s.logger.Debug().Msg("user store closed")

	return nil
}

// Create persists a new user. A zero user ID is replaced with a fresh
// random identifier, and the concurrency stamp is always regenerated so
// that the stored record starts a new optimistic-concurrency lineage.
//
// Returns [ErrUserAlreadyExists] when the identifier is already taken.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.ConcurrencyStamp = uuid.NewString()

	q, err := s.writer(ctx)
	if err != nil {
		return s.surface(ctx, "UserStore.Create", err)
	}

	return s.surface(ctx, "UserStore.Create", s.users.Create(ctx, q, user))
}

// Update rewrites the user's mutable fields under optimistic concurrency
// control: the stamp carried by user must match the stored one, otherwise
// [ErrConcurrencyConflict] is returned and nothing changes. On success the
// stamp is regenerated both in the database and on the passed user.
//
// Returns [ErrUserNotFound] when the record no longer exists.
func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}

	q, err := s.writer(ctx)
	if err != nil {
		return s.surface(ctx, "UserStore.Update", err)
	}

	return s.surface(ctx, "UserStore.Update", s.users.Update(ctx, q, user, uuid.NewString()))
}

// Delete removes the user record under the same optimistic concurrency
// control as [UserStore.Update]. Logins, claims and role assignments are
// removed with it.
func (s *UserStore) Delete(ctx context.Context, user *models.User) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}

	q, err := s.writer(ctx)
	if err != nil {
		return s.surface(ctx, "UserStore.Delete", err)
	}

	return s.surface(ctx, "UserStore.Delete", s.users.Delete(ctx, q, user))
}

// FindByID retrieves a user by identifier. An unknown identifier yields a
// nil user with a nil error.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, s.reader(), id)
	return user, s.surface(ctx, "UserStore.FindByID", err)
}

// FindByName retrieves a user by normalized user name. An unknown name
// yields a nil user with a nil error.
func (s *UserStore) FindByName(ctx context.Context, normalizedUserName string) (*models.User, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	user, err := s.users.FindByName(ctx, s.reader(), normalizedUserName)
	return user, s.surface(ctx, "UserStore.FindByName", err)
}

// FindByEmail retrieves a user by normalized e-mail address. An unknown
// address yields a nil user with a nil error.
func (s *UserStore) FindByEmail(ctx context.Context, normalizedEmail string) (*models.User, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, s.reader(), normalizedEmail)
	return user, s.surface(ctx, "UserStore.FindByEmail", err)
}

// AddLogin binds an external login to the user. The binding is globally
// unique on (provider, provider key); [ErrLoginAlreadyExists] is returned
// when any account already holds it.
func (s *UserStore) AddLogin(ctx context.Context, user *models.User, login *models.UserLogin) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	if login == nil {
		return ErrNilLogin
	}

	login.UserID = user.ID

	q, err := s.writer(ctx)
	if err != nil {
		return s.surface(ctx, "UserStore.AddLogin", err)
	}

	return s.surface(ctx, "UserStore.AddLogin", s.logins.Add(ctx, q, login))
}

// RemoveLogin unbinds an external login from the user. Removing a binding
// the user does not hold is a silent no-op.
func (s *UserStore) RemoveLogin(ctx context.Context, user *models.User, loginProvider, providerKey string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}

	q, err := s.writer(ctx)
	if err != nil {
		return s.surface(ctx, "UserStore.RemoveLogin", err)
	}

	return s.surface(ctx, "UserStore.RemoveLogin", s.logins.Remove(ctx, q, user.ID, loginProvider, providerKey))
}

// GetLogins returns all external login bindings of the user.
func (s *UserStore) GetLogins(ctx context.Context, user *models.User) ([]models.UserLogin, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return nil, err
	}

	logins, err := s.logins.List(ctx, s.reader(), user.ID)
	return logins, s.surface(ctx, "UserStore.GetLogins", err)
}

// FindByLogin resolves an external login to its owning user. An unknown
// (provider, key) pair yields a nil user with a nil error, as does a
// binding whose owner row has vanished.
func (s *UserStore) FindByLogin(ctx context.Context, loginProvider, providerKey string) (*models.User, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	userID, err := s.logins.FindUserID(ctx, s.reader(), loginProvider, providerKey)
	if err != nil {
		return nil, s.surface(ctx, "UserStore.FindByLogin", err)
	}
	if userID == uuid.Nil {
		return nil, nil
	}

	user, err := s.users.FindByID(ctx, s.reader(), userID)
	return user, s.surface(ctx, "UserStore.FindByLogin", err)
}

// GetClaims returns all claims held by the user.
func (s *UserStore) GetClaims(ctx context.Context, user *models.User) ([]models.Claim, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return nil, err
	}

	claims, err := s.claims.List(ctx, s.reader(), user.ID)
	return claims, s.surface(ctx, "UserStore.GetClaims", err)
}

// AddClaims assigns a batch of claims to the user atomically. The batch is
// all-or-nothing: if any candidate is already assigned, the whole batch is
// rejected with [ErrDuplicateClaim]. A nil slice is rejected with
// [ErrNilClaims]; an empty slice is a no-op.
func (s *UserStore) AddClaims(ctx context.Context, user *models.User, claims []models.Claim) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	if claims == nil {
		return ErrNilClaims
	}
	if len(claims) == 0 {
		return nil
	}

	q, commit, rollback, err := s.unit(ctx)
	if err != nil {
		return s.surface(ctx, "UserStore.AddClaims", err)
	}

	if err := s.claims.Add(ctx, q, user.ID, claims); err != nil {
		rollback()
		return s.surface(ctx, "UserStore.AddClaims", err)
	}

	return s.surface(ctx, "UserStore.AddClaims", commit())
}

// ReplaceClaim swaps one claim of the user for another. Replacing a claim
// the user does not hold is a silent no-op, and claim definitions shared
// with other users are never edited in place.
func (s *UserStore) ReplaceClaim(ctx context.Context, user *models.User, oldClaim, newClaim models.Claim) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}

	q, commit, rollback, err := s.unit(ctx)
	if err != nil {
		return s.surface(ctx, "UserStore.ReplaceClaim", err)
	}

	if err := s.claims.Replace(ctx, q, user.ID, oldClaim, newClaim); err != nil {
		rollback()
		return s.surface(ctx, "UserStore.ReplaceClaim", err)
	}

	return s.surface(ctx, "UserStore.ReplaceClaim", commit())
}

// RemoveClaims detaches a batch of claims from the user. Claims the user
// does not hold are silently skipped. A nil slice is rejected with
// [ErrNilClaims]; an empty slice is a no-op.
func (s *UserStore) RemoveClaims(ctx context.Context, user *models.User, claims []models.Claim) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	if claims == nil {
		return ErrNilClaims
	}

	q, err := s.writer(ctx)
	if err != nil {
		return s.surface(ctx, "UserStore.RemoveClaims", err)
	}

	return s.surface(ctx, "UserStore.RemoveClaims", s.claims.Remove(ctx, q, user.ID, claims))
}

// GetUsersForClaim returns all users holding the given claim.
func (s *UserStore) GetUsersForClaim(ctx context.Context, claim models.Claim) ([]*models.User, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	users, err := s.claims.UsersFor(ctx, s.reader(), claim)
	return users, s.surface(ctx, "UserStore.GetUsersForClaim", err)
}

// GetUsersForClaims returns all users holding at least one of the given
// claims. Intended for audit tooling; an empty set yields an empty slice.
func (s *UserStore) GetUsersForClaims(ctx context.Context, claims []models.Claim) ([]*models.User, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	users, err := s.claims.UsersForAny(ctx, s.reader(), claims)
	return users, s.surface(ctx, "UserStore.GetUsersForClaims", err)
}

// CreateRole seeds a role in the role catalog, keyed by its normalized
// name. Re-creating an existing role refreshes its display name.
func (s *UserStore) CreateRole(ctx context.Context, role *models.Role) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	if role == nil || role.NormalizedName == "" {
		return ErrEmptyRoleName
	}

	q, err := s.writer(ctx)
	if err != nil {
		return s.surface(ctx, "UserStore.CreateRole", err)
	}

	return s.surface(ctx, "UserStore.CreateRole", s.roles.Create(ctx, q, role))
}

// AddToRole assigns the user to an existing role named by its normalized
// name. An unknown role fails with [ErrRoleNotFound]; re-assigning a role
// the user already holds is a silent no-op.
func (s *UserStore) AddToRole(ctx context.Context, user *models.User, normalizedRoleName string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	if normalizedRoleName == "" {
		return ErrEmptyRoleName
	}

	q, commit, rollback, err := s.unit(ctx)
	if err != nil {
		return s.surface(ctx, "UserStore.AddToRole", err)
	}

	if err := s.roles.AddToRole(ctx, q, user.ID, normalizedRoleName); err != nil {
		rollback()
		return s.surface(ctx, "UserStore.AddToRole", err)
	}

	return s.surface(ctx, "UserStore.AddToRole", commit())
}

// RemoveFromRole removes the user's assignment to the named role. Naming an
// unknown role, or a role the user does not hold, is a silent no-op.
func (s *UserStore) RemoveFromRole(ctx context.Context, user *models.User, normalizedRoleName string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	if normalizedRoleName == "" {
		return ErrEmptyRoleName
	}

	q, err := s.writer(ctx)
	if err != nil {
		return s.surface(ctx, "UserStore.RemoveFromRole", err)
	}

	return s.surface(ctx, "UserStore.RemoveFromRole", s.roles.RemoveFromRole(ctx, q, user.ID, normalizedRoleName))
}

// GetRoles returns the display names of all roles held by the user.
func (s *UserStore) GetRoles(ctx context.Context, user *models.User) ([]string, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return nil, err
	}

	roles, err := s.roles.Roles(ctx, s.reader(), user.ID)
	return roles, s.surface(ctx, "UserStore.GetRoles", err)
}

// IsInRole reports whether the user holds the named role. An unknown role
// yields false.
func (s *UserStore) IsInRole(ctx context.Context, user *models.User, normalizedRoleName string) (bool, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return false, err
	}
	if normalizedRoleName == "" {
		return false, ErrEmptyRoleName
	}

	inRole, err := s.roles.IsInRole(ctx, s.reader(), user.ID, normalizedRoleName)
	return inRole, s.surface(ctx, "UserStore.IsInRole", err)
}

// GetUsersInRole returns all users holding the named role. An unknown role
// yields an empty slice.
func (s *UserStore) GetUsersInRole(ctx context.Context, normalizedRoleName string) ([]*models.User, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	if normalizedRoleName == "" {
		return nil, ErrEmptyRoleName
	}

	users, err := s.roles.UsersInRole(ctx, s.reader(), normalizedRoleName)
	return users, s.surface(ctx, "UserStore.GetUsersInRole", err)
}
