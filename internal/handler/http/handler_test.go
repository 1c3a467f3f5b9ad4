package http

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dkotelnikov/go-identity-store/internal/logger"
	"github.com/dkotelnikov/go-identity-store/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────
// Mock IdentityStore
// ─────────────────────────────────────────────

// mockIdentityStore implements store.IdentityStore for unit tests. Each
// method delegates to the corresponding fn field when set and returns zero
// values otherwise, so tests only wire the calls they care about.
type mockIdentityStore struct {
	createFn      func(ctx context.Context, user *models.User) error
	updateFn      func(ctx context.Context, user *models.User) error
	deleteFn      func(ctx context.Context, user *models.User) error
	findByIDFn    func(ctx context.Context, id uuid.UUID) (*models.User, error)
	findByNameFn  func(ctx context.Context, normalizedUserName string) (*models.User, error)
	findByEmailFn func(ctx context.Context, normalizedEmail string) (*models.User, error)

	addLoginFn    func(ctx context.Context, user *models.User, login *models.UserLogin) error
	removeLoginFn func(ctx context.Context, user *models.User, loginProvider, providerKey string) error
	getLoginsFn   func(ctx context.Context, user *models.User) ([]models.UserLogin, error)
	findByLoginFn func(ctx context.Context, loginProvider, providerKey string) (*models.User, error)

	getClaimsFn         func(ctx context.Context, user *models.User) ([]models.Claim, error)
	addClaimsFn         func(ctx context.Context, user *models.User, claims []models.Claim) error
	replaceClaimFn      func(ctx context.Context, user *models.User, oldClaim, newClaim models.Claim) error
	removeClaimsFn      func(ctx context.Context, user *models.User, claims []models.Claim) error
	getUsersForClaimFn  func(ctx context.Context, claim models.Claim) ([]*models.User, error)
	getUsersForClaimsFn func(ctx context.Context, claims []models.Claim) ([]*models.User, error)

	createRoleFn     func(ctx context.Context, role *models.Role) error
	addToRoleFn      func(ctx context.Context, user *models.User, normalizedRoleName string) error
	removeFromRoleFn func(ctx context.Context, user *models.User, normalizedRoleName string) error
	getRolesFn       func(ctx context.Context, user *models.User) ([]string, error)
	isInRoleFn       func(ctx context.Context, user *models.User, normalizedRoleName string) (bool, error)
	getUsersInRoleFn func(ctx context.Context, normalizedRoleName string) ([]*models.User, error)
}

func (m *mockIdentityStore) Create(ctx context.Context, user *models.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockIdentityStore) Update(ctx context.Context, user *models.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

func (m *mockIdentityStore) Delete(ctx context.Context, user *models.User) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, user)
	}
	return nil
}

func (m *mockIdentityStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockIdentityStore) FindByName(ctx context.Context, normalizedUserName string) (*models.User, error) {
	if m.findByNameFn != nil {
		return m.findByNameFn(ctx, normalizedUserName)
	}
	return nil, nil
}

func (m *mockIdentityStore) FindByEmail(ctx context.Context, normalizedEmail string) (*models.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, normalizedEmail)
	}
	return nil, nil
}

func (m *mockIdentityStore) GetUserID(_ context.Context, user *models.User) (string, error) {
	return user.ID.String(), nil
}

func (m *mockIdentityStore) GetUserName(_ context.Context, user *models.User) (string, error) {
	return user.UserName, nil
}

func (m *mockIdentityStore) SetUserName(_ context.Context, user *models.User, userName string) error {
	user.UserName = userName
	return nil
}

func (m *mockIdentityStore) GetNormalizedUserName(_ context.Context, user *models.User) (string, error) {
	return user.NormalizedUserName, nil
}

func (m *mockIdentityStore) SetNormalizedUserName(_ context.Context, user *models.User, normalizedName string) error {
	user.NormalizedUserName = normalizedName
	return nil
}

func (m *mockIdentityStore) GetEmail(_ context.Context, user *models.User) (string, error) {
	return user.Email, nil
}

func (m *mockIdentityStore) SetEmail(_ context.Context, user *models.User, email string) error {
	user.Email = email
	return nil
}

func (m *mockIdentityStore) GetEmailConfirmed(_ context.Context, user *models.User) (bool, error) {
	return user.EmailConfirmed, nil
}

func (m *mockIdentityStore) SetEmailConfirmed(_ context.Context, user *models.User, confirmed bool) error {
	user.EmailConfirmed = confirmed
	return nil
}

func (m *mockIdentityStore) GetNormalizedEmail(_ context.Context, user *models.User) (string, error) {
	return user.NormalizedEmail, nil
}

func (m *mockIdentityStore) SetNormalizedEmail(_ context.Context, user *models.User, normalizedEmail string) error {
	user.NormalizedEmail = normalizedEmail
	return nil
}

func (m *mockIdentityStore) GetPasswordHash(_ context.Context, user *models.User) (string, error) {
	return user.PasswordHash, nil
}

func (m *mockIdentityStore) SetPasswordHash(_ context.Context, user *models.User, passwordHash string) error {
	user.PasswordHash = passwordHash
	return nil
}

func (m *mockIdentityStore) HasPassword(_ context.Context, user *models.User) (bool, error) {
	return user.PasswordHash != "", nil
}

func (m *mockIdentityStore) GetSecurityStamp(_ context.Context, user *models.User) (string, error) {
	return user.SecurityStamp, nil
}

func (m *mockIdentityStore) SetSecurityStamp(_ context.Context, user *models.User, stamp string) error {
	user.SecurityStamp = stamp
	return nil
}

func (m *mockIdentityStore) GetTwoFactorEnabled(_ context.Context, user *models.User) (bool, error) {
	return user.TwoFactorEnabled, nil
}

func (m *mockIdentityStore) SetTwoFactorEnabled(_ context.Context, user *models.User, enabled bool) error {
	user.TwoFactorEnabled = enabled
	return nil
}

func (m *mockIdentityStore) GetAccessFailedCount(_ context.Context, user *models.User) (int, error) {
	return user.AccessFailedCount, nil
}

func (m *mockIdentityStore) IncrementAccessFailedCount(_ context.Context, user *models.User) (int, error) {
	user.AccessFailedCount++
	return user.AccessFailedCount, nil
}

func (m *mockIdentityStore) ResetAccessFailedCount(_ context.Context, user *models.User) error {
	user.AccessFailedCount = 0
	return nil
}

func (m *mockIdentityStore) AddLogin(ctx context.Context, user *models.User, login *models.UserLogin) error {
	if m.addLoginFn != nil {
		return m.addLoginFn(ctx, user, login)
	}
	return nil
}

func (m *mockIdentityStore) RemoveLogin(ctx context.Context, user *models.User, loginProvider, providerKey string) error {
	if m.removeLoginFn != nil {
		return m.removeLoginFn(ctx, user, loginProvider, providerKey)
	}
	return nil
}

func (m *mockIdentityStore) GetLogins(ctx context.Context, user *models.User) ([]models.UserLogin, error) {
	if m.getLoginsFn != nil {
		return m.getLoginsFn(ctx, user)
	}
	return nil, nil
}

func (m *mockIdentityStore) FindByLogin(ctx context.Context, loginProvider, providerKey string) (*models.User, error) {
	if m.findByLoginFn != nil {
		return m.findByLoginFn(ctx, loginProvider, providerKey)
	}
	return nil, nil
}

func (m *mockIdentityStore) GetClaims(ctx context.Context, user *models.User) ([]models.Claim, error) {
	if m.getClaimsFn != nil {
		return m.getClaimsFn(ctx, user)
	}
	return nil, nil
}

func (m *mockIdentityStore) AddClaims(ctx context.Context, user *models.User, claims []models.Claim) error {
	if m.addClaimsFn != nil {
		return m.addClaimsFn(ctx, user, claims)
	}
	return nil
}

func (m *mockIdentityStore) ReplaceClaim(ctx context.Context, user *models.User, oldClaim, newClaim models.Claim) error {
	if m.replaceClaimFn != nil {
		return m.replaceClaimFn(ctx, user, oldClaim, newClaim)
	}
	return nil
}

func (m *mockIdentityStore) RemoveClaims(ctx context.Context, user *models.User, claims []models.Claim) error {
	if m.removeClaimsFn != nil {
		return m.removeClaimsFn(ctx, user, claims)
	}
	return nil
}

func (m *mockIdentityStore) GetUsersForClaim(ctx context.Context, claim models.Claim) ([]*models.User, error) {
	if m.getUsersForClaimFn != nil {
		return m.getUsersForClaimFn(ctx, claim)
	}
	return nil, nil
}

func (m *mockIdentityStore) GetUsersForClaims(ctx context.Context, claims []models.Claim) ([]*models.User, error) {
	if m.getUsersForClaimsFn != nil {
		return m.getUsersForClaimsFn(ctx, claims)
	}
	return nil, nil
}

func (m *mockIdentityStore) CreateRole(ctx context.Context, role *models.Role) error {
	if m.createRoleFn != nil {
		return m.createRoleFn(ctx, role)
	}
	return nil
}

func (m *mockIdentityStore) AddToRole(ctx context.Context, user *models.User, normalizedRoleName string) error {
	if m.addToRoleFn != nil {
		return m.addToRoleFn(ctx, user, normalizedRoleName)
	}
	return nil
}

func (m *mockIdentityStore) RemoveFromRole(ctx context.Context, user *models.User, normalizedRoleName string) error {
	if m.removeFromRoleFn != nil {
		return m.removeFromRoleFn(ctx, user, normalizedRoleName)
	}
	return nil
}

func (m *mockIdentityStore) GetRoles(ctx context.Context, user *models.User) ([]string, error) {
	if m.getRolesFn != nil {
		return m.getRolesFn(ctx, user)
	}
	return nil, nil
}

func (m *mockIdentityStore) IsInRole(ctx context.Context, user *models.User, normalizedRoleName string) (bool, error) {
	if m.isInRoleFn != nil {
		return m.isInRoleFn(ctx, user, normalizedRoleName)
	}
	return false, nil
}

func (m *mockIdentityStore) GetUsersInRole(ctx context.Context, normalizedRoleName string) ([]*models.User, error) {
	if m.getUsersInRoleFn != nil {
		return m.getUsersInRoleFn(ctx, normalizedRoleName)
	}
	return nil, nil
}

func (m *mockIdentityStore) SaveChanges(_ context.Context) error { return nil }

func (m *mockIdentityStore) Rollback() {}

func (m *mockIdentityStore) Close() error { return nil }

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

// newTestHandler builds a Handler over the given mock with a no-op logger.
func newTestHandler(t *testing.T, mock *mockIdentityStore) *Handler {
	t.Helper()
	return NewHandler(mock, "test", logger.Nop())
}

// jsonBody serialises v to a JSON request body string.
func jsonBody(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// storedUser is a convenience fixture used across multiple tests.
func storedUser() *models.User {
	return &models.User{
		ID:                 uuid.MustParse("7e7f39c3-9d71-4b43-9e20-7bfb0b6f38e2"),
		UserName:           "alice",
		NormalizedUserName: "ALICE",
		Email:              "alice@example.com",
		NormalizedEmail:    "ALICE@EXAMPLE.COM",
		ConcurrencyStamp:   "stamp-1",
	}
}
