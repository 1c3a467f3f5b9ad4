package store

import (
	"context"

	"github.com/dkotelnikov/go-identity-store/models"
	"github.com/google/uuid"
)

// Capability interfaces. Framework integration code depends on the slice of
// the store surface it actually uses; [UserStore] satisfies all of them.

// UserAccountStore covers user CRUD and the basic identity accessors.
type UserAccountStore interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByName(ctx context.Context, normalizedUserName string) (*models.User, error)

	GetUserID(ctx context.Context, user *models.User) (string, error)
	GetUserName(ctx context.Context, user *models.User) (string, error)
	SetUserName(ctx context.Context, user *models.User, userName string) error
	GetNormalizedUserName(ctx context.Context, user *models.User) (string, error)
	SetNormalizedUserName(ctx context.Context, user *models.User, normalizedName string) error
}

// UserEmailStore covers e-mail accessors and the e-mail lookup.
type UserEmailStore interface {
	FindByEmail(ctx context.Context, normalizedEmail string) (*models.User, error)

	GetEmail(ctx context.Context, user *models.User) (string, error)
	SetEmail(ctx context.Context, user *models.User, email string) error
	GetEmailConfirmed(ctx context.Context, user *models.User) (bool, error)
	SetEmailConfirmed(ctx context.Context, user *models.User, confirmed bool) error
	GetNormalizedEmail(ctx context.Context, user *models.User) (string, error)
	SetNormalizedEmail(ctx context.Context, user *models.User, normalizedEmail string) error
}

// UserCredentialStore covers password hash, security stamp, two-factor and
// lockout bookkeeping.
type UserCredentialStore interface {
	GetPasswordHash(ctx context.Context, user *models.User) (string, error)
	SetPasswordHash(ctx context.Context, user *models.User, passwordHash string) error
	HasPassword(ctx context.Context, user *models.User) (bool, error)

	GetSecurityStamp(ctx context.Context, user *models.User) (string, error)
	SetSecurityStamp(ctx context.Context, user *models.User, stamp string) error

	GetTwoFactorEnabled(ctx context.Context, user *models.User) (bool, error)
	SetTwoFactorEnabled(ctx context.Context, user *models.User, enabled bool) error

	GetAccessFailedCount(ctx context.Context, user *models.User) (int, error)
	IncrementAccessFailedCount(ctx context.Context, user *models.User) (int, error)
	ResetAccessFailedCount(ctx context.Context, user *models.User) error
}

// UserLoginStore covers external login bindings.
type UserLoginStore interface {
	AddLogin(ctx context.Context, user *models.User, login *models.UserLogin) error
	RemoveLogin(ctx context.Context, user *models.User, loginProvider, providerKey string) error
	GetLogins(ctx context.Context, user *models.User) ([]models.UserLogin, error)
	FindByLogin(ctx context.Context, loginProvider, providerKey string) (*models.User, error)
}

// UserClaimStore covers claim assignment and reverse claim lookup.
type UserClaimStore interface {
	GetClaims(ctx context.Context, user *models.User) ([]models.Claim, error)
	AddClaims(ctx context.Context, user *models.User, claims []models.Claim) error
	ReplaceClaim(ctx context.Context, user *models.User, oldClaim, newClaim models.Claim) error
	RemoveClaims(ctx context.Context, user *models.User, claims []models.Claim) error
	GetUsersForClaim(ctx context.Context, claim models.Claim) ([]*models.User, error)
	GetUsersForClaims(ctx context.Context, claims []models.Claim) ([]*models.User, error)
}

// UserRoleStore covers role membership.
type UserRoleStore interface {
	CreateRole(ctx context.Context, role *models.Role) error
	AddToRole(ctx context.Context, user *models.User, normalizedRoleName string) error
	RemoveFromRole(ctx context.Context, user *models.User, normalizedRoleName string) error
	GetRoles(ctx context.Context, user *models.User) ([]string, error)
	IsInRole(ctx context.Context, user *models.User, normalizedRoleName string) (bool, error)
	GetUsersInRole(ctx context.Context, normalizedRoleName string) ([]*models.User, error)
}

// IdentityStore is the complete persistence surface: all capability slices
// plus unit-of-work control.
type IdentityStore interface {
	UserAccountStore
	UserEmailStore
	UserCredentialStore
	UserLoginStore
	UserClaimStore
	UserRoleStore

	SaveChanges(ctx context.Context) error
	Rollback()
	Close() error
}

var _ IdentityStore = (*UserStore)(nil)
