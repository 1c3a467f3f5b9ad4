package models

import "github.com/google/uuid"

// User represents an identity account entity. It carries identity
// attributes and credential-related data; sensitive fields must never be
// exposed outside trusted boundaries.
//
// A User instance is a plain in-memory record: field setters on the store
// mutate it without persisting, and an explicit Create/Update call writes
// it out. Instances are not safe for concurrent use.
type User struct {
	// ID is the immutable unique identifier of the user, assigned on create.
	ID uuid.UUID `json:"id"`

	// UserName is the login name chosen by the user.
	UserName string `json:"user_name"`

	// NormalizedUserName is the case-normalized form of UserName used for
	// exact lookups. Normalization is the caller's responsibility.
	NormalizedUserName string `json:"-"`

	// Email is the user's e-mail address.
	Email string `json:"email"`

	// NormalizedEmail is the case-normalized form of Email used for exact
	// lookups.
	NormalizedEmail string `json:"-"`

	// EmailConfirmed reports whether the e-mail address has been verified.
	EmailConfirmed bool `json:"email_confirmed"`

	// PasswordHash stores the derived password representation. This value
	// MUST be a hash/KDF output, never plaintext; hashing happens outside
	// the store. Empty when the account has no local password.
	PasswordHash string `json:"-"`

	// SecurityStamp is an opaque token that changes whenever the user's
	// credentials change, invalidating outstanding security artifacts.
	SecurityStamp string `json:"-"`

	// ConcurrencyStamp is regenerated on every persisted write and used to
	// detect lost updates (optimistic concurrency).
	ConcurrencyStamp string `json:"-"`

	// TwoFactorEnabled reports whether two-factor authentication is
	// enabled for the account.
	TwoFactorEnabled bool `json:"two_factor_enabled"`

	// AccessFailedCount counts consecutive failed access attempts.
	AccessFailedCount int `json:"-"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
