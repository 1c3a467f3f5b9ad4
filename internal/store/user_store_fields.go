package store

import (
	"context"

	"github.com/dkotelnikov/go-identity-store/models"
)

// In-memory field accessors. These operate on the passed user only and never
// touch the database; a subsequent Update (or SaveChanges) persists the
// result. They still honour the closed-store and cancellation guards so that
// misuse fails identically across the whole surface.

// GetUserID returns the user's identifier in its canonical string form.
func (s *UserStore) GetUserID(ctx context.Context, user *models.User) (string, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return "", err
	}

	return user.ID.String(), nil
}

// GetUserName returns the user's raw (display) user name.
func (s *UserStore) GetUserName(ctx context.Context, user *models.User) (string, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return "", err
	}

	return user.UserName, nil
}

// SetUserName sets the user's raw user name.
func (s *UserStore) SetUserName(ctx context.Context, user *models.User, userName string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}

	user.UserName = userName
	return nil
}

// GetNormalizedUserName returns the lookup form of the user name.
func (s *UserStore) GetNormalizedUserName(ctx context.Context, user *models.User) (string, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return "", err
	}

	return user.NormalizedUserName, nil
}

// SetNormalizedUserName sets the lookup form of the user name. The caller
// owns the normalization convention; the store treats the value as opaque.
func (s *UserStore) SetNormalizedUserName(ctx context.Context, user *models.User, normalizedName string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}

	user.NormalizedUserName = normalizedName
	return nil
}

// GetEmail returns the user's raw e-mail address.
func (s *UserStore) GetEmail(ctx context.Context, user *models.User) (string, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return "", err
	}

	return user.Email, nil
}

// SetEmail sets the user's raw e-mail address.
func (s *UserStore) SetEmail(ctx context.Context, user *models.User, email string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}

	user.Email = email
	return nil
}

// GetEmailConfirmed reports whether the user's e-mail address has been
// confirmed.
func (s *UserStore) GetEmailConfirmed(ctx context.Context, user *models.User) (bool, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return false, err
	}

	return user.EmailConfirmed, nil
}

// SetEmailConfirmed sets the e-mail confirmation flag.
func (s *UserStore) SetEmailConfirmed(ctx context.Context, user *models.User, confirmed bool) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}

	user.EmailConfirmed = confirmed
	return nil
}

// GetNormalizedEmail returns the lookup form of the e-mail address.
func (s *UserStore) GetNormalizedEmail(ctx context.Context, user *models.User) (string, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return "", err
	}

	return user.NormalizedEmail, nil
}

// SetNormalizedEmail sets the lookup form of the e-mail address.
func (s *UserStore) SetNormalizedEmail(ctx context.Context, user *models.User, normalizedEmail string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}

	user.NormalizedEmail = normalizedEmail
	return nil
}

// GetPasswordHash returns the user's password hash, empty when the account
// has no password (external-login-only accounts).
func (s *UserStore) GetPasswordHash(ctx context.Context, user *models.User) (string, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return "", err
	}

	return user.PasswordHash, nil
}

// SetPasswordHash sets the user's password hash. The store never hashes
// passwords itself.
func (s *UserStore) SetPasswordHash(ctx context.Context, user *models.User, passwordHash string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}

	user.PasswordHash = passwordHash
	return nil
}

// HasPassword reports whether the user has a password hash set.
func (s *UserStore) HasPassword(ctx context.Context, user *models.User) (bool, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return false, err
	}

	return user.PasswordHash != "", nil
}

// GetSecurityStamp returns the user's security stamp.
func (s *UserStore) GetSecurityStamp(ctx context.Context, user *models.User) (string, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return "", err
	}

	return user.SecurityStamp, nil
}

// SetSecurityStamp sets the user's security stamp. An empty stamp is
// rejected with [ErrEmptySecurityStamp]: the stamp invalidates issued
// credentials when it changes, so blanking it would silently disable that
// mechanism.
func (s *UserStore) SetSecurityStamp(ctx context.Context, user *models.User, stamp string) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}
	if stamp == "" {
		return ErrEmptySecurityStamp
	}

	user.SecurityStamp = stamp
	return nil
}

// GetTwoFactorEnabled reports whether two-factor authentication is enabled
// for the user.
func (s *UserStore) GetTwoFactorEnabled(ctx context.Context, user *models.User) (bool, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return false, err
	}

	return user.TwoFactorEnabled, nil
}

// SetTwoFactorEnabled sets the two-factor authentication flag.
func (s *UserStore) SetTwoFactorEnabled(ctx context.Context, user *models.User, enabled bool) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}

	user.TwoFactorEnabled = enabled
	return nil
}

// GetAccessFailedCount returns the user's consecutive failed-access count.
func (s *UserStore) GetAccessFailedCount(ctx context.Context, user *models.User) (int, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return 0, err
	}

	return user.AccessFailedCount, nil
}

// IncrementAccessFailedCount bumps the failed-access count and returns the
// new value.
func (s *UserStore) IncrementAccessFailedCount(ctx context.Context, user *models.User) (int, error) {
	if err := s.guardUser(ctx, user); err != nil {
		return 0, err
	}

	user.AccessFailedCount++
	return user.AccessFailedCount, nil
}

// ResetAccessFailedCount resets the failed-access count to zero.
func (s *UserStore) ResetAccessFailedCount(ctx context.Context, user *models.User) error {
	if err := s.guardUser(ctx, user); err != nil {
		return err
	}

	user.AccessFailedCount = 0
	return nil
}
