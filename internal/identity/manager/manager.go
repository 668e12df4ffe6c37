// Package manager implements account workflows on top of the user and role
// stores: registration, password checks with lockout, role membership,
// claims and access/refresh token issuance.
package manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/dmitrijs2005/identitystore/internal/cryptox"
	"github.com/dmitrijs2005/identitystore/internal/identity/models"
	"github.com/dmitrijs2005/identitystore/internal/identity/stores"
	"github.com/dmitrijs2005/identitystore/internal/logging"
)

// UserStore is the set of user store contracts the manager relies on.
type UserStore interface {
	stores.UserPasswordStore
	stores.UserRoleStore
	stores.UserEmailStore
	stores.UserClaimStore
	stores.UserLockoutStore
	stores.UserSecurityStampStore
	stores.UserAuthenticationTokenStore
	stores.QueryableUserStore
}

// RoleStore is the set of role store contracts the manager relies on.
type RoleStore interface {
	stores.RoleClaimStore
	stores.QueryableRoleStore
}

type Options struct {
	// MaxFailedAccessAttempts is the number of consecutive failures that
	// locks a lockout-enabled user out.
	MaxFailedAccessAttempts int
	LockoutDuration         time.Duration
	// LockoutOnNewUsers sets LockoutEnabled on registered users.
	LockoutOnNewUsers bool

	SecretKey            []byte
	AccessTokenValidity  time.Duration
	RefreshTokenValidity time.Duration
}

// DefaultOptions mirrors the usual identity defaults: five attempts, five
// minutes of lockout.
func DefaultOptions() Options {
	return Options{
		MaxFailedAccessAttempts: 5,
		LockoutDuration:         5 * time.Minute,
		LockoutOnNewUsers:       true,
		AccessTokenValidity:     15 * time.Minute,
		RefreshTokenValidity:    7 * 24 * time.Hour,
	}
}

type Manager struct {
	users UserStore
	roles RoleStore
	norm  Normalizer
	opts  Options
	log   logging.Logger
	now   func() time.Time
}

func New(users UserStore, roles RoleStore, opts Options, log logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{
		users: users,
		roles: roles,
		norm:  UpperInvariant{},
		opts:  opts,
		log:   log,
		now:   time.Now,
	}
}

// Normalize exposes the lookup normalization used by the manager.
func (m *Manager) Normalize(s string) string {
	return m.norm.Normalize(s)
}

// Register creates a user with a hashed password. User names and non-empty
// emails must be unique after normalization.
func (m *Manager) Register(ctx context.Context, userName, email, password string) (*models.User, error) {
	if userName == "" {
		return nil, fmt.Errorf("%w: user name is required", common.ErrorValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrorValidation)
	}

	normalized := m.norm.Normalize(userName)
	if err := m.ensureAbsent(m.users.FindByName(ctx, normalized)); err != nil {
		return nil, fmt.Errorf("user %q: %w", userName, err)
	}

	u := models.NewUser(userName)
	if err := m.users.SetNormalizedUserName(ctx, u, normalized); err != nil {
		return nil, err
	}

	if email != "" {
		normalizedEmail := m.norm.Normalize(email)
		if err := m.ensureAbsent(m.users.FindByEmail(ctx, normalizedEmail)); err != nil {
			return nil, fmt.Errorf("email %q: %w", email, err)
		}
		if err := m.users.SetEmail(ctx, u, email); err != nil {
			return nil, err
		}
		if err := m.users.SetNormalizedEmail(ctx, u, normalizedEmail); err != nil {
			return nil, err
		}
	}

	if err := m.users.SetPasswordHash(ctx, u, cryptox.HashPassword(password)); err != nil {
		return nil, err
	}
	if err := m.users.SetSecurityStamp(ctx, u, cryptox.NewSecurityStamp()); err != nil {
		return nil, err
	}
	if err := m.users.SetLockoutEnabled(ctx, u, m.opts.LockoutOnNewUsers); err != nil {
		return nil, err
	}

	if err := m.users.Create(ctx, u); err != nil {
		return nil, err
	}

	m.log.Info(ctx, "user registered", "id", u.ID, "user", userName)
	return u, nil
}

func (m *Manager) ensureAbsent(_ any, err error) error {
	switch {
	case err == nil:
		return common.ErrorAlreadyExists
	case errors.Is(err, common.ErrorNotFound):
		return nil
	default:
		return err
	}
}

// FindUser looks a user up by user name.
func (m *Manager) FindUser(ctx context.Context, userName string) (*models.User, error) {
	u, err := m.users.FindByName(ctx, m.norm.Normalize(userName))
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", userName, err)
	}
	return u, nil
}

func (m *Manager) ListUsers(ctx context.Context) ([]*models.User, error) {
	return m.users.List(ctx)
}

func (m *Manager) DeleteUser(ctx context.Context, userName string) error {
	u, err := m.FindUser(ctx, userName)
	if err != nil {
		return err
	}
	if err := m.users.Delete(ctx, u); err != nil {
		return err
	}
	m.log.Info(ctx, "user deleted", "id", u.ID, "user", u.UserName)
	return nil
}

// CheckPassword verifies the password of a user.
//
// A locked-out user gets common.ErrLockedOut without the password being
// checked. A wrong password or unknown user gets common.ErrorUnauthorized;
// for lockout-enabled users each failure is counted and reaching
// MaxFailedAccessAttempts locks the user for LockoutDuration. A correct
// password resets the counter.
func (m *Manager) CheckPassword(ctx context.Context, userName, password string) (*models.User, error) {
	u, err := m.users.FindByName(ctx, m.norm.Normalize(userName))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	if u.IsLockedOut(m.now()) {
		return nil, common.ErrLockedOut
	}

	hash, err := m.users.GetPasswordHash(ctx, u)
	if err != nil {
		return nil, err
	}

	ok := false
	if hash != "" {
		ok, err = cryptox.VerifyPassword(hash, password)
		if err != nil {
			m.log.Warn(ctx, "unreadable password hash", "id", u.ID, "error", err)
			ok = false
		}
	}

	if !ok {
		if err := m.recordFailure(ctx, u); err != nil {
			return nil, err
		}
		if u.IsLockedOut(m.now()) {
			return nil, common.ErrLockedOut
		}
		return nil, common.ErrorUnauthorized
	}

	if u.AccessFailedCount > 0 {
		if err := m.users.ResetAccessFailedCount(ctx, u); err != nil {
			return nil, err
		}
		if err := m.users.Update(ctx, u); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (m *Manager) recordFailure(ctx context.Context, u *models.User) error {
	enabled, err := m.users.GetLockoutEnabled(ctx, u)
	if err != nil || !enabled {
		return err
	}

	count, err := m.users.IncrementAccessFailedCount(ctx, u)
	if err != nil {
		return err
	}

	if m.opts.MaxFailedAccessAttempts > 0 && count >= m.opts.MaxFailedAccessAttempts {
		end := m.now().Add(m.opts.LockoutDuration)
		if err := m.users.SetLockoutEndDate(ctx, u, &end); err != nil {
			return err
		}
		if err := m.users.ResetAccessFailedCount(ctx, u); err != nil {
			return err
		}
		m.log.Warn(ctx, "user locked out", "id", u.ID, "until", end.UTC())
	}

	return m.users.Update(ctx, u)
}

// ChangePassword replaces the password after checking the current one.
func (m *Manager) ChangePassword(ctx context.Context, userName, current, next string) error {
	u, err := m.CheckPassword(ctx, userName, current)
	if err != nil {
		return err
	}
	return m.setPassword(ctx, u, next)
}

// SetPassword replaces the password without checking the current one.
func (m *Manager) SetPassword(ctx context.Context, userName, password string) error {
	u, err := m.FindUser(ctx, userName)
	if err != nil {
		return err
	}
	return m.setPassword(ctx, u, password)
}

func (m *Manager) setPassword(ctx context.Context, u *models.User, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", common.ErrorValidation)
	}
	if err := m.users.SetPasswordHash(ctx, u, cryptox.HashPassword(password)); err != nil {
		return err
	}
	if err := m.users.SetSecurityStamp(ctx, u, cryptox.NewSecurityStamp()); err != nil {
		return err
	}
	return m.users.Update(ctx, u)
}

// Lock enables lockout for the user and locks it until the given time.
func (m *Manager) Lock(ctx context.Context, userName string, until time.Time) error {
	u, err := m.FindUser(ctx, userName)
	if err != nil {
		return err
	}
	if err := m.users.SetLockoutEnabled(ctx, u, true); err != nil {
		return err
	}
	if err := m.users.SetLockoutEndDate(ctx, u, &until); err != nil {
		return err
	}
	return m.users.Update(ctx, u)
}

// Unlock clears the lockout end and the failure counter.
func (m *Manager) Unlock(ctx context.Context, userName string) error {
	u, err := m.FindUser(ctx, userName)
	if err != nil {
		return err
	}
	if err := m.users.SetLockoutEndDate(ctx, u, nil); err != nil {
		return err
	}
	if err := m.users.ResetAccessFailedCount(ctx, u); err != nil {
		return err
	}
	return m.users.Update(ctx, u)
}
