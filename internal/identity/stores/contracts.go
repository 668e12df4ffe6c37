// Package stores implements user and role stores over a storage.Provider.
//
// Every mutation rewrites the whole collection. Field accessors only touch
// the record passed in; callers persist those changes with Update.
package stores

import (
	"context"
	"time"

	"github.com/dmitrijs2005/identitystore/internal/identity/models"
)

type UserStore interface {
	GetUserID(ctx context.Context, u *models.User) (string, error)
	GetUserName(ctx context.Context, u *models.User) (string, error)
	SetUserName(ctx context.Context, u *models.User, userName string) error
	GetNormalizedUserName(ctx context.Context, u *models.User) (string, error)
	SetNormalizedUserName(ctx context.Context, u *models.User, normalizedName string) error
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindByName(ctx context.Context, normalizedUserName string) (*models.User, error)
}

type UserPasswordStore interface {
	UserStore
	SetPasswordHash(ctx context.Context, u *models.User, passwordHash string) error
	GetPasswordHash(ctx context.Context, u *models.User) (string, error)
	HasPassword(ctx context.Context, u *models.User) (bool, error)
}

type UserRoleStore interface {
	UserStore
	AddToRole(ctx context.Context, u *models.User, normalizedRoleName string) error
	RemoveFromRole(ctx context.Context, u *models.User, normalizedRoleName string) error
	GetRoles(ctx context.Context, u *models.User) ([]string, error)
	IsInRole(ctx context.Context, u *models.User, normalizedRoleName string) (bool, error)
	GetUsersInRole(ctx context.Context, normalizedRoleName string) ([]*models.User, error)
}

type UserLoginStore interface {
	UserStore
	AddLogin(ctx context.Context, u *models.User, login models.LoginInfo) error
	RemoveLogin(ctx context.Context, u *models.User, loginProvider, providerKey string) error
	GetLogins(ctx context.Context, u *models.User) ([]models.LoginInfo, error)
	FindByLogin(ctx context.Context, loginProvider, providerKey string) (*models.User, error)
}

type UserSecurityStampStore interface {
	UserStore
	SetSecurityStamp(ctx context.Context, u *models.User, stamp string) error
	GetSecurityStamp(ctx context.Context, u *models.User) (string, error)
}

type UserEmailStore interface {
	UserStore
	SetEmail(ctx context.Context, u *models.User, email string) error
	GetEmail(ctx context.Context, u *models.User) (string, error)
	GetEmailConfirmed(ctx context.Context, u *models.User) (bool, error)
	SetEmailConfirmed(ctx context.Context, u *models.User, confirmed bool) error
	FindByEmail(ctx context.Context, normalizedEmail string) (*models.User, error)
	GetNormalizedEmail(ctx context.Context, u *models.User) (string, error)
	SetNormalizedEmail(ctx context.Context, u *models.User, normalizedEmail string) error
}

type UserClaimStore interface {
	UserStore
	GetClaims(ctx context.Context, u *models.User) ([]models.Claim, error)
	AddClaims(ctx context.Context, u *models.User, claims []models.Claim) error
	ReplaceClaim(ctx context.Context, u *models.User, claim, newClaim models.Claim) error
	RemoveClaims(ctx context.Context, u *models.User, claims []models.Claim) error
	GetUsersForClaim(ctx context.Context, claim models.Claim) ([]*models.User, error)
}

type UserPhoneNumberStore interface {
	UserStore
	SetPhoneNumber(ctx context.Context, u *models.User, phoneNumber string) error
	GetPhoneNumber(ctx context.Context, u *models.User) (string, error)
	GetPhoneNumberConfirmed(ctx context.Context, u *models.User) (bool, error)
	SetPhoneNumberConfirmed(ctx context.Context, u *models.User, confirmed bool) error
}

type UserTwoFactorStore interface {
	UserStore
	SetTwoFactorEnabled(ctx context.Context, u *models.User, enabled bool) error
	GetTwoFactorEnabled(ctx context.Context, u *models.User) (bool, error)
}

// UserLockoutStore keeps lockout state. Lockout end times are UTC; nil
// means not locked out.
type UserLockoutStore interface {
	UserStore
	GetLockoutEndDate(ctx context.Context, u *models.User) (*time.Time, error)
	SetLockoutEndDate(ctx context.Context, u *models.User, lockoutEnd *time.Time) error
	IncrementAccessFailedCount(ctx context.Context, u *models.User) (int, error)
	ResetAccessFailedCount(ctx context.Context, u *models.User) error
	GetAccessFailedCount(ctx context.Context, u *models.User) (int, error)
	GetLockoutEnabled(ctx context.Context, u *models.User) (bool, error)
	SetLockoutEnabled(ctx context.Context, u *models.User, enabled bool) error
}

type QueryableUserStore interface {
	UserStore
	List(ctx context.Context) ([]*models.User, error)
}

type UserAuthenticationTokenStore interface {
	UserStore
	SetToken(ctx context.Context, u *models.User, loginProvider, name, value string) error
	RemoveToken(ctx context.Context, u *models.User, loginProvider, name string) error
	GetToken(ctx context.Context, u *models.User, loginProvider, name string) (string, error)
}

type RoleStore interface {
	Create(ctx context.Context, r *models.Role) error
	Update(ctx context.Context, r *models.Role) error
	Delete(ctx context.Context, r *models.Role) error
	GetRoleID(ctx context.Context, r *models.Role) (string, error)
	GetRoleName(ctx context.Context, r *models.Role) (string, error)
	SetRoleName(ctx context.Context, r *models.Role, name string) error
	GetNormalizedRoleName(ctx context.Context, r *models.Role) (string, error)
	SetNormalizedRoleName(ctx context.Context, r *models.Role, normalizedName string) error
	FindByID(ctx context.Context, roleID string) (*models.Role, error)
	FindByName(ctx context.Context, normalizedName string) (*models.Role, error)
}

type RoleClaimStore interface {
	RoleStore
	GetClaims(ctx context.Context, r *models.Role) ([]models.Claim, error)
	AddClaim(ctx context.Context, r *models.Role, claim models.Claim) error
	RemoveClaim(ctx context.Context, r *models.Role, claim models.Claim) error
}

type QueryableRoleStore interface {
	RoleStore
	List(ctx context.Context) ([]*models.Role, error)
}

var (
	_ UserPasswordStore            = (*Users)(nil)
	_ UserRoleStore                = (*Users)(nil)
	_ UserLoginStore               = (*Users)(nil)
	_ UserSecurityStampStore       = (*Users)(nil)
	_ UserEmailStore               = (*Users)(nil)
	_ UserClaimStore               = (*Users)(nil)
	_ UserPhoneNumberStore         = (*Users)(nil)
	_ UserTwoFactorStore           = (*Users)(nil)
	_ UserLockoutStore             = (*Users)(nil)
	_ QueryableUserStore           = (*Users)(nil)
	_ UserAuthenticationTokenStore = (*Users)(nil)

	_ RoleClaimStore     = (*Roles)(nil)
	_ QueryableRoleStore = (*Roles)(nil)
)
