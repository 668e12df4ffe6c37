package stores

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/dmitrijs2005/identitystore/internal/identity/models"
	"github.com/dmitrijs2005/identitystore/internal/logging"
	"github.com/dmitrijs2005/identitystore/internal/storage"
)

// Users is the user store.
type Users struct {
	mu  sync.Mutex
	src source[models.User]
	log logging.Logger
}

func NewUsers(provider storage.Provider[models.User], opts ...Option) *Users {
	o := buildOptions(opts)
	return &Users{
		src: newSource(provider, o),
		log: o.log.With("store", "users"),
	}
}

func check(ctx context.Context, u *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("%w: nil user", common.ErrorValidation)
	}
	return nil
}

// Create assigns an id when the user has none and appends the user.
func (s *Users) Create(ctx context.Context, u *models.User) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(ctx, u)
}

func (s *Users) create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = common.NewID()
	}
	if err := s.src.add(ctx, u.Clone()); err != nil {
		return fmt.Errorf("create user %s: %w", u.ID, err)
	}
	s.log.Debug(ctx, "user created", "id", u.ID)
	return nil
}

// Update deletes the stored record with the same id and creates it again,
// so the record moves to the end of the collection.
func (s *Users) Update(ctx context.Context, u *models.User) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.delete(ctx, u); err != nil {
		return err
	}
	return s.create(ctx, u)
}

// Delete removes the first record with the user's id. Deleting an unknown
// user is not an error.
func (s *Users) Delete(ctx context.Context, u *models.User) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delete(ctx, u)
}

func (s *Users) delete(ctx context.Context, u *models.User) error {
	id := u.ID
	if err := s.src.remove(ctx, func(x models.User) bool { return x.ID == id }); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	s.log.Debug(ctx, "user deleted", "id", id)
	return nil
}

// Invalidate drops cached records so the next call reloads them.
func (s *Users) Invalidate() {
	s.src.invalidate()
}

func (s *Users) first(ctx context.Context, match func(*models.User) bool) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := s.src.all(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if match(&items[i]) {
			u := items[i].Clone()
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (s *Users) filter(ctx context.Context, match func(*models.User) bool) ([]*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := s.src.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.User, 0)
	for i := range items {
		if match(&items[i]) {
			u := items[i].Clone()
			out = append(out, &u)
		}
	}
	return out, nil
}

func (s *Users) FindByID(ctx context.Context, userID string) (*models.User, error) {
	return s.first(ctx, func(u *models.User) bool { return u.ID == userID })
}

func (s *Users) FindByName(ctx context.Context, normalizedUserName string) (*models.User, error) {
	return s.first(ctx, func(u *models.User) bool { return u.NormalizedUserName == normalizedUserName })
}

func (s *Users) FindByEmail(ctx context.Context, normalizedEmail string) (*models.User, error) {
	return s.first(ctx, func(u *models.User) bool { return u.NormalizedEmail == normalizedEmail })
}

func (s *Users) FindByLogin(ctx context.Context, loginProvider, providerKey string) (*models.User, error) {
	return s.first(ctx, func(u *models.User) bool { return u.HasLogin(loginProvider, providerKey) })
}

// List returns every user.
func (s *Users) List(ctx context.Context) ([]*models.User, error) {
	return s.filter(ctx, func(*models.User) bool { return true })
}

func (s *Users) GetUsersInRole(ctx context.Context, normalizedRoleName string) ([]*models.User, error) {
	return s.filter(ctx, func(u *models.User) bool { return u.InRole(normalizedRoleName) })
}

// GetUsersForClaim returns every user holding the claim, each once.
func (s *Users) GetUsersForClaim(ctx context.Context, claim models.Claim) ([]*models.User, error) {
	return s.filter(ctx, func(u *models.User) bool { return u.HasClaim(claim) })
}

func (s *Users) GetUserID(ctx context.Context, u *models.User) (string, error) {
	if err := check(ctx, u); err != nil {
		return "", err
	}
	return u.ID, nil
}

func (s *Users) GetUserName(ctx context.Context, u *models.User) (string, error) {
	if err := check(ctx, u); err != nil {
		return "", err
	}
	return u.UserName, nil
}

func (s *Users) SetUserName(ctx context.Context, u *models.User, userName string) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	u.UserName = userName
	return nil
}

func (s *Users) GetNormalizedUserName(ctx context.Context, u *models.User) (string, error) {
	if err := check(ctx, u); err != nil {
		return "", err
	}
	return u.NormalizedUserName, nil
}

func (s *Users) SetNormalizedUserName(ctx context.Context, u *models.User, normalizedName string) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	u.NormalizedUserName = normalizedName
	return nil
}

func (s *Users) SetPasswordHash(ctx context.Context, u *models.User, passwordHash string) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *Users) GetPasswordHash(ctx context.Context, u *models.User) (string, error) {
	if err := check(ctx, u); err != nil {
		return "", err
	}
	return u.PasswordHash, nil
}

func (s *Users) HasPassword(ctx context.Context, u *models.User) (bool, error) {
	if err := check(ctx, u); err != nil {
		return false, err
	}
	return u.HasPassword(), nil
}

func (s *Users) AddToRole(ctx context.Context, u *models.User, normalizedRoleName string) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	u.AddRole(normalizedRoleName)
	return nil
}

func (s *Users) RemoveFromRole(ctx context.Context, u *models.User, normalizedRoleName string) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	u.RemoveRole(normalizedRoleName)
	return nil
}

func (s *Users) GetRoles(ctx context.Context, u *models.User) ([]string, error) {
	if err := check(ctx, u); err != nil {
		return nil, err
	}
	return u.RoleList(), nil
}

func (s *Users) IsInRole(ctx context.Context, u *models.User, normalizedRoleName string) (bool, error) {
	if err := check(ctx, u); err != nil {
		return false, err
	}
	return u.InRole(normalizedRoleName), nil
}

func (s *Users) AddLogin(ctx context.Context, u *models.User, login models.LoginInfo) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	u.AddLogin(login)
	return nil
}

func (s *Users) RemoveLogin(ctx context.Context, u *models.User, loginProvider, providerKey string) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	u.RemoveLogin(loginProvider, providerKey)
	return nil
}

func (s *Users) GetLogins(ctx context.Context, u *models.User) ([]models.LoginInfo, error) {
	if err := check(ctx, u); err != nil {
		return nil, err
	}
	return u.LoginInfos(), nil
}

func (s *Users) SetSecurityStamp(ctx context.Context, u *models.User, stamp string) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	u.SecurityStamp = stamp
	return nil
}

func (s *Users) GetSecurityStamp(ctx context.Context, u *models.User) (string, error) {
	if err := check(ctx, u); err != nil {
		return "", err
	}
	return u.SecurityStamp, nil
}

func (s *Users) SetEmail(ctx context.Context, u *models.User, email string) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	u.Email = email
	return nil
}

func (s *Users) GetEmail(ctx context.Context, u *models.User) (string, error) {
	if err := check(ctx, u); err != nil {
		return "", err
	}
	return u.Email, nil
}

func (s *Users) GetEmailConfirmed(ctx context.Context, u *models.User) (bool, error) {
	if err := check(ctx, u); err != nil {
		return false, err
	}
	return u.EmailConfirmed, nil
}

func (s *Users) SetEmailConfirmed(ctx context.Context, u *models.User, confirmed bool) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	u.EmailConfirmed = confirmed
	return nil
}

func (s *Users) GetNormalizedEmail(ctx context.Context, u *models.User) (string, error) {
	if err := check(ctx, u); err != nil {
		return "", err
	}
	return u.NormalizedEmail, nil
}

func (s *Users) SetNormalizedEmail(ctx context.Context, u *models.User, normalizedEmail string) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	u.NormalizedEmail = normalizedEmail
	return nil
}

func (s *Users) GetClaims(ctx context.Context, u *models.User) ([]models.Claim, error) {
	if err := check(ctx, u); err != nil {
		return nil, err
	}
	return u.ClaimList(), nil
}

func (s *Users) AddClaims(ctx context.Context, u *models.User, claims []models.Claim) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	for _, c := range claims {
		u.AddClaim(c)
	}
	return nil
}

// ReplaceClaim does nothing when the user lacks claim.
func (s *Users) ReplaceClaim(ctx context.Context, u *models.User, claim, newClaim models.Claim) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	u.ReplaceClaim(claim, newClaim)
	return nil
}

func (s *Users) RemoveClaims(ctx context.Context, u *models.User, claims []models.Claim) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	for _, c := range claims {
		u.RemoveClaim(c)
	}
	return nil
}

func (s *Users) SetPhoneNumber(ctx context.Context, u *models.User, phoneNumber string) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	u.PhoneNumber = phoneNumber
	return nil
}

func (s *Users) GetPhoneNumber(ctx context.Context, u *models.User) (string, error) {
	if err := check(ctx, u); err != nil {
		return "", err
	}
	return u.PhoneNumber, nil
}

func (s *Users) GetPhoneNumberConfirmed(ctx context.Context, u *models.User) (bool, error) {
	if err := check(ctx, u); err != nil {
		return false, err
	}
	return u.PhoneNumberConfirmed, nil
}

func (s *Users) SetPhoneNumberConfirmed(ctx context.Context, u *models.User, confirmed bool) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	u.PhoneNumberConfirmed = confirmed
	return nil
}

func (s *Users) SetTwoFactorEnabled(ctx context.Context, u *models.User, enabled bool) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	u.TwoFactorEnabled = enabled
	return nil
}

func (s *Users) GetTwoFactorEnabled(ctx context.Context, u *models.User) (bool, error) {
	if err := check(ctx, u); err != nil {
		return false, err
	}
	return u.TwoFactorEnabled, nil
}

func (s *Users) GetLockoutEndDate(ctx context.Context, u *models.User) (*time.Time, error) {
	if err := check(ctx, u); err != nil {
		return nil, err
	}
	if u.LockoutEndDateUTC == nil {
		return nil, nil
	}
	end := *u.LockoutEndDateUTC
	return &end, nil
}

// SetLockoutEndDate stores lockoutEnd converted to UTC; nil clears it.
func (s *Users) SetLockoutEndDate(ctx context.Context, u *models.User, lockoutEnd *time.Time) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	if lockoutEnd == nil {
		u.LockoutEndDateUTC = nil
		return nil
	}
	end := lockoutEnd.UTC()
	u.LockoutEndDateUTC = &end
	return nil
}

func (s *Users) IncrementAccessFailedCount(ctx context.Context, u *models.User) (int, error) {
	if err := check(ctx, u); err != nil {
		return 0, err
	}
	u.AccessFailedCount++
	return u.AccessFailedCount, nil
}

func (s *Users) ResetAccessFailedCount(ctx context.Context, u *models.User) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	u.AccessFailedCount = 0
	return nil
}

func (s *Users) GetAccessFailedCount(ctx context.Context, u *models.User) (int, error) {
	if err := check(ctx, u); err != nil {
		return 0, err
	}
	return u.AccessFailedCount, nil
}

func (s *Users) GetLockoutEnabled(ctx context.Context, u *models.User) (bool, error) {
	if err := check(ctx, u); err != nil {
		return false, err
	}
	return u.LockoutEnabled, nil
}

func (s *Users) SetLockoutEnabled(ctx context.Context, u *models.User, enabled bool) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	u.LockoutEnabled = enabled
	return nil
}

func (s *Users) SetToken(ctx context.Context, u *models.User, loginProvider, name, value string) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	u.SetToken(loginProvider, name, value)
	return nil
}

func (s *Users) RemoveToken(ctx context.Context, u *models.User, loginProvider, name string) error {
	if err := check(ctx, u); err != nil {
		return err
	}
	u.RemoveToken(loginProvider, name)
	return nil
}

// GetToken returns common.ErrorNotFound when the user has no such token.
func (s *Users) GetToken(ctx context.Context, u *models.User, loginProvider, name string) (string, error) {
	if err := check(ctx, u); err != nil {
		return "", err
	}
	v, ok := u.TokenValue(loginProvider, name)
	if !ok {
		return "", common.ErrorNotFound
	}
	return v, nil
}
