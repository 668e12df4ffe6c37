package manager

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/identitystore/internal/auth"
	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/dmitrijs2005/identitystore/internal/identity/models"
)

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Login checks the password and issues a token pair.
func (m *Manager) Login(ctx context.Context, userName, password string) (*TokenPair, error) {
	u, err := m.CheckPassword(ctx, userName, password)
	if err != nil {
		return nil, err
	}
	return m.IssueTokens(ctx, u)
}

// IssueTokens signs an access token carrying the user id and roles and
// stores a fresh refresh token in the user's token list, replacing any
// previous one.
func (m *Manager) IssueTokens(ctx context.Context, u *models.User) (*TokenPair, error) {
	if len(m.opts.SecretKey) == 0 {
		return nil, fmt.Errorf("%w: secret key is not configured", common.ErrorValidation)
	}

	roles, err := m.users.GetRoles(ctx, u)
	if err != nil {
		return nil, err
	}

	access, err := auth.GenerateToken(u.ID, roles, m.opts.SecretKey, m.opts.AccessTokenValidity)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	expires := m.now().Add(m.opts.RefreshTokenValidity).UTC()

	if err := m.users.SetToken(ctx, u, common.TokenLoginProvider, common.RefreshTokenName, refresh); err != nil {
		return nil, err
	}
	if err := m.users.SetToken(ctx, u, common.TokenLoginProvider, common.RefreshTokenExpiresName, expires.Format(time.RFC3339)); err != nil {
		return nil, err
	}
	if err := m.users.Update(ctx, u); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh, RefreshExpiresAt: expires}, nil
}

// Refresh exchanges a valid refresh token for a new pair. The old refresh
// token stops working. An expired token is removed and reported as
// common.ErrRefreshTokenExpired.
func (m *Manager) Refresh(ctx context.Context, userID, refreshToken string) (*TokenPair, error) {
	u, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}

	stored, err := m.users.GetToken(ctx, u, common.TokenLoginProvider, common.RefreshTokenName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(refreshToken)) != 1 {
		return nil, common.ErrInvalidToken
	}

	raw, err := m.users.GetToken(ctx, u, common.TokenLoginProvider, common.RefreshTokenExpiresName)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	expires, perr := time.Parse(time.RFC3339, raw)
	if err != nil || perr != nil || !expires.After(m.now()) {
		if err := m.revoke(ctx, u); err != nil {
			return nil, err
		}
		return nil, common.ErrRefreshTokenExpired
	}

	return m.IssueTokens(ctx, u)
}

// Revoke drops the user's refresh token.
func (m *Manager) Revoke(ctx context.Context, userName string) error {
	u, err := m.FindUser(ctx, userName)
	if err != nil {
		return err
	}
	return m.revoke(ctx, u)
}

func (m *Manager) revoke(ctx context.Context, u *models.User) error {
	if err := m.users.RemoveToken(ctx, u, common.TokenLoginProvider, common.RefreshTokenName); err != nil {
		return err
	}
	if err := m.users.RemoveToken(ctx, u, common.TokenLoginProvider, common.RefreshTokenExpiresName); err != nil {
		return err
	}
	return m.users.Update(ctx, u)
}

// Authenticate verifies an access token and returns its user.
func (m *Manager) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	userID, err := auth.GetUserIDFromToken(accessToken, m.opts.SecretKey)
	if err != nil {
		return nil, err
	}
	u, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}
