package manager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/identitystore/internal/auth"
	"github.com/dmitrijs2005/identitystore/internal/common"
)

func TestLoginIssuesTokens(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	_, err := m.CreateRole(ctx, "admin")
	require.NoError(t, err)
	u, err := m.Register(ctx, "alice", "", "pw")
	require.NoError(t, err)
	require.NoError(t, m.AddToRole(ctx, "alice", "admin"))

	pair, err := m.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Len(t, pair.RefreshToken, 64)

	claims, err := auth.ParseToken(pair.AccessToken, m.opts.SecretKey)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, []string{"ADMIN"}, claims.Roles)

	stored, err := m.FindUser(ctx, "alice")
	require.NoError(t, err)
	v, ok := stored.TokenValue(common.TokenLoginProvider, common.RefreshTokenName)
	require.True(t, ok)
	assert.Equal(t, pair.RefreshToken, v)
	_, ok = stored.TokenValue(common.TokenLoginProvider, common.RefreshTokenExpiresName)
	assert.True(t, ok)

	got, err := m.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = m.Login(ctx, "alice", "bad")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRefreshRotates(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	u, err := m.Register(ctx, "alice", "", "pw")
	require.NoError(t, err)

	first, err := m.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	second, err := m.Refresh(ctx, u.ID, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = m.Refresh(ctx, u.ID, first.RefreshToken)
	require.ErrorIs(t, err, common.ErrInvalidToken, "old token is rotated out")

	_, err = m.Refresh(ctx, "ghost", second.RefreshToken)
	require.ErrorIs(t, err, common.ErrInvalidToken)

	stored, err := m.FindUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, stored.Tokens, 2, "token entries are updated in place")
}

func TestRefreshExpired(t *testing.T) {
	m, c := newManager(t)
	ctx := context.Background()
	u, err := m.Register(ctx, "alice", "", "pw")
	require.NoError(t, err)

	pair, err := m.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	c.advance(m.opts.RefreshTokenValidity + time.Second)
	_, err = m.Refresh(ctx, u.ID, pair.RefreshToken)
	require.ErrorIs(t, err, common.ErrRefreshTokenExpired)

	stored, err := m.FindUser(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, stored.Tokens, "expired token is revoked")
}

func TestRevoke(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	u, err := m.Register(ctx, "alice", "", "pw")
	require.NoError(t, err)
	pair, err := m.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, "alice"))
	_, err = m.Refresh(ctx, u.ID, pair.RefreshToken)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestIssueTokens_RequiresSecret(t *testing.T) {
	m, _ := newManager(t)
	m.opts.SecretKey = nil
	ctx := context.Background()
	u, err := m.Register(ctx, "alice", "", "pw")
	require.NoError(t, err)

	_, err = m.IssueTokens(ctx, u)
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	_, err := m.Register(ctx, "alice", "", "pw")
	require.NoError(t, err)
	pair, err := m.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	require.NoError(t, m.DeleteUser(ctx, "alice"))
	_, err = m.Authenticate(ctx, pair.AccessToken)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
