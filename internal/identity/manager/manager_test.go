package manager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/dmitrijs2005/identitystore/internal/identity/stores"
	"github.com/dmitrijs2005/identitystore/internal/storage/blob"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time         { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newManager(t *testing.T) (*Manager, *clock) {
	t.Helper()
	st := stores.NewBlobStores(blob.NewMemoryStorage(), "", "")
	opts := DefaultOptions()
	opts.MaxFailedAccessAttempts = 3
	opts.LockoutDuration = 10 * time.Minute
	opts.SecretKey = []byte("test-secret")

	m := New(st.Users, st.Roles, opts, nil)
	c := &clock{t: time.Now().UTC()}
	m.now = c.now
	return m, c
}

func TestUpperInvariant(t *testing.T) {
	n := UpperInvariant{}
	assert.Equal(t, "ALICE@EXAMPLE.COM", n.Normalize("Alice@Example.com"))
	assert.Equal(t, "ÉLODIE", n.Normalize("élodie"))
}

func TestRegister(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	u, err := m.Register(ctx, "Alice", "Alice@Example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "ALICE", u.NormalizedUserName)
	assert.Equal(t, "ALICE@EXAMPLE.COM", u.NormalizedEmail)
	assert.True(t, u.HasPassword())
	assert.NotEqual(t, "pw", u.PasswordHash)
	assert.NotEmpty(t, u.SecurityStamp)
	assert.True(t, u.LockoutEnabled)

	_, err = m.Register(ctx, "alice", "", "pw")
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = m.Register(ctx, "bob", "alice@example.COM", "pw")
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = m.Register(ctx, "carol", "", "pw")
	require.NoError(t, err, "empty emails do not collide")
	_, err = m.Register(ctx, "dave", "", "pw")
	require.NoError(t, err)

	_, err = m.Register(ctx, "", "", "pw")
	require.ErrorIs(t, err, common.ErrorValidation)
	_, err = m.Register(ctx, "erin", "", "")
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestCheckPassword_Lockout(t *testing.T) {
	m, c := newManager(t)
	ctx := context.Background()
	_, err := m.Register(ctx, "alice", "", "right")
	require.NoError(t, err)

	_, err = m.CheckPassword(ctx, "nobody", "x")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = m.CheckPassword(ctx, "alice", "wrong")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	_, err = m.CheckPassword(ctx, "alice", "wrong")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	u, err := m.FindUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, u.AccessFailedCount)

	_, err = m.CheckPassword(ctx, "alice", "wrong")
	require.ErrorIs(t, err, common.ErrLockedOut)

	u, err = m.FindUser(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, u.AccessFailedCount)
	require.NotNil(t, u.LockoutEndDateUTC)

	_, err = m.CheckPassword(ctx, "alice", "right")
	require.ErrorIs(t, err, common.ErrLockedOut, "right password does not help while locked")

	c.advance(11 * time.Minute)
	u, err = m.CheckPassword(ctx, "alice", "right")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.UserName)
}

func TestCheckPassword_SuccessResetsCounter(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	_, err := m.Register(ctx, "alice", "", "right")
	require.NoError(t, err)

	_, err = m.CheckPassword(ctx, "alice", "wrong")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = m.CheckPassword(ctx, "alice", "right")
	require.NoError(t, err)

	u, err := m.FindUser(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, u.AccessFailedCount)
}

func TestCheckPassword_LockoutDisabled(t *testing.T) {
	m, _ := newManager(t)
	m.opts.LockoutOnNewUsers = false
	ctx := context.Background()
	_, err := m.Register(ctx, "alice", "", "right")
	require.NoError(t, err)

	for range 5 {
		_, err = m.CheckPassword(ctx, "alice", "wrong")
		require.ErrorIs(t, err, common.ErrorUnauthorized)
	}

	u, err := m.FindUser(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, u.AccessFailedCount)
	assert.Nil(t, u.LockoutEndDateUTC)
}

func TestCheckPassword_CorruptHashParameters(t *testing.T) {
	for name, hash := range map[string]string{
		"zero threads": "$argon2id$v=19$m=65536,t=1,p=0$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaA",
		"zero rounds":  "$argon2id$v=19$m=65536,t=0,p=4$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaA",
		"huge memory":  "$argon2id$v=19$m=4294967295,t=1,p=4$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaA",
	} {
		t.Run(name, func(t *testing.T) {
			m, _ := newManager(t)
			ctx := context.Background()
			u, err := m.Register(ctx, "alice", "", "pw")
			require.NoError(t, err)

			u.PasswordHash = hash
			require.NoError(t, m.users.Update(ctx, u))

			require.NotPanics(t, func() {
				_, err = m.CheckPassword(ctx, "alice", "pw")
			})
			require.ErrorIs(t, err, common.ErrorUnauthorized)
		})
	}
}

func TestChangeAndSetPassword(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	u, err := m.Register(ctx, "alice", "", "old")
	require.NoError(t, err)
	stamp := u.SecurityStamp

	require.ErrorIs(t, m.ChangePassword(ctx, "alice", "bad", "new"), common.ErrorUnauthorized)
	require.NoError(t, m.ChangePassword(ctx, "alice", "old", "new"))

	_, err = m.CheckPassword(ctx, "alice", "new")
	require.NoError(t, err)

	u, err = m.FindUser(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, stamp, u.SecurityStamp)

	require.NoError(t, m.SetPassword(ctx, "alice", "reset"))
	_, err = m.CheckPassword(ctx, "alice", "reset")
	require.NoError(t, err)

	require.ErrorIs(t, m.SetPassword(ctx, "alice", ""), common.ErrorValidation)
	require.ErrorIs(t, m.SetPassword(ctx, "ghost", "x"), common.ErrorNotFound)
}

func TestLockUnlock(t *testing.T) {
	m, c := newManager(t)
	ctx := context.Background()
	_, err := m.Register(ctx, "alice", "", "pw")
	require.NoError(t, err)

	require.NoError(t, m.Lock(ctx, "alice", c.now().Add(time.Hour)))
	_, err = m.CheckPassword(ctx, "alice", "pw")
	require.ErrorIs(t, err, common.ErrLockedOut)

	require.NoError(t, m.Unlock(ctx, "alice"))
	_, err = m.CheckPassword(ctx, "alice", "pw")
	require.NoError(t, err)
}

func TestDeleteUser(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	_, err := m.Register(ctx, "alice", "", "pw")
	require.NoError(t, err)

	require.NoError(t, m.DeleteUser(ctx, "ALICE"))
	_, err = m.FindUser(ctx, "alice")
	require.ErrorIs(t, err, common.ErrorNotFound)
	require.ErrorIs(t, m.DeleteUser(ctx, "alice"), common.ErrorNotFound)

	users, err := m.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}
