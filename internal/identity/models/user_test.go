package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Roles(t *testing.T) {
	u := NewUser("alice")

	u.AddRole("ADMIN")
	u.AddRole("EDITOR")
	u.AddRole("ADMIN")

	assert.True(t, u.InRole("ADMIN"))
	assert.False(t, u.InRole("admin"))

	u.RemoveRole("ADMIN")
	assert.Equal(t, []string{"EDITOR", "ADMIN"}, u.Roles, "only the first occurrence is removed")

	u.RemoveRole("MISSING")
	assert.Equal(t, []string{"EDITOR", "ADMIN"}, u.Roles)
}

func TestUser_Logins(t *testing.T) {
	u := NewUser("alice")
	gh := LoginInfo{LoginProvider: "github", ProviderKey: "123", ProviderDisplayName: "GitHub"}

	u.AddLogin(gh)
	u.AddLogin(gh)
	u.AddLogin(LoginInfo{LoginProvider: "google", ProviderKey: "abc"})

	require.True(t, u.HasLogin("github", "123"))
	assert.Len(t, u.LoginInfos(), 3)
	assert.Equal(t, gh, u.LoginInfos()[0])

	u.RemoveLogin("github", "123")
	assert.False(t, u.HasLogin("github", "123"), "all matching logins are removed")
	assert.True(t, u.HasLogin("google", "abc"))
}

func TestUser_Tokens(t *testing.T) {
	u := NewUser("alice")

	_, ok := u.TokenValue("app", "refresh")
	assert.False(t, ok)

	u.SetToken("app", "refresh", "v1")
	u.SetToken("app", "refresh", "v2")
	u.SetToken("other", "refresh", "x")

	require.Len(t, u.Tokens, 2, "setting an existing token updates it in place")
	v, ok := u.TokenValue("app", "refresh")
	require.True(t, ok)
	assert.Equal(t, "v2", v)

	u.RemoveToken("app", "refresh")
	_, ok = u.TokenValue("app", "refresh")
	assert.False(t, ok)
	assert.Len(t, u.Tokens, 1)
}

func TestUser_HasPassword(t *testing.T) {
	u := NewUser("alice")
	assert.False(t, u.HasPassword())
	u.PasswordHash = "hash"
	assert.True(t, u.HasPassword())
}

func TestUser_IsLockedOut(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Minute)
	past := now.Add(-time.Minute)

	tests := []struct {
		name    string
		enabled bool
		end     *time.Time
		want    bool
	}{
		{name: "disabled", enabled: false, end: &future, want: false},
		{name: "no end", enabled: true, end: nil, want: false},
		{name: "ended", enabled: true, end: &past, want: false},
		{name: "active", enabled: true, end: &future, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{LockoutEnabled: tt.enabled, LockoutEndDateUTC: tt.end}
			assert.Equal(t, tt.want, u.IsLockedOut(now))
		})
	}
}

func TestUser_JSONShape(t *testing.T) {
	u := &User{
		ID:                 "id-1",
		UserName:           "alice",
		NormalizedUserName: "ALICE",
		Roles:              []string{"ADMIN"},
		ClaimSet:           ClaimSet{Claims: []Claim{NewClaim("dept", "ops")}},
	}

	b, err := json.Marshal(u)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))

	assert.Equal(t, "id-1", raw["id"])
	assert.Equal(t, "ALICE", raw["normalizedUserName"])
	assert.Contains(t, raw, "lockoutEndDateUtc")
	assert.Nil(t, raw["lockoutEndDateUtc"])
	assert.NotContains(t, raw, "passwordHash", "empty hash is omitted")
	assert.NotContains(t, raw, "logins")
	assert.Equal(t, []any{map[string]any{"type": "dept", "value": "ops"}}, raw["claims"])
}

func TestUser_CloneIsDeep(t *testing.T) {
	end := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	u := User{
		ID:                "1",
		UserName:          "alice",
		Roles:             []string{"ADMIN"},
		Tokens:            []UserToken{{LoginProvider: "p", Name: "n", Value: "v"}},
		LockoutEndDateUTC: &end,
	}
	u.AddClaim(NewClaim("dept", "eng"))

	c := u.Clone()
	c.SetToken("p", "n", "changed")
	c.Roles[0] = "GUEST"
	c.Claims[0].Value = "ops"
	*c.LockoutEndDateUTC = end.Add(time.Hour)

	v, _ := u.TokenValue("p", "n")
	assert.Equal(t, "v", v)
	assert.Equal(t, "ADMIN", u.Roles[0])
	assert.Equal(t, "eng", u.Claims[0].Value)
	assert.Equal(t, end, *u.LockoutEndDateUTC)
	assert.Nil(t, User{}.Clone().Roles)
}
