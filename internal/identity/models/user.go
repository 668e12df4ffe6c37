package models

import "time"

// User is the persisted identity record.
type User struct {
	ID                 string `json:"id"`
	UserName           string `json:"userName"`
	NormalizedUserName string `json:"normalizedUserName"`

	// SecurityStamp is a random value that must change whenever the user's
	// credentials change (password changed, login removed).
	SecurityStamp string `json:"securityStamp"`

	Email           string `json:"email"`
	NormalizedEmail string `json:"normalizedEmail"`
	EmailConfirmed  bool   `json:"emailConfirmed"`

	PhoneNumber          string `json:"phoneNumber"`
	PhoneNumberConfirmed bool   `json:"phoneNumberConfirmed"`

	TwoFactorEnabled bool `json:"twoFactorEnabled"`

	LockoutEndDateUTC *time.Time `json:"lockoutEndDateUtc"`
	LockoutEnabled    bool       `json:"lockoutEnabled"`
	AccessFailedCount int        `json:"accessFailedCount"`

	// Roles holds normalized role names.
	Roles []string `json:"roles,omitempty"`

	PasswordHash string `json:"passwordHash,omitempty"`

	Logins []UserLogin `json:"logins,omitempty"`
	Tokens []UserToken `json:"tokens,omitempty"`

	ClaimSet
}

func NewUser(userName string) *User {
	return &User{UserName: userName}
}

func (u *User) String() string {
	return u.UserName
}

// HasPassword reports whether a password hash is set.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

func (u *User) AddRole(role string) {
	u.Roles = append(u.Roles, role)
}

// RemoveRole removes the first occurrence of role.
func (u *User) RemoveRole(role string) {
	for i, r := range u.Roles {
		if r == role {
			u.Roles = append(u.Roles[:i], u.Roles[i+1:]...)
			return
		}
	}
}

func (u *User) InRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleList returns a copy of the role names.
func (u *User) RoleList() []string {
	out := make([]string, len(u.Roles))
	copy(out, u.Roles)
	return out
}

func (u *User) AddLogin(info LoginInfo) {
	u.Logins = append(u.Logins, NewUserLogin(info))
}

// RemoveLogin removes every login matching provider and key.
func (u *User) RemoveLogin(loginProvider, providerKey string) {
	kept := u.Logins[:0]
	for _, l := range u.Logins {
		if l.LoginProvider != loginProvider || l.ProviderKey != providerKey {
			kept = append(kept, l)
		}
	}
	u.Logins = kept
}

func (u *User) HasLogin(loginProvider, providerKey string) bool {
	for _, l := range u.Logins {
		if l.LoginProvider == loginProvider && l.ProviderKey == providerKey {
			return true
		}
	}
	return false
}

func (u *User) LoginInfos() []LoginInfo {
	out := make([]LoginInfo, 0, len(u.Logins))
	for _, l := range u.Logins {
		out = append(out, l.LoginInfo())
	}
	return out
}

func (u *User) token(loginProvider, name string) *UserToken {
	for i := range u.Tokens {
		if u.Tokens[i].LoginProvider == loginProvider && u.Tokens[i].Name == name {
			return &u.Tokens[i]
		}
	}
	return nil
}

// SetToken updates the value of an existing token or appends a new one.
func (u *User) SetToken(loginProvider, name, value string) {
	if t := u.token(loginProvider, name); t != nil {
		t.Value = value
		return
	}
	u.Tokens = append(u.Tokens, UserToken{LoginProvider: loginProvider, Name: name, Value: value})
}

// TokenValue returns the token value and whether it exists.
func (u *User) TokenValue(loginProvider, name string) (string, bool) {
	t := u.token(loginProvider, name)
	if t == nil {
		return "", false
	}
	return t.Value, true
}

// RemoveToken removes every token matching provider and name.
func (u *User) RemoveToken(loginProvider, name string) {
	kept := u.Tokens[:0]
	for _, t := range u.Tokens {
		if t.LoginProvider != loginProvider || t.Name != name {
			kept = append(kept, t)
		}
	}
	u.Tokens = kept
}

// IsLockedOut reports whether lockout is enabled and the lockout end lies after now.
func (u *User) IsLockedOut(now time.Time) bool {
	return u.LockoutEnabled && u.LockoutEndDateUTC != nil && u.LockoutEndDateUTC.After(now)
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	c := u
	if u.LockoutEndDateUTC != nil {
		end := *u.LockoutEndDateUTC
		c.LockoutEndDateUTC = &end
	}
	c.Roles = cloneSlice(u.Roles)
	c.Logins = cloneSlice(u.Logins)
	c.Tokens = cloneSlice(u.Tokens)
	c.Claims = cloneSlice(u.Claims)
	return c
}

func cloneSlice[S ~[]E, E any](s S) S {
	if s == nil {
		return nil
	}
	return append(S(nil), s...)
}
