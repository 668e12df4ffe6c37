package common

// TokenLoginProvider is the login provider name under which the account
// manager keeps its own tokens in a user's token list.
const TokenLoginProvider = "identitystore"

const (
	// RefreshTokenName names the refresh token entry.
	RefreshTokenName = "refresh_token"
	// RefreshTokenExpiresName names the entry holding the refresh token expiry (RFC 3339).
	RefreshTokenExpiresName = "refresh_token_expires"
)

// Default collection names used by file and blob providers.
const (
	DefaultUsersItem = "users.json"
	DefaultRolesItem = "roles.json"
)
