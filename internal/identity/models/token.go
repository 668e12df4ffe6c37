package models

// UserToken is an authentication token associated with a user.
type UserToken struct {
	// LoginProvider is the provider the token came from.
	LoginProvider string `json:"loginProvider"`
	// Name of the token.
	Name string `json:"name"`
	// Value of the token.
	Value string `json:"value"`
}
