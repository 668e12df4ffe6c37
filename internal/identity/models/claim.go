// Package models defines the identity records persisted by the stores:
// users, roles and the claim, login and token value tuples they carry.
// Every record serializes to JSON with camelCase keys.
package models

// Claim is a type/value statement about a user or role.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// NewClaim is a convenience constructor.
func NewClaim(claimType, value string) Claim {
	return Claim{Type: claimType, Value: value}
}

// Matches reports whether c has the same type and value as other.
func (c Claim) Matches(other Claim) bool {
	return c.Type == other.Type && c.Value == other.Value
}

// ClaimSet is embedded by records that own claims.
type ClaimSet struct {
	Claims []Claim `json:"claims,omitempty"`
}

// AddClaim appends the claim. Duplicates are allowed.
func (s *ClaimSet) AddClaim(c Claim) {
	s.Claims = append(s.Claims, c)
}

// RemoveClaim removes every claim equal to c by type and value.
func (s *ClaimSet) RemoveClaim(c Claim) {
	kept := s.Claims[:0]
	for _, existing := range s.Claims {
		if !existing.Matches(c) {
			kept = append(kept, existing)
		}
	}
	s.Claims = kept
}

// HasClaim reports whether a claim with the same type and value exists.
func (s *ClaimSet) HasClaim(c Claim) bool {
	for _, existing := range s.Claims {
		if existing.Matches(c) {
			return true
		}
	}
	return false
}

// ReplaceClaim swaps existing for replacement. Nothing happens when
// existing is not present.
func (s *ClaimSet) ReplaceClaim(existing, replacement Claim) {
	if !s.HasClaim(existing) {
		return
	}
	s.RemoveClaim(existing)
	s.AddClaim(replacement)
}

// ClaimList returns a copy of the claims.
func (s *ClaimSet) ClaimList() []Claim {
	out := make([]Claim, len(s.Claims))
	copy(out, s.Claims)
	return out
}
