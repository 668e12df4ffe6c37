package manager

import "strings"

// Normalizer maps user names, emails and role names to the form used for
// lookups.
type Normalizer interface {
	Normalize(s string) string
}

// UpperInvariant upper-cases using Unicode simple case mapping, independent
// of any locale.
type UpperInvariant struct{}

func (UpperInvariant) Normalize(s string) string {
	return strings.ToUpper(s)
}
