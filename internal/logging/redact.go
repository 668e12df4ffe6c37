package logging

import (
	"log/slog"
	"strings"
)

// Redacted replaces the value of a credential attribute.
const Redacted = "[REDACTED]"

// sensitiveKeys are compared lower-cased.
var sensitiveKeys = map[string]struct{}{
	"password":       {},
	"passwordhash":   {},
	"password_hash":  {},
	"passphrase":     {},
	"securitystamp":  {},
	"security_stamp": {},
	"secret":         {},
	"secret_key":     {},
	"token":          {},
	"access_token":   {},
	"refresh_token":  {},
}

func isSensitive(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

// redactArgs returns args with the values of sensitive keys replaced by
// Redacted. args is left untouched; a copy is made only when something has
// to be replaced.
func redactArgs(args []any) []any {
	out := args
	copied := false
	set := func(i int, v any) {
		if !copied {
			out = append([]any(nil), args...)
			copied = true
		}
		out[i] = v
	}

	for i := 0; i < len(args); i++ {
		switch a := args[i].(type) {
		case slog.Attr:
			if isSensitive(a.Key) {
				set(i, slog.String(a.Key, Redacted))
			}
		case string:
			if i+1 < len(args) {
				if isSensitive(a) {
					set(i+1, Redacted)
				}
				i++
			}
		}
	}
	return out
}
