// Package validation holds the pure input rules shared by the auth flows.
package validation

import (
	"regexp"
	"strings"
)

// Strength policy: at least one letter, one digit and one symbol, trimmed
// length >= 8. Case mix is deliberately not required; this is the policy
// the client enforces too.
var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	letterRegex  = regexp.MustCompile(`[a-zA-Z]`)
	digitRegex   = regexp.MustCompile(`[0-9]`)
	specialRegex = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// IsEmailValid reports whether s looks like local@domain.tld with a 2+
// letter TLD and no consecutive dots.
func IsEmailValid(s string) bool {
	if strings.Contains(s, "..") {
		return false
	}
	return emailRegex.MatchString(s)
}

// IsPasswordStrong applies the strength policy above.
func IsPasswordStrong(p string) bool {
	if len(strings.TrimSpace(p)) < 8 {
		return false
	}
	return letterRegex.MatchString(p) && digitRegex.MatchString(p) && specialRegex.MatchString(p)
}
