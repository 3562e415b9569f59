// Package cookies centralizes the options for the three token cookies.
package cookies

import (
	"net/http"
	"time"
)

// Cookie names used by the auth flows.
const (
	AccessToken       = "access_token"
	RefreshToken      = "refresh_token"
	VerificationToken = "verification_token"
)

// Options builds token cookies with the environment's transport rules:
// always HttpOnly; SameSite=None plus Secure in production, Lax otherwise.
type Options struct {
	production bool
}

// NewOptions creates cookie options for the given environment
func NewOptions(production bool) *Options {
	return &Options{production: production}
}

// Access builds the access-token cookie
func (o *Options) Access(value string, lifetime time.Duration) *http.Cookie {
	return o.build(AccessToken, value, lifetime)
}

// Refresh builds the refresh-token cookie
func (o *Options) Refresh(value string, lifetime time.Duration) *http.Cookie {
	return o.build(RefreshToken, value, lifetime)
}

// Verification builds the verification-token cookie
func (o *Options) Verification(value string, lifetime time.Duration) *http.Cookie {
	return o.build(VerificationToken, value, lifetime)
}

func (o *Options) build(name, value string, lifetime time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(lifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if o.production {
		cookie.SameSite = http.SameSiteNoneMode
		cookie.Secure = true
	}
	return cookie
}
