package cookies

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDevelopmentCookies(t *testing.T) {
	opts := NewOptions(false)

	c := opts.Access("tok", 24*time.Hour)
	assert.Equal(t, AccessToken, c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 86400, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestProductionCookiesAreCrossSite(t *testing.T) {
	opts := NewOptions(true)

	for _, c := range []*http.Cookie{
		opts.Access("a", time.Hour),
		opts.Refresh("r", time.Hour),
		opts.Verification("v", time.Hour),
	} {
		assert.True(t, c.HttpOnly, "%s must be HttpOnly", c.Name)
		assert.True(t, c.Secure, "%s must be Secure in production", c.Name)
		assert.Equal(t, http.SameSiteNoneMode, c.SameSite, "%s must be SameSite=None in production", c.Name)
	}
}

func TestCookieNamesAreDistinct(t *testing.T) {
	opts := NewOptions(false)

	assert.Equal(t, "access_token", opts.Access("x", time.Hour).Name)
	assert.Equal(t, "refresh_token", opts.Refresh("x", time.Hour).Name)
	assert.Equal(t, "verification_token", opts.Verification("x", time.Hour).Name)
}

func TestZeroLifetimeClearsCookie(t *testing.T) {
	opts := NewOptions(false)

	c := opts.Verification("", 0)
	assert.Empty(t, c.Value)
	assert.Equal(t, 0, c.MaxAge)
}
