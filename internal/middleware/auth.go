package middleware

import (
	"context"
	"net/http"

	"github.com/Thobbytosin/flowva-server/internal/service/token"
	"github.com/Thobbytosin/flowva-server/internal/transport/cookies"
	apperrors "github.com/Thobbytosin/flowva-server/pkg/errors"
	"github.com/Thobbytosin/flowva-server/pkg/logger"
)

// SessionAuth requires a valid access-token cookie and places the embedded
// user into the request context.
func SessionAuth(tokens *token.Service, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookies.AccessToken)
			if err != nil || cookie.Value == "" {
				writeErrorResponse(w, apperrors.NewAuthenticationError("You are not logged in"), logger)
				return
			}

			claims, err := tokens.VerifyAccessToken(cookie.Value)
			if err != nil {
				logger.WithError(err).Debug("Access token rejected")
				writeErrorResponse(w, apperrors.NewAuthenticationError("Session is invalid or has expired"), logger)
				return
			}

			user := claims.User
			ctx := context.WithValue(r.Context(), UserContextKey, &user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
