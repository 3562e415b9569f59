package middleware

import (
	"context"
	"net/http"

	"github.com/Thobbytosin/flowva-server/internal/service/auth"
	"github.com/Thobbytosin/flowva-server/internal/service/token"
	"github.com/Thobbytosin/flowva-server/internal/transport/cookies"
	apperrors "github.com/Thobbytosin/flowva-server/pkg/errors"
	"github.com/Thobbytosin/flowva-server/pkg/logger"
)

// RefreshTokens validates the refresh-token cookie, mints a fresh session
// pair, sets both cookies and passes the embedded user downstream. The
// wrapped handler only confirms success.
func RefreshTokens(authService *auth.Service, tokens *token.Service, opts *cookies.Options, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookies.RefreshToken)
			if err != nil || cookie.Value == "" {
				writeErrorResponse(w, apperrors.NewAuthenticationError("Session has expired: Kindly log in."), logger)
				return
			}

			user, pair, err := authService.Refresh(cookie.Value)
			if err != nil {
				appErr, ok := err.(*apperrors.AppError)
				if !ok {
					appErr = apperrors.NewInternalError("Error refreshing session", err)
				}
				writeErrorResponse(w, appErr, logger)
				return
			}

			http.SetCookie(w, opts.Access(pair.AccessToken, tokens.AccessTokenLifetime()))
			http.SetCookie(w, opts.Refresh(pair.RefreshToken, tokens.RefreshTokenLifetime()))

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
