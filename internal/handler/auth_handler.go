package handler

import (
	"net/http"
	"strings"

	"github.com/Thobbytosin/flowva-server/internal/container"
	"github.com/Thobbytosin/flowva-server/internal/domain"
	"github.com/Thobbytosin/flowva-server/internal/middleware"
	"github.com/Thobbytosin/flowva-server/internal/service/token"
	"github.com/Thobbytosin/flowva-server/internal/transport/cookies"
	apperrors "github.com/Thobbytosin/flowva-server/pkg/errors"
)

// AuthHandler handles authentication related requests
type AuthHandler struct {
	container *container.Container
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(container *container.Container) *AuthHandler {
	return &AuthHandler{container: container}
}

// Signup handles POST /api/v1/auth/signup. In direct mode the account is
// created verified right away; in verify-first mode a code is mailed and
// the pending signup rides in the verification cookie.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()

	var req domain.SignupRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, log, err)
		return
	}

	svc := h.container.GetAuthService()

	if h.container.GetConfig().VerifyFirstSignup {
		signed, err := svc.BeginVerification(r.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			writeError(w, log, err)
			return
		}

		http.SetCookie(w, h.container.GetCookieOptions().Verification(signed, token.VerificationTokenLifetime))
		writeJSON(w, http.StatusOK, domain.Response{
			Success: true,
			Message: "A verification code has been sent to your email.",
		})
		return
	}

	if _, err := svc.RegisterDirect(r.Context(), req.Email, req.Password); err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Message: "Account created successful! You can proceed to sign in.",
	})
}

// AccountVerification handles POST /api/v1/auth/account-verification
func (h *AuthHandler) AccountVerification(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()

	cookie, err := r.Cookie(cookies.VerificationToken)
	if err != nil || cookie.Value == "" {
		writeError(w, log, apperrors.NewAuthenticationError("Verification session is invalid"))
		return
	}

	var req domain.VerifyAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, log, err)
		return
	}

	if _, err := h.container.GetAuthService().CompleteVerification(r.Context(), cookie.Value, req.VerificationCode); err != nil {
		writeError(w, log, err)
		return
	}

	// The pending signup is persisted; the cookie has no further use.
	http.SetCookie(w, h.container.GetCookieOptions().Verification("", 0))

	writeJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Message: "Account created successful! You can proceed to sign in.",
	})
}

// ResendVerificationCode handles POST /api/v1/auth/resend-verification-code
func (h *AuthHandler) ResendVerificationCode(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()

	cookie, err := r.Cookie(cookies.VerificationToken)
	if err != nil || cookie.Value == "" {
		writeError(w, log, apperrors.NewAuthenticationError("Verification session is invalid"))
		return
	}

	fresh, err := h.container.GetAuthService().ResendVerification(r.Context(), cookie.Value)
	if err != nil {
		writeError(w, log, err)
		return
	}

	http.SetCookie(w, h.container.GetCookieOptions().Verification(fresh, token.VerificationTokenLifetime))

	writeJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Message: "A new verification code has been sent to your email.",
	})
}

// Signin handles POST /api/v1/auth/signin (and its /login alias)
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()

	var req domain.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, log, err)
		return
	}

	user, pair, err := h.container.GetAuthService().Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, log, err)
		return
	}

	h.setSessionCookies(w, pair)

	writeJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Message: "Logged in successfully",
		User:    user,
	})
}

// GoogleSignin handles POST /api/v1/auth/google-signin
func (h *AuthHandler) GoogleSignin(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		writeError(w, log, apperrors.NewAuthenticationError("Missing token"))
		return
	}
	accessToken := strings.TrimPrefix(authHeader, "Bearer ")
	if accessToken == "" {
		writeError(w, log, apperrors.NewAuthenticationError("Missing token"))
		return
	}

	user, pair, err := h.container.GetAuthService().GoogleLogin(r.Context(), accessToken)
	if err != nil {
		writeError(w, log, err)
		return
	}

	h.setSessionCookies(w, pair)

	writeJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Message: "Logged in successfully",
		User:    user,
	})
}

// RefreshTokens handles GET /api/v1/auth/refresh-tokens. The refresh
// middleware already rotated the cookies; this only confirms.
func (h *AuthHandler) RefreshTokens(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()

	if _, ok := middleware.UserFromContext(r.Context()); !ok {
		writeError(w, log, apperrors.NewAuthenticationError("Session has expired: Kindly log in."))
		return
	}

	writeJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Message: "Tokens refreshed",
	})
}

func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, pair *token.Pair) {
	opts := h.container.GetCookieOptions()
	tokens := h.container.GetTokenService()
	http.SetCookie(w, opts.Access(pair.AccessToken, tokens.AccessTokenLifetime()))
	http.SetCookie(w, opts.Refresh(pair.RefreshToken, tokens.RefreshTokenLifetime()))
}
