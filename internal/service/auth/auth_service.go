// Package auth orchestrates the account flows: registration, verification,
// credential and Google sign-in, token refresh, password reset and
// preference updates.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Thobbytosin/flowva-server/internal/config"
	"github.com/Thobbytosin/flowva-server/internal/domain"
	"github.com/Thobbytosin/flowva-server/internal/repository"
	"github.com/Thobbytosin/flowva-server/internal/service/google"
	"github.com/Thobbytosin/flowva-server/internal/service/mail"
	"github.com/Thobbytosin/flowva-server/internal/service/token"
	"github.com/Thobbytosin/flowva-server/internal/service/validation"
	apperrors "github.com/Thobbytosin/flowva-server/pkg/errors"
	"github.com/Thobbytosin/flowva-server/pkg/logger"
)

const bcryptCost = 10

// passwordResetWindow is the minimum gap between password-reset mails for
// one account.
const passwordResetWindow = 24 * time.Hour

// Service wires the credential store, token issuer, mailer and Google
// verifier into the auth flows.
type Service struct {
	cfg    *config.Config
	users  repository.UserRepository
	tokens *token.Service
	mailer mail.Mailer
	google google.Verifier
	log    *logger.Logger
}

// NewService creates a new auth service
func NewService(cfg *config.Config, users repository.UserRepository, tokens *token.Service, mailer mail.Mailer, verifier google.Verifier, log *logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		users:  users,
		tokens: tokens,
		mailer: mailer,
		google: verifier,
		log:    log,
	}
}

// RegisterDirect creates a verified account immediately and sends the
// welcome mail. A mail failure is reported to the caller but the account
// stays; there is no rollback.
func (s *Service) RegisterDirect(ctx context.Context, email, password string) (*domain.User, error) {
	email, err := s.checkRegistration(ctx, email, password)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError("Error creating your account. Please try again", err)
	}

	user := &domain.User{
		Email:    email,
		Password: string(hashed),
		Verified: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("Account created")

	if err := s.mailer.SendWelcome(ctx, user.Email); err != nil {
		s.log.WithError(err).Error("Welcome mail failed after account creation")
		return nil, apperrors.NewMailError("Mail sending Failed", err)
	}

	return user, nil
}

// BeginVerification runs the signup pre-checks without creating the
// account, then issues a verification token and mails its code. The
// pending user lives only inside the returned signed token.
func (s *Service) BeginVerification(ctx context.Context, name, email, password string) (string, error) {
	email, err := s.checkRegistration(ctx, email, password)
	if err != nil {
		return "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", apperrors.NewInternalError("Error creating your account. Please try again", err)
	}

	pending := domain.PendingUser{
		Name:           strings.TrimSpace(name),
		Email:          email,
		HashedPassword: string(hashed),
	}

	code, signed, err := s.tokens.IssueVerificationToken(pending)
	if err != nil {
		return "", apperrors.NewInternalError("Error creating your account. Please try again", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, email, code); err != nil {
		return "", apperrors.NewMailError("Mail sending Failed", err)
	}

	return signed, nil
}

// CompleteVerification checks the submitted code against the token's
// embedded one and persists the pending user on match.
func (s *Service) CompleteVerification(ctx context.Context, signed, code string) (*domain.User, error) {
	claims, err := s.tokens.VerifyVerificationToken(signed)
	if err != nil {
		return nil, verificationSessionError(err)
	}

	if code == "" || claims.Code != code {
		return nil, apperrors.NewAuthorizationError("Incorrect verification code")
	}

	user := &domain.User{
		Email:    claims.User.Email,
		Password: claims.User.HashedPassword,
		Verified: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("Account verified and created")

	if err := s.mailer.SendWelcome(ctx, user.Email); err != nil {
		s.log.WithError(err).Error("Welcome mail failed after verification")
		return nil, apperrors.NewMailError("Mail sending Failed", err)
	}

	return user, nil
}

// ResendVerification re-issues a fresh code and token for the pending user
// embedded in the current token. The superseded code stays valid until its
// own expiry; verification state is stateless by design.
func (s *Service) ResendVerification(ctx context.Context, signed string) (string, error) {
	claims, err := s.tokens.VerifyVerificationToken(signed)
	if err != nil {
		return "", verificationSessionError(err)
	}

	code, fresh, err := s.tokens.IssueVerificationToken(claims.User)
	if err != nil {
		return "", apperrors.NewInternalError("Error re-issuing verification code", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, claims.User.Email, code); err != nil {
		return "", apperrors.NewMailError("Mail sending Failed", err)
	}

	return fresh, nil
}

// Login authenticates with email and password, stamps the last login and
// issues a session token pair. An unknown account and a wrong password
// both answer 404, with the messages the clients already rely on.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, *token.Pair, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil, nil, apperrors.NewAuthorizationError("All fields are required")
	}
	email = normalizeEmail(email)

	user, err := s.users.GetByEmailWithPassword(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	// Master override: the configured reset value bypasses the hash
	// comparison. Operational backdoor preserved from the deployed
	// system; see the SECURITY section of the README.
	if s.cfg.ResetPassword == "" || password != s.cfg.ResetPassword {
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
			return nil, nil, apperrors.NewNotFoundError("Invalid credentials")
		}
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, nil, apperrors.NewInternalError("Error signing in", err)
	}

	// Re-read without the password column so the hash never reaches the
	// response body or the token claims.
	fresh, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.IssueSessionTokens(*fresh)
	if err != nil {
		return nil, nil, apperrors.NewInternalError("Error signing in", err)
	}

	return fresh, pair, nil
}

// GoogleLogin exchanges the provider access token for a profile and signs
// the user in, creating the account on first sight.
func (s *Service) GoogleLogin(ctx context.Context, accessToken string) (*domain.User, *token.Pair, error) {
	profile, err := s.google.GetProfile(ctx, accessToken)
	if err != nil {
		return nil, nil, apperrors.NewAuthenticationError("Invalid or expired token")
	}

	email := normalizeEmail(profile.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrorTypeNotFound {
			return nil, nil, err
		}

		// First Google sign-in: create the account with a throwaway
		// password nobody ever learns.
		hashed, err := bcrypt.GenerateFromPassword([]byte(randomPassword()), bcryptCost)
		if err != nil {
			return nil, nil, apperrors.NewInternalError("Error logging in. Server error", err)
		}

		created := &domain.User{
			Email:            email,
			Password:         string(hashed),
			Verified:         true,
			GoogleRegistered: true,
		}
		if profile.Picture != "" {
			created.Avatar = &domain.Avatar{ID: profile.ID, URL: profile.Picture}
		}
		if err := s.users.Create(ctx, created); err != nil {
			return nil, nil, err
		}

		s.log.WithField("user_id", created.ID).Info("Account created via Google sign-in")

		if user, err = s.users.GetByEmail(ctx, email); err != nil {
			return nil, nil, err
		}
	}

	pair, err := s.tokens.IssueSessionTokens(*user)
	if err != nil {
		return nil, nil, apperrors.NewInternalError("Error signing in", err)
	}

	return user, pair, nil
}

// Refresh mints a fresh session pair from a valid refresh token.
func (s *Service) Refresh(refreshToken string) (*domain.User, *token.Pair, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, apperrors.NewAuthenticationError("Session has expired: Kindly log in.")
	}

	pair, err := s.tokens.IssueSessionTokens(claims.User)
	if err != nil {
		return nil, nil, apperrors.NewInternalError("Error refreshing session", err)
	}

	user := claims.User
	return &user, pair, nil
}

// ForgotPassword mails the configured static reset value to an existing
// account, at most once per 24 hours.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return apperrors.NewBadRequestError("Field is required")
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeNotFound {
			return apperrors.NewNotFoundError("Account does not exist")
		}
		return err
	}

	if user.LastPasswordReset != nil && time.Since(*user.LastPasswordReset) < passwordResetWindow {
		return apperrors.NewAuthorizationError("Password was reset recently. Try again later.")
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, s.cfg.ResetPassword); err != nil {
		return apperrors.NewMailError(err.Error(), err)
	}

	return nil
}

// GetUser fetches the caller's account by the id embedded in their session.
func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdatePreferences replaces the caller's preferences object entirely.
func (s *Service) UpdatePreferences(ctx context.Context, id int64, req *domain.UpdatePreferencesRequest) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return err
	}

	prefs := &domain.Preferences{
		SelfDescription: req.SelfDescription,
		Work:            req.Work,
		Country:         req.Country,
		ToolStack:       req.ToolStack,
		Goals:           req.Goals,
	}
	return s.users.UpdatePreferences(ctx, id, prefs)
}

// checkRegistration runs the shared signup pre-checks and returns the
// normalized email. The existence pre-check races with concurrent signups;
// the repository's unique constraint settles those.
func (s *Service) checkRegistration(ctx context.Context, email, password string) (string, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return "", apperrors.NewBadRequestError("All fields are required")
	}
	email = normalizeEmail(email)

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return "", apperrors.NewInternalError("Error creating your account. Please try again", err)
	}
	if exists {
		return "", apperrors.NewConflictError("Account already exists")
	}

	if !validation.IsEmailValid(email) {
		return "", apperrors.NewBadRequestError("Please enter a valid email")
	}
	if !validation.IsPasswordStrong(password) {
		return "", apperrors.NewBadRequestError("Password security is too weak")
	}

	return email, nil
}

func verificationSessionError(err error) *apperrors.AppError {
	if errors.Is(err, token.ErrExpired) {
		return apperrors.NewAuthenticationError("Verification session has expired. Sign up again.")
	}
	return apperrors.NewAuthenticationError("Verification session is invalid")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// randomPassword returns a throwaway credential for Google-created
// accounts. It is hashed immediately and never disclosed.
func randomPassword() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is unrecoverable for this process
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return hex.EncodeToString(buf)
}
