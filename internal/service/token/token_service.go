package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Thobbytosin/flowva-server/internal/config"
	"github.com/Thobbytosin/flowva-server/internal/domain"
)

// VerificationTokenLifetime bounds how long a signup code stays usable.
// Expiry is purely cryptographic; nothing is stored server-side.
const VerificationTokenLifetime = 5 * time.Minute

var (
	// ErrExpired is returned when a token's expiry has passed.
	ErrExpired = errors.New("token has expired")
	// ErrInvalid is returned for any other verification failure
	// (bad signature, malformed token, wrong claims shape).
	ErrInvalid = errors.New("token is invalid")
)

// SessionClaims is the claim schema for access and refresh tokens. The
// embedded user never carries a password; IssueSessionTokens clears it.
type SessionClaims struct {
	User domain.User `json:"user"`
	jwt.RegisteredClaims
}

// VerificationClaims is the claim schema for the short-lived signup
// verification token. The pending user has not been persisted yet.
type VerificationClaims struct {
	User domain.PendingUser `json:"user"`
	Code string             `json:"code"`
	jwt.RegisteredClaims
}

// ResetClaims is the claim schema for single-use password-reset tokens.
type ResetClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Pair holds a freshly signed access/refresh token pair
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Service signs and verifies all token kinds. Each kind has its own
// secret and lifetime, taken from the immutable config.
type Service struct {
	cfg *config.Config
}

// NewService creates a new token service
func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

// IssueSessionTokens signs an access and a refresh token embedding the
// user's public profile. Distinct secrets, distinct expirations.
func (s *Service) IssueSessionTokens(user domain.User) (*Pair, error) {
	user.Password = ""

	access, err := s.signSession(user, s.cfg.AccessTokenSecret, s.AccessTokenLifetime())
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := s.signSession(user, s.cfg.RefreshTokenSecret, s.RefreshTokenLifetime())
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueVerificationToken generates a uniformly random 6-digit code and
// signs a 5-minute token carrying the pending user and the code.
func (s *Service) IssueVerificationToken(pending domain.PendingUser) (code string, signed string, err error) {
	code, err = generateCode()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate verification code: %w", err)
	}

	now := time.Now()
	claims := VerificationClaims{
		User: pending,
		Code: code,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(VerificationTokenLifetime)),
		},
	}

	signed, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.cfg.VerificationTokenSecret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign verification token: %w", err)
	}

	return code, signed, nil
}

// IssueResetToken signs a 5-minute single-use password-reset token.
//
// The forgot-password flow does not call this: it mails the static
// configured reset value instead, reproducing the deployed behavior. The
// helper is the proper path a future migration should switch to.
func (s *Service) IssueResetToken(email string) (string, error) {
	now := time.Now()
	claims := ResetClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(VerificationTokenLifetime)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.cfg.ResetTokenSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken validates an access token and returns its claims
func (s *Service) VerifyAccessToken(signed string) (*SessionClaims, error) {
	return s.verifySession(signed, s.cfg.AccessTokenSecret)
}

// VerifyRefreshToken validates a refresh token and returns its claims
func (s *Service) VerifyRefreshToken(signed string) (*SessionClaims, error) {
	return s.verifySession(signed, s.cfg.RefreshTokenSecret)
}

// VerifyVerificationToken validates a signup verification token
func (s *Service) VerifyVerificationToken(signed string) (*VerificationClaims, error) {
	claims := &VerificationClaims{}
	if err := s.parse(signed, s.cfg.VerificationTokenSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// AccessTokenLifetime returns the configured access token lifetime
func (s *Service) AccessTokenLifetime() time.Duration {
	return time.Duration(s.cfg.AccessTokenExpirationDays) * 24 * time.Hour
}

// RefreshTokenLifetime returns the configured refresh token lifetime
func (s *Service) RefreshTokenLifetime() time.Duration {
	return time.Duration(s.cfg.RefreshTokenExpirationDays) * 24 * time.Hour
}

func (s *Service) signSession(user domain.User, secret string, lifetime time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *Service) verifySession(signed, secret string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := s.parse(signed, secret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// parse wraps library verification failures into the domain's two
// distinguishable errors.
func (s *Service) parse(signed, secret string, claims jwt.Claims) error {
	tok, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpired
		}
		return ErrInvalid
	}
	if !tok.Valid {
		return ErrInvalid
	}
	return nil
}

// generateCode returns a uniformly random code in [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
