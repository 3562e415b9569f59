// Package google exchanges a user's OAuth access token for their profile.
package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/Thobbytosin/flowva-server/pkg/logger"
)

// Profile is the subset of the Google userinfo payload the auth flows use.
type Profile struct {
	ID            string
	Email         string
	Name          string
	Picture       string
	VerifiedEmail bool
}

// Verifier turns a bearer access token into a Google profile.
type Verifier interface {
	GetProfile(ctx context.Context, accessToken string) (*Profile, error)
}

// Service implements Verifier against the Google userinfo endpoint.
type Service struct {
	clientID string
	endpoint string
	log      *logger.Logger
}

// NewService creates a new Google profile service
func NewService(clientID string, log *logger.Logger) *Service {
	return &Service{clientID: clientID, log: log}
}

// WithEndpoint overrides the API endpoint. Used by tests.
func (s *Service) WithEndpoint(endpoint string) *Service {
	s.endpoint = endpoint
	return s
}

// GetProfile calls the userinfo endpoint with the user's access token.
func (s *Service) GetProfile(ctx context.Context, accessToken string) (*Profile, error) {
	opts := []option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})),
	}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}

	svc, err := goauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		s.log.WithError(err).Error("Google userinfo request failed")
		return nil, fmt.Errorf("failed to fetch user profile: %w", err)
	}

	if info.Email == "" {
		return nil, fmt.Errorf("userinfo response carries no email")
	}

	s.log.WithField("email", info.Email).Debug("Google profile fetched")

	return &Profile{
		ID:            info.Id,
		Email:         info.Email,
		Name:          info.Name,
		Picture:       info.Picture,
		VerifiedEmail: info.VerifiedEmail != nil && *info.VerifiedEmail,
	}, nil
}
