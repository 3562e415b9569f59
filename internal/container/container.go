package container

import (
	"github.com/Thobbytosin/flowva-server/internal/config"
	"github.com/Thobbytosin/flowva-server/internal/repository"
	"github.com/Thobbytosin/flowva-server/internal/service/auth"
	"github.com/Thobbytosin/flowva-server/internal/service/google"
	"github.com/Thobbytosin/flowva-server/internal/service/mail"
	"github.com/Thobbytosin/flowva-server/internal/service/token"
	"github.com/Thobbytosin/flowva-server/internal/transport/cookies"
	"github.com/Thobbytosin/flowva-server/pkg/logger"
	"github.com/Thobbytosin/flowva-server/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *logger.Logger
	RedisClient   *redis.Client
	TokenService  *token.Service
	AuthService   *auth.Service
	CookieOptions *cookies.Options
}

// New creates a new dependency injection container
func New(cfg *config.Config, log *logger.Logger, users repository.UserRepository) (*Container, error) {
	// Redis only backs the rate limiter; the app runs without it.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without rate limiting")
		} else {
			redisClient = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without rate limiting")
	}

	tokenService := token.NewService(cfg)
	mailer := mail.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom, log)
	verifier := google.NewService(cfg.GoogleClientID, log)
	authService := auth.NewService(cfg, users, tokenService, mailer, verifier, log)

	return &Container{
		Config:        cfg,
		Logger:        log,
		RedisClient:   redisClient,
		TokenService:  tokenService,
		AuthService:   authService,
		CookieOptions: cookies.NewOptions(cfg.IsProduction()),
	}, nil
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// GetTokenService returns the token service
func (c *Container) GetTokenService() *token.Service {
	return c.TokenService
}

// GetAuthService returns the auth service
func (c *Container) GetAuthService() *auth.Service {
	return c.AuthService
}

// GetCookieOptions returns the cookie options
func (c *Container) GetCookieOptions() *cookies.Options {
	return c.CookieOptions
}

// Close releases container-owned resources
func (c *Container) Close() error {
	if c.RedisClient != nil {
		return c.RedisClient.Close()
	}
	return nil
}
