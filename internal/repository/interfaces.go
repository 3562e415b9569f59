package repository

import (
	"context"

	"github.com/Thobbytosin/flowva-server/internal/domain"
)

// UserRepository defines the interface for user data operations. Reads
// omit the password column unless the method name says otherwise.
type UserRepository interface {
	// Create inserts a new user and fills in its generated fields. A
	// duplicate email returns a conflict error even when the caller's
	// pre-check passed; the unique constraint is the authority.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID, without the password
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email, without the password
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByEmailWithPassword retrieves a user including the stored hash,
	// for the login comparison only
	GetByEmailWithPassword(ctx context.Context, email string) (*domain.User, error)

	// EmailExists reports whether an account with this email exists
	EmailExists(ctx context.Context, email string) (bool, error)

	// UpdateLastLogin stamps the user's last login time
	UpdateLastLogin(ctx context.Context, id int64) error

	// UpdatePreferences replaces the preferences object
	UpdatePreferences(ctx context.Context, id int64, prefs *domain.Preferences) error

	// UpdatePassword stores a new hash and stamps last_password_reset
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
}
