package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Thobbytosin/flowva-server/internal/domain"
	"github.com/Thobbytosin/flowva-server/pkg/database"
	apperrors "github.com/Thobbytosin/flowva-server/pkg/errors"
)

const uniqueViolationCode = "23505"

// userRepository handles user persistence with PostgreSQL
type userRepository struct {
	db *database.PostgresDB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.PostgresDB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user. A unique-constraint violation on email is
// translated to the same conflict error the pre-check produces, so a race
// between two concurrent signups resolves cleanly.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	prefs, err := marshalPreferences(user.Preferences)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (email, password, verified, google_registered, avatar_id, avatar_url, preferences)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, last_login, created_at, updated_at
	`

	var avatarID, avatarURL *string
	if user.Avatar != nil {
		avatarID, avatarURL = &user.Avatar.ID, &user.Avatar.URL
	}

	err = r.db.Pool.QueryRow(ctx, query,
		user.Email,
		user.Password,
		user.Verified,
		user.GoogleRegistered,
		avatarID,
		avatarURL,
		prefs,
	).Scan(&user.ID, &user.LastLogin, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return apperrors.NewConflictError("Account already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

const userColumns = `id, email, verified, last_login, last_password_reset, google_registered, avatar_id, avatar_url, preferences, created_at, updated_at`

// GetByID retrieves a user by ID, without the password
func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, query, id), false)
}

// GetByEmail retrieves a user by email, without the password
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, query, email), false)
}

// GetByEmailWithPassword retrieves a user including the stored hash
func (r *userRepository) GetByEmailWithPassword(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT password, ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, query, email), true)
}

// EmailExists reports whether an account with this email exists
func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// UpdateLastLogin stamps the user's last login time
func (r *userRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE users SET last_login = now(), updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// UpdatePreferences replaces the preferences object wholesale
func (r *userRepository) UpdatePreferences(ctx context.Context, id int64, prefs *domain.Preferences) error {
	data, err := marshalPreferences(prefs)
	if err != nil {
		return err
	}

	tag, err := r.db.Pool.Exec(ctx, `UPDATE users SET preferences = $1, updated_at = now() WHERE id = $2`, data, id)
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("Account not found")
	}
	return nil
}

// UpdatePassword stores a new hash and stamps last_password_reset
func (r *userRepository) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET password = $1, last_password_reset = now(), updated_at = now() WHERE id = $2`,
		hashedPassword, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("Account not found")
	}
	return nil
}

// scanUser scans a single user row. withPassword must match the query's
// column list.
func (r *userRepository) scanUser(row pgx.Row, withPassword bool) (*domain.User, error) {
	user := &domain.User{}
	var avatarID, avatarURL *string
	var prefs []byte

	dest := []interface{}{}
	if withPassword {
		dest = append(dest, &user.Password)
	}
	dest = append(dest,
		&user.ID,
		&user.Email,
		&user.Verified,
		&user.LastLogin,
		&user.LastPasswordReset,
		&user.GoogleRegistered,
		&avatarID,
		&avatarURL,
		&prefs,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Account not found")
		}
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}

	if avatarID != nil || avatarURL != nil {
		user.Avatar = &domain.Avatar{}
		if avatarID != nil {
			user.Avatar.ID = *avatarID
		}
		if avatarURL != nil {
			user.Avatar.URL = *avatarURL
		}
	}

	if len(prefs) > 0 {
		p := &domain.Preferences{}
		if err := json.Unmarshal(prefs, p); err != nil {
			return nil, fmt.Errorf("failed to decode preferences: %w", err)
		}
		user.Preferences = p
	}

	return user, nil
}

func marshalPreferences(prefs *domain.Preferences) ([]byte, error) {
	if prefs == nil {
		return nil, nil
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preferences: %w", err)
	}
	return data, nil
}
