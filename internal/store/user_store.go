package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vbonduro/wasteless/internal/domain"
)

// ErrDuplicateEmail is returned by UserStore.Create when the email is taken.
var ErrDuplicateEmail = errors.New("email already exists")

// User is an account row. PasswordHash is never rendered.
type User struct {
	ID           string
	Email        string
	PasswordHash string
}

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, id, email, passwordHash string) (*User, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)
	`, id, email, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &User{ID: id, Email: email, PasswordHash: passwordHash}, nil
}

// GetByEmail matches email case-insensitively. It returns nil, nil when no
// user exists.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	user := &User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash FROM users WHERE email = ?
	`, email).Scan(&user.ID, &user.Email, &user.PasswordHash)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetProfile returns nil, nil when the user has no profile document.
func (s *UserStore) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	profile := &domain.Profile{}
	var role string
	err := s.db.QueryRowContext(ctx, `
		SELECT name, email, role, created_at FROM profiles WHERE user_id = ?
	`, userID).Scan(&profile.Name, &profile.Email, &role, &profile.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.Role = domain.Role(role)
	return profile, nil
}

// SetProfile creates or replaces the user's profile document.
func (s *UserStore) SetProfile(ctx context.Context, userID string, profile domain.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, name, email, role, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			created_at = excluded.created_at
	`, userID, profile.Name, profile.Email, string(profile.Role), profile.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to set profile: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
