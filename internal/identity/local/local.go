// Package local implements identity.Provider on the application database
// with bcrypt password hashes.
package local

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vbonduro/wasteless/internal/domain"
	"github.com/vbonduro/wasteless/internal/identity"
	"github.com/vbonduro/wasteless/internal/store"
)

// userRepository is the subset of store.UserStore that Provider requires.
type userRepository interface {
	Create(ctx context.Context, id, email, passwordHash string) (*store.User, error)
	GetByEmail(ctx context.Context, email string) (*store.User, error)
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	SetProfile(ctx context.Context, userID string, profile domain.Profile) error
}

type Provider struct {
	users userRepository
	cost  int
}

func NewProvider(users userRepository) *Provider {
	return &Provider{users: users, cost: bcrypt.DefaultCost}
}

func (p *Provider) CreateUser(ctx context.Context, email, password string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}
	if len(password) < identity.MinPasswordLen {
		return "", identity.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := p.users.Create(ctx, uuid.NewString(), email, string(hash))
	if errors.Is(err, store.ErrDuplicateEmail) {
		return "", identity.ErrEmailInUse
	}
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}

	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", identity.ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", identity.ErrInvalidCredential
	}
	return user.ID, nil
}

func (p *Provider) GetProfile(ctx context.Context, uid string) (*domain.Profile, error) {
	return p.users.GetProfile(ctx, uid)
}

func (p *Provider) SetProfile(ctx context.Context, uid string, profile domain.Profile) error {
	return p.users.SetProfile(ctx, uid, profile)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", identity.ErrInvalidEmail
	}
	return email, nil
}
