package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/wasteless/internal/domain"
	"github.com/vbonduro/wasteless/internal/identity"
)

// Account is a signed-in identity with its profile document.
type Account struct {
	UID     string
	Profile domain.Profile
}

// AuthService runs the sign-up and sign-in flows against an identity
// provider and records the device session in key/value storage.
type AuthService struct {
	provider identity.Provider
	kv       keyValueStore
	logger   *slog.Logger
	now      func() time.Time
}

func NewAuthService(provider identity.Provider, kv keyValueStore, logger *slog.Logger) *AuthService {
	return &AuthService{
		provider: provider,
		kv:       kv,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates the account, writes its profile document, and records the
// session. A blank name defaults to the local part of the email.
func (s *AuthService) Register(ctx context.Context, role domain.Role, name, email, password string) (*Account, error) {
	uid, err := s.provider.CreateUser(ctx, email, password)
	if err != nil {
		s.logger.Info("registration rejected", "role", role, "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	profile := domain.Profile{
		Name:      displayName(name, email),
		Email:     email,
		Role:      role,
		CreatedAt: s.now().UTC(),
	}
	if err := s.provider.SetProfile(ctx, uid, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	if err := s.recordSession(ctx, role); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "uid", uid, "role", role)
	return &Account{UID: uid, Profile: profile}, nil
}

// Login signs the account in. The stored profile decides the role; an
// account without a profile gets one with the requested role.
func (s *AuthService) Login(ctx context.Context, role domain.Role, email, password string) (*Account, error) {
	uid, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		s.logger.Info("login rejected", "role", role, "error", err)
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}

	profile, err := s.provider.GetProfile(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		email = strings.ToLower(strings.TrimSpace(email))
		profile = &domain.Profile{
			Name:      displayName("", email),
			Email:     email,
			Role:      role,
			CreatedAt: s.now().UTC(),
		}
		if err := s.provider.SetProfile(ctx, uid, *profile); err != nil {
			return nil, fmt.Errorf("failed to save profile: %w", err)
		}
	}

	if err := s.recordSession(ctx, profile.Role); err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "uid", uid, "role", profile.Role)
	return &Account{UID: uid, Profile: *profile}, nil
}

// Logout marks the device session as logged out. The last role is kept.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.kv.Set(ctx, KeyLoggedIn, "false"); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// DeviceSession reports the last recorded role and whether it is logged in.
func (s *AuthService) DeviceSession(ctx context.Context) (domain.Role, bool, error) {
	rawRole, _, err := s.kv.Get(ctx, KeyUserRole)
	if err != nil {
		return "", false, fmt.Errorf("failed to read session: %w", err)
	}
	loggedIn, _, err := s.kv.Get(ctx, KeyLoggedIn)
	if err != nil {
		return "", false, fmt.Errorf("failed to read session: %w", err)
	}
	role, ok := domain.ParseRole(rawRole)
	return role, ok && loggedIn == "true", nil
}

func (s *AuthService) recordSession(ctx context.Context, role domain.Role) error {
	if err := s.kv.Set(ctx, KeyUserRole, string(role)); err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}
	if err := s.kv.Set(ctx, KeyLoggedIn, "true"); err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}
	return nil
}

func displayName(name, email string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}
