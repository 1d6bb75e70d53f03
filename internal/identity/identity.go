// Package identity defines the account backend used for sign-up and sign-in,
// together with its per-user profile documents.
package identity

import (
	"context"
	"errors"

	"github.com/vbonduro/wasteless/internal/domain"
)

// Provider creates and authenticates accounts and stores one profile
// document per account.
type Provider interface {
	CreateUser(ctx context.Context, email, password string) (uid string, err error)
	SignIn(ctx context.Context, email, password string) (uid string, err error)
	// GetProfile returns nil, nil when the account has no profile yet.
	GetProfile(ctx context.Context, uid string) (*domain.Profile, error)
	SetProfile(ctx context.Context, uid string, profile domain.Profile) error
}

// Error codes reported by providers.
const (
	CodeEmailInUse        = "auth/email-already-in-use"
	CodeInvalidEmail      = "auth/invalid-email"
	CodeWeakPassword      = "auth/weak-password"
	CodeInvalidCredential = "auth/invalid-credential"
)

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 6

// Error is a provider failure with a stable code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message + " (" + e.Code + ")"
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrEmailInUse        = &Error{Code: CodeEmailInUse, Message: "email already in use"}
	ErrInvalidEmail      = &Error{Code: CodeInvalidEmail, Message: "invalid email"}
	ErrWeakPassword      = &Error{Code: CodeWeakPassword, Message: "password should be at least 6 characters"}
	ErrInvalidCredential = &Error{Code: CodeInvalidCredential, Message: "invalid credential"}
)

// UserMessage is the text shown to a person whose auth attempt failed. Only
// the email-in-use case is reworded; everything else is shown as reported.
func UserMessage(err error) string {
	if errors.Is(err, ErrEmailInUse) {
		return "This email is already registered. Please log in instead."
	}
	return err.Error()
}
