// Package identity adapts external identity providers to the account
// operations the signup and login flows need.
package identity

import (
	"context"
	"errors"

	"conditions-backend/internal/models"
)

// ErrAccountNotFound is returned when no account matches the lookup.
var ErrAccountNotFound = errors.New("account not found")

// Provider creates and resolves accounts. Implementations never verify
// passwords on behalf of the caller.
type Provider interface {
	CreateAccount(ctx context.Context, email, password string) (models.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (models.Account, error)
	DeleteAccount(ctx context.Context, uid string) error
}

// ProviderError is a rejection reported by the provider. Message is meant
// to be shown to the client as-is.
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
