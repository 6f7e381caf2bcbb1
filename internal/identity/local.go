package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"conditions-backend/internal/models"
	"conditions-backend/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// Messages mirror the hosted provider so clients see the same text in both modes.
const (
	msgEmailExists     = "The email address is already in use by another account."
	msgInvalidEmail    = "The email address is improperly formatted."
	msgInvalidPassword = "The password must be a string with at least 6 characters."
)

type accountStore interface {
	Create(ctx context.Context, account *models.LocalAccount) error
	FindByEmail(ctx context.Context, email string) (*models.LocalAccount, error)
	DeleteByUID(ctx context.Context, uid string) error
}

// Local is a development Provider that keeps accounts in the document store.
type Local struct {
	store accountStore
	cost  int
}

func NewLocal(store accountStore) *Local {
	return &Local{store: store, cost: bcrypt.DefaultCost}
}

// Emails are stored lowercased, matching the hosted provider.
func (l *Local) CreateAccount(ctx context.Context, email, password string) (models.Account, error) {
	email = strings.ToLower(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return models.Account{}, &ProviderError{Message: msgInvalidEmail}
	}
	if len(password) < minPasswordLength {
		return models.Account{}, &ProviderError{Message: msgInvalidPassword}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.cost)
	if err != nil {
		return models.Account{}, &ProviderError{Message: err.Error(), Err: err}
	}

	account := &models.LocalAccount{
		UID:           uuid.NewString(),
		Email:         email,
		PasswordHash:  hash,
		EmailVerified: false,
		Disabled:      false,
	}
	if err := l.store.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return models.Account{}, &ProviderError{Message: msgEmailExists, Err: err}
		}
		return models.Account{}, fmt.Errorf("create account: %w", err)
	}
	return models.Account{UID: account.UID, Email: account.Email}, nil
}

func (l *Local) FindAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	account, err := l.store.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return models.Account{}, ErrAccountNotFound
		}
		return models.Account{}, fmt.Errorf("find account: %w", err)
	}
	return models.Account{UID: account.UID, Email: account.Email}, nil
}

func (l *Local) DeleteAccount(ctx context.Context, uid string) error {
	if err := l.store.DeleteByUID(ctx, uid); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}
