package identity

import (
	"context"
	"fmt"

	"conditions-backend/internal/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// firebaseAuth is the subset of *auth.Client used here.
type firebaseAuth interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
}

// Firebase is a Provider backed by Firebase Authentication.
type Firebase struct {
	client firebaseAuth
}

// NewFirebaseAuthClient initializes the Admin SDK from a service account JSON document.
func NewFirebaseAuthClient(ctx context.Context, serviceAccountJSON string) (*auth.Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return client, nil
}

func NewFirebase(client firebaseAuth) *Firebase {
	return &Firebase{client: client}
}

func (f *Firebase) CreateAccount(ctx context.Context, email, password string) (models.Account, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		EmailVerified(false).
		Disabled(false)

	record, err := f.client.CreateUser(ctx, params)
	if err != nil {
		return models.Account{}, &ProviderError{Message: err.Error(), Err: err}
	}
	return toAccount(record), nil
}

func (f *Firebase) FindAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	record, err := f.client.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return models.Account{}, ErrAccountNotFound
		}
		return models.Account{}, &ProviderError{Message: err.Error(), Err: err}
	}
	return toAccount(record), nil
}

func (f *Firebase) DeleteAccount(ctx context.Context, uid string) error {
	if err := f.client.DeleteUser(ctx, uid); err != nil {
		if auth.IsUserNotFound(err) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("delete firebase user %s: %w", uid, err)
	}
	return nil
}

func toAccount(record *auth.UserRecord) models.Account {
	if record == nil || record.UserInfo == nil {
		return models.Account{}
	}
	return models.Account{UID: record.UID, Email: record.Email}
}
