package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"conditions-backend/internal/identity"
	"conditions-backend/internal/metrics"
	"conditions-backend/internal/models"
	"conditions-backend/internal/notify"
	"conditions-backend/internal/repository"

	"go.uber.org/zap"
)

// Client-facing messages.
const (
	MsgCredentialsRequired = "Email and password are required"
	MsgConditionsRequired  = "At least one condition must be selected"
	MsgInvalidConditions   = "Invalid conditions: "
	MsgUserNotFound        = "User not found"
	MsgProfileMissing      = "User data not found in database"
	MsgProfileSaveFailed   = "Failed to save user data"
	MsgProfileLoadFailed   = "Failed to load user data"
	MsgLookupFailed        = "Failed to look up account"
	MsgSignupFailed        = "Failed to create account"
)

const welcomeTimeout = 15 * time.Second

// ProfileStore persists profiles keyed by provider uid.
type ProfileStore interface {
	Put(ctx context.Context, profile *models.Profile) error
	Get(ctx context.Context, uid string) (*models.Profile, error)
}

type SignupInput struct {
	Email      string
	Password   string
	Conditions []string
}

type LoginInput struct {
	Email    string
	Password string
}

// AccountResult is returned by both Signup and Login.
type AccountResult struct {
	UID        string
	Email      string
	Conditions []string
}

// AccountService validates requests and orchestrates the identity provider
// and the profile store. It keeps no per-request state.
type AccountService struct {
	provider identity.Provider
	profiles ProfileStore
	notifier notify.Notifier
	metrics  metrics.Recorder
	log      *zap.Logger

	background sync.WaitGroup
}

func NewAccountService(provider identity.Provider, profiles ProfileStore, notifier notify.Notifier, rec metrics.Recorder, log *zap.Logger) *AccountService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &AccountService{
		provider: provider,
		profiles: profiles,
		notifier: notifier,
		metrics:  rec,
		log:      log,
	}
}

// Conditions returns every selectable condition in display order.
func (s *AccountService) Conditions() []string {
	return models.Conditions()
}

func (s *AccountService) Signup(ctx context.Context, in SignupInput) (AccountResult, error) {
	res, err := s.signup(ctx, in)
	s.metrics.RecordSignup(outcome(err))
	return res, err
}

func (s *AccountService) signup(ctx context.Context, in SignupInput) (AccountResult, error) {
	if in.Email == "" || in.Password == "" {
		return AccountResult{}, models.InvalidInput(MsgCredentialsRequired)
	}
	if len(in.Conditions) == 0 {
		return AccountResult{}, models.InvalidInput(MsgConditionsRequired)
	}
	if invalid := models.InvalidConditions(in.Conditions); len(invalid) > 0 {
		return AccountResult{}, models.InvalidInput(MsgInvalidConditions + strings.Join(invalid, ", "))
	}

	account, err := s.provider.CreateAccount(ctx, in.Email, in.Password)
	if err != nil {
		var perr *identity.ProviderError
		if errors.As(err, &perr) {
			return AccountResult{}, models.InvalidInput(perr.Message)
		}
		s.log.Error("create account failed", zap.Error(err))
		return AccountResult{}, models.InvalidInput(MsgSignupFailed)
	}

	email := account.Email
	if email == "" {
		email = in.Email
	}
	conditions := append([]string(nil), in.Conditions...)

	profile := &models.Profile{
		UserID:     account.UID,
		Email:      email,
		Conditions: conditions,
	}
	if err := s.profiles.Put(ctx, profile); err != nil {
		s.compensate(ctx, account.UID, err)
		return AccountResult{}, models.Internal(MsgProfileSaveFailed, err)
	}

	s.log.Info("user signed up", zap.String("uid", account.UID), zap.String("email", email))
	s.sendWelcome(email, conditions)

	return AccountResult{UID: account.UID, Email: email, Conditions: conditions}, nil
}

// compensate removes an account whose profile could not be written so that
// the same email can sign up again.
func (s *AccountService) compensate(ctx context.Context, uid string, cause error) {
	s.log.Warn("profile write failed, deleting account", zap.String("uid", uid), zap.Error(cause))
	if err := s.provider.DeleteAccount(context.WithoutCancel(ctx), uid); err != nil {
		s.log.Error("orphaned account left at identity provider", zap.String("uid", uid), zap.Error(err))
	}
}

func (s *AccountService) sendWelcome(email string, conditions []string) {
	if s.notifier == nil {
		return
	}
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), welcomeTimeout)
		defer cancel()
		if err := s.notifier.SendWelcome(ctx, email, conditions); err != nil {
			s.log.Warn("welcome mail failed", zap.String("email", email), zap.Error(err))
		}
	}()
}

// Wait blocks until background deliveries started by Signup have finished.
func (s *AccountService) Wait() {
	s.background.Wait()
}

// Login confirms the account exists and returns its profile. The password
// is required but not checked here; clients exchange credentials with the
// identity provider themselves.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (AccountResult, error) {
	res, err := s.login(ctx, in)
	s.metrics.RecordLogin(outcome(err))
	return res, err
}

func (s *AccountService) login(ctx context.Context, in LoginInput) (AccountResult, error) {
	if in.Email == "" || in.Password == "" {
		return AccountResult{}, models.InvalidInput(MsgCredentialsRequired)
	}

	account, err := s.provider.FindAccountByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, identity.ErrAccountNotFound) {
			return AccountResult{}, models.NotFound(MsgUserNotFound)
		}
		var perr *identity.ProviderError
		if errors.As(err, &perr) {
			return AccountResult{}, models.InvalidInput(perr.Message)
		}
		s.log.Error("find account failed", zap.Error(err))
		return AccountResult{}, models.InvalidInput(MsgLookupFailed)
	}

	profile, err := s.profiles.Get(ctx, account.UID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			s.log.Error("account has no profile", zap.String("uid", account.UID))
			return AccountResult{}, models.Internal(MsgProfileMissing, err)
		}
		return AccountResult{}, models.Internal(MsgProfileLoadFailed, err)
	}

	conditions := profile.Conditions
	if conditions == nil {
		conditions = []string{}
	}
	email := account.Email
	if email == "" {
		email = profile.Email
	}

	return AccountResult{UID: account.UID, Email: email, Conditions: conditions}, nil
}

func outcome(err error) string {
	switch models.KindOf(err) {
	case 0:
		if err == nil {
			return metrics.OutcomeSuccess
		}
		return metrics.OutcomeError
	case models.KindInvalidInput:
		return metrics.OutcomeInvalidInput
	case models.KindNotFound:
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}
