package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"conditions-backend/internal/identity"
	"conditions-backend/internal/metrics"
	"conditions-backend/internal/models"
	"conditions-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreateAccount(ctx context.Context, email, password string) (models.Account, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(models.Account), args.Error(1)
}

func (m *mockProvider) FindAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.Account), args.Error(1)
}

func (m *mockProvider) DeleteAccount(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) Put(ctx context.Context, profile *models.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *mockProfiles) Get(ctx context.Context, uid string) (*models.Profile, error) {
	args := m.Called(ctx, uid)
	profile, _ := args.Get(0).(*models.Profile)
	return profile, args.Error(1)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (n *recordingNotifier) SendWelcome(_ context.Context, email string, _ []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, email)
	return n.err
}

func (n *recordingNotifier) emails() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

type recordingMetrics struct {
	signups []string
	logins  []string
}

func (r *recordingMetrics) RecordSignup(outcome string) { r.signups = append(r.signups, outcome) }
func (r *recordingMetrics) RecordLogin(outcome string) { r.logins = append(r.logins, outcome) }
func (r *recordingMetrics) RecordRequest(string, string, int, time.Duration) {}

type fixture struct {
	provider *mockProvider
	profiles *mockProfiles
	notifier *recordingNotifier
	metrics  *recordingMetrics
	svc      *AccountService
}

func newFixture() *fixture {
	f := &fixture{
		provider: &mockProvider{},
		profiles: &mockProfiles{},
		notifier: &recordingNotifier{},
		metrics:  &recordingMetrics{},
	}
	f.svc = NewAccountService(f.provider, f.profiles, f.notifier, f.metrics, zap.NewNop())
	return f
}

func requireKind(t *testing.T, err error, kind models.ErrorKind, msg string) {
	t.Helper()
	var e *models.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, kind, e.Kind)
	assert.Equal(t, msg, e.Message)
}

func TestSignup_Success(t *testing.T) {
	f := newFixture()
	var order []string
	f.provider.On("CreateAccount", mock.Anything, "a@x.com", "pw1").
		Run(func(mock.Arguments) { order = append(order, "create") }).
		Return(models.Account{UID: "uid-1", Email: "a@x.com"}, nil)
	f.profiles.On("Put", mock.Anything, mock.MatchedBy(func(p *models.Profile) bool {
		return p.UserID == "uid-1" && p.Email == "a@x.com" && assert.ObjectsAreEqual([]string{"ADHD", "other"}, p.Conditions)
	})).
		Run(func(mock.Arguments) { order = append(order, "put") }).
		Return(nil)

	res, err := f.svc.Signup(context.Background(), SignupInput{
		Email: "a@x.com", Password: "pw1", Conditions: []string{"ADHD", "other"},
	})
	require.NoError(t, err)
	assert.Equal(t, AccountResult{UID: "uid-1", Email: "a@x.com", Conditions: []string{"ADHD", "other"}}, res)
	assert.Equal(t, []string{"create", "put"}, order)

	f.svc.Wait()
	assert.Equal(t, []string{"a@x.com"}, f.notifier.emails())
	assert.Equal(t, []string{metrics.OutcomeSuccess}, f.metrics.signups)
	f.provider.AssertExpectations(t)
	f.profiles.AssertExpectations(t)
}

func TestSignup_ValidationFailsWithoutCollaboratorCalls(t *testing.T) {
	tests := []struct {
		name string
		in   SignupInput
		want string
	}{
		{name: "missing email", in: SignupInput{Password: "pw1", Conditions: []string{"ADHD"}}, want: MsgCredentialsRequired},
		{name: "missing password", in: SignupInput{Email: "a@x.com", Conditions: []string{"ADHD"}}, want: MsgCredentialsRequired},
		{name: "credentials checked before conditions", in: SignupInput{Email: "a@x.com"}, want: MsgCredentialsRequired},
		{name: "missing conditions", in: SignupInput{Email: "a@x.com", Password: "pw1"}, want: MsgConditionsRequired},
		{name: "empty conditions", in: SignupInput{Email: "a@x.com", Password: "pw1", Conditions: []string{}}, want: MsgConditionsRequired},
		{name: "unknown tag", in: SignupInput{Email: "a@x.com", Password: "pw1", Conditions: []string{"Telepathy"}}, want: "Invalid conditions: Telepathy"},
		{
			name: "only invalid tags listed",
			in:   SignupInput{Email: "a@x.com", Password: "pw1", Conditions: []string{"Flying", "ADHD", "Telepathy"}},
			want: "Invalid conditions: Flying, Telepathy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.svc.Signup(context.Background(), tt.in)
			requireKind(t, err, models.KindInvalidInput, tt.want)

			f.provider.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything, mock.Anything)
			f.profiles.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
		})
	}
}

func TestSignup_ProviderRejection(t *testing.T) {
	f := newFixture()
	f.provider.On("CreateAccount", mock.Anything, "a@x.com", "pw1").
		Return(models.Account{}, &identity.ProviderError{Message: "The email address is already in use by another account."})

	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "pw1", Conditions: []string{"ADHD"}})
	requireKind(t, err, models.KindInvalidInput, "The email address is already in use by another account.")
	f.profiles.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)

	f.svc.Wait()
	assert.Empty(t, f.notifier.emails())
}

func TestSignup_ProviderFailure(t *testing.T) {
	f := newFixture()
	f.provider.On("CreateAccount", mock.Anything, mock.Anything, mock.Anything).
		Return(models.Account{}, errors.New("connection refused"))

	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "pw1", Conditions: []string{"ADHD"}})
	requireKind(t, err, models.KindInvalidInput, MsgSignupFailed)
}

func TestSignup_ProfileWriteFailureDeletesAccount(t *testing.T) {
	f := newFixture()
	storeErr := errors.New("write concern timeout")
	f.provider.On("CreateAccount", mock.Anything, "a@x.com", "pw1").Return(models.Account{UID: "uid-1", Email: "a@x.com"}, nil)
	f.profiles.On("Put", mock.Anything, mock.Anything).Return(storeErr)
	f.provider.On("DeleteAccount", mock.Anything, "uid-1").Return(nil)

	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "pw1", Conditions: []string{"ADHD"}})
	requireKind(t, err, models.KindInternal, MsgProfileSaveFailed)
	assert.ErrorIs(t, err, storeErr)
	f.provider.AssertCalled(t, "DeleteAccount", mock.Anything, "uid-1")

	f.svc.Wait()
	assert.Empty(t, f.notifier.emails())
}

func TestSignup_CompensationFailureStillReportsSaveError(t *testing.T) {
	f := newFixture()
	f.provider.On("CreateAccount", mock.Anything, mock.Anything, mock.Anything).Return(models.Account{UID: "uid-1", Email: "a@x.com"}, nil)
	f.profiles.On("Put", mock.Anything, mock.Anything).Return(errors.New("write failed"))
	f.provider.On("DeleteAccount", mock.Anything, "uid-1").Return(errors.New("provider down"))

	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "pw1", Conditions: []string{"other"}})
	requireKind(t, err, models.KindInternal, MsgProfileSaveFailed)
	f.provider.AssertExpectations(t)
}

func TestSignup_WelcomeFailureDoesNotFailSignup(t *testing.T) {
	f := newFixture()
	f.notifier.err = errors.New("mail down")
	f.provider.On("CreateAccount", mock.Anything, mock.Anything, mock.Anything).Return(models.Account{UID: "uid-1", Email: "a@x.com"}, nil)
	f.profiles.On("Put", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "pw1", Conditions: []string{"Anxiety"}})
	require.NoError(t, err)
	f.svc.Wait()
	assert.Len(t, f.notifier.emails(), 1)
}

func TestSignup_ResultDoesNotAliasInput(t *testing.T) {
	f := newFixture()
	f.provider.On("CreateAccount", mock.Anything, mock.Anything, mock.Anything).Return(models.Account{UID: "uid-1"}, nil)
	f.profiles.On("Put", mock.Anything, mock.Anything).Return(nil)
	in := SignupInput{Email: "a@x.com", Password: "pw1", Conditions: []string{"ADHD"}}

	res, err := f.svc.Signup(context.Background(), in)
	require.NoError(t, err)
	in.Conditions[0] = "Telepathy"

	assert.Equal(t, []string{"ADHD"}, res.Conditions)
	assert.Equal(t, "a@x.com", res.Email)
}

func TestLogin_Success(t *testing.T) {
	f := newFixture()
	f.provider.On("FindAccountByEmail", mock.Anything, "a@x.com").Return(models.Account{UID: "uid-1", Email: "a@x.com"}, nil)
	f.profiles.On("Get", mock.Anything, "uid-1").Return(&models.Profile{UserID: "uid-1", Email: "a@x.com", Conditions: []string{"Lazy Eyes"}}, nil)

	res, err := f.svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "anything"})
	require.NoError(t, err)
	assert.Equal(t, AccountResult{UID: "uid-1", Email: "a@x.com", Conditions: []string{"Lazy Eyes"}}, res)
}

func TestLogin_MissingFields(t *testing.T) {
	for _, in := range []LoginInput{{Email: "a@x.com"}, {Password: "pw"}, {}} {
		f := newFixture()

		_, err := f.svc.Login(context.Background(), in)
		requireKind(t, err, models.KindInvalidInput, MsgCredentialsRequired)
		f.provider.AssertNotCalled(t, "FindAccountByEmail", mock.Anything, mock.Anything)
	}
}

func TestLogin_UserNotFound(t *testing.T) {
	f := newFixture()
	f.provider.On("FindAccountByEmail", mock.Anything, "missing@x.com").Return(models.Account{}, identity.ErrAccountNotFound)

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "missing@x.com", Password: "pw"})
	requireKind(t, err, models.KindNotFound, MsgUserNotFound)
	f.profiles.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	assert.Equal(t, []string{metrics.OutcomeNotFound}, f.metrics.logins)
}

func TestLogin_ProviderError(t *testing.T) {
	f := newFixture()
	f.provider.On("FindAccountByEmail", mock.Anything, "bad").Return(models.Account{}, &identity.ProviderError{Message: "malformed email string"})

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "bad", Password: "pw"})
	requireKind(t, err, models.KindInvalidInput, "malformed email string")
}

func TestLogin_ProfileMissing(t *testing.T) {
	f := newFixture()
	f.provider.On("FindAccountByEmail", mock.Anything, "a@x.com").Return(models.Account{UID: "uid-1", Email: "a@x.com"}, nil)
	f.profiles.On("Get", mock.Anything, "uid-1").Return(nil, repository.ErrProfileNotFound)

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "pw"})
	requireKind(t, err, models.KindInternal, MsgProfileMissing)
	assert.Equal(t, []string{metrics.OutcomeError}, f.metrics.logins)
}

func TestLogin_ProfileReadError(t *testing.T) {
	f := newFixture()
	f.provider.On("FindAccountByEmail", mock.Anything, "a@x.com").Return(models.Account{UID: "uid-1", Email: "a@x.com"}, nil)
	f.profiles.On("Get", mock.Anything, "uid-1").Return(nil, errors.New("socket closed"))

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "pw"})
	requireKind(t, err, models.KindInternal, MsgProfileLoadFailed)
}

func TestLogin_NilConditionsBecomeEmpty(t *testing.T) {
	f := newFixture()
	f.provider.On("FindAccountByEmail", mock.Anything, "a@x.com").Return(models.Account{UID: "uid-1"}, nil)
	f.profiles.On("Get", mock.Anything, "uid-1").Return(&models.Profile{UserID: "uid-1", Email: "a@x.com"}, nil)

	res, err := f.svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.NotNil(t, res.Conditions)
	assert.Empty(t, res.Conditions)
	assert.Equal(t, "a@x.com", res.Email)
}

func TestConditions_Stable(t *testing.T) {
	f := newFixture()
	first := f.svc.Conditions()

	f.provider.On("FindAccountByEmail", mock.Anything, mock.Anything).Return(models.Account{}, identity.ErrAccountNotFound)
	_, _ = f.svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "pw"})

	assert.Equal(t, first, f.svc.Conditions())
	assert.Len(t, first, 7)
}
