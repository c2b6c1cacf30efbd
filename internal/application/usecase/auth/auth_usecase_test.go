package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/careerfolio/adapters/event"
	"github.com/khoahotran/careerfolio/internal/application/service/mocks"
	"github.com/khoahotran/careerfolio/internal/domain/user"
	"github.com/khoahotran/careerfolio/internal/domain/verification"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/auth"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

type userRepoMock struct {
	mock.Mock
	user.Repository
}

func (m *userRepoMock) LoginIDExists(ctx context.Context, loginID string) (bool, error) {
	args := m.Called(ctx, loginID)
	return args.Bool(0), args.Error(1)
}

func (m *userRepoMock) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *userRepoMock) FindCredentialByLoginID(ctx context.Context, loginID string) (*user.Credential, error) {
	args := m.Called(ctx, loginID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.Credential), args.Error(1)
}

func (m *userRepoMock) FindAccountByID(ctx context.Context, userID int64) (*user.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.Account), args.Error(1)
}

func (m *userRepoMock) CreateAccount(ctx context.Context, a user.NewAccount) (int64, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(int64), args.Error(1)
}

type memCodes struct {
	mu      sync.Mutex
	entries map[string]verification.Entry
}

func newMemCodes() *memCodes {
	return &memCodes{entries: map[string]verification.Entry{}}
}

func (s *memCodes) Save(ctx context.Context, email string, e verification.Entry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[email] = e
	return nil
}

func (s *memCodes) Get(ctx context.Context, email string) (*verification.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[email]
	if !ok {
		return nil, apperror.NewNotFound("verification", email)
	}
	return &e, nil
}

func (s *memCodes) MarkVerified(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[email]
	if !ok {
		return apperror.NewNotFound("verification", email)
	}
	e.Verified = true
	s.entries[email] = e
	return nil
}

func (s *memCodes) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, email)
	return nil
}

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	jwtSvc := auth.NewJWTService("login-test", time.Hour)

	repo := new(userRepoMock)
	repo.On("FindCredentialByLoginID", mock.Anything, "kim").Return(&user.Credential{UserID: 9, LoginID: "kim", PasswordHash: hash}, nil)
	repo.On("FindCredentialByLoginID", mock.Anything, "ghost").Return(nil, apperror.NewNotFound("credential", "ghost"))
	repo.On("FindAccountByID", mock.Anything, int64(9)).Return(&user.Account{
		User:     user.User{ID: 9, Name: "Kim", Email: "kim@example.com", Role: auth.RoleAdmin},
		LoginID:  "kim",
		Nickname: "kimmy",
	}, nil)
	uc := NewLoginUseCase(repo, jwtSvc, logger.NewNopLogger())

	t.Run("success", func(t *testing.T) {
		out, err := uc.Execute(context.Background(), LoginInput{LoginID: "kim", Password: "correct-horse"})
		require.NoError(t, err)
		assert.Equal(t, "kim", out.Account.LoginID)

		claims, err := jwtSvc.ValidateToken(out.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(9), claims.UserID)
		assert.Equal(t, auth.RoleAdmin, claims.Role)
		assert.Equal(t, "kimmy", claims.Nickname)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), LoginInput{LoginID: "kim", Password: "nope"})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), LoginInput{LoginID: "ghost", Password: "x"})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), LoginInput{LoginID: " "})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})
}

func TestCheckDuplicate(t *testing.T) {
	repo := new(userRepoMock)
	repo.On("LoginIDExists", mock.Anything, "taken").Return(true, nil)
	uc := NewRegisterUseCase(repo, newMemCodes(), new(mocks.EventPublisher), 5*time.Minute, logger.NewNopLogger())

	exists, err := uc.ExecuteCheckDuplicate(context.Background(), CheckDuplicateInput{Type: DuplicateTypeID, Value: "taken"})
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = uc.ExecuteCheckDuplicate(context.Background(), CheckDuplicateInput{Type: "email", Value: "a@b.c"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestSignupFlow(t *testing.T) {
	const email = "new@example.com"
	repo := new(userRepoMock)
	repo.On("EmailExists", mock.Anything, email).Return(false, nil)
	repo.On("CreateAccount", mock.Anything, mock.MatchedBy(func(a user.NewAccount) bool {
		return a.Email == email && a.LoginID == "newbie" && a.Role == auth.RoleUser &&
			auth.CheckPasswordHash("pw123456", a.PasswordHash)
	})).Return(int64(21), nil)

	published := make(chan event.MailEventPayload, 1)
	publisher := new(mocks.EventPublisher)
	publisher.On("PublishMailEvent", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { published <- args.Get(1).(event.MailEventPayload) }).
		Return(nil)

	codes := newMemCodes()
	uc := NewRegisterUseCase(repo, codes, publisher, 5*time.Minute, logger.NewNopLogger())
	ctx := context.Background()

	signup := SignupInput{Name: "New", Email: email, LoginID: "newbie", Password: "pw123456"}
	_, err := uc.ExecuteSignup(ctx, signup)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput, "signup needs a verified email")

	require.NoError(t, uc.ExecuteSendCode(ctx, SendCodeInput{Email: "  New@Example.com "}))
	var payload event.MailEventPayload
	select {
	case payload = <-published:
	case <-time.After(2 * time.Second):
		t.Fatal("verification mail was not published")
	}
	assert.Equal(t, event.MailKindVerificationCode, payload.Kind)
	assert.Equal(t, email, payload.To)
	assert.Len(t, payload.Code, 6)
	assert.Equal(t, 5, payload.TTLMinutes)

	// generated codes never start with 0
	err = uc.ExecuteVerifyCode(ctx, VerifyCodeInput{Email: email, Code: "000000"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	require.NoError(t, uc.ExecuteVerifyCode(ctx, VerifyCodeInput{Email: email, Code: payload.Code}))

	id, err := uc.ExecuteSignup(ctx, signup)
	require.NoError(t, err)
	assert.Equal(t, int64(21), id)

	_, err = codes.Get(ctx, email)
	assert.ErrorIs(t, err, apperror.ErrNotFound, "entry is removed after signup")
}

func TestSendCode_RegisteredEmail(t *testing.T) {
	repo := new(userRepoMock)
	repo.On("EmailExists", mock.Anything, "used@example.com").Return(true, nil)
	publisher := new(mocks.EventPublisher)
	uc := NewRegisterUseCase(repo, newMemCodes(), publisher, 5*time.Minute, logger.NewNopLogger())

	err := uc.ExecuteSendCode(context.Background(), SendCodeInput{Email: "used@example.com"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	publisher.AssertNotCalled(t, "PublishMailEvent", mock.Anything, mock.Anything)
}

func TestVerifyCode_NotSent(t *testing.T) {
	uc := NewRegisterUseCase(new(userRepoMock), newMemCodes(), new(mocks.EventPublisher), 5*time.Minute, logger.NewNopLogger())

	err := uc.ExecuteVerifyCode(context.Background(), VerifyCodeInput{Email: "x@example.com", Code: "123456"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	err = uc.ExecuteVerifyCode(context.Background(), VerifyCodeInput{Email: "not-an-email", Code: "123456"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}
