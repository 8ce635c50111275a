package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yashpagade-yp/user-login/internal/auth"
	"github.com/yashpagade-yp/user-login/internal/domain"
	"github.com/yashpagade-yp/user-login/internal/event"
	"github.com/yashpagade-yp/user-login/internal/notifier"
	"github.com/yashpagade-yp/user-login/internal/repository"
	apperrors "github.com/yashpagade-yp/user-login/pkg/errors"
	pkgkafka "github.com/yashpagade-yp/user-login/pkg/kafka"
	"github.com/yashpagade-yp/user-login/pkg/pagination"
)

// --- Mock Account Repository ---

type mockAccountRepository struct {
	mock.Mock
}

func (m *mockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockAccountRepository) UpdateProfile(ctx context.Context, id string, patch repository.ProfilePatch) (*domain.Account, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockAccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *mockAccountRepository) SetOtpChallenge(ctx context.Context, id, code string, expiresAt time.Time) error {
	args := m.Called(ctx, id, code, expiresAt)
	return args.Error(0)
}

func (m *mockAccountRepository) ClearOtpChallenge(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAccountRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Order Repository ---

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListByAccountID(ctx context.Context, accountID string, status domain.OrderStatus, params pagination.Params) ([]domain.Order, int, error) {
	args := m.Called(ctx, accountID, status, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockOrderRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOrderRepository) DeleteByAccountID(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

// --- Mock Sender ---

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Name() string { return "mock" }

func (m *mockSender) Send(ctx context.Context, email *notifier.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// --- Mock Recovery Limiter ---

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Allow(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *mockLimiter) Reset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// --- Fixtures ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEventProducer returns a producer wired to an unreachable broker.
// Publish failures are logged and never fail the operation under test.
func newTestEventProducer() *event.Producer {
	logger := testLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func newTestAccountService(t *testing.T) (*AccountService, *mockAccountRepository, *mockOrderRepository, *mockSender, *mockLimiter) {
	t.Helper()
	accountRepo := new(mockAccountRepository)
	orderRepo := new(mockOrderRepository)
	sender := new(mockSender)
	limiter := new(mockLimiter)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	jwtManager := auth.NewJWTManager("test-secret-at-least-32-chars-long!!", time.Hour)
	svc := NewAccountService(accountRepo, orderRepo, hasher, jwtManager, sender, limiter, newTestEventProducer(), testLogger())
	return svc, accountRepo, orderRepo, sender, limiter
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func activeAccount(t *testing.T) *domain.Account {
	t.Helper()
	now := time.Now().UTC()
	return &domain.Account{
		ID:           "acc-1",
		Email:        "a@x.com",
		PasswordHash: hashFor(t, "pw12345678"),
		FirstName:    "Alice",
		LastName:     "Smith",
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	accountRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Account) bool {
		return a.Email == "a@x.com" && a.Status == domain.StatusActive && a.PasswordHash != "pw12345678"
	})).Return(nil)

	account, session, err := svc.Register(context.Background(), RegisterInput{
		Email:     "a@x.com",
		Password:  "pw12345678",
		FirstName: "Alice",
		LastName:  "Smith",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, account.Status)
	assert.NotEmpty(t, session.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), session.ExpiresAt, 5*time.Second)
	accountRepo.AssertExpectations(t)
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _, _, _, _ := newTestAccountService(t)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "a@x.com",
		Password: "short",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrWeakPassword))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	accountRepo.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.AlreadyExists("account", "email", "a@x.com"))

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "a@x.com",
		Password: "pw12345678",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists))
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	accountRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(activeAccount(t), nil)

	account, session, err := svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "pw12345678"})
	require.NoError(t, err)
	assert.Equal(t, "acc-1", account.ID)
	assert.NotEmpty(t, session.Token)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	accountRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(activeAccount(t), nil)

	_, _, err := svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "wrong-password"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))
}

func TestLogin_UnknownEmail_SameErrorAsWrongPassword(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	accountRepo.On("GetByEmail", mock.Anything, "ghost@x.com").Return(nil, apperrors.ErrNotFound)
	accountRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(activeAccount(t), nil)

	_, _, errUnknown := svc.Login(context.Background(), LoginInput{Email: "ghost@x.com", Password: "pw12345678"})
	_, _, errWrongPw := svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "wrong-password"})

	require.Error(t, errUnknown)
	require.Error(t, errWrongPw)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

func TestLogin_BlockedAccount(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	account := activeAccount(t)
	account.Status = domain.StatusBlocked
	accountRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(account, nil)

	_, _, err := svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "pw12345678"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

// --- ChangePassword ---

func TestChangePassword_Success(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	accountRepo.On("GetByID", mock.Anything, "acc-1").Return(activeAccount(t), nil)
	accountRepo.On("UpdatePassword", mock.Anything, "acc-1", mock.AnythingOfType("string")).Return(nil)

	err := svc.ChangePassword(context.Background(), "acc-1", "pw12345678", "newpw12345")
	assert.NoError(t, err)
	accountRepo.AssertExpectations(t)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	accountRepo.On("GetByID", mock.Anything, "acc-1").Return(activeAccount(t), nil)

	err := svc.ChangePassword(context.Background(), "acc-1", "wrong-password", "newpw12345")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))
}

func TestChangePassword_SameAsOld(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	accountRepo.On("GetByID", mock.Anything, "acc-1").Return(activeAccount(t), nil)

	err := svc.ChangePassword(context.Background(), "acc-1", "pw12345678", "pw12345678")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrSamePassword))
}

// --- ForgotPassword ---

func TestForgotPassword_Success(t *testing.T) {
	svc, accountRepo, _, sender, limiter := newTestAccountService(t)

	accountRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(activeAccount(t), nil)
	limiter.On("Allow", mock.Anything, "a@x.com").Return(nil)

	var storedCode string
	accountRepo.On("SetOtpChallenge", mock.Anything, "acc-1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			storedCode = args.String(2)
			expiresAt := args.Get(3).(time.Time)
			assert.WithinDuration(t, time.Now().UTC().Add(5*time.Minute), expiresAt, 5*time.Second)
		}).Return(nil)

	sender.On("Send", mock.Anything, mock.MatchedBy(func(e *notifier.Email) bool {
		return e.To == "a@x.com"
	})).Return(nil)

	err := svc.ForgotPassword(context.Background(), "a@x.com")
	require.NoError(t, err)

	assert.Len(t, storedCode, 4)
	sentEmail := sender.Calls[0].Arguments.Get(1).(*notifier.Email)
	assert.Contains(t, sentEmail.TextBody, storedCode)
	accountRepo.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestForgotPassword_UnknownEmail_DoesNotSend(t *testing.T) {
	svc, accountRepo, _, sender, _ := newTestAccountService(t)

	accountRepo.On("GetByEmail", mock.Anything, "ghost@x.com").Return(nil, apperrors.ErrNotFound)

	err := svc.ForgotPassword(context.Background(), "ghost@x.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	// The error message must not echo the submitted address.
	assert.NotContains(t, err.Error(), "ghost@x.com")
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestForgotPassword_RateLimited(t *testing.T) {
	svc, accountRepo, _, sender, limiter := newTestAccountService(t)

	accountRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(activeAccount(t), nil)
	limiter.On("Allow", mock.Anything, "a@x.com").Return(apperrors.RateLimited("too many recovery requests, try again later"))

	err := svc.ForgotPassword(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrRateLimited))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestForgotPassword_RelayDown(t *testing.T) {
	svc, accountRepo, _, sender, limiter := newTestAccountService(t)

	accountRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(activeAccount(t), nil)
	limiter.On("Allow", mock.Anything, "a@x.com").Return(nil)
	accountRepo.On("SetOtpChallenge", mock.Anything, "acc-1", mock.Anything, mock.Anything).Return(nil)
	sender.On("Send", mock.Anything, mock.Anything).Return(apperrors.Dependency(errors.New("connection refused")))

	err := svc.ForgotPassword(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDependency))
}

// --- VerifyOtp ---

func accountWithOtp(t *testing.T, code string, expiresAt time.Time) *domain.Account {
	t.Helper()
	a := activeAccount(t)
	a.OtpCode = &code
	a.OtpExpiresAt = &expiresAt
	return a
}

func TestVerifyOtp_Success(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	a := accountWithOtp(t, "1234", time.Now().UTC().Add(5*time.Minute))
	accountRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(a, nil)

	assert.NoError(t, svc.VerifyOtp(context.Background(), "a@x.com", "1234"))
}

func TestVerifyOtp_WrongCode(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	a := accountWithOtp(t, "1234", time.Now().UTC().Add(5*time.Minute))
	accountRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(a, nil)

	err := svc.VerifyOtp(context.Background(), "a@x.com", "4321")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidOtp))
}

func TestVerifyOtp_Expired(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	a := accountWithOtp(t, "1234", time.Now().UTC().Add(-time.Minute))
	accountRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(a, nil)

	err := svc.VerifyOtp(context.Background(), "a@x.com", "1234")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrOtpExpired))
}

func TestVerifyOtp_NoChallenge(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	accountRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(activeAccount(t), nil)

	err := svc.VerifyOtp(context.Background(), "a@x.com", "1234")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidOtp))
}

func TestVerifyOtp_DoesNotConsumeChallenge(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	a := accountWithOtp(t, "1234", time.Now().UTC().Add(5*time.Minute))
	accountRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(a, nil)

	require.NoError(t, svc.VerifyOtp(context.Background(), "a@x.com", "1234"))
	require.NoError(t, svc.VerifyOtp(context.Background(), "a@x.com", "1234"))
	accountRepo.AssertNotCalled(t, "ClearOtpChallenge", mock.Anything, mock.Anything)
}

// --- ResetPasswordWithOtp ---

func TestResetPasswordWithOtp_Success(t *testing.T) {
	svc, accountRepo, _, _, limiter := newTestAccountService(t)

	a := accountWithOtp(t, "1234", time.Now().UTC().Add(5*time.Minute))
	accountRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(a, nil)
	accountRepo.On("UpdatePassword", mock.Anything, "acc-1", mock.AnythingOfType("string")).Return(nil)
	accountRepo.On("ClearOtpChallenge", mock.Anything, "acc-1").Return(nil)
	limiter.On("Reset", mock.Anything, "a@x.com").Return(nil)

	err := svc.ResetPasswordWithOtp(context.Background(), ResetPasswordInput{
		Email:       "a@x.com",
		Otp:         "1234",
		NewPassword: "newpw12345",
	})
	require.NoError(t, err)
	accountRepo.AssertExpectations(t)
	limiter.AssertExpectations(t)
}

func TestResetPasswordWithOtp_WrongCode(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	a := accountWithOtp(t, "1234", time.Now().UTC().Add(5*time.Minute))
	accountRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(a, nil)

	err := svc.ResetPasswordWithOtp(context.Background(), ResetPasswordInput{
		Email:       "a@x.com",
		Otp:         "0000",
		NewPassword: "newpw12345",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidOtp))
	accountRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPasswordWithOtp_SameAsOld(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	a := accountWithOtp(t, "1234", time.Now().UTC().Add(5*time.Minute))
	accountRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(a, nil)

	err := svc.ResetPasswordWithOtp(context.Background(), ResetPasswordInput{
		Email:       "a@x.com",
		Otp:         "1234",
		NewPassword: "pw12345678",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrSamePassword))
}

// --- Profile ---

func TestGetProfile_Success(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	accountRepo.On("GetByID", mock.Anything, "acc-1").Return(activeAccount(t), nil)

	account, err := svc.GetProfile(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", account.Email)
}

func TestUpdateProfile_Success(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	newFirst := "Alicia"
	updated := activeAccount(t)
	updated.FirstName = "Alicia"

	accountRepo.On("UpdateProfile", mock.Anything, "acc-1", repository.ProfilePatch{FirstName: &newFirst}).
		Return(updated, nil)

	account, err := svc.UpdateProfile(context.Background(), "acc-1", UpdateProfileInput{FirstName: &newFirst})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", account.FirstName)
}

func TestUpdateProfile_Status(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	inactive := domain.StatusInactive
	updated := activeAccount(t)
	updated.Status = domain.StatusInactive

	accountRepo.On("UpdateProfile", mock.Anything, "acc-1", repository.ProfilePatch{Status: &inactive}).
		Return(updated, nil)

	account, err := svc.UpdateProfile(context.Background(), "acc-1", UpdateProfileInput{Status: &inactive})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, account.Status)
}

func TestUpdateProfile_UnknownStatus(t *testing.T) {
	svc, accountRepo, _, _, _ := newTestAccountService(t)

	bogus := domain.Status("ARCHIVED")
	_, err := svc.UpdateProfile(context.Background(), "acc-1", UpdateProfileInput{Status: &bogus})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	accountRepo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateProfile_EmptyPatch(t *testing.T) {
	svc, _, _, _, _ := newTestAccountService(t)

	_, err := svc.UpdateProfile(context.Background(), "acc-1", UpdateProfileInput{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

// --- DeleteAccount ---

func TestDeleteAccount_Success(t *testing.T) {
	svc, accountRepo, orderRepo, _, _ := newTestAccountService(t)

	accountRepo.On("GetByID", mock.Anything, "acc-1").Return(activeAccount(t), nil)
	orderRepo.On("DeleteByAccountID", mock.Anything, "acc-1").Return(nil)
	accountRepo.On("Delete", mock.Anything, "acc-1").Return(nil)

	err := svc.DeleteAccount(context.Background(), "acc-1")
	assert.NoError(t, err)
	accountRepo.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
}

func TestDeleteAccount_NotFound(t *testing.T) {
	svc, accountRepo, orderRepo, _, _ := newTestAccountService(t)

	accountRepo.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound)

	err := svc.DeleteAccount(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	orderRepo.AssertNotCalled(t, "DeleteByAccountID", mock.Anything, mock.Anything)
}
