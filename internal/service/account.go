package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yashpagade-yp/user-login/internal/auth"
	"github.com/yashpagade-yp/user-login/internal/domain"
	"github.com/yashpagade-yp/user-login/internal/event"
	"github.com/yashpagade-yp/user-login/internal/notifier"
	"github.com/yashpagade-yp/user-login/internal/repository"
	apperrors "github.com/yashpagade-yp/user-login/pkg/errors"
)

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// otpValidity is how long a recovery code stays valid after issue.
const otpValidity = 5 * time.Minute

// RecoveryLimiter throttles password recovery requests per email.
type RecoveryLimiter interface {
	Allow(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// AccountService implements the business logic for account and auth operations.
type AccountService struct {
	accountRepo repository.AccountRepository
	orderRepo   repository.OrderRepository
	hasher      *auth.PasswordHasher
	jwtManager  *auth.JWTManager
	sender      notifier.Sender
	limiter     RecoveryLimiter
	producer    *event.Producer
	logger      *slog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(
	accountRepo repository.AccountRepository,
	orderRepo repository.OrderRepository,
	hasher *auth.PasswordHasher,
	jwtManager *auth.JWTManager,
	sender notifier.Sender,
	limiter RecoveryLimiter,
	producer *event.Producer,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		orderRepo:   orderRepo,
		hasher:      hasher,
		jwtManager:  jwtManager,
		sender:      sender,
		limiter:     limiter,
		producer:    producer,
		logger:      logger,
	}
}

// --- Input types ---

// RegisterInput holds the parameters for creating a new account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// LoginInput holds the parameters for opening a session.
type LoginInput struct {
	Email    string
	Password string
}

// UpdateProfileInput holds the parameters for updating an account's profile.
// Status moves the account through its lifecycle, e.g. self-service
// deactivation to INACTIVE.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Status    *domain.Status
}

// ResetPasswordInput holds the parameters for resetting a password with a
// recovery code.
type ResetPasswordInput struct {
	Email       string
	Otp         string
	NewPassword string
}

// --- Auth operations ---

// Register creates a new account, hashes the password, and opens a session.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*domain.Account, *domain.Session, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:           uuid.New().String(),
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, nil, fmt.Errorf("create account: %w", err)
	}

	session, err := s.openSession(account)
	if err != nil {
		return nil, nil, err
	}

	// Publish registration event (non-blocking on failure).
	if err := s.producer.PublishAccountRegistered(ctx, account); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish account.registered event",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "account registered",
		slog.String("account_id", account.ID),
		slog.String("email", account.Email),
	)

	return account, session, nil
}

// Login authenticates an account with email and password and opens a session.
// An unknown email and a wrong password produce the same error so the
// endpoint does not reveal which emails are registered.
func (s *AccountService) Login(ctx context.Context, input LoginInput) (*domain.Account, *domain.Session, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	account, err := s.accountRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, nil, apperrors.InvalidCredentials()
	}

	if !s.hasher.Verify(account.PasswordHash, input.Password) {
		return nil, nil, apperrors.InvalidCredentials()
	}

	if !account.CanLogin() {
		return nil, nil, apperrors.Unauthorized("account is not active")
	}

	session, err := s.openSession(account)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "account logged in",
		slog.String("account_id", account.ID),
	)

	return account, session, nil
}

// ChangePassword lets an authenticated account holder change their password
// after proving knowledge of the current one.
func (s *AccountService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}

	if !s.hasher.Verify(account.PasswordHash, currentPassword) {
		return apperrors.InvalidCredentials()
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if s.hasher.Verify(account.PasswordHash, newPassword) {
		return apperrors.SamePassword()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.accountRepo.UpdatePassword(ctx, accountID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password changed",
		slog.String("account_id", accountID),
	)

	return nil
}

// --- Password recovery ---

// ForgotPassword issues a recovery code for the account and emails it.
// The error for an unknown email does not echo the address back.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return apperrors.NotFoundGeneric()
	}

	if s.limiter != nil {
		if err := s.limiter.Allow(ctx, account.Email); err != nil {
			return err
		}
	}

	code := auth.GenerateOtp(auth.DefaultOtpLength)
	expiresAt := time.Now().UTC().Add(otpValidity)

	if err := s.accountRepo.SetOtpChallenge(ctx, account.ID, code, expiresAt); err != nil {
		return fmt.Errorf("store otp challenge: %w", err)
	}

	email2, err := notifier.NewOtpEmail(account.Email, account.FirstName, code, otpValidity)
	if err != nil {
		return fmt.Errorf("render otp email: %w", err)
	}

	if err := s.sender.Send(ctx, email2); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "recovery code issued",
		slog.String("account_id", account.ID),
	)

	return nil
}

// VerifyOtp checks a recovery code without consuming it, so a client can
// validate the code before showing the new-password form.
func (s *AccountService) VerifyOtp(ctx context.Context, email, otp string) error {
	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return apperrors.NotFoundGeneric()
	}

	return checkOtp(account, otp, time.Now().UTC())
}

// ResetPasswordWithOtp sets a new password after validating the recovery
// code, then consumes the challenge.
func (s *AccountService) ResetPasswordWithOtp(ctx context.Context, input ResetPasswordInput) error {
	account, err := s.accountRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return apperrors.NotFoundGeneric()
	}

	if err := checkOtp(account, input.Otp, time.Now().UTC()); err != nil {
		return err
	}

	if err := validatePassword(input.NewPassword); err != nil {
		return err
	}
	if s.hasher.Verify(account.PasswordHash, input.NewPassword) {
		return apperrors.SamePassword()
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.accountRepo.UpdatePassword(ctx, account.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.accountRepo.ClearOtpChallenge(ctx, account.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear otp challenge",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, account.Email); err != nil {
			s.logger.WarnContext(ctx, "failed to reset recovery limiter",
				slog.String("account_id", account.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	// Publish password reset event (non-blocking on failure).
	if err := s.producer.PublishAccountPasswordReset(ctx, account.ID, account.Email); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish account.password_reset event",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset with recovery code",
		slog.String("account_id", account.ID),
	)

	return nil
}

// --- Profile operations ---

// GetProfile retrieves the account for the given ID.
func (s *AccountService) GetProfile(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

// UpdateProfile patches the account's profile fields, including the
// lifecycle status.
func (s *AccountService) UpdateProfile(ctx context.Context, accountID string, input UpdateProfileInput) (*domain.Account, error) {
	if input.Status != nil && !domain.ValidStatus(*input.Status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown account status %q", *input.Status))
	}

	patch := repository.ProfilePatch{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Status:    input.Status,
	}
	if patch.Empty() {
		return nil, apperrors.InvalidInput("no fields to update")
	}

	account, err := s.accountRepo.UpdateProfile(ctx, accountID, patch)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	// Publish update event (non-blocking on failure).
	if err := s.producer.PublishAccountUpdated(ctx, account); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish account.updated event",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "profile updated",
		slog.String("account_id", account.ID),
	)

	return account, nil
}

// DeleteAccount removes the account and its orders.
func (s *AccountService) DeleteAccount(ctx context.Context, accountID string) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}

	if err := s.orderRepo.DeleteByAccountID(ctx, accountID); err != nil {
		return fmt.Errorf("delete account orders: %w", err)
	}

	if err := s.accountRepo.Delete(ctx, accountID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	// Publish deletion event (non-blocking on failure).
	if err := s.producer.PublishAccountDeleted(ctx, account.ID, account.Email); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish account.deleted event",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "account deleted",
		slog.String("account_id", account.ID),
	)

	return nil
}

// --- Helpers ---

func (s *AccountService) openSession(account *domain.Account) (*domain.Session, error) {
	token, expiresAt, err := s.jwtManager.Issue(account.ID, account.Email, string(account.Status))
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	return &domain.Session{Token: token, ExpiresAt: expiresAt}, nil
}

// checkOtp validates a submitted code against the stored challenge.
// A code checked exactly at its expiry instant is still valid.
func checkOtp(account *domain.Account, otp string, now time.Time) error {
	if !account.HasOtpChallenge() {
		return apperrors.InvalidOtp()
	}
	if account.OtpExpired(now) {
		return apperrors.OtpExpired()
	}
	if *account.OtpCode != otp {
		return apperrors.InvalidOtp()
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.WeakPassword(minPasswordLength)
	}
	return nil
}
