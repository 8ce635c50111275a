package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashpagade-yp/user-login/internal/domain"
	"github.com/yashpagade-yp/user-login/internal/repository"
	apperrors "github.com/yashpagade-yp/user-login/pkg/errors"
)

func newAccountTestFixture(t *testing.T) (*AccountRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewAccountRepository(mock)
	return repo, mock
}

func sampleAccount() *domain.Account {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Account{
		ID:           "acc-1234",
		Email:        "a@x.com",
		PasswordHash: "hash-abc",
		FirstName:    "Alice",
		LastName:     "Smith",
		Phone:        "+1234567890",
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func accountCols() []string {
	return []string{
		"id", "email", "password_hash", "first_name", "last_name",
		"phone", "status", "otp_code", "otp_expires_at", "created_at", "updated_at",
	}
}

func accountRow(a *domain.Account) *pgxmock.Rows {
	return pgxmock.NewRows(accountCols()).AddRow(
		a.ID, a.Email, a.PasswordHash, a.FirstName, a.LastName,
		a.Phone, a.Status, a.OtpCode, a.OtpExpiresAt, a.CreatedAt, a.UpdatedAt,
	)
}

func TestAccountRepository_Create_Success(t *testing.T) {
	repo, mock := newAccountTestFixture(t)
	defer mock.Close()

	a := sampleAccount()

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(
			a.ID, a.Email, a.PasswordHash, a.FirstName, a.LastName,
			a.Phone, a.Status, a.CreatedAt, a.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), a)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newAccountTestFixture(t)
	defer mock.Close()

	a := sampleAccount()

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(
			a.ID, a.Email, a.PasswordHash, a.FirstName, a.LastName,
			a.Phone, a.Status, a.CreatedAt, a.UpdatedAt,
		).
		WillReturnError(fmt.Errorf("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), a)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists), "expected ErrAlreadyExists, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_GetByID_Success(t *testing.T) {
	repo, mock := newAccountTestFixture(t)
	defer mock.Close()

	a := sampleAccount()

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE id =").
		WithArgs(a.ID).
		WillReturnRows(accountRow(a))

	got, err := repo.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Email, got.Email)
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.Nil(t, got.OtpCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newAccountTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE id =").
		WithArgs("missing").
		WillReturnError(errors.New("no rows in result set"))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_GetByEmail_CaseInsensitive(t *testing.T) {
	repo, mock := newAccountTestFixture(t)
	defer mock.Close()

	a := sampleAccount()

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE lower\(email\) = lower\(\$1\)`).
		WithArgs("A@X.COM").
		WillReturnRows(accountRow(a))

	got, err := repo.GetByEmail(context.Background(), "A@X.COM")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_UpdateProfile_PartialPatch(t *testing.T) {
	repo, mock := newAccountTestFixture(t)
	defer mock.Close()

	a := sampleAccount()
	a.FirstName = "Alicia"
	newFirst := "Alicia"

	mock.ExpectQuery("UPDATE accounts").
		WithArgs(&newFirst, (*string)(nil), (*string)(nil), (*domain.Status)(nil), pgxmock.AnyArg(), a.ID).
		WillReturnRows(accountRow(a))

	got, err := repo.UpdateProfile(context.Background(), a.ID, repository.ProfilePatch{FirstName: &newFirst})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.FirstName)
	assert.Equal(t, "Smith", got.LastName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_UpdateProfile_StatusPatch(t *testing.T) {
	repo, mock := newAccountTestFixture(t)
	defer mock.Close()

	a := sampleAccount()
	a.Status = domain.StatusInactive
	inactive := domain.StatusInactive

	mock.ExpectQuery("UPDATE accounts").
		WithArgs((*string)(nil), (*string)(nil), (*string)(nil), &inactive, pgxmock.AnyArg(), a.ID).
		WillReturnRows(accountRow(a))

	got, err := repo.UpdateProfile(context.Background(), a.ID, repository.ProfilePatch{Status: &inactive})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, got.Status)
	assert.Equal(t, "Alice", got.FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_UpdatePassword_NotFound(t *testing.T) {
	repo, mock := newAccountTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE accounts SET password_hash =").
		WithArgs("new-hash", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdatePassword(context.Background(), "missing", "new-hash")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_SetOtpChallenge(t *testing.T) {
	repo, mock := newAccountTestFixture(t)
	defer mock.Close()

	expiry := time.Now().UTC().Add(5 * time.Minute)

	mock.ExpectExec("UPDATE accounts SET otp_code =").
		WithArgs("1234", expiry, pgxmock.AnyArg(), "acc-1234").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.SetOtpChallenge(context.Background(), "acc-1234", "1234", expiry)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_ClearOtpChallenge(t *testing.T) {
	repo, mock := newAccountTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE accounts SET otp_code = NULL").
		WithArgs(pgxmock.AnyArg(), "acc-1234").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.ClearOtpChallenge(context.Background(), "acc-1234")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newAccountTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM accounts").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
