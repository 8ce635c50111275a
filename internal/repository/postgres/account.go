package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yashpagade-yp/user-login/internal/domain"
	"github.com/yashpagade-yp/user-login/internal/repository"
	"github.com/yashpagade-yp/user-login/pkg/database"
	apperrors "github.com/yashpagade-yp/user-login/pkg/errors"
)

const accountColumns = `id, email, password_hash, first_name, last_name, phone, status, otp_code, otp_expires_at, created_at, updated_at`

// AccountRepository implements repository.AccountRepository using PostgreSQL.
type AccountRepository struct {
	db database.DBTX
}

// NewAccountRepository creates a new PostgreSQL-backed account repository.
func NewAccountRepository(db database.DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account into the database.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, first_name, last_name, phone, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		a.ID,
		a.Email,
		a.PasswordHash,
		a.FirstName,
		a.LastName,
		a.Phone,
		a.Status,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("account", "email", a.Email)
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1`

	return r.scanAccount(ctx, query, id)
}

// GetByEmail retrieves an account by email. The comparison is
// case-insensitive so logins are not sensitive to email casing.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE lower(email) = lower($1)`

	return r.scanAccount(ctx, query, email)
}

// UpdateProfile patches profile fields in a single UPDATE so concurrent
// patches to different fields do not overwrite each other.
func (r *AccountRepository) UpdateProfile(ctx context.Context, id string, patch repository.ProfilePatch) (*domain.Account, error) {
	query := `
		UPDATE accounts
		SET first_name = COALESCE($1, first_name),
		    last_name  = COALESCE($2, last_name),
		    phone      = COALESCE($3, phone),
		    status     = COALESCE($4, status),
		    updated_at = $5
		WHERE id = $6
		RETURNING ` + accountColumns

	return r.scanAccount(ctx, query,
		patch.FirstName,
		patch.LastName,
		patch.Phone,
		patch.Status,
		time.Now().UTC(),
		id,
	)
}

// UpdatePassword replaces the stored password hash.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE accounts SET password_hash = $1, updated_at = $2 WHERE id = $3`

	ct, err := r.db.Exec(ctx, query, passwordHash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("account", id)
	}

	return nil
}

// SetOtpChallenge stores a recovery code and its expiry. Both fields are
// written in one statement so they stay consistent.
func (r *AccountRepository) SetOtpChallenge(ctx context.Context, id, code string, expiresAt time.Time) error {
	query := `UPDATE accounts SET otp_code = $1, otp_expires_at = $2, updated_at = $3 WHERE id = $4`

	ct, err := r.db.Exec(ctx, query, code, expiresAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set otp challenge: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("account", id)
	}

	return nil
}

// ClearOtpChallenge removes the stored recovery challenge.
func (r *AccountRepository) ClearOtpChallenge(ctx context.Context, id string) error {
	query := `UPDATE accounts SET otp_code = NULL, otp_expires_at = NULL, updated_at = $1 WHERE id = $2`

	ct, err := r.db.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("clear otp challenge: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("account", id)
	}

	return nil
}

// Delete removes an account from the database by its ID.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM accounts WHERE id = $1`

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("account", id)
	}

	return nil
}

// scanAccount is a helper that executes a query expected to return a single account row.
func (r *AccountRepository) scanAccount(ctx context.Context, query string, args ...any) (*domain.Account, error) {
	var a domain.Account

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.FirstName,
		&a.LastName,
		&a.Phone,
		&a.Status,
		&a.OtpCode,
		&a.OtpExpiresAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	return &a, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
