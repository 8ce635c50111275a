package repository

import (
	"context"
	"time"

	"github.com/yashpagade-yp/user-login/internal/domain"
	"github.com/yashpagade-yp/user-login/pkg/pagination"
)

// AccountRepository defines the interface for account persistence operations.
type AccountRepository interface {
	// Create inserts a new account into the store.
	Create(ctx context.Context, account *domain.Account) error

	// GetByID retrieves an account by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Account, error)

	// GetByEmail retrieves an account by email address. The lookup is
	// case-insensitive.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)

	// UpdateProfile patches the profile fields of an account. Nil fields
	// are left unchanged.
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*domain.Account, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// SetOtpChallenge stores a recovery code and its expiry, replacing any
	// previous challenge.
	SetOtpChallenge(ctx context.Context, id, code string, expiresAt time.Time) error

	// ClearOtpChallenge removes the stored recovery challenge.
	ClearOtpChallenge(ctx context.Context, id string) error

	// Delete removes an account from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// ProfilePatch describes a partial profile update. Nil pointers mean
// "leave unchanged".
type ProfilePatch struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Status    *domain.Status
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil && p.Status == nil
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts a new order into the store.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// ListByAccountID returns a page of orders for the given account,
	// newest first, along with the total count. An empty status means
	// no status filter.
	ListByAccountID(ctx context.Context, accountID string, status domain.OrderStatus, params pagination.Params) ([]domain.Order, int, error)

	// UpdateStatus changes an order's status.
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error

	// Delete removes a single order from the store by its identifier.
	Delete(ctx context.Context, id string) error

	// DeleteByAccountID removes all orders owned by the given account.
	DeleteByAccountID(ctx context.Context, accountID string) error
}
