package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yashpagade-yp/user-login/internal/domain"
	"github.com/yashpagade-yp/user-login/pkg/database"
	apperrors "github.com/yashpagade-yp/user-login/pkg/errors"
	"github.com/yashpagade-yp/user-login/pkg/pagination"
)

const orderColumns = `id, account_id, product_name, quantity, unit_price, total_price, items, shipping_address, status, created_at, updated_at`

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	db database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(db database.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts a new order into the database. The items list and the
// shipping address are stored as JSONB columns.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	addressJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshal shipping address: %w", err)
	}

	query := `
		INSERT INTO orders (id, account_id, product_name, quantity, unit_price, total_price, items, shipping_address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.db.Exec(ctx, query,
		o.ID,
		o.AccountID,
		o.ProductName,
		o.Quantity,
		o.UnitPrice,
		o.TotalPrice,
		itemsJSON,
		addressJSON,
		o.Status,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

// GetByID retrieves an order by its ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1`

	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return o, nil
}

// scanOrder reads one order row, decoding the JSONB items and shipping
// address columns.
func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o           domain.Order
		itemsJSON   []byte
		addressJSON []byte
	)
	err := row.Scan(
		&o.ID,
		&o.AccountID,
		&o.ProductName,
		&o.Quantity,
		&o.UnitPrice,
		&o.TotalPrice,
		&itemsJSON,
		&addressJSON,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal order items: %w", err)
		}
	}
	if o.Items == nil {
		o.Items = []string{}
	}
	if len(addressJSON) > 0 {
		if err := json.Unmarshal(addressJSON, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("unmarshal shipping address: %w", err)
		}
	}

	return &o, nil
}

// ListByAccountID returns a page of orders for the account, newest first,
// with the total count for pagination. An empty status disables the filter.
func (r *OrderRepository) ListByAccountID(ctx context.Context, accountID string, status domain.OrderStatus, params pagination.Params) ([]domain.Order, int, error) {
	countQuery := `SELECT COUNT(*) FROM orders WHERE account_id = $1`
	countArgs := []any{accountID}
	if status != "" {
		countQuery += ` AND status = $2`
		countArgs = append(countArgs, status)
	}

	var total int
	err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE account_id = $1`
	args := []any{accountID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += fmt.Sprintf(`
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, params.PerPage, params.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	if orders == nil {
		orders = []domain.Order{}
	}

	return orders, total, nil
}

// UpdateStatus changes an order's status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`

	ct, err := r.db.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// Delete removes a single order from the database by its ID.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// DeleteByAccountID removes all orders owned by the account. Used when the
// account itself is deleted.
func (r *OrderRepository) DeleteByAccountID(ctx context.Context, accountID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM orders WHERE account_id = $1`, accountID)
	if err != nil {
		return fmt.Errorf("delete orders by account: %w", err)
	}

	return nil
}
