package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/yashpagade-yp/user-login/internal/domain"
	"github.com/yashpagade-yp/user-login/internal/event"
	"github.com/yashpagade-yp/user-login/internal/repository"
	apperrors "github.com/yashpagade-yp/user-login/pkg/errors"
	"github.com/yashpagade-yp/user-login/pkg/pagination"
)

// OrderService implements the business logic for order operations.
type OrderService struct {
	orderRepo repository.OrderRepository
	producer  *event.Producer
	logger    *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orderRepo repository.OrderRepository, producer *event.Producer, logger *slog.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		producer:  producer,
		logger:    logger,
	}
}

// CreateOrderInput holds the parameters for placing an order.
type CreateOrderInput struct {
	ProductName     string
	Quantity        int
	UnitPrice       float64
	Items           []string
	ShippingAddress domain.Address
}

// Create places a new order for the account in the booked state. The items
// list defaults to the primary product when not given.
func (s *OrderService) Create(ctx context.Context, accountID string, input CreateOrderInput) (*domain.Order, error) {
	if input.ProductName == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be positive")
	}
	if input.UnitPrice < 0 {
		return nil, apperrors.InvalidInput("unit price must not be negative")
	}
	if input.ShippingAddress.Street == "" || input.ShippingAddress.City == "" {
		return nil, apperrors.InvalidInput("shipping address is required")
	}

	items := input.Items
	if len(items) == 0 {
		items = []string{input.ProductName}
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.New().String(),
		AccountID:       accountID,
		ProductName:     input.ProductName,
		Quantity:        input.Quantity,
		UnitPrice:       input.UnitPrice,
		TotalPrice:      roundCents(input.UnitPrice * float64(input.Quantity)),
		Items:           items,
		ShippingAddress: input.ShippingAddress,
		Status:          domain.OrderBooked,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// Publish creation event (non-blocking on failure).
	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("account_id", accountID),
	)

	return order, nil
}

// Get retrieves an order, enforcing that it belongs to the account.
// An order owned by another account is reported as not found rather than
// forbidden, so order IDs cannot be probed.
func (s *OrderService) Get(ctx context.Context, accountID, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.AccountID != accountID {
		return nil, apperrors.NotFound("order", orderID)
	}
	return order, nil
}

// List returns a page of the account's orders, newest first, optionally
// filtered by status.
func (s *OrderService) List(ctx context.Context, accountID string, status domain.OrderStatus, params pagination.Params) (*pagination.Result[domain.Order], error) {
	if status != "" && !domain.ValidOrderStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown order status %q", status))
	}

	orders, total, err := s.orderRepo.ListByAccountID(ctx, accountID, status, params)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	result := pagination.NewResult(orders, total, params)
	return &result, nil
}

// UpdateStatus moves an order to a new status if the transition is allowed.
func (s *OrderService) UpdateStatus(ctx context.Context, accountID, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown order status %q", status))
	}

	order, err := s.Get(ctx, accountID, orderID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(order.Status, status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("cannot move order from %s to %s", order.Status, status))
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	oldStatus := order.Status
	order.Status = status
	order.UpdatedAt = time.Now().UTC()

	// Publish status change event (non-blocking on failure).
	if err := s.producer.PublishOrderStatusChanged(ctx, order, oldStatus); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", order.ID),
		slog.String("old_status", string(oldStatus)),
		slog.String("new_status", string(status)),
	)

	return order, nil
}

// Cancel cancels the order if it has not already completed.
func (s *OrderService) Cancel(ctx context.Context, accountID, orderID string) (*domain.Order, error) {
	return s.UpdateStatus(ctx, accountID, orderID, domain.OrderCanceled)
}

// Delete removes an order, enforcing the same ownership rule as Get.
func (s *OrderService) Delete(ctx context.Context, accountID, orderID string) error {
	order, err := s.Get(ctx, accountID, orderID)
	if err != nil {
		return err
	}

	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	// Publish deletion event (non-blocking on failure).
	if err := s.producer.PublishOrderDeleted(ctx, order.ID, order.AccountID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.deleted event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order deleted",
		slog.String("order_id", order.ID),
		slog.String("account_id", accountID),
	)

	return nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
