package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yashpagade-yp/user-login/internal/domain"
	pkgkafka "github.com/yashpagade-yp/user-login/pkg/kafka"
)

// Kafka topic constants for account and order domain events.
const (
	TopicAccountRegistered    = "userlogin.account.registered"
	TopicAccountUpdated       = "userlogin.account.updated"
	TopicAccountPasswordReset = "userlogin.account.password_reset"
	TopicAccountDeleted       = "userlogin.account.deleted"
	TopicOrderCreated         = "userlogin.order.created"
	TopicOrderStatusChanged   = "userlogin.order.status_changed"
	TopicOrderDeleted         = "userlogin.order.deleted"
)

// Aggregate type constants.
const (
	AggregateTypeAccount = "account"
	AggregateTypeOrder   = "order"
)

// Source identifier for events originating from this service.
const Source = "user-login"

// AccountRegisteredData is the payload for an account.registered event.
type AccountRegisteredData struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Status    string `json:"status"`
}

// AccountUpdatedData is the payload for an account.updated event.
type AccountUpdatedData struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Status    string `json:"status"`
}

// AccountPasswordResetData is the payload for an account.password_reset event.
type AccountPasswordResetData struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
}

// AccountDeletedData is the payload for an account.deleted event.
type AccountDeletedData struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
}

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	ID          string   `json:"id"`
	AccountID   string   `json:"account_id"`
	ProductName string   `json:"product_name"`
	Quantity    int      `json:"quantity"`
	TotalPrice  float64  `json:"total_price"`
	Items       []string `json:"items,omitempty"`
	Status      string   `json:"status"`
}

// OrderDeletedData is the payload for an order.deleted event.
type OrderDeletedData struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// Producer publishes account and order domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishAccountRegistered publishes an account.registered event.
func (p *Producer) PublishAccountRegistered(ctx context.Context, account *domain.Account) error {
	data := AccountRegisteredData{
		ID:        account.ID,
		Email:     account.Email,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Status:    string(account.Status),
	}

	return p.publish(ctx, TopicAccountRegistered, account.ID, AggregateTypeAccount, data)
}

// PublishAccountUpdated publishes an account.updated event.
func (p *Producer) PublishAccountUpdated(ctx context.Context, account *domain.Account) error {
	data := AccountUpdatedData{
		ID:        account.ID,
		Email:     account.Email,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Phone:     account.Phone,
		Status:    string(account.Status),
	}

	return p.publish(ctx, TopicAccountUpdated, account.ID, AggregateTypeAccount, data)
}

// PublishAccountPasswordReset publishes an account.password_reset event.
func (p *Producer) PublishAccountPasswordReset(ctx context.Context, accountID, email string) error {
	data := AccountPasswordResetData{
		AccountID: accountID,
		Email:     email,
	}

	return p.publish(ctx, TopicAccountPasswordReset, accountID, AggregateTypeAccount, data)
}

// PublishAccountDeleted publishes an account.deleted event.
func (p *Producer) PublishAccountDeleted(ctx context.Context, accountID, email string) error {
	data := AccountDeletedData{
		AccountID: accountID,
		Email:     email,
	}

	return p.publish(ctx, TopicAccountDeleted, accountID, AggregateTypeAccount, data)
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	data := OrderCreatedData{
		ID:          order.ID,
		AccountID:   order.AccountID,
		ProductName: order.ProductName,
		Quantity:    order.Quantity,
		TotalPrice:  order.TotalPrice,
		Items:       order.Items,
		Status:      string(order.Status),
	}

	return p.publish(ctx, TopicOrderCreated, order.ID, AggregateTypeOrder, data)
}

// PublishOrderDeleted publishes an order.deleted event.
func (p *Producer) PublishOrderDeleted(ctx context.Context, orderID, accountID string) error {
	data := OrderDeletedData{
		ID:        orderID,
		AccountID: accountID,
	}

	return p.publish(ctx, TopicOrderDeleted, orderID, AggregateTypeOrder, data)
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, oldStatus domain.OrderStatus) error {
	data := OrderStatusChangedData{
		ID:        order.ID,
		AccountID: order.AccountID,
		OldStatus: string(oldStatus),
		NewStatus: string(order.Status),
	}

	return p.publish(ctx, TopicOrderStatusChanged, order.ID, AggregateTypeOrder, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published domain event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}
