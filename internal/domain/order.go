package domain

import (
	"time"
)

// OrderStatus represents the state of an order.
type OrderStatus string

const (
	OrderBooked    OrderStatus = "booked"
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCanceled  OrderStatus = "canceled"
)

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderBooked, OrderPending, OrderCompleted, OrderCanceled:
		return true
	}
	return false
}

// orderTransitions lists the allowed status transitions. Completed and
// canceled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderBooked:  {OrderPending, OrderCanceled},
	OrderPending: {OrderCompleted, OrderCanceled},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Address is the shipping destination attached to an order.
type Address struct {
	Street     string `json:"street_address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country,omitempty"`
}

// Order represents a purchase record owned by an account. ProductName is
// the primary item; Items lists all item names on the order.
type Order struct {
	ID              string      `json:"id"`
	AccountID       string      `json:"account_id"`
	ProductName     string      `json:"product_name"`
	Quantity        int         `json:"quantity"`
	UnitPrice       float64     `json:"unit_price"`
	TotalPrice      float64     `json:"total_price"`
	Items           []string    `json:"items"`
	ShippingAddress Address     `json:"shipping_address"`
	Status          OrderStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// CanCancel reports whether the order may still be canceled.
func (o *Order) CanCancel() bool {
	return CanTransition(o.Status, OrderCanceled)
}
