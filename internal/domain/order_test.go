package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, ValidOrderStatus(OrderBooked))
	assert.True(t, ValidOrderStatus(OrderPending))
	assert.True(t, ValidOrderStatus(OrderCompleted))
	assert.True(t, ValidOrderStatus(OrderCanceled))
	assert.False(t, ValidOrderStatus("shipped"))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderBooked, OrderPending, true},
		{OrderBooked, OrderCanceled, true},
		{OrderBooked, OrderCompleted, false},
		{OrderPending, OrderCompleted, true},
		{OrderPending, OrderCanceled, true},
		{OrderPending, OrderBooked, false},
		{OrderCompleted, OrderCanceled, false},
		{OrderCanceled, OrderPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestOrder_CanCancel(t *testing.T) {
	assert.True(t, (&Order{Status: OrderBooked}).CanCancel())
	assert.True(t, (&Order{Status: OrderPending}).CanCancel())
	assert.False(t, (&Order{Status: OrderCompleted}).CanCancel())
	assert.False(t, (&Order{Status: OrderCanceled}).CanCancel())
}
