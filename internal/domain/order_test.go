package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderAccepted, true},
		{OrderPending, OrderRejected, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderCompleted, false},
		{OrderAccepted, OrderCompleted, true},
		{OrderAccepted, OrderCancelled, false},
		{OrderCompleted, OrderPending, false},
		{OrderRejected, OrderAccepted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.False(t, OrderPending.Terminal())
	assert.False(t, OrderAccepted.Terminal())
	assert.True(t, OrderCompleted.Terminal())
	assert.True(t, OrderRejected.Terminal())
	assert.True(t, OrderCancelled.Terminal())
}

func TestOrder_Transition(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	o := &Order{ID: "ord-1", Status: OrderPending}

	require.NoError(t, o.Transition(OrderAccepted, at))
	assert.Nil(t, o.CompletedAt)

	require.NoError(t, o.Transition(OrderCompleted, at.Add(time.Hour)))
	require.NotNil(t, o.CompletedAt)
	assert.Equal(t, at.Add(time.Hour), *o.CompletedAt)

	err := o.Transition(OrderCancelled, at)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot move from completed to cancelled")
	assert.Equal(t, OrderCompleted, o.Status)
}
