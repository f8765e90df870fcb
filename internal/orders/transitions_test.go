package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dukahub/dukahub-backend/pkg/enums"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from    enums.OrderStatus
		to      enums.OrderStatus
		allowed bool
	}{
		{enums.OrderStatusPending, enums.OrderStatusPaid, true},
		{enums.OrderStatusPending, enums.OrderStatusCancelled, true},
		{enums.OrderStatusPending, enums.OrderStatusDispatched, false},
		{enums.OrderStatusPending, enums.OrderStatusDelivered, false},
		{enums.OrderStatusPaid, enums.OrderStatusDispatched, true},
		{enums.OrderStatusPaid, enums.OrderStatusCancelled, true},
		{enums.OrderStatusPaid, enums.OrderStatusPending, false},
		{enums.OrderStatusDispatched, enums.OrderStatusDelivered, true},
		{enums.OrderStatusDispatched, enums.OrderStatusCancelled, false},
		{enums.OrderStatusDelivered, enums.OrderStatusDispatched, false},
		{enums.OrderStatusDelivered, enums.OrderStatusCancelled, false},
		{enums.OrderStatusCancelled, enums.OrderStatusPending, false},
		{enums.OrderStatusCancelled, enums.OrderStatusPaid, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	assert.Empty(t, AllowedFrom(enums.OrderStatusDelivered))
	assert.Empty(t, AllowedFrom(enums.OrderStatusCancelled))
}

func TestSelfTransitionsDisallowed(t *testing.T) {
	for _, status := range []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusPaid,
		enums.OrderStatusDispatched,
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
	} {
		assert.False(t, CanTransition(status, status), "self transition %s", status)
	}
}
