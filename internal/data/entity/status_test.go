package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusCanAdvanceTo(t *testing.T) {
	assert.True(t, OrderStatusPending.CanAdvanceTo(OrderStatusPaid))
	assert.True(t, OrderStatusPaid.CanAdvanceTo(OrderStatusCompleted))

	// Never backwards
	assert.False(t, OrderStatusPaid.CanAdvanceTo(OrderStatusBookingCreated))

	// Terminal states never replace each other
	assert.False(t, OrderStatusCancelled.CanAdvanceTo(OrderStatusRefunded))
	assert.False(t, OrderStatusCompleted.CanAdvanceTo(OrderStatusCancelled))
}

func TestPaymentStatusCanAdvanceTo(t *testing.T) {
	assert.True(t, PaymentStatusPending.CanAdvanceTo(PaymentStatusBookingCreated))
	assert.True(t, PaymentStatusBookingCreated.CanAdvanceTo(PaymentStatusCompleted))
	assert.False(t, PaymentStatusCompleted.CanAdvanceTo(PaymentStatusFailed))
	assert.False(t, PaymentStatusCompleted.CanAdvanceTo(PaymentStatusPending))
}

func TestEventKindBookingConfirmation(t *testing.T) {
	assert.True(t, EventBookingCreated.BookingConfirmation())
	assert.True(t, EventBookingUpdated.BookingConfirmation())
	assert.True(t, EventTripConfirmed.BookingConfirmation())
	assert.False(t, EventPaymentCompleted.BookingConfirmation())
	assert.False(t, EventKind("provider.experiment").BookingConfirmation())
}
