package entity

import (
	"time"
)

type EventKind string

const (
	EventPaymentCreated   EventKind = "payment.created"
	EventPaymentUpdated   EventKind = "payment.updated"
	EventPaymentCompleted EventKind = "payment.completed"
	EventPaymentFailed    EventKind = "payment.failed"
	EventBookingCreated   EventKind = "booking.created"
	EventBookingUpdated   EventKind = "booking.updated"
	EventTripConfirmed    EventKind = "trip.confirmed"
	EventPartialRefund    EventKind = "payment.partially_refunded"
)

// BookingConfirmation reports whether this event kind confirms a booking
// and therefore drives reservation creation.
func (k EventKind) BookingConfirmation() bool {
	switch k {
	case EventBookingCreated, EventBookingUpdated, EventTripConfirmed:
		return true
	}
	return false
}

// WebhookEvent is an append-only log row for one received provider
// notification. The payment/order links are nullable: an event may arrive
// before the matching payment exists and is relinked by the orphan repair
// sweep later. Nothing else is ever mutated.
type WebhookEvent struct {
	EventKey   string    `db:"event_key"`
	EventType  string    `db:"event_type"`
	PaymentID  *string   `db:"payment_id"`
	OrderID    *string   `db:"order_id"`
	TripID     *string   `db:"trip_id"`
	ReceivedAt time.Time `db:"received_at"`
}
