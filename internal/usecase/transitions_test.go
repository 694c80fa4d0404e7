package usecase

import (
	"context"
	"testing"

	"surfcamp-booking/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestApply_PaymentCompletedPromotesBoth(t *testing.T) {
	repo, orders, payments, _ := newFakeRepo()
	orders.put(testOrder("ORD-1", entity.OrderStatusPending))
	payments.put(testPayment("PAY-1", "ORD-1", entity.PaymentStatusPending))

	engine := NewTransitionEngine(repo, zap.NewNop())

	outcome, err := engine.Apply(context.Background(), entity.EventPaymentCompleted,
		payments.get("PAY-1"), orders.get("ORD-1"), ResolvedIDs{})

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusCompleted, outcome.PaymentStatus)
	assert.Equal(t, entity.OrderStatusPaid, outcome.OrderStatus)
	assert.Equal(t, entity.PaymentStatusCompleted, payments.get("PAY-1").Status)
	assert.Equal(t, entity.OrderStatusPaid, orders.get("ORD-1").Status)
}

func TestApply_NeverMovesBackwards(t *testing.T) {
	repo, orders, payments, _ := newFakeRepo()
	orders.put(testOrder("ORD-2", entity.OrderStatusPaid))
	payments.put(testPayment("PAY-2", "ORD-2", entity.PaymentStatusCompleted))

	engine := NewTransitionEngine(repo, zap.NewNop())

	// A late booking_created event must not demote a settled payment.
	outcome, err := engine.Apply(context.Background(), entity.EventBookingCreated,
		payments.get("PAY-2"), orders.get("ORD-2"), ResolvedIDs{})

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusCompleted, outcome.PaymentStatus)
	assert.Equal(t, entity.OrderStatusPaid, outcome.OrderStatus)
	assert.Equal(t, entity.PaymentStatusCompleted, payments.get("PAY-2").Status)
	assert.Equal(t, entity.OrderStatusPaid, orders.get("ORD-2").Status)
}

func TestApply_ProviderStatusVocabulary(t *testing.T) {
	cases := []struct {
		providerStatus string
		wantPayment    entity.PaymentStatus
		wantOrder      entity.OrderStatus
	}{
		{"processed", entity.PaymentStatusCompleted, entity.OrderStatusPaid},
		{"failed", entity.PaymentStatusFailed, entity.OrderStatusCancelled},
		{"refunded", entity.PaymentStatusPending, entity.OrderStatusRefunded},
		{"something_new", entity.PaymentStatusPending, entity.OrderStatusPending},
	}

	for _, tc := range cases {
		t.Run(tc.providerStatus, func(t *testing.T) {
			repo, orders, payments, _ := newFakeRepo()
			orders.put(testOrder("ORD-3", entity.OrderStatusPending))
			payments.put(testPayment("PAY-3", "ORD-3", entity.PaymentStatusPending))

			engine := NewTransitionEngine(repo, zap.NewNop())

			outcome, err := engine.Apply(context.Background(), entity.EventPaymentUpdated,
				payments.get("PAY-3"), orders.get("ORD-3"),
				ResolvedIDs{Status: tc.providerStatus})

			require.NoError(t, err)
			assert.Equal(t, tc.wantPayment, outcome.PaymentStatus)
			assert.Equal(t, tc.wantOrder, outcome.OrderStatus)
		})
	}
}

func TestApply_BookingConfirmationNeedsReservation(t *testing.T) {
	repo, orders, payments, _ := newFakeRepo()
	orders.put(testOrder("ORD-4", entity.OrderStatusPending))
	payments.put(testPayment("PAY-4", "ORD-4", entity.PaymentStatusPending))

	engine := NewTransitionEngine(repo, zap.NewNop())

	outcome, err := engine.Apply(context.Background(), entity.EventBookingCreated,
		payments.get("PAY-4"), orders.get("ORD-4"), ResolvedIDs{})

	require.NoError(t, err)
	assert.True(t, outcome.NeedsReservation)
	assert.Equal(t, entity.PaymentStatusBookingCreated, outcome.PaymentStatus)
	assert.Equal(t, entity.OrderStatusBookingCreated, outcome.OrderStatus)
}

func TestApply_CommittedReservationSkipsReservation(t *testing.T) {
	repo, orders, payments, _ := newFakeRepo()
	order := testOrder("ORD-5", entity.OrderStatusCompleted)
	resID := "RES-42"
	order.ReservationRef = &resID
	orders.put(order)
	payments.put(testPayment("PAY-5", "ORD-5", entity.PaymentStatusCompleted))

	engine := NewTransitionEngine(repo, zap.NewNop())

	outcome, err := engine.Apply(context.Background(), entity.EventTripConfirmed,
		payments.get("PAY-5"), orders.get("ORD-5"), ResolvedIDs{})

	require.NoError(t, err)
	assert.False(t, outcome.NeedsReservation)
}

func TestApply_MergesIdentifiersWithoutOverwrite(t *testing.T) {
	repo, orders, payments, _ := newFakeRepo()
	orders.put(testOrder("ORD-6", entity.OrderStatusPending))
	p := testPayment("PAY-6", "ORD-6", entity.PaymentStatusPending)
	p.ProviderData[entity.BagTripID] = "TRIP-ORIGINAL"
	payments.put(p)

	engine := NewTransitionEngine(repo, zap.NewNop())

	_, err := engine.Apply(context.Background(), entity.EventPaymentCreated,
		payments.get("PAY-6"), orders.get("ORD-6"),
		ResolvedIDs{TripID: "TRIP-LATE", PaymentURL: "https://pay.example.com/y"})

	require.NoError(t, err)

	stored := payments.get("PAY-6")
	assert.Equal(t, "TRIP-ORIGINAL", stored.BagString(entity.BagTripID))
	assert.Equal(t, "https://pay.example.com/y", stored.BagString(entity.BagPaymentURL))
}

func TestApply_BackfillsProviderOrderIDOnce(t *testing.T) {
	repo, orders, payments, _ := newFakeRepo()
	orders.put(testOrder("ORD-7", entity.OrderStatusPending))
	payments.put(testPayment("PAY-7", "ORD-7", entity.PaymentStatusPending))

	engine := NewTransitionEngine(repo, zap.NewNop())

	_, err := engine.Apply(context.Background(), entity.EventPaymentCreated,
		payments.get("PAY-7"), orders.get("ORD-7"), ResolvedIDs{OrderID: "WT-1"})
	require.NoError(t, err)

	_, err = engine.Apply(context.Background(), entity.EventPaymentUpdated,
		payments.get("PAY-7"), orders.get("ORD-7"), ResolvedIDs{OrderID: "WT-2"})
	require.NoError(t, err)

	stored := payments.get("PAY-7")
	require.NotNil(t, stored.ProviderOrderID)
	assert.Equal(t, "WT-1", *stored.ProviderOrderID)
}

func TestApply_UnknownEventKindRecordsOnly(t *testing.T) {
	repo, orders, payments, _ := newFakeRepo()
	orders.put(testOrder("ORD-8", entity.OrderStatusPending))
	payments.put(testPayment("PAY-8", "ORD-8", entity.PaymentStatusPending))

	engine := NewTransitionEngine(repo, zap.NewNop())

	outcome, err := engine.Apply(context.Background(), entity.EventKind("provider.experiment"),
		payments.get("PAY-8"), orders.get("ORD-8"), ResolvedIDs{TripID: "TRIP-8"})

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPending, outcome.PaymentStatus)
	assert.Equal(t, entity.OrderStatusPending, outcome.OrderStatus)
	assert.False(t, outcome.NeedsReservation)
	assert.Equal(t, "TRIP-8", payments.get("PAY-8").BagString(entity.BagTripID))
}
