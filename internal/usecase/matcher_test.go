package usecase

import (
	"context"
	"fmt"
	"testing"

	"surfcamp-booking/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMatch_ByOurOrderID(t *testing.T) {
	_, _, payments, _ := newFakeRepo()
	payments.put(testPayment("PAY-1", "ORD-1", entity.PaymentStatusPending))

	matcher := NewPaymentMatcher(payments, zap.NewNop())

	payment, strategy, found := matcher.Match(context.Background(), ResolvedIDs{
		MetadataOrderID: "ORD-1",
	})

	require.True(t, found)
	assert.Equal(t, "PAY-1", payment.ID)
	assert.Equal(t, StrategyOrderID, strategy)
}

func TestMatch_ByProviderOrderIDColumn(t *testing.T) {
	_, _, payments, _ := newFakeRepo()
	p := testPayment("PAY-2", "ORD-2", entity.PaymentStatusPending)
	providerID := "WT-555"
	p.ProviderOrderID = &providerID
	payments.put(p)

	matcher := NewPaymentMatcher(payments, zap.NewNop())

	payment, strategy, found := matcher.Match(context.Background(), ResolvedIDs{
		OrderID: "WT-555",
	})

	require.True(t, found)
	assert.Equal(t, "PAY-2", payment.ID)
	assert.Equal(t, StrategyProviderOrderID, strategy)
}

func TestMatch_ByTripIDInBag(t *testing.T) {
	_, _, payments, _ := newFakeRepo()
	p := testPayment("PAY-3", "ORD-3", entity.PaymentStatusPending)
	p.ProviderData[entity.BagTripID] = "TRIP-77"
	payments.put(p)

	matcher := NewPaymentMatcher(payments, zap.NewNop())

	payment, strategy, found := matcher.Match(context.Background(), ResolvedIDs{
		TripID: "TRIP-77",
	})

	require.True(t, found)
	assert.Equal(t, "PAY-3", payment.ID)
	assert.Equal(t, StrategyTripID, strategy)
}

func TestMatch_ByBagOrderID(t *testing.T) {
	_, _, payments, _ := newFakeRepo()
	p := testPayment("PAY-4", "ORD-4", entity.PaymentStatusPending)
	p.ProviderData[entity.BagProviderOrderID] = "WT-888"
	payments.put(p)

	matcher := NewPaymentMatcher(payments, zap.NewNop())

	payment, strategy, found := matcher.Match(context.Background(), ResolvedIDs{
		OrderID: "WT-888",
	})

	require.True(t, found)
	assert.Equal(t, "PAY-4", payment.ID)
	assert.Equal(t, StrategyBagContainment, strategy)
}

func TestMatch_ByBagPaymentID(t *testing.T) {
	_, _, payments, _ := newFakeRepo()
	p := testPayment("PAY-4B", "ORD-4B", entity.PaymentStatusPending)
	p.ProviderData[entity.BagProviderPaymentID] = "PM-4B"
	payments.put(p)

	matcher := NewPaymentMatcher(payments, zap.NewNop())

	payment, strategy, found := matcher.Match(context.Background(), ResolvedIDs{
		ProviderPaymentID: "PM-4B",
	})

	require.True(t, found)
	assert.Equal(t, "PAY-4B", payment.ID)
	assert.Equal(t, StrategyBagContainment, strategy)
}

func TestMatch_ByNestedMetadataPaymentID(t *testing.T) {
	_, _, payments, _ := newFakeRepo()
	p := testPayment("PAY-5", "ORD-5", entity.PaymentStatusPending)
	p.ProviderData[entity.BagMetadata] = map[string]any{"payment_id": "PM-123"}
	payments.put(p)

	matcher := NewPaymentMatcher(payments, zap.NewNop())

	payment, strategy, found := matcher.Match(context.Background(), ResolvedIDs{
		MetadataPaymentID: "PM-123",
	})

	require.True(t, found)
	assert.Equal(t, "PAY-5", payment.ID)
	assert.Equal(t, StrategyNestedPaymentID, strategy)
}

func TestMatch_ByNestedProviderPaymentID(t *testing.T) {
	_, _, payments, _ := newFakeRepo()
	p := testPayment("PAY-5B", "ORD-5B", entity.PaymentStatusPending)
	p.ProviderData[entity.BagMetadata] = map[string]any{"payment_id": "PM-456"}
	payments.put(p)

	matcher := NewPaymentMatcher(payments, zap.NewNop())

	// Metadata echo differs and misses; the provider payment id still hits.
	payment, strategy, found := matcher.Match(context.Background(), ResolvedIDs{
		MetadataPaymentID: "PM-OTHER",
		ProviderPaymentID: "PM-456",
	})

	require.True(t, found)
	assert.Equal(t, "PAY-5B", payment.ID)
	assert.Equal(t, StrategyNestedPaymentID, strategy)
}

func TestMatch_StrategyErrorFallsThrough(t *testing.T) {
	_, _, payments, _ := newFakeRepo()
	p := testPayment("PAY-6", "ORD-6", entity.PaymentStatusPending)
	providerID := "WT-999"
	p.ProviderOrderID = &providerID
	payments.put(p)

	payments.findByOrderIDErr = fmt.Errorf("connection reset")

	matcher := NewPaymentMatcher(payments, zap.NewNop())

	payment, strategy, found := matcher.Match(context.Background(), ResolvedIDs{
		MetadataOrderID: "ORD-6",
		OrderID:         "WT-999",
	})

	require.True(t, found)
	assert.Equal(t, "PAY-6", payment.ID)
	assert.Equal(t, StrategyProviderOrderID, strategy)
}

func TestMatch_NothingFound(t *testing.T) {
	_, _, payments, _ := newFakeRepo()

	matcher := NewPaymentMatcher(payments, zap.NewNop())

	payment, strategy, found := matcher.Match(context.Background(), ResolvedIDs{
		OrderID: "UNKNOWN",
		TripID:  "TRIP-GONE",
	})

	assert.False(t, found)
	assert.Nil(t, payment)
	assert.Empty(t, strategy)
}

func TestMatch_FirstHitWins(t *testing.T) {
	_, _, payments, _ := newFakeRepo()

	direct := testPayment("PAY-DIRECT", "ORD-7", entity.PaymentStatusPending)
	payments.put(direct)

	byTrip := testPayment("PAY-TRIP", "ORD-OTHER", entity.PaymentStatusPending)
	byTrip.ProviderData[entity.BagTripID] = "TRIP-7"
	payments.put(byTrip)

	matcher := NewPaymentMatcher(payments, zap.NewNop())

	payment, strategy, found := matcher.Match(context.Background(), ResolvedIDs{
		MetadataOrderID: "ORD-7",
		TripID:          "TRIP-7",
	})

	require.True(t, found)
	assert.Equal(t, "PAY-DIRECT", payment.ID)
	assert.Equal(t, StrategyOrderID, strategy)
}
