package usecase

import (
	"context"
	"fmt"

	"surfcamp-booking/internal/data/entity"
	"surfcamp-booking/internal/data/repository"

	"go.uber.org/zap"
)

// Match strategy names, logged and returned so operators can see which rung
// of the cascade found the payment.
const (
	StrategyOrderID         = "order_id"
	StrategyProviderOrderID = "provider_order_id"
	StrategyTripID          = "trip_id"
	StrategyBagContainment  = "bag_containment"
	StrategyNestedPaymentID = "nested_payment_id"
)

// PaymentMatcher locates the payment a webhook event refers to. The cascade
// runs strategies from cheapest and most precise to broadest; the first hit
// wins and a strategy error falls through to the next one.
type PaymentMatcher struct {
	payments repository.PaymentRepository
	log      *zap.Logger
}

func NewPaymentMatcher(payments repository.PaymentRepository, log *zap.Logger) *PaymentMatcher {
	return &PaymentMatcher{
		payments: payments,
		log:      log.With(zap.String("component", "matcher")),
	}
}

// Match returns the located payment, the strategy that found it, and whether
// anything was found at all.
func (m *PaymentMatcher) Match(ctx context.Context, ids ResolvedIDs) (*entity.Payment, string, bool) {
	type strategy struct {
		name string
		run  func(ctx context.Context) (*entity.Payment, error)
	}

	strategies := []strategy{
		{StrategyOrderID, func(ctx context.Context) (*entity.Payment, error) {
			id := ids.ActualOrderID()
			if id == "" {
				return nil, nil
			}
			return m.payments.FindByOrderID(ctx, id)
		}},
		{StrategyProviderOrderID, func(ctx context.Context) (*entity.Payment, error) {
			if ids.OrderID == "" {
				return nil, nil
			}
			return m.payments.FindByProviderOrderID(ctx, ids.OrderID)
		}},
		{StrategyTripID, func(ctx context.Context) (*entity.Payment, error) {
			if ids.TripID == "" {
				return nil, nil
			}
			return m.payments.FindByBagValue(ctx, entity.BagTripID, ids.TripID)
		}},
		{StrategyBagContainment, func(ctx context.Context) (*entity.Payment, error) {
			type probe struct {
				key, value string
			}
			probes := []probe{
				{entity.BagMetadataOrderID, ids.MetadataOrderID},
				{entity.BagMetadataOrderID, ids.OrderID},
				{entity.BagProviderOrderID, ids.MetadataOrderID},
				{entity.BagProviderOrderID, ids.OrderID},
				{entity.BagProviderPaymentID, ids.ProviderPaymentID},
			}
			for _, p := range probes {
				if p.value == "" {
					continue
				}
				payment, err := m.payments.FindByBagValue(ctx, p.key, p.value)
				if err != nil {
					return nil, err
				}
				if payment != nil {
					return payment, nil
				}
			}
			return nil, nil
		}},
		{StrategyNestedPaymentID, func(ctx context.Context) (*entity.Payment, error) {
			probes := []string{ids.MetadataPaymentID}
			if ids.ProviderPaymentID != ids.MetadataPaymentID {
				probes = append(probes, ids.ProviderPaymentID)
			}
			for _, id := range probes {
				if id == "" {
					continue
				}
				payment, err := m.payments.FindByNestedPaymentID(ctx, id)
				if err != nil || payment != nil {
					return payment, err
				}
			}
			return nil, nil
		}},
	}

	for _, s := range strategies {
		payment, err := s.run(ctx)
		if err != nil {
			m.log.Warn("Match strategy failed, trying next",
				zap.Error(fmt.Errorf("strategy %s: %w", s.name, err)),
			)
			continue
		}
		if payment != nil {
			m.log.Debug("Payment matched",
				zap.String("strategy", s.name),
				zap.String("payment_id", payment.ID),
			)
			return payment, s.name, true
		}
	}

	return nil, "", false
}
