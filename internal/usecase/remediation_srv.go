package usecase

import (
	"context"
	"fmt"

	"surfcamp-booking/internal/data/entity"
	"surfcamp-booking/internal/data/repository"

	"go.uber.org/zap"
)

// FixRequest describes a manual repair of one stuck payment. At least one of
// OrderID and TripID must be set.
type FixRequest struct {
	OrderID         string
	TripID          string
	SkipReservation bool
}

// FixSnapshot is the record state on one side of a repair.
type FixSnapshot struct {
	PaymentStatus entity.PaymentStatus `json:"payment_status"`
	OrderStatus   entity.OrderStatus   `json:"order_status"`
	ReservationID string               `json:"reservation_id,omitempty"`
}

// FixReport shows the operator exactly what the repair changed.
type FixReport struct {
	Found     bool        `json:"found"`
	PaymentID string      `json:"payment_id,omitempty"`
	OrderID   string      `json:"order_id,omitempty"`
	Actions   []string    `json:"actions"`
	Before    FixSnapshot `json:"before"`
	After     FixSnapshot `json:"after"`
}

// RemediationService force-settles payments whose webhooks were lost
// entirely. It applies the same monotonic promotions the webhook pipeline
// would have and drives the reservation through the same claim protocol, so
// a manual fix can never double-book.
type RemediationService struct {
	repo   *repository.Repository
	claims *ClaimService
	log    *zap.Logger
}

func NewRemediationService(repo *repository.Repository, claims *ClaimService, log *zap.Logger) *RemediationService {
	return &RemediationService{
		repo:   repo,
		claims: claims,
		log:    log.With(zap.String("service", "remediation")),
	}
}

func (s *RemediationService) FixPayment(ctx context.Context, req FixRequest) (*FixReport, error) {
	if req.OrderID == "" && req.TripID == "" {
		return nil, fmt.Errorf("fix payment: order id or trip id required")
	}

	var payment *entity.Payment
	var err error
	if req.OrderID != "" {
		payment, err = s.repo.Payment.FindByOrderID(ctx, req.OrderID)
	} else {
		payment, err = s.repo.Payment.FindByBagValue(ctx, entity.BagTripID, req.TripID)
	}
	if err != nil {
		return nil, err
	}

	report := &FixReport{Actions: []string{}}
	if payment == nil {
		return report, nil
	}

	order, err := s.repo.Order.FindByID(ctx, payment.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("payment %s references missing order %s", payment.ID, payment.OrderID)
	}

	report.Found = true
	report.PaymentID = payment.ID
	report.OrderID = order.ID
	report.Before = snapshot(payment, order)
	report.After = report.Before

	if req.TripID != "" && payment.BagString(entity.BagTripID) == "" {
		if err := s.repo.Payment.MergeProviderData(ctx, payment.ID, map[string]any{entity.BagTripID: req.TripID}); err != nil {
			return nil, err
		}
		report.Actions = append(report.Actions, "linked trip id")
	}

	if payment.Status.CanAdvanceTo(entity.PaymentStatusCompleted) {
		if err := s.repo.Payment.UpdateStatus(ctx, payment.ID, entity.PaymentStatusCompleted); err != nil {
			return nil, err
		}
		report.After.PaymentStatus = entity.PaymentStatusCompleted
		report.Actions = append(report.Actions, "payment marked completed")
	}

	if order.Status.CanAdvanceTo(entity.OrderStatusPaid) {
		if err := s.repo.Order.UpdateStatus(ctx, order.ID, entity.OrderStatusPaid); err != nil {
			return nil, err
		}
		report.After.OrderStatus = entity.OrderStatusPaid
		report.Actions = append(report.Actions, "order marked paid")
	}

	if !req.SkipReservation && order.Reservation().State != entity.ReservationCommitted {
		reservationID, err := s.claims.EnsureReservation(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("fix payment %s: %w", payment.ID, err)
		}
		if reservationID != "" {
			report.After.ReservationID = reservationID
			report.After.OrderStatus = entity.OrderStatusCompleted
			report.Actions = append(report.Actions, "reservation created")
		}
	}

	s.log.Info("Payment repaired",
		zap.String("payment_id", payment.ID),
		zap.String("order_id", order.ID),
		zap.Strings("actions", report.Actions),
	)

	return report, nil
}

func snapshot(payment *entity.Payment, order *entity.Order) FixSnapshot {
	snap := FixSnapshot{
		PaymentStatus: payment.Status,
		OrderStatus:   order.Status,
	}
	if ref := order.Reservation(); ref.State == entity.ReservationCommitted {
		snap.ReservationID = ref.ID
	}
	return snap
}
