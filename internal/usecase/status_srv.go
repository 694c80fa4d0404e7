package usecase

import (
	"context"
	"time"

	"surfcamp-booking/internal/data/entity"
	"surfcamp-booking/internal/data/repository"
	"surfcamp-booking/pkg/utils"

	"go.uber.org/zap"
)

// StatusResult is the customer-facing view of one payment's progress.
type StatusResult struct {
	Found              bool
	OrderID            string
	PaymentID          string
	PaymentStatus      entity.PaymentStatus
	OrderStatus        entity.OrderStatus
	Paid               bool
	BookingConfirmed   bool
	ReservationCreated bool
	ReservationID      string
	PaymentURL         string
}

// StatusService answers payment status lookups. The polling page hits this
// endpoint right after the provider redirects, often before the webhook that
// settles the payment has landed, so a pending result that changed recently
// is re-read a few times before being returned as-is.
type StatusService struct {
	repo *repository.Repository
	cfg  utils.StatusConfig
	log  *zap.Logger

	now func() time.Time
}

func NewStatusService(repo *repository.Repository, cfg utils.StatusConfig, log *zap.Logger) *StatusService {
	return &StatusService{
		repo: repo,
		cfg:  cfg,
		log:  log.With(zap.String("service", "status")),
		now:  time.Now,
	}
}

// Lookup resolves a payment by our order id or by the provider trip id.
// Exactly one of the two should be set; order id wins when both are.
func (s *StatusService) Lookup(ctx context.Context, orderID, tripID string) (*StatusResult, error) {
	read := func(ctx context.Context) (*entity.Payment, error) {
		if orderID != "" {
			return s.repo.Payment.FindByOrderID(ctx, orderID)
		}
		return s.repo.Payment.FindByBagValue(ctx, entity.BagTripID, tripID)
	}

	payment, err := utils.RetryUntil(ctx, s.cfg.MaxAttempts, utils.Linear(s.cfg.RetryBase()), read, s.settled)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return &StatusResult{Found: false}, nil
	}

	result := &StatusResult{
		Found:         true,
		OrderID:       payment.OrderID,
		PaymentID:     payment.ID,
		PaymentStatus: payment.Status,
		PaymentURL:    payment.BagString(entity.BagPaymentURL),
	}

	order, err := s.repo.Order.FindByID(ctx, payment.OrderID)
	if err != nil {
		return nil, err
	}
	if order != nil {
		result.OrderStatus = order.Status
		result.Paid = order.Status.Rank() >= entity.OrderStatusPaid.Rank()
		result.BookingConfirmed = order.Status.Rank() >= entity.OrderStatusBookingCreated.Rank()

		ref := order.Reservation()
		if ref.State == entity.ReservationCommitted {
			result.ReservationCreated = true
			result.ReservationID = ref.ID
		}
	}

	if result.PaymentStatus == entity.PaymentStatusCompleted {
		result.Paid = true
	}

	return result, nil
}

// settled reports whether a read is worth returning without another attempt.
// A missing payment or a pending one that changed within the suspect window
// may just be a race with checkout or a webhook, so those get re-read.
func (s *StatusService) settled(payment *entity.Payment) bool {
	if payment == nil {
		return false
	}
	if payment.Status != entity.PaymentStatusPending {
		return true
	}
	return s.now().Sub(payment.UpdatedAt) > s.cfg.SuspectWindow()
}
