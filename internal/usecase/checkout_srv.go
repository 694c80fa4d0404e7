package usecase

import (
	"context"
	"fmt"
	"time"

	"surfcamp-booking/internal/data/entity"
	"surfcamp-booking/internal/data/repository"
	"surfcamp-booking/internal/dto/request"
	"surfcamp-booking/internal/dto/response"
	"surfcamp-booking/internal/gateway"
	"surfcamp-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutService creates the order and payment rows and obtains a hosted
// payment link. The identifiers the provider returns are captured into the
// payment's correlation bag immediately so the very first webhook can match.
type CheckoutService struct {
	repo     *repository.Repository
	provider gateway.PaymentProviderClient
	log      *zap.Logger

	now func() time.Time
}

func NewCheckoutService(repo *repository.Repository, provider gateway.PaymentProviderClient, log *zap.Logger) *CheckoutService {
	return &CheckoutService{
		repo:     repo,
		provider: provider,
		log:      log.With(zap.String("service", "checkout")),
		now:      time.Now,
	}
}

func (s *CheckoutService) Checkout(ctx context.Context, req *request.CheckoutRequest) (*response.CheckoutResponse, error) {
	now := s.now()
	depositCents := req.AmountCents / 10

	chargeCents := req.AmountCents
	if req.DepositOnly {
		chargeCents = depositCents
	}

	details := &entity.BookingDetails{
		CheckIn:            req.CheckIn,
		CheckOut:           req.CheckOut,
		Guests:             req.Guests,
		RoomTypeID:         req.RoomTypeID,
		IsSharedRoom:       req.IsSharedRoom,
		Nights:             req.Nights,
		TotalAmountCents:   req.AmountCents,
		DepositAmountCents: depositCents,
		ContactInfo: entity.ContactInfo{
			FirstName: req.Contact.FirstName,
			LastName:  req.Contact.LastName,
			Email:     req.Contact.Email,
			Phone:     req.Contact.Phone,
		},
	}
	for _, a := range req.Activities {
		details.SelectedActivities = append(details.SelectedActivities, entity.Activity{ID: a.ID, Name: a.Name})
	}
	for _, p := range req.Participants {
		details.Participants = append(details.Participants, entity.Participant{FirstName: p.FirstName, LastName: p.LastName, Email: p.Email})
	}

	order := &entity.Order{
		Base: entity.Base{
			ID:        utils.GenerateOrderID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Status:        entity.OrderStatusPending,
		TotalAmount:   req.AmountCents,
		Currency:      req.Currency,
		CustomerName:  req.Contact.FirstName + " " + req.Contact.LastName,
		CustomerEmail: req.Contact.Email,
		BookingData:   details,
	}

	if err := s.repo.Order.Create(ctx, order); err != nil {
		return nil, err
	}

	payment := &entity.Payment{
		Base: entity.Base{
			ID:        uuid.NewString(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrderID:      order.ID,
		Status:       entity.PaymentStatusPending,
		Amount:       chargeCents,
		Currency:     req.Currency,
		ProviderData: map[string]any{},
	}

	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		return nil, err
	}

	link, err := s.provider.CreatePaymentLink(ctx, &gateway.PaymentLinkRequest{
		OrderID:       order.ID,
		AmountCents:   chargeCents,
		Currency:      req.Currency,
		Description:   fmt.Sprintf("Stay %s to %s, %d guests", req.CheckIn, req.CheckOut, req.Guests),
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
	})
	if err != nil {
		// The order and payment stay in pending so the checkout can be
		// retried or cleaned up by hand.
		return nil, fmt.Errorf("checkout order %s: %w", order.ID, err)
	}

	bag := map[string]any{
		entity.BagPaymentURL: link.PaymentURL,
	}
	if link.TripID != "" {
		bag[entity.BagTripID] = link.TripID
	}
	if link.ProviderOrderID != "" {
		bag[entity.BagProviderOrderID] = link.ProviderOrderID
	}
	if err := s.repo.Payment.MergeProviderData(ctx, payment.ID, bag); err != nil {
		return nil, err
	}

	if link.ProviderOrderID != "" {
		if err := s.repo.Payment.SetProviderOrderID(ctx, payment.ID, link.ProviderOrderID); err != nil {
			return nil, err
		}
	}

	s.log.Info("Checkout created",
		zap.String("order_id", order.ID),
		zap.String("payment_id", payment.ID),
		zap.String("trip_id", link.TripID),
		zap.Int64("amount_cents", chargeCents),
	)

	return &response.CheckoutResponse{
		OrderID:     order.ID,
		PaymentID:   payment.ID,
		PaymentURL:  link.PaymentURL,
		TripID:      link.TripID,
		AmountCents: chargeCents,
		Currency:    req.Currency,
	}, nil
}
