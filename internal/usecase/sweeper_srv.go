package usecase

import (
	"context"
	"sync"
	"time"

	"surfcamp-booking/internal/data/entity"
	"surfcamp-booking/internal/data/repository"

	"go.uber.org/zap"
)

// RepairReport summarizes one orphan repair pass.
type RepairReport struct {
	TripsExamined int   `json:"trips_examined"`
	EventsLinked  int64 `json:"events_linked"`
	Reservations  int   `json:"reservations_created"`
}

// SweeperService relinks orphaned webhook events to payments that arrived
// after the event did, and finishes any reservation those events should have
// produced. It runs on a delayed timer after an orphan is seen and on demand
// through the operator endpoints.
type SweeperService struct {
	repo   *repository.Repository
	claims *ClaimService
	delay  time.Duration
	log    *zap.Logger

	mu      sync.Mutex
	pending map[string]struct{}
}

func NewSweeperService(repo *repository.Repository, claims *ClaimService, delay time.Duration, log *zap.Logger) *SweeperService {
	return &SweeperService{
		repo:    repo,
		claims:  claims,
		delay:   delay,
		log:     log.With(zap.String("service", "sweeper")),
		pending: make(map[string]struct{}),
	}
}

// Schedule queues a repair for the trip after the configured delay. The
// delay gives the checkout flow time to persist the payment the orphaned
// event should match. Repeated schedules for a trip collapse into one run.
func (s *SweeperService) Schedule(tripID string) {
	s.mu.Lock()
	if _, queued := s.pending[tripID]; queued {
		s.mu.Unlock()
		return
	}
	s.pending[tripID] = struct{}{}
	s.mu.Unlock()

	go func() {
		time.Sleep(s.delay)

		s.mu.Lock()
		delete(s.pending, tripID)
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if _, err := s.RepairByTripID(ctx, tripID); err != nil {
			s.log.Error("Scheduled orphan repair failed",
				zap.Error(err),
				zap.String("trip_id", tripID),
			)
		}
	}()
}

// RepairByTripID links every orphaned event carrying the trip id to the
// payment that now exists for it, then creates the reservation if any of the
// linked events was a booking confirmation.
func (s *SweeperService) RepairByTripID(ctx context.Context, tripID string) (*RepairReport, error) {
	report := &RepairReport{TripsExamined: 1}

	payment, err := s.repo.Payment.FindByBagValue(ctx, entity.BagTripID, tripID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		s.log.Info("No payment for orphaned trip yet",
			zap.String("trip_id", tripID),
		)
		return report, nil
	}

	events, err := s.repo.WebhookEvent.FindUnlinkedByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return report, nil
	}

	linked, err := s.repo.WebhookEvent.LinkUnlinkedByTripID(ctx, tripID, payment.ID, payment.OrderID)
	if err != nil {
		return nil, err
	}
	report.EventsLinked = linked

	s.log.Info("Orphaned events relinked",
		zap.String("trip_id", tripID),
		zap.String("payment_id", payment.ID),
		zap.Int64("linked", linked),
	)

	confirmsBooking := false
	for _, event := range events {
		if entity.EventKind(event.EventType).BookingConfirmation() {
			confirmsBooking = true
			break
		}
	}

	if confirmsBooking {
		// The linked events confirmed a booking that the live pipeline never
		// applied. Promote the records the way the pipeline would have.
		if payment.Status.CanAdvanceTo(entity.PaymentStatusBookingCreated) {
			if err := s.repo.Payment.UpdateStatus(ctx, payment.ID, entity.PaymentStatusBookingCreated); err != nil {
				return nil, err
			}
		}
		order, err := s.repo.Order.FindByID(ctx, payment.OrderID)
		if err != nil {
			return nil, err
		}
		if order != nil && order.Status.CanAdvanceTo(entity.OrderStatusBookingCreated) {
			if err := s.repo.Order.UpdateStatus(ctx, order.ID, entity.OrderStatusBookingCreated); err != nil {
				return nil, err
			}
		}
	}

	if confirmsBooking && s.claims != nil {
		if reservationID, err := s.claims.EnsureReservation(ctx, payment.OrderID); err != nil {
			s.log.Error("Reservation creation failed during repair",
				zap.Error(err),
				zap.String("order_id", payment.OrderID),
			)
		} else if reservationID != "" {
			report.Reservations++
		}
	}

	return report, nil
}

// RepairAll sweeps every currently orphaned event, grouped by trip.
func (s *SweeperService) RepairAll(ctx context.Context, limit int) (*RepairReport, error) {
	if limit <= 0 {
		limit = 100
	}

	events, err := s.repo.WebhookEvent.FindUnlinked(ctx, limit)
	if err != nil {
		return nil, err
	}

	trips := make(map[string]struct{})
	for _, event := range events {
		if event.TripID != nil && *event.TripID != "" {
			trips[*event.TripID] = struct{}{}
		}
	}

	total := &RepairReport{}
	for tripID := range trips {
		report, err := s.RepairByTripID(ctx, tripID)
		if err != nil {
			s.log.Error("Repair failed for trip",
				zap.Error(err),
				zap.String("trip_id", tripID),
			)
			continue
		}
		total.TripsExamined += report.TripsExamined
		total.EventsLinked += report.EventsLinked
		total.Reservations += report.Reservations
	}

	return total, nil
}

// Orphans lists currently unlinked events together with the total count.
func (s *SweeperService) Orphans(ctx context.Context, limit int) ([]entity.WebhookEvent, int64, error) {
	if limit <= 0 {
		limit = 50
	}

	events, err := s.repo.WebhookEvent.FindUnlinked(ctx, limit)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.repo.WebhookEvent.CountUnlinked(ctx)
	if err != nil {
		return nil, 0, err
	}

	return events, count, nil
}
