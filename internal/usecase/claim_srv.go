package usecase

import (
	"context"
	"fmt"
	"time"

	"surfcamp-booking/internal/data/entity"
	"surfcamp-booking/internal/data/repository"
	"surfcamp-booking/internal/gateway"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClaimService creates at most one external reservation per order. Multiple
// instances may race on the same order; the conditional claim update in the
// database decides the single winner, and only the winner calls the
// property-management system.
type ClaimService struct {
	repo     *repository.Repository
	pms      gateway.ReservationClient
	notifier gateway.Notifier
	ttl      time.Duration
	log      *zap.Logger

	now      func() time.Time
	newToken func() string
}

func NewClaimService(repo *repository.Repository, pms gateway.ReservationClient, notifier gateway.Notifier, ttl time.Duration, log *zap.Logger) *ClaimService {
	return &ClaimService{
		repo:     repo,
		pms:      pms,
		notifier: notifier,
		ttl:      ttl,
		log:      log.With(zap.String("service", "claim")),
		now:      time.Now,
		newToken: uuid.NewString,
	}
}

// EnsureReservation makes sure the order ends up with exactly one committed
// reservation. Returns the reservation id when one exists or was created, or
// "" when another actor currently holds a live claim.
func (s *ClaimService) EnsureReservation(ctx context.Context, orderID string) (string, error) {
	order, err := s.repo.Order.FindByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order == nil {
		return "", fmt.Errorf("order %s not found", orderID)
	}

	ref := order.Reservation()
	switch ref.State {
	case entity.ReservationCommitted:
		return ref.ID, nil
	case entity.ReservationClaiming:
		if !ref.Stale(s.ttl, s.now()) {
			s.log.Info("Reservation claim already held, skipping",
				zap.String("order_id", orderID),
			)
			return "", nil
		}
		// Stale claim from a crashed instance. The conditional update below
		// reclaims it atomically.
		s.log.Warn("Reclaiming stale reservation claim",
			zap.String("order_id", orderID),
			zap.Time("claim_started_at", ref.StartedAt),
		)
	}

	now := s.now()
	sentinel := entity.EncodeClaim(s.newToken(), now)

	claimed, err := s.repo.Order.ClaimReservation(ctx, orderID, sentinel, now.Add(-s.ttl))
	if err != nil {
		return "", err
	}
	if !claimed {
		// Lost the race. The winner will create the reservation.
		s.log.Info("Reservation claim lost to concurrent actor",
			zap.String("order_id", orderID),
		)
		return "", nil
	}

	// The caller is usually an inbound webhook request with a budget far
	// shorter than the external call. Once the sentinel is planted, the
	// release and the commit must reach the database even after the caller
	// gives up, or the order stays blocked until the claim TTL.
	detached := context.WithoutCancel(ctx)

	result, err := s.pms.CreateReservation(ctx, order)
	if err != nil {
		// Release so a later event or the repair sweep can retry
		// immediately instead of waiting out the claim TTL.
		if relErr := s.repo.Order.ReleaseReservation(detached, orderID, sentinel); relErr != nil {
			s.log.Error("Failed to release claim after reservation failure",
				zap.Error(relErr),
				zap.String("order_id", orderID),
			)
		}
		return "", fmt.Errorf("ensure reservation for order %s: %w", orderID, err)
	}

	committed, err := s.repo.Order.CommitReservation(detached, orderID, sentinel, result.ReservationID, result.Raw)
	if err != nil {
		return "", err
	}
	if !committed {
		// Our claim was reclaimed as stale while the external call ran. The
		// reservation exists remotely but another actor owns the slot now;
		// surface it for operators rather than overwrite.
		s.log.Warn("Reservation created but claim was lost before commit",
			zap.String("order_id", orderID),
			zap.String("reservation_id", result.ReservationID),
		)
		return result.ReservationID, nil
	}

	s.log.Info("Reservation committed",
		zap.String("order_id", orderID),
		zap.String("reservation_id", result.ReservationID),
	)

	if payment, err := s.repo.Payment.FindByOrderID(detached, orderID); err == nil && payment != nil {
		if payment.Status.CanAdvanceTo(entity.PaymentStatusCompleted) {
			if err := s.repo.Payment.UpdateStatus(detached, payment.ID, entity.PaymentStatusCompleted); err != nil {
				s.log.Error("Failed to complete payment after reservation",
					zap.Error(err),
					zap.String("payment_id", payment.ID),
				)
			}
		}
	}

	s.notifier.ReservationConfirmed(detached, orderID, result.ReservationID, order.CustomerEmail)

	return result.ReservationID, nil
}
