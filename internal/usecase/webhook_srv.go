package usecase

import (
	"context"
	"fmt"
	"time"

	"surfcamp-booking/internal/data/entity"
	"surfcamp-booking/internal/data/repository"
	"surfcamp-booking/pkg/database"

	"go.uber.org/zap"
)

// repairScheduler queues a delayed orphan repair for a trip id.
type repairScheduler interface {
	Schedule(tripID string)
}

// ProcessResult summarizes what one webhook delivery did.
type ProcessResult struct {
	EventKey      string
	Duplicate     bool
	Matched       bool
	Strategy      string
	PaymentID     string
	OrderID       string
	PaymentStatus entity.PaymentStatus
	OrderStatus   entity.OrderStatus
	ReservationID string
}

// WebhookService runs the ingest pipeline for one delivery: deduplicate,
// match, link, transition, all inside a single transaction, then drive
// reservation creation after commit.
type WebhookService struct {
	db      database.PgxIface
	claims  *ClaimService
	sweeper repairScheduler
	log     *zap.Logger

	// repoFor builds repositories bound to the given connection, usually the
	// open transaction. Replaceable in tests.
	repoFor func(db database.PgxIface) *repository.Repository

	now func() time.Time
}

func NewWebhookService(db database.PgxIface, claims *ClaimService, sweeper repairScheduler, log *zap.Logger) *WebhookService {
	return &WebhookService{
		db:      db,
		claims:  claims,
		sweeper: sweeper,
		log:     log.With(zap.String("service", "webhook")),
		repoFor: func(db database.PgxIface) *repository.Repository {
			return repository.NewRepository(db, log)
		},
		now: time.Now,
	}
}

func (s *WebhookService) ProcessEvent(ctx context.Context, eventType string, data map[string]any) (*ProcessResult, error) {
	kind := entity.EventKind(eventType)
	ids := ResolveIdentifiers(data)
	key := EventKey(eventType, ids)

	result := &ProcessResult{EventKey: key}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin webhook transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repo := s.repoFor(database.WrapTx(tx))

	event := &entity.WebhookEvent{
		EventKey:   key,
		EventType:  eventType,
		ReceivedAt: s.now(),
	}
	if ids.TripID != "" {
		tripID := ids.TripID
		event.TripID = &tripID
	}

	inserted, err := repo.WebhookEvent.Insert(ctx, event)
	if err != nil {
		return nil, err
	}
	if !inserted {
		// Replayed delivery. Everything it describes was already applied.
		s.log.Info("Duplicate webhook event skipped",
			zap.String("event_key", key),
			zap.String("event_type", eventType),
		)
		result.Duplicate = true
		return result, nil
	}

	matcher := NewPaymentMatcher(repo.Payment, s.log)
	payment, strategy, found := matcher.Match(ctx, ids)
	if !found {
		// Orphan: keep the event row so the repair sweep can link it once
		// the payment shows up.
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit orphan webhook event %s: %w", key, err)
		}
		s.log.Warn("No payment matched webhook event",
			zap.String("event_key", key),
			zap.String("event_type", eventType),
			zap.String("trip_id", ids.TripID),
		)
		if ids.TripID != "" && s.sweeper != nil {
			s.sweeper.Schedule(ids.TripID)
		}
		return result, nil
	}

	result.Matched = true
	result.Strategy = strategy
	result.PaymentID = payment.ID
	result.OrderID = payment.OrderID

	order, err := repo.Order.FindByID(ctx, payment.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("payment %s references missing order %s", payment.ID, payment.OrderID)
	}

	if err := repo.WebhookEvent.LinkToPayment(ctx, key, payment.ID, payment.OrderID); err != nil {
		return nil, err
	}

	engine := NewTransitionEngine(repo, s.log)
	outcome, err := engine.Apply(ctx, kind, payment, order, ids)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit webhook event %s: %w", key, err)
	}

	result.PaymentStatus = outcome.PaymentStatus
	result.OrderStatus = outcome.OrderStatus

	s.log.Info("Webhook event processed",
		zap.String("event_key", key),
		zap.String("event_type", eventType),
		zap.String("payment_id", payment.ID),
		zap.String("order_id", payment.OrderID),
		zap.String("strategy", strategy),
	)

	if outcome.NeedsReservation && s.claims != nil {
		// Reservation failures never bounce the webhook: the event is
		// recorded, so a provider retry would dedupe. Repair runs through
		// the sweep or the operator endpoints instead.
		reservationID, err := s.claims.EnsureReservation(ctx, payment.OrderID)
		if err != nil {
			s.log.Error("Reservation creation failed after webhook",
				zap.Error(err),
				zap.String("order_id", payment.OrderID),
			)
		} else {
			result.ReservationID = reservationID
		}
	}

	return result, nil
}
