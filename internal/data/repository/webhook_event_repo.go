package repository

import (
	"context"
	"fmt"

	"surfcamp-booking/internal/data/entity"
	"surfcamp-booking/pkg/database"

	"go.uber.org/zap"
)

type WebhookEventRepository interface {
	// Insert appends the event row. Returns false when the event key already
	// exists, which marks the event as a duplicate delivery.
	Insert(ctx context.Context, event *entity.WebhookEvent) (bool, error)
	LinkToPayment(ctx context.Context, eventKey, paymentID, orderID string) error
	FindUnlinkedByTripID(ctx context.Context, tripID string) ([]entity.WebhookEvent, error)
	FindUnlinked(ctx context.Context, limit int) ([]entity.WebhookEvent, error)
	LinkUnlinkedByTripID(ctx context.Context, tripID, paymentID, orderID string) (int64, error)
	CountUnlinked(ctx context.Context) (int64, error)
}

type webhookEventRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewWebhookEventRepository(db database.PgxIface, log *zap.Logger) WebhookEventRepository {
	return &webhookEventRepository{
		db:  db,
		log: log.With(zap.String("repository", "webhook_event")),
	}
}

func (r *webhookEventRepository) Insert(ctx context.Context, event *entity.WebhookEvent) (bool, error) {
	query := `
		INSERT INTO webhook_events (event_key, event_type, payment_id, order_id, trip_id, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_key) DO NOTHING
	`

	result, err := r.db.Exec(ctx, query,
		event.EventKey,
		event.EventType,
		event.PaymentID,
		event.OrderID,
		event.TripID,
		event.ReceivedAt,
	)

	if err != nil {
		r.log.Error("Failed to insert webhook event",
			zap.Error(err),
			zap.String("event_key", event.EventKey),
			zap.String("event_type", event.EventType),
		)
		return false, fmt.Errorf("insert webhook event %s: %w", event.EventKey, err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *webhookEventRepository) LinkToPayment(ctx context.Context, eventKey, paymentID, orderID string) error {
	query := `UPDATE webhook_events SET payment_id = $2, order_id = $3 WHERE event_key = $1`

	_, err := r.db.Exec(ctx, query, eventKey, paymentID, orderID)
	if err != nil {
		r.log.Error("Failed to link webhook event to payment",
			zap.Error(err),
			zap.String("event_key", eventKey),
			zap.String("payment_id", paymentID),
		)
		return fmt.Errorf("link webhook event %s to payment %s: %w", eventKey, paymentID, err)
	}

	return nil
}

func (r *webhookEventRepository) FindUnlinkedByTripID(ctx context.Context, tripID string) ([]entity.WebhookEvent, error) {
	query := `
		SELECT event_key, event_type, payment_id, order_id, trip_id, received_at
		FROM webhook_events
		WHERE payment_id IS NULL AND trip_id = $1
		ORDER BY received_at ASC
	`

	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		r.log.Error("Failed to find unlinked events by trip ID",
			zap.Error(err),
			zap.String("trip_id", tripID),
		)
		return nil, fmt.Errorf("find unlinked events for trip %s: %w", tripID, err)
	}
	defer rows.Close()

	var events []entity.WebhookEvent
	for rows.Next() {
		var event entity.WebhookEvent
		if err := rows.Scan(&event.EventKey, &event.EventType, &event.PaymentID, &event.OrderID, &event.TripID, &event.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan unlinked event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

func (r *webhookEventRepository) FindUnlinked(ctx context.Context, limit int) ([]entity.WebhookEvent, error) {
	query := `
		SELECT event_key, event_type, payment_id, order_id, trip_id, received_at
		FROM webhook_events
		WHERE payment_id IS NULL
		ORDER BY received_at ASC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.log.Error("Failed to find unlinked events", zap.Error(err))
		return nil, fmt.Errorf("find unlinked events: %w", err)
	}
	defer rows.Close()

	var events []entity.WebhookEvent
	for rows.Next() {
		var event entity.WebhookEvent
		if err := rows.Scan(&event.EventKey, &event.EventType, &event.PaymentID, &event.OrderID, &event.TripID, &event.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan unlinked event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// LinkUnlinkedByTripID backfills every orphaned event that carries the trip
// id in one statement and reports how many rows were repaired.
func (r *webhookEventRepository) LinkUnlinkedByTripID(ctx context.Context, tripID, paymentID, orderID string) (int64, error) {
	query := `
		UPDATE webhook_events
		SET payment_id = $2, order_id = $3
		WHERE payment_id IS NULL AND trip_id = $1
	`

	result, err := r.db.Exec(ctx, query, tripID, paymentID, orderID)
	if err != nil {
		r.log.Error("Failed to link unlinked events by trip ID",
			zap.Error(err),
			zap.String("trip_id", tripID),
			zap.String("payment_id", paymentID),
		)
		return 0, fmt.Errorf("link unlinked events for trip %s: %w", tripID, err)
	}

	return result.RowsAffected(), nil
}

func (r *webhookEventRepository) CountUnlinked(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM webhook_events WHERE payment_id IS NULL`

	var count int64
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		r.log.Error("Failed to count unlinked events", zap.Error(err))
		return 0, fmt.Errorf("count unlinked events: %w", err)
	}

	return count, nil
}
