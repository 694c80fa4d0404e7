package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"surfcamp-booking/internal/data/entity"
	"surfcamp-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	FindByID(ctx context.Context, id string) (*entity.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status entity.OrderStatus) error

	// Reservation claim protocol. All three are conditional writes; the
	// backing store is the only synchronization point between instances.
	ClaimReservation(ctx context.Context, orderID, sentinel string, staleBefore time.Time) (bool, error)
	CommitReservation(ctx context.Context, orderID, sentinel, reservationID string, pmsData json.RawMessage) (bool, error)
	ReleaseReservation(ctx context.Context, orderID, sentinel string) error
}

type orderRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOrderRepository(db database.PgxIface, log *zap.Logger) OrderRepository {
	return &orderRepository{
		db:  db,
		log: log.With(zap.String("repository", "order")),
	}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (id, status, total_amount, currency, customer_name, customer_email, booking_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	bookingData, err := json.Marshal(order.BookingData)
	if err != nil {
		return fmt.Errorf("marshal booking data for order %s: %w", order.ID, err)
	}

	_, err = r.db.Exec(ctx, query,
		order.ID,
		order.Status,
		order.TotalAmount,
		order.Currency,
		order.CustomerName,
		order.CustomerEmail,
		bookingData,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create order",
			zap.Error(err),
			zap.String("order_id", order.ID),
		)
		return fmt.Errorf("create order %s: %w", order.ID, err)
	}

	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	query := `
		SELECT id, status, total_amount, currency, customer_name, customer_email, booking_data, pms_reservation_id, pms_data, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var order entity.Order
	var bookingData []byte
	err := r.db.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.Status,
		&order.TotalAmount,
		&order.Currency,
		&order.CustomerName,
		&order.CustomerEmail,
		&bookingData,
		&order.ReservationRef,
		&order.PMSData,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find order by ID",
			zap.Error(err),
			zap.String("order_id", id),
		)
		return nil, fmt.Errorf("find order by ID %s: %w", id, err)
	}

	if len(bookingData) > 0 {
		var details entity.BookingDetails
		if err := json.Unmarshal(bookingData, &details); err != nil {
			r.log.Warn("Failed to decode booking data",
				zap.Error(err),
				zap.String("order_id", id),
			)
		} else {
			order.BookingData = &details
		}
	}

	return &order, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID string, status entity.OrderStatus) error {
	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, orderID, status)
	if err != nil {
		r.log.Error("Failed to update order status",
			zap.Error(err),
			zap.String("order_id", orderID),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update order %s status to %s: %w", orderID, string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found", orderID)
	}

	return nil
}

// ClaimReservation plants the claim sentinel only when the reservation slot
// is free: NULL, or a claim sentinel older than staleBefore (a crashed
// claimant). Zero rows affected means another actor holds the slot.
func (r *orderRepository) ClaimReservation(ctx context.Context, orderID, sentinel string, staleBefore time.Time) (bool, error) {
	query := `
		UPDATE orders
		SET pms_reservation_id = $2, updated_at = NOW()
		WHERE id = $1 AND (
			pms_reservation_id IS NULL
			OR (pms_reservation_id LIKE 'claiming:%' AND split_part(pms_reservation_id, ':', 3)::bigint < $3)
		)
	`

	result, err := r.db.Exec(ctx, query, orderID, sentinel, staleBefore.Unix())
	if err != nil {
		r.log.Error("Failed to claim reservation",
			zap.Error(err),
			zap.String("order_id", orderID),
		)
		return false, fmt.Errorf("claim reservation for order %s: %w", orderID, err)
	}

	return result.RowsAffected() > 0, nil
}

// CommitReservation swaps our sentinel for the real external reservation id.
// Conditional on the sentinel still being ours: a stale claim may have been
// reclaimed while the external call was in flight.
func (r *orderRepository) CommitReservation(ctx context.Context, orderID, sentinel, reservationID string, pmsData json.RawMessage) (bool, error) {
	query := `
		UPDATE orders
		SET pms_reservation_id = $3, pms_data = $4, status = $5, updated_at = NOW()
		WHERE id = $1 AND pms_reservation_id = $2
	`

	result, err := r.db.Exec(ctx, query, orderID, sentinel, reservationID, pmsData, entity.OrderStatusCompleted)
	if err != nil {
		r.log.Error("Failed to commit reservation",
			zap.Error(err),
			zap.String("order_id", orderID),
			zap.String("reservation_id", reservationID),
		)
		return false, fmt.Errorf("commit reservation for order %s: %w", orderID, err)
	}

	return result.RowsAffected() > 0, nil
}

// ReleaseReservation reverts the slot to NULL so a later event or manual
// remediation can retry. Conditional on the sentinel still being ours.
func (r *orderRepository) ReleaseReservation(ctx context.Context, orderID, sentinel string) error {
	query := `
		UPDATE orders
		SET pms_reservation_id = NULL, updated_at = NOW()
		WHERE id = $1 AND pms_reservation_id = $2
	`

	_, err := r.db.Exec(ctx, query, orderID, sentinel)
	if err != nil {
		r.log.Error("Failed to release reservation claim",
			zap.Error(err),
			zap.String("order_id", orderID),
		)
		return fmt.Errorf("release reservation claim for order %s: %w", orderID, err)
	}

	return nil
}
