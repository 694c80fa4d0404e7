package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"surfcamp-booking/internal/data/entity"
	"surfcamp-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id string) (*entity.Payment, error)
	FindByOrderID(ctx context.Context, orderID string) (*entity.Payment, error)
	FindByProviderOrderID(ctx context.Context, providerOrderID string) (*entity.Payment, error)
	FindByBagValue(ctx context.Context, key, value string) (*entity.Payment, error)
	FindByNestedPaymentID(ctx context.Context, paymentID string) (*entity.Payment, error)
	UpdateStatus(ctx context.Context, paymentID string, status entity.PaymentStatus) error
	MergeProviderData(ctx context.Context, paymentID string, data map[string]any) error
	SetProviderOrderID(ctx context.Context, paymentID, providerOrderID string) error
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

const paymentColumns = `id, order_id, status, amount, currency, payment_method, provider_order_id, provider_data, created_at, updated_at`

func (r *paymentRepository) scanPayment(row pgx.Row) (*entity.Payment, error) {
	var payment entity.Payment
	var providerData []byte

	err := row.Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.Status,
		&payment.Amount,
		&payment.Currency,
		&payment.Method,
		&payment.ProviderOrderID,
		&providerData,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(providerData) > 0 {
		if err := json.Unmarshal(providerData, &payment.ProviderData); err != nil {
			r.log.Warn("Failed to decode provider data",
				zap.Error(err),
				zap.String("payment_id", payment.ID),
			)
		}
	}

	return &payment, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (id, order_id, status, amount, currency, payment_method, provider_order_id, provider_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	providerData, err := json.Marshal(payment.ProviderData)
	if err != nil {
		return fmt.Errorf("marshal provider data for payment %s: %w", payment.ID, err)
	}

	_, err = r.db.Exec(ctx, query,
		payment.ID,
		payment.OrderID,
		payment.Status,
		payment.Amount,
		payment.Currency,
		payment.Method,
		payment.ProviderOrderID,
		providerData,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("payment_id", payment.ID),
			zap.String("order_id", payment.OrderID),
		)
		return fmt.Errorf("create payment %s: %w", payment.ID, err)
	}

	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := r.scanPayment(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by ID",
			zap.Error(err),
			zap.String("payment_id", id),
		)
		return nil, fmt.Errorf("find payment by ID %s: %w", id, err)
	}

	return payment, nil
}

func (r *paymentRepository) FindByOrderID(ctx context.Context, orderID string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1`

	payment, err := r.scanPayment(r.db.QueryRow(ctx, query, orderID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by order ID",
			zap.Error(err),
			zap.String("order_id", orderID),
		)
		return nil, fmt.Errorf("find payment by order ID %s: %w", orderID, err)
	}

	return payment, nil
}

func (r *paymentRepository) FindByProviderOrderID(ctx context.Context, providerOrderID string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider_order_id = $1 ORDER BY created_at DESC LIMIT 1`

	payment, err := r.scanPayment(r.db.QueryRow(ctx, query, providerOrderID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by provider order ID",
			zap.Error(err),
			zap.String("provider_order_id", providerOrderID),
		)
		return nil, fmt.Errorf("find payment by provider order ID %s: %w", providerOrderID, err)
	}

	return payment, nil
}

// FindByBagValue matches a payment whose correlation bag contains the given
// key/value pair, using jsonb containment so the partial GIN index applies.
func (r *paymentRepository) FindByBagValue(ctx context.Context, key, value string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider_data @> $1::jsonb ORDER BY created_at DESC LIMIT 1`

	probe, err := json.Marshal(map[string]string{key: value})
	if err != nil {
		return nil, fmt.Errorf("marshal bag probe for key %s: %w", key, err)
	}

	payment, err := r.scanPayment(r.db.QueryRow(ctx, query, probe))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by bag value",
			zap.Error(err),
			zap.String("key", key),
			zap.String("value", value),
		)
		return nil, fmt.Errorf("find payment by bag %s=%s: %w", key, value, err)
	}

	return payment, nil
}

// FindByNestedPaymentID matches against the provider payment id nested under
// the stored metadata object.
func (r *paymentRepository) FindByNestedPaymentID(ctx context.Context, paymentID string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider_data #>> '{metadata,payment_id}' = $1 ORDER BY created_at DESC LIMIT 1`

	payment, err := r.scanPayment(r.db.QueryRow(ctx, query, paymentID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by nested payment ID",
			zap.Error(err),
			zap.String("provider_payment_id", paymentID),
		)
		return nil, fmt.Errorf("find payment by nested payment ID %s: %w", paymentID, err)
	}

	return payment, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, paymentID string, status entity.PaymentStatus) error {
	query := `UPDATE payments SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, paymentID, status)
	if err != nil {
		r.log.Error("Failed to update payment status",
			zap.Error(err),
			zap.String("payment_id", paymentID),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update payment %s status to %s: %w", paymentID, string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("payment %s not found", paymentID)
	}

	return nil
}

// MergeProviderData folds new identifiers into the correlation bag without
// clobbering ones already present. The existing bag is the right operand of
// the jsonb concatenation, so on key collision the stored value wins.
func (r *paymentRepository) MergeProviderData(ctx context.Context, paymentID string, data map[string]any) error {
	if len(data) == 0 {
		return nil
	}

	query := `UPDATE payments SET provider_data = $2::jsonb || COALESCE(provider_data, '{}'::jsonb), updated_at = NOW() WHERE id = $1`

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal provider data for payment %s: %w", paymentID, err)
	}

	_, err = r.db.Exec(ctx, query, paymentID, payload)
	if err != nil {
		r.log.Error("Failed to merge provider data",
			zap.Error(err),
			zap.String("payment_id", paymentID),
		)
		return fmt.Errorf("merge provider data for payment %s: %w", paymentID, err)
	}

	return nil
}

// SetProviderOrderID backfills the dedicated column only when it is still
// unset. Identifiers learned from events never overwrite earlier ones.
func (r *paymentRepository) SetProviderOrderID(ctx context.Context, paymentID, providerOrderID string) error {
	query := `UPDATE payments SET provider_order_id = $2, updated_at = NOW() WHERE id = $1 AND provider_order_id IS NULL`

	_, err := r.db.Exec(ctx, query, paymentID, providerOrderID)
	if err != nil {
		r.log.Error("Failed to set provider order ID",
			zap.Error(err),
			zap.String("payment_id", paymentID),
			zap.String("provider_order_id", providerOrderID),
		)
		return fmt.Errorf("set provider order ID for payment %s: %w", paymentID, err)
	}

	return nil
}
