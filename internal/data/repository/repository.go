package repository

import (
	"surfcamp-booking/pkg/database"

	"go.uber.org/zap"
)

// Repository bundles all data access. NewRepository accepts any PgxIface so
// the same constructors serve both the pool and an open transaction wrapped
// with database.WrapTx.
type Repository struct {
	Order        OrderRepository
	Payment      PaymentRepository
	WebhookEvent WebhookEventRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Order:        NewOrderRepository(db, log),
		Payment:      NewPaymentRepository(db, log),
		WebhookEvent: NewWebhookEventRepository(db, log),
	}
}
