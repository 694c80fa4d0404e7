package entity

type PaymentStatus string

const (
	PaymentStatusPending        PaymentStatus = "pending"
	PaymentStatusBookingCreated PaymentStatus = "booking_created"
	PaymentStatusCompleted      PaymentStatus = "completed"
	PaymentStatusFailed         PaymentStatus = "failed"
)

var paymentStatusRank = map[PaymentStatus]int{
	PaymentStatusPending:        0,
	PaymentStatusBookingCreated: 1,
	PaymentStatusCompleted:      2,
	PaymentStatusFailed:         2,
}

func (s PaymentStatus) Rank() int {
	return paymentStatusRank[s]
}

func (s PaymentStatus) CanAdvanceTo(next PaymentStatus) bool {
	return next.Rank() > s.Rank()
}

// Correlation bag keys. Provider-assigned identifiers accumulate under these
// keys over the lifetime of a payment and are never overwritten once set.
const (
	BagTripID            = "trip_id"
	BagMetadataOrderID   = "metadata_order_id"
	BagProviderOrderID   = "provider_order_id"
	BagProviderPaymentID = "provider_payment_id"
	BagPaymentURL        = "payment_url"
	BagMetadata          = "metadata"
)

type Payment struct {
	Base
	OrderID         string         `db:"order_id"`
	Status          PaymentStatus  `db:"status"`
	Amount          int64          `db:"amount"` // cents
	Currency        string         `db:"currency"`
	Method          *string        `db:"payment_method"`
	ProviderOrderID *string        `db:"provider_order_id"`
	ProviderData    map[string]any `db:"provider_data"` // correlation bag
}

// BagString returns the string value stored under key in the correlation
// bag, or "" when absent or not a string.
func (p *Payment) BagString(key string) string {
	if p.ProviderData == nil {
		return ""
	}
	v, ok := p.ProviderData[key].(string)
	if !ok {
		return ""
	}
	return v
}
