package response

type CheckoutResponse struct {
	OrderID     string `json:"order_id"`
	PaymentID   string `json:"payment_id"`
	PaymentURL  string `json:"payment_url"`
	TripID      string `json:"trip_id,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}
