package response

// PaymentStatusResponse is the polled payment status view. Found is false
// when no payment matches the query, which the polling page treats as
// "still being created" rather than an error.
type PaymentStatusResponse struct {
	Found            bool   `json:"found"`
	OrderID          string `json:"order_id,omitempty"`
	PaymentID        string `json:"payment_id,omitempty"`
	PaymentStatus    string `json:"payment_status,omitempty"`
	OrderStatus      string `json:"order_status,omitempty"`
	IsBookingCreated bool   `json:"is_booking_created"`
	IsCompleted      bool   `json:"is_completed"`
	ShowSuccess      bool   `json:"show_success"`
	ReservationID    string `json:"reservation_id,omitempty"`
	PaymentURL       string `json:"payment_url,omitempty"`
}
