package request

// FixPaymentRequest identifies a stuck payment for manual repair. One of
// order_id and trip_id must be provided.
type FixPaymentRequest struct {
	OrderID         string `json:"order_id" validate:"required_without=TripID"`
	TripID          string `json:"trip_id" validate:"required_without=OrderID"`
	SkipReservation bool   `json:"skip_reservation"`
}

// RepairOrphansRequest bounds a manual orphan sweep. TripID narrows the
// sweep to one trip; Limit caps a full sweep.
type RepairOrphansRequest struct {
	TripID string `json:"trip_id"`
	Limit  int    `json:"limit" validate:"omitempty,min=1,max=500"`
}
