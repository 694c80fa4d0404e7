package entity

import (
	"encoding/json"
)

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusBookingCreated OrderStatus = "booking_created"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
	OrderStatusRefunded       OrderStatus = "refunded"
)

// orderStatusRank orders statuses along the lifecycle. Transitions may only
// move to a strictly higher rank; equal-rank terminal states never replace
// each other.
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:        0,
	OrderStatusBookingCreated: 1,
	OrderStatusPaid:           2,
	OrderStatusCompleted:      3,
	OrderStatusCancelled:      3,
	OrderStatusRefunded:       3,
}

func (s OrderStatus) Rank() int {
	return orderStatusRank[s]
}

func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	return next.Rank() > s.Rank()
}

type Order struct {
	Base
	Status         OrderStatus     `db:"status"`
	TotalAmount    int64           `db:"total_amount"` // cents
	Currency       string          `db:"currency"`
	CustomerName   string          `db:"customer_name"`
	CustomerEmail  string          `db:"customer_email"`
	BookingData    *BookingDetails `db:"booking_data"`
	ReservationRef *string         `db:"pms_reservation_id"`
	PMSData        json.RawMessage `db:"pms_data"`
}

// Reservation returns the decoded reservation state for this order.
func (o *Order) Reservation() ReservationRef {
	return ParseReservationRef(o.ReservationRef)
}

// BookingDetails is the embedded booking snapshot captured at checkout and
// later handed to the property-management system.
type BookingDetails struct {
	CheckIn            string        `json:"check_in"`
	CheckOut           string        `json:"check_out"`
	Guests             int           `json:"guests"`
	RoomTypeID         string        `json:"room_type_id"`
	IsSharedRoom       bool          `json:"is_shared_room"`
	Nights             int           `json:"nights"`
	TotalAmountCents   int64         `json:"total_amount_cents"`
	DepositAmountCents int64         `json:"deposit_amount_cents"`
	ContactInfo        ContactInfo   `json:"contact_info"`
	SelectedActivities []Activity    `json:"selected_activities,omitempty"`
	Participants       []Participant `json:"participants,omitempty"`
}

type ContactInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

type Activity struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type Participant struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
}
