package request

// CheckoutRequest creates an order, its payment row, and a hosted payment
// link with the provider.
type CheckoutRequest struct {
	CheckIn       string               `json:"check_in" validate:"required"`
	CheckOut      string               `json:"check_out" validate:"required"`
	Guests        int                  `json:"guests" validate:"required,min=1,max=20"`
	RoomTypeID    string               `json:"room_type_id" validate:"required"`
	IsSharedRoom  bool                 `json:"is_shared_room"`
	Nights        int                  `json:"nights" validate:"required,min=1"`
	AmountCents   int64                `json:"amount_cents" validate:"required,min=1"`
	Currency      string               `json:"currency" validate:"required,len=3"`
	Contact       ContactRequest       `json:"contact" validate:"required"`
	Activities    []ActivityRequest    `json:"activities" validate:"dive"`
	Participants  []ParticipantRequest `json:"participants" validate:"dive"`
	DepositOnly   bool                 `json:"deposit_only"`
}

type ContactRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
}

type ActivityRequest struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`
}

type ParticipantRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
}
