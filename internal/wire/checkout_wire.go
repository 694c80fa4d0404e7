package wire

import (
	"surfcamp-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireCheckout(r chi.Router, handler *adaptor.Handler) {
	// ==================== PUBLIC ROUTES ====================
	// POST /api/checkout - Create order, payment and hosted payment link
	r.Post("/api/checkout", handler.Checkout)
}
