package wire

import (
	"surfcamp-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireStatus(r chi.Router, handler *adaptor.Handler) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/payment-status - Poll payment progress after redirect
	r.Get("/api/payment-status", handler.PaymentStatus)
}
