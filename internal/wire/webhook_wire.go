package wire

import (
	"surfcamp-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireWebhook(r chi.Router, handler *adaptor.Handler) {
	// ==================== PROVIDER ROUTES ====================
	// POST /api/webhook - Receive provider payment events
	r.Post("/api/webhook", handler.ReceiveWebhook)

	// GET /api/webhook - Provider endpoint verification probe
	r.Get("/api/webhook", handler.ProbeWebhook)
}
