package wire

import (
	"surfcamp-booking/internal/adaptor"
	"surfcamp-booking/pkg/middleware"
	"surfcamp-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAdmin(r chi.Router, handler *adaptor.Handler, config *utils.Config, log *zap.Logger) {
	// ==================== OPERATOR ROUTES ====================
	// Operator remediation routes require the bearer token
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Operator(config.Webhook.OperatorToken, log))

		// POST /api/admin/fix-payment - Force-settle one stuck payment
		r.Post("/fix-payment", handler.FixPayment)

		// POST /api/admin/repair-orphans - Run the orphan sweep on demand
		r.Post("/repair-orphans", handler.RepairOrphans)

		// GET /api/admin/orphans - Inspect the orphaned-event backlog
		r.Get("/orphans", handler.ListOrphans)
	})
}
