// internal/wire/wire.go
package wire

import (
	"net/http"

	"surfcamp-booking/internal/adaptor"
	"surfcamp-booking/internal/data/repository"
	"surfcamp-booking/internal/gateway"
	"surfcamp-booking/internal/usecase"
	"surfcamp-booking/pkg/database"
	"surfcamp-booking/pkg/middleware"
	"surfcamp-booking/pkg/ratelimit"
	"surfcamp-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired application
type App struct {
	Router *chi.Mux
}

// Wiring initializes all dependencies
func Wiring(db database.PgxIface, repo *repository.Repository, limiter ratelimit.Limiter, config *utils.Config, logger *zap.Logger) *App {
	// External gateways
	provider := gateway.NewPaymentProviderClient(config.Provider, logger)
	pms := gateway.NewReservationClient(config.PMS, logger)
	notifier := gateway.NewNotifier(config.Notify, logger)

	// Initialize services and handlers
	service := usecase.NewService(db, repo, provider, pms, notifier, config, logger)
	handler := adaptor.NewHandler(service, config, logger)

	// Setup router
	router := setupRouter(handler, db, limiter, config, logger)

	return &App{
		Router: router,
	}
}

// setupRouter configures the Chi router
func setupRouter(
	handler *adaptor.Handler,
	db database.PgxIface,
	limiter ratelimit.Limiter,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RateLimit(limiter, logger))

	// Apply routes
	wireWebhook(r, handler)
	wireStatus(r, handler)
	wireCheckout(r, handler)
	wireAdmin(r, handler, config, logger)

	// Health check endpoint with a database ping
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := db.Ping(req.Context()); err != nil {
			logger.Error("Health check failed", zap.Error(err))
			utils.ResponseInternalError(w, "database unreachable")
			return
		}
		utils.ResponseSuccess(w, "OK", nil)
	})

	return r
}
