package usecase

import (
	"surfcamp-booking/internal/data/repository"
	"surfcamp-booking/internal/gateway"
	"surfcamp-booking/pkg/database"
	"surfcamp-booking/pkg/utils"

	"go.uber.org/zap"
)

// Service bundles every use case behind one constructor so wiring stays in
// one place.
type Service struct {
	Webhook     *WebhookService
	Claim       *ClaimService
	Sweeper     *SweeperService
	Status      *StatusService
	Remediation *RemediationService
	Checkout    *CheckoutService
}

func NewService(
	db database.PgxIface,
	repo *repository.Repository,
	provider gateway.PaymentProviderClient,
	pms gateway.ReservationClient,
	notifier gateway.Notifier,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	claims := NewClaimService(repo, pms, notifier, config.Claim.TTL(), log)
	sweeper := NewSweeperService(repo, claims, config.Sweeper.Delay(), log)

	return &Service{
		Webhook:     NewWebhookService(db, claims, sweeper, log),
		Claim:       claims,
		Sweeper:     sweeper,
		Status:      NewStatusService(repo, config.Status, log),
		Remediation: NewRemediationService(repo, claims, log),
		Checkout:    NewCheckoutService(repo, provider, log),
	}
}
