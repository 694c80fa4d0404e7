package gateway

import (
	"context"
	"time"

	"surfcamp-booking/pkg/utils"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Notifier pushes operational notifications after a reservation is committed.
// Delivery is best effort: failures are logged and never propagate into the
// reservation flow.
type Notifier interface {
	ReservationConfirmed(ctx context.Context, orderID, reservationID, customerEmail string)
}

type webhookNotifier struct {
	client  *resty.Client
	enabled bool
	log     *zap.Logger
}

func NewNotifier(cfg utils.NotifyConfig, log *zap.Logger) Notifier {
	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	if cfg.Token != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.Token)
	}

	return &webhookNotifier{
		client:  client,
		enabled: cfg.URL != "",
		log:     log.With(zap.String("gateway", "notifier")),
	}
}

func (n *webhookNotifier) ReservationConfirmed(ctx context.Context, orderID, reservationID, customerEmail string) {
	if !n.enabled {
		return
	}

	body := map[string]string{
		"event":          "reservation.confirmed",
		"order_id":       orderID,
		"reservation_id": reservationID,
		"customer_email": customerEmail,
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("")

	if err != nil {
		n.log.Warn("Notification delivery failed",
			zap.Error(err),
			zap.String("order_id", orderID),
		)
		return
	}

	if resp.IsError() {
		n.log.Warn("Notification rejected",
			zap.Int("status", resp.StatusCode()),
			zap.String("order_id", orderID),
		)
	}
}
