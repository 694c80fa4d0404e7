package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"surfcamp-booking/pkg/utils"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// PaymentProviderClient creates hosted payment links with the payment
// provider at checkout time.
type PaymentProviderClient interface {
	CreatePaymentLink(ctx context.Context, req *PaymentLinkRequest) (*PaymentLinkResult, error)
}

type PaymentLinkRequest struct {
	OrderID       string
	AmountCents   int64
	Currency      string
	Description   string
	CustomerName  string
	CustomerEmail string
}

type PaymentLinkResult struct {
	PaymentURL      string
	TripID          string
	ProviderOrderID string
	Raw             map[string]any
}

type providerClient struct {
	client *resty.Client
	log    *zap.Logger
}

func NewPaymentProviderClient(cfg utils.ProviderConfig, log *zap.Logger) PaymentProviderClient {
	client := resty.New().
		SetBaseURL(cfg.APIURL).
		SetTimeout(time.Duration(cfg.TimeoutSec) * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+cfg.APIKey)

	return &providerClient{
		client: client,
		log:    log.With(zap.String("gateway", "provider")),
	}
}

func (c *providerClient) CreatePaymentLink(ctx context.Context, req *PaymentLinkRequest) (*PaymentLinkResult, error) {
	body := map[string]any{
		"amount":      req.AmountCents,
		"currency":    req.Currency,
		"description": req.Description,
		"customer": map[string]string{
			"name":  req.CustomerName,
			"email": req.CustomerEmail,
		},
		"metadata": map[string]string{
			"order_id": req.OrderID,
		},
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/payment_links")

	if err != nil {
		c.log.Error("Payment link request failed",
			zap.Error(err),
			zap.String("order_id", req.OrderID),
		)
		return nil, fmt.Errorf("create payment link for order %s: %w", req.OrderID, err)
	}

	if resp.IsError() {
		c.log.Error("Payment link request rejected",
			zap.Int("status", resp.StatusCode()),
			zap.String("order_id", req.OrderID),
			zap.String("body", resp.String()),
		)
		return nil, fmt.Errorf("create payment link for order %s: status %d", req.OrderID, resp.StatusCode())
	}

	var payload map[string]any
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("decode payment link response for order %s: %w", req.OrderID, err)
	}

	result := &PaymentLinkResult{Raw: payload}

	// The provider has returned the link under several names across API
	// versions, so probe each in order.
	for _, key := range []string{"payment_url", "url", "link"} {
		if url := stringField(payload, key); url != "" {
			result.PaymentURL = url
			break
		}
	}
	if data, ok := payload["data"].(map[string]any); ok && result.PaymentURL == "" {
		result.PaymentURL = stringField(data, "payment_url")
	}

	for _, key := range []string{"trip_id", "tripId"} {
		if id := stringField(payload, key); id != "" {
			result.TripID = id
			break
		}
	}
	if trip, ok := payload["trip"].(map[string]any); ok && result.TripID == "" {
		result.TripID = stringField(trip, "id")
	}

	for _, key := range []string{"order_id", "orderId", "id"} {
		if id := stringField(payload, key); id != "" {
			result.ProviderOrderID = id
			break
		}
	}

	if result.PaymentURL == "" {
		return nil, fmt.Errorf("create payment link for order %s: no payment url in response", req.OrderID)
	}

	return result, nil
}
