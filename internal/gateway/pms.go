package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"surfcamp-booking/internal/data/entity"
	"surfcamp-booking/pkg/utils"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ReservationClient talks to the property-management system. Reservation
// creation is slow on the remote side, so the client carries a long timeout.
type ReservationClient interface {
	CreateReservation(ctx context.Context, order *entity.Order) (*ReservationResult, error)
}

type ReservationResult struct {
	ReservationID string
	Raw           json.RawMessage
}

type pmsClient struct {
	client *resty.Client
	log    *zap.Logger
}

func NewReservationClient(cfg utils.PMSConfig, log *zap.Logger) ReservationClient {
	client := resty.New().
		SetBaseURL(cfg.APIURL).
		SetTimeout(time.Duration(cfg.TimeoutSec) * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+cfg.APIKey)

	return &pmsClient{
		client: client,
		log:    log.With(zap.String("gateway", "pms")),
	}
}

type pmsReservationRequest struct {
	CheckIn       string              `json:"check_in"`
	CheckOut      string              `json:"check_out"`
	Guests        int                 `json:"guests"`
	RoomTypeID    string              `json:"room_type_id"`
	IsSharedRoom  bool                `json:"is_shared_room"`
	GuestName     string              `json:"guest_name"`
	GuestEmail    string              `json:"guest_email"`
	GuestPhone    string              `json:"guest_phone,omitempty"`
	ExternalRef   string              `json:"external_ref"`
	AmountCents   int64               `json:"amount_cents"`
	Currency      string              `json:"currency"`
	Activities    []entity.Activity   `json:"activities,omitempty"`
	Participants  []entity.Participant `json:"participants,omitempty"`
}

func (c *pmsClient) CreateReservation(ctx context.Context, order *entity.Order) (*ReservationResult, error) {
	if order.BookingData == nil {
		return nil, fmt.Errorf("order %s has no booking data", order.ID)
	}

	details := order.BookingData
	req := pmsReservationRequest{
		CheckIn:      details.CheckIn,
		CheckOut:     details.CheckOut,
		Guests:       details.Guests,
		RoomTypeID:   details.RoomTypeID,
		IsSharedRoom: details.IsSharedRoom,
		GuestName:    order.CustomerName,
		GuestEmail:   order.CustomerEmail,
		GuestPhone:   details.ContactInfo.Phone,
		ExternalRef:  order.ID,
		AmountCents:  order.TotalAmount,
		Currency:     order.Currency,
		Activities:   details.SelectedActivities,
		Participants: details.Participants,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/reservations")

	if err != nil {
		c.log.Error("Reservation request failed",
			zap.Error(err),
			zap.String("order_id", order.ID),
		)
		return nil, fmt.Errorf("create reservation for order %s: %w", order.ID, err)
	}

	if resp.IsError() {
		c.log.Error("Reservation request rejected",
			zap.Int("status", resp.StatusCode()),
			zap.String("order_id", order.ID),
			zap.String("body", resp.String()),
		)
		return nil, fmt.Errorf("create reservation for order %s: status %d", order.ID, resp.StatusCode())
	}

	id := extractReservationID(resp.Body())
	if id == "" {
		return nil, fmt.Errorf("create reservation for order %s: no reservation id in response", order.ID)
	}

	return &ReservationResult{
		ReservationID: id,
		Raw:           json.RawMessage(resp.Body()),
	}, nil
}

// extractReservationID probes the response shapes the remote system has been
// observed to return: a top-level reservationId, a nested reservation.id, a
// nested booking.booking_id, or a plain top-level id.
func extractReservationID(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	if id := stringField(payload, "reservationId"); id != "" {
		return id
	}
	if nested, ok := payload["reservation"].(map[string]any); ok {
		if id := stringField(nested, "id"); id != "" {
			return id
		}
	}
	if nested, ok := payload["booking"].(map[string]any); ok {
		if id := stringField(nested, "booking_id"); id != "" {
			return id
		}
	}
	return stringField(payload, "id")
}

// stringField reads a field as a string, accepting JSON numbers since the
// remote systems use numeric identifiers in some responses.
func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case json.Number:
		return v.String()
	}
	return ""
}
