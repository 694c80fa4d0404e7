package usecase

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ResolvedIDs carries every identifier that could be pulled out of one
// webhook payload. Provider payloads are inconsistent about where they put
// each id, so every field is a fallback chain over several locations.
type ResolvedIDs struct {
	OrderID           string // provider-assigned order id
	MetadataOrderID   string // our order id echoed back through metadata
	TripID            string
	ProviderPaymentID string // provider's own payment id
	MetadataPaymentID string // our payment id echoed back through metadata
	Status            string
	PaymentURL        string
	Metadata          map[string]any
}

// ActualOrderID returns the identifier most likely to be our own order id:
// the metadata echo when present, otherwise the provider order id.
func (r ResolvedIDs) ActualOrderID() string {
	if r.MetadataOrderID != "" {
		return r.MetadataOrderID
	}
	return r.OrderID
}

// ResolveIdentifiers extracts identifiers from a webhook event's data
// object. Each chain is ordered from the most common location to the rarest;
// the first non-empty value wins. The provider payment id and its metadata
// echo stay separate because they can legitimately differ.
func ResolveIdentifiers(data map[string]any) ResolvedIDs {
	order, _ := data["order"].(map[string]any)
	trip, _ := data["trip"].(map[string]any)
	metadata, _ := data["metadata"].(map[string]any)
	booking, _ := metadata["booking_data"].(map[string]any)

	ids := ResolvedIDs{
		OrderID:           firstString(data, "order_id", "orderId"),
		MetadataOrderID:   firstString(metadata, "order_id", "orderId"),
		ProviderPaymentID: firstString(data, "payment_id", "paymentId", "id"),
		MetadataPaymentID: firstString(metadata, "payment_id"),
		Status:            strings.ToLower(firstString(data, "status", "payment_status")),
		PaymentURL:        firstString(data, "payment_url", "url"),
		Metadata:          metadata,
	}

	if ids.OrderID == "" {
		ids.OrderID = firstString(order, "id", "order_id")
	}

	ids.TripID = firstNonEmpty(
		firstString(trip, "uuid"),
		firstString(data, "trip_uuid", "trip_id", "tripId"),
		firstString(order, "trip_id", "tripId"),
		firstString(trip, "id", "trip_id"),
		firstString(metadata, "trip_id"),
		firstString(booking, "trip_id"),
	)

	return ids
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// firstString walks keys in order and returns the first value present and
// convertible to a string. Provider payloads carry numeric ids as JSON
// numbers, so those are formatted without a fraction. A nil map yields "".
func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		case json.Number:
			return v.String()
		}
	}
	return ""
}
