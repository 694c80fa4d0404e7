package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// EventKey derives a stable deduplication key for one webhook delivery. Two
// deliveries of the same logical event hash to the same key regardless of
// payload noise: the key covers only the event type and the identifiers that
// define the event's identity.
func EventKey(eventType string, ids ResolvedIDs) string {
	orderPart := ids.ActualOrderID()
	if orderPart == "" {
		orderPart = ids.TripID
	}
	if orderPart == "" {
		orderPart = "no_id"
	}

	tripPart := ids.TripID
	if tripPart == "" {
		tripPart = "no_trip"
	}

	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", eventType, orderPart, tripPart)))
	return hex.EncodeToString(sum[:])
}
