package response

import "time"

type OrphanEvent struct {
	EventKey   string    `json:"event_key"`
	EventType  string    `json:"event_type"`
	TripID     string    `json:"trip_id,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

type OrphanListResponse struct {
	Total  int64         `json:"total"`
	Events []OrphanEvent `json:"events"`
}
