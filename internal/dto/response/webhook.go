package response

// WebhookAckResponse acknowledges a webhook delivery. Duplicate marks a
// replayed delivery that was skipped; Matched is false for orphaned events
// held for the repair sweep.
type WebhookAckResponse struct {
	Received  bool   `json:"received"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Matched   bool   `json:"matched"`
	Strategy  string `json:"strategy,omitempty"`
	OrderID   string `json:"order_id,omitempty"`
}
