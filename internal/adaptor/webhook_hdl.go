package adaptor

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"surfcamp-booking/internal/data/entity"
	"surfcamp-booking/internal/dto/response"
	"surfcamp-booking/pkg/utils"

	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20 // 1 MiB

// signatureMaxSkew bounds how old or far in the future a signed timestamp
// may be. A valid signature over a stale timestamp is a replayed delivery.
const signatureMaxSkew = 5 * time.Minute

type webhookEnvelope struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// ReceiveWebhook ingests one provider event. Signature failures are 401,
// malformed envelopes are 400, persistence failures are 500 so the provider
// retries; everything else, including duplicates and orphans, is 200 so the
// provider stops redelivering.
func (h *Handler) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		utils.ResponseBadRequest(w, "Cannot read request body", nil)
		return
	}

	if !h.verifySignature(r, body) {
		utils.ResponseUnauthorized(w, "Invalid webhook signature")
		return
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		utils.ResponseBadRequest(w, "Invalid JSON payload", nil)
		return
	}
	if envelope.Type == "" || envelope.Data == nil {
		utils.ResponseBadRequest(w, "Payload must contain type and data", nil)
		return
	}

	result, err := h.service.Webhook.ProcessEvent(r.Context(), envelope.Type, envelope.Data)
	if err != nil {
		h.log.Error("Webhook processing failed",
			zap.Error(err),
			zap.String("event_type", envelope.Type),
		)
		utils.ResponseInternalError(w, "Failed to process event")
		return
	}

	ack := response.WebhookAckResponse{
		Received:  true,
		Duplicate: result.Duplicate,
		Matched:   result.Matched,
		Strategy:  result.Strategy,
		OrderID:   result.OrderID,
	}

	message := "Event processed"
	switch {
	case result.Duplicate:
		message = "Duplicate event skipped"
	case !result.Matched:
		message = "Event recorded, no matching payment yet"
	}

	utils.ResponseSuccess(w, message, ack)
}

// ProbeWebhook answers provider endpoint verification checks with the event
// kinds this service handles.
func (h *Handler) ProbeWebhook(w http.ResponseWriter, r *http.Request) {
	utils.ResponseSuccess(w, "Webhook endpoint ready", map[string]any{
		"supported_events": []string{
			string(entity.EventPaymentCreated),
			string(entity.EventPaymentUpdated),
			string(entity.EventPaymentCompleted),
			string(entity.EventPaymentFailed),
			string(entity.EventBookingCreated),
			string(entity.EventBookingUpdated),
			string(entity.EventTripConfirmed),
			string(entity.EventPartialRefund),
		},
	})
}

// verifySignature checks the HMAC-SHA256 signature over "timestamp.body"
// after rejecting timestamps outside the replay window. When no secret is
// configured verification is skipped with a warning, so local environments
// work without provider credentials.
func (h *Handler) verifySignature(r *http.Request, body []byte) bool {
	secret := h.config.Webhook.Secret
	if secret == "" {
		h.log.Warn("Webhook signature verification skipped, no secret configured")
		return true
	}

	signature := r.Header.Get("X-Signature")
	timestamp := r.Header.Get("X-Timestamp")
	if signature == "" || timestamp == "" {
		return false
	}

	sent, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	if skew := time.Since(time.Unix(sent, 0)); skew > signatureMaxSkew || skew < -signatureMaxSkew {
		h.log.Warn("Webhook timestamp outside replay window",
			zap.String("timestamp", timestamp),
			zap.Duration("skew", skew),
		)
		return false
	}

	// Some provider versions prefix the hex digest.
	signature = strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
