package adaptor

import (
	"net/http"

	"surfcamp-booking/internal/dto/response"
	"surfcamp-booking/pkg/utils"

	"go.uber.org/zap"
)

// PaymentStatus answers the post-redirect polling page. An unknown order is
// still a 200 with found=false; the page keeps polling while checkout and
// the first webhook settle.
func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")
	tripID := r.URL.Query().Get("trip_id")
	if tripID == "" {
		tripID = r.URL.Query().Get("trip_uuid")
	}

	if orderID == "" && tripID == "" {
		utils.ResponseBadRequest(w, "order_id or trip_id is required", nil)
		return
	}

	result, err := h.service.Status.Lookup(r.Context(), orderID, tripID)
	if err != nil {
		h.log.Error("Payment status lookup failed",
			zap.Error(err),
			zap.String("order_id", orderID),
			zap.String("trip_id", tripID),
		)
		utils.ResponseInternalError(w, "Failed to look up payment status")
		return
	}

	resp := response.PaymentStatusResponse{
		Found:            result.Found,
		OrderID:          result.OrderID,
		PaymentID:        result.PaymentID,
		PaymentStatus:    string(result.PaymentStatus),
		OrderStatus:      string(result.OrderStatus),
		IsBookingCreated: result.BookingConfirmed,
		IsCompleted:      result.Paid,
		ShowSuccess:      result.Paid || result.ReservationCreated,
		ReservationID:    result.ReservationID,
		PaymentURL:       result.PaymentURL,
	}

	message := "Payment status"
	if !result.Found {
		message = "No payment found yet"
	}

	utils.ResponseSuccess(w, message, resp)
}
