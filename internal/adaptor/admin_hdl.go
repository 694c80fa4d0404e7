package adaptor

import (
	"encoding/json"
	"net/http"

	"surfcamp-booking/internal/dto/request"
	"surfcamp-booking/internal/dto/response"
	"surfcamp-booking/internal/usecase"
	"surfcamp-booking/pkg/utils"

	"go.uber.org/zap"
)

// FixPayment force-settles one stuck payment. Operator endpoints sit behind
// the bearer-token middleware.
func (h *Handler) FixPayment(w http.ResponseWriter, r *http.Request) {
	var req request.FixPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid JSON payload", nil)
		return
	}

	if errors := utils.ValidateStruct(req); errors != nil {
		utils.ResponseBadRequest(w, "Validation failed", errors)
		return
	}

	report, err := h.service.Remediation.FixPayment(r.Context(), usecase.FixRequest{
		OrderID:         req.OrderID,
		TripID:          req.TripID,
		SkipReservation: req.SkipReservation,
	})
	if err != nil {
		h.log.Error("Manual payment fix failed",
			zap.Error(err),
			zap.String("order_id", req.OrderID),
			zap.String("trip_id", req.TripID),
		)
		utils.ResponseInternalError(w, "Failed to fix payment")
		return
	}

	if !report.Found {
		utils.ResponseNotFound(w, "No payment found for the given identifiers")
		return
	}

	utils.ResponseSuccess(w, "Payment repaired", report)
}

// RepairOrphans runs the orphan sweep on demand, for one trip or across the
// whole backlog.
func (h *Handler) RepairOrphans(w http.ResponseWriter, r *http.Request) {
	var req request.RepairOrphansRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid JSON payload", nil)
		return
	}

	if errors := utils.ValidateStruct(req); errors != nil {
		utils.ResponseBadRequest(w, "Validation failed", errors)
		return
	}

	var report *usecase.RepairReport
	var err error
	if req.TripID != "" {
		report, err = h.service.Sweeper.RepairByTripID(r.Context(), req.TripID)
	} else {
		report, err = h.service.Sweeper.RepairAll(r.Context(), req.Limit)
	}
	if err != nil {
		h.log.Error("Orphan repair failed",
			zap.Error(err),
			zap.String("trip_id", req.TripID),
		)
		utils.ResponseInternalError(w, "Failed to repair orphans")
		return
	}

	utils.ResponseSuccess(w, "Orphan repair complete", report)
}

// ListOrphans shows the current orphaned-event backlog.
func (h *Handler) ListOrphans(w http.ResponseWriter, r *http.Request) {
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 50)

	events, total, err := h.service.Sweeper.Orphans(r.Context(), limit)
	if err != nil {
		h.log.Error("Orphan listing failed", zap.Error(err))
		utils.ResponseInternalError(w, "Failed to list orphans")
		return
	}

	resp := response.OrphanListResponse{
		Total:  total,
		Events: make([]response.OrphanEvent, 0, len(events)),
	}
	for _, event := range events {
		item := response.OrphanEvent{
			EventKey:   event.EventKey,
			EventType:  event.EventType,
			ReceivedAt: event.ReceivedAt,
		}
		if event.TripID != nil {
			item.TripID = *event.TripID
		}
		resp.Events = append(resp.Events, item)
	}

	utils.ResponseSuccess(w, "Orphaned events", resp)
}
