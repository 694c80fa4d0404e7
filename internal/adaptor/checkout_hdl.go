package adaptor

import (
	"encoding/json"
	"net/http"

	"surfcamp-booking/internal/dto/request"
	"surfcamp-booking/pkg/utils"

	"go.uber.org/zap"
)

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req request.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid JSON payload", nil)
		return
	}

	if errors := utils.ValidateStruct(req); errors != nil {
		utils.ResponseBadRequest(w, "Validation failed", errors)
		return
	}

	result, err := h.service.Checkout.Checkout(r.Context(), &req)
	if err != nil {
		h.log.Error("Checkout failed", zap.Error(err))
		utils.ResponseInternalError(w, "Failed to create checkout")
		return
	}

	utils.ResponseCreated(w, "Checkout created", result)
}
