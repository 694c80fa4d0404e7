package adaptor

import (
	"surfcamp-booking/internal/usecase"
	"surfcamp-booking/pkg/utils"

	"go.uber.org/zap"
)

// Handler carries the shared dependencies of every HTTP handler.
type Handler struct {
	service *usecase.Service
	config  *utils.Config
	log     *zap.Logger
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		config:  config,
		log:     log.With(zap.String("layer", "adaptor")),
	}
}
