package adaptor

import (
	"screenbook/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Screening *ScreeningHandler
	Booking   *BookingHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Screening: NewScreeningHandler(service.Screening, log),
		Booking:   NewBookingHandler(service.Booking, log),
	}
}
