package usecase

import (
	"screenbook/internal/data/repository"

	"go.uber.org/zap"
)

type Service struct {
	Screening ScreeningService
	Booking   BookingService
}

func NewService(
	repo *repository.Repository,
	uow repository.UnitOfWork,
	notifier StatsNotifier,
	seatsCache BookedSeatsCache,
	log *zap.Logger,
) *Service {
	return &Service{
		Screening: NewScreeningService(repo, uow, seatsCache, log),
		Booking:   NewBookingService(repo, uow, notifier, seatsCache, log),
	}
}
