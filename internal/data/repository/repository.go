package repository

import (
	"screenbook/pkg/database"

	"go.uber.org/zap"
)

// Repository groups the aggregates the booking core touches. Movie and Hall
// are read-only catalog borrows; Screening, Booking and SeatReservation are
// owned by the core and only ever written through the unit of work.
type Repository struct {
	Movie           MovieRepository
	Hall            HallRepository
	Screening       ScreeningRepository
	Booking         BookingRepository
	SeatReservation SeatReservationRepository
}

// NewRepository binds all repositories to q, which is either the pool or an
// open transaction.
func NewRepository(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		Movie:           NewMovieRepository(q, log),
		Hall:            NewHallRepository(q, log),
		Screening:       NewScreeningRepository(q, log),
		Booking:         NewBookingRepository(q, log),
		SeatReservation: NewSeatReservationRepository(q, log),
	}
}
