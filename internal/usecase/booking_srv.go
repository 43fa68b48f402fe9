package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"screenbook/internal/data/entity"
	"screenbook/internal/data/repository"
	"screenbook/internal/dto/request"
	"screenbook/internal/dto/response"
	"screenbook/internal/queue"
	"screenbook/pkg/apperr"
	"screenbook/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	UpdateBooking(ctx context.Context, bookingID string, req *request.UpdateBookingRequest) (*response.BookingResponse, error)
	DeleteBooking(ctx context.Context, bookingID string) error
	MarkUsed(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error)
}

type bookingService struct {
	repo       *repository.Repository
	uow        repository.UnitOfWork
	notifier   StatsNotifier
	seatsCache BookedSeatsCache
	log        *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	uow repository.UnitOfWork,
	notifier StatsNotifier,
	seatsCache BookedSeatsCache,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		repo:       repo,
		uow:        uow,
		notifier:   notifier,
		seatsCache: seatsCache,
		log:        log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, apperr.BadRequest("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	if dup := utils.FindDuplicate(req.SeatIDs); dup != "" {
		return nil, apperr.BadRequest("duplicate seat id %q in request", dup)
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, apperr.BadRequest("invalid user ID format %s", req.UserID)
	}
	screeningID, err := uuid.Parse(req.ScreeningID)
	if err != nil {
		return nil, apperr.BadRequest("invalid screening ID format %s", req.ScreeningID)
	}

	var booking *entity.Booking

	// Everything between the screening lock and the reservation insert is one
	// transaction. Two concurrent requests for the same seat serialize on the
	// screening row: the loser re-checks against committed state and gets a
	// conflict instead of a double booking.
	err = s.uow.WithinTx(ctx, func(repos *repository.Repository) error {
		screening, err := repos.Screening.FindByIDForUpdate(ctx, screeningID)
		if err != nil {
			return fmt.Errorf("lock screening: %w", err)
		}
		if screening == nil {
			return apperr.NotFound("screening %s not found", req.ScreeningID)
		}

		if screening.StartTime.Before(time.Now()) {
			return apperr.BadRequest("cannot book for a past screening")
		}

		hall, err := repos.Hall.FindByTheaterAndID(ctx, screening.TheaterID, screening.HallID)
		if err != nil {
			return fmt.Errorf("resolve hall: %w", err)
		}
		if hall == nil {
			return apperr.NotFound("hall %s not found for screening %s", screening.HallID, req.ScreeningID)
		}

		// seat existence against the hall layout
		validSeats := hall.SeatLayout.ValidSeatIDs()
		for _, seatID := range req.SeatIDs {
			if _, ok := validSeats[seatID]; !ok {
				return apperr.BadRequest("seat %q does not exist in hall %s", seatID, hall.Name)
			}
		}

		// seat availability, re-checked under the lock; reports every taken
		// seat so the client can retry with a corrected set
		taken, err := repos.SeatReservation.FindTakenSeats(ctx, screeningID, req.SeatIDs)
		if err != nil {
			return fmt.Errorf("check seat availability: %w", err)
		}
		if len(taken) > 0 {
			return apperr.ConflictWithDetails(taken, "seats already booked for this screening: %s", strings.Join(taken, ", "))
		}

		now := time.Now()
		booking = &entity.Booking{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			UserID:      userID,
			ScreeningID: screeningID,
			TotalSeats:  len(req.SeatIDs),
			TotalPrice:  screening.Price * float64(len(req.SeatIDs)),
			Status:      entity.BookingStatusPending,
			BookingDate: now,
		}

		if err := repos.Booking.Create(ctx, booking); err != nil {
			return err
		}

		reservations := make([]*entity.SeatReservation, len(req.SeatIDs))
		for i, seatID := range req.SeatIDs {
			reservations[i] = &entity.SeatReservation{
				BaseSimple: entity.BaseSimple{
					ID:        uuid.New(),
					CreatedAt: now,
				},
				BookingID:   booking.ID,
				ScreeningID: screeningID,
				SeatID:      seatID,
			}
		}

		return repos.SeatReservation.CreateBatch(ctx, reservations)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("user_id", req.UserID),
		zap.String("screening_id", req.ScreeningID),
		zap.Int("seat_count", len(req.SeatIDs)),
		zap.Float64("total_price", booking.TotalPrice),
	)

	// post-commit: stats are a derived view, the booking is the source of
	// truth, so a notification failure never reverses the commit
	s.notifyAdded(ctx, booking, req.SeatIDs)
	s.seatsCache.Invalidate(ctx, screeningID.String())

	return response.BookingToResponse(booking, req.SeatIDs), nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperr.BadRequest("invalid booking ID format %s", bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, apperr.NotFound("booking %s not found", bookingID)
	}

	seatIDs, err := s.repo.SeatReservation.FindSeatIDsByBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking seats %s: %w", bookingID, err)
	}

	return response.BookingToResponse(booking, seatIDs), nil
}

func (s *bookingService) UpdateBooking(ctx context.Context, bookingID string, req *request.UpdateBookingRequest) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperr.BadRequest("invalid booking ID format %s", bookingID)
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update booking validation failed", zap.Any("errors", errs))
		return nil, apperr.BadRequest("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	var booking *entity.Booking

	err = s.uow.WithinTx(ctx, func(repos *repository.Repository) error {
		existing, err := repos.Booking.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("lock booking: %w", err)
		}
		if existing == nil {
			return apperr.NotFound("booking %s not found", bookingID)
		}

		if req.Status != nil {
			status, err := entity.ParseBookingStatus(*req.Status)
			if err != nil {
				return err
			}
			if err := existing.SetStatus(status); err != nil {
				return err
			}
		}
		if req.BookingDate != nil {
			bookingDate, err := time.Parse(time.RFC3339, *req.BookingDate)
			if err != nil {
				return apperr.BadRequest("invalid booking date %s: must be RFC3339", *req.BookingDate)
			}
			existing.BookingDate = bookingDate
		}

		existing.UpdatedAt = time.Now()
		booking = existing

		return repos.Booking.Update(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking updated", zap.String("booking_id", bookingID))

	return s.withSeats(ctx, booking)
}

func (s *bookingService) DeleteBooking(ctx context.Context, bookingID string) error {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return apperr.BadRequest("invalid booking ID format %s", bookingID)
	}

	var booking *entity.Booking
	var seatIDs []string

	err = s.uow.WithinTx(ctx, func(repos *repository.Repository) error {
		existing, err := repos.Booking.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("lock booking: %w", err)
		}
		if existing == nil {
			return apperr.NotFound("booking %s not found", bookingID)
		}
		booking = existing

		seatIDs, err = repos.SeatReservation.FindSeatIDsByBooking(ctx, id)
		if err != nil {
			return fmt.Errorf("load booking seats: %w", err)
		}

		// the reservations and the booking row go together or not at all
		if err := repos.SeatReservation.DeleteByBookingID(ctx, id); err != nil {
			return err
		}
		return repos.Booking.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("Booking deleted",
		zap.String("booking_id", bookingID),
		zap.Int("released_seats", len(seatIDs)),
	)

	s.notifyRemoved(ctx, booking, seatIDs)
	s.seatsCache.Invalidate(ctx, booking.ScreeningID.String())

	return nil
}

func (s *bookingService) MarkUsed(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	return s.transition(ctx, bookingID, "mark used", (*entity.Booking).MarkUsed)
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	return s.transition(ctx, bookingID, "cancel", (*entity.Booking).Cancel)
}

// transition applies a guarded lifecycle transition under a locked booking
// row. The guard decides; this only persists the outcome.
func (s *bookingService) transition(
	ctx context.Context,
	bookingID string,
	action string,
	apply func(*entity.Booking) error,
) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperr.BadRequest("invalid booking ID format %s", bookingID)
	}

	var booking *entity.Booking

	err = s.uow.WithinTx(ctx, func(repos *repository.Repository) error {
		existing, err := repos.Booking.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("lock booking: %w", err)
		}
		if existing == nil {
			return apperr.NotFound("booking %s not found", bookingID)
		}

		if err := apply(existing); err != nil {
			return err
		}

		booking = existing
		return repos.Booking.UpdateStatus(ctx, id, existing.Status)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking status changed",
		zap.String("booking_id", bookingID),
		zap.String("action", action),
		zap.String("status", string(booking.Status)),
	)

	return s.withSeats(ctx, booking)
}

// ==================== HELPER METHODS ====================

func (s *bookingService) withSeats(ctx context.Context, booking *entity.Booking) (*response.BookingResponse, error) {
	seatIDs, err := s.repo.SeatReservation.FindSeatIDsByBooking(ctx, booking.ID)
	if err != nil {
		// the mutation committed; return the booking without the seat list
		// rather than failing the request
		s.log.Warn("Failed to load seats for booking response",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		seatIDs = nil
	}
	return response.BookingToResponse(booking, seatIDs), nil
}

func (s *bookingService) notifyAdded(ctx context.Context, booking *entity.Booking, seatIDs []string) {
	if err := s.notifier.BookingAdded(ctx, s.event(booking, seatIDs)); err != nil {
		s.log.Warn("Stats notification failed for booking added",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
	}
}

func (s *bookingService) notifyRemoved(ctx context.Context, booking *entity.Booking, seatIDs []string) {
	if err := s.notifier.BookingRemoved(ctx, s.event(booking, seatIDs)); err != nil {
		s.log.Warn("Stats notification failed for booking removed",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
	}
}

func (s *bookingService) event(booking *entity.Booking, seatIDs []string) queue.BookingEvent {
	return queue.BookingEvent{
		BookingID:   booking.ID.String(),
		UserID:      booking.UserID.String(),
		ScreeningID: booking.ScreeningID.String(),
		SeatIDs:     seatIDs,
		TotalPrice:  booking.TotalPrice,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	}
}
