package repository

import (
	"context"
	"fmt"

	"screenbook/internal/data/entity"
	"screenbook/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SeatReservationRepository interface {
	CreateBatch(ctx context.Context, reservations []*entity.SeatReservation) error
	DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) error

	// Business queries
	FindTakenSeats(ctx context.Context, screeningID uuid.UUID, seatIDs []string) ([]string, error)
	FindSeatIDsByScreening(ctx context.Context, screeningID uuid.UUID) ([]string, error)
	FindSeatIDsByBooking(ctx context.Context, bookingID uuid.UUID) ([]string, error)
}

type seatReservationRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewSeatReservationRepository(db database.Querier, log *zap.Logger) SeatReservationRepository {
	return &seatReservationRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat_reservation")),
	}
}

func (r *seatReservationRepository) CreateBatch(ctx context.Context, reservations []*entity.SeatReservation) error {
	if len(reservations) == 0 {
		return nil
	}

	query := `
		INSERT INTO seat_reservations (id, booking_id, screening_id, seat_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, res := range reservations {
		_, err := r.db.Exec(ctx, query,
			res.ID,
			res.BookingID,
			res.ScreeningID,
			res.SeatID,
			res.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to create seat reservation",
				zap.Error(err),
				zap.String("booking_id", res.BookingID.String()),
				zap.String("seat_id", res.SeatID),
			)
			return fmt.Errorf("create seat reservation for booking %s seat %s: %w",
				res.BookingID.String(), res.SeatID, err)
		}
	}

	return nil
}

func (r *seatReservationRepository) DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) error {
	query := `DELETE FROM seat_reservations WHERE booking_id = $1`

	_, err := r.db.Exec(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to delete seat reservations by booking ID",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return fmt.Errorf("delete seat reservations by booking ID %s: %w", bookingID.String(), err)
	}

	return nil
}

// FindTakenSeats returns the subset of seatIDs already reserved for the
// screening. The caller reports the full list, not just the first hit.
func (r *seatReservationRepository) FindTakenSeats(ctx context.Context, screeningID uuid.UUID, seatIDs []string) ([]string, error) {
	query := `
		SELECT seat_id
		FROM seat_reservations
		WHERE screening_id = $1 AND seat_id = ANY($2)
		ORDER BY seat_id
	`

	rows, err := r.db.Query(ctx, query, screeningID, seatIDs)
	if err != nil {
		r.log.Error("Failed to find taken seats",
			zap.Error(err),
			zap.String("screening_id", screeningID.String()),
		)
		return nil, fmt.Errorf("find taken seats for screening %s: %w", screeningID.String(), err)
	}
	defer rows.Close()

	return scanSeatIDs(rows)
}

func (r *seatReservationRepository) FindSeatIDsByScreening(ctx context.Context, screeningID uuid.UUID) ([]string, error) {
	query := `
		SELECT seat_id
		FROM seat_reservations
		WHERE screening_id = $1
		ORDER BY seat_id
	`

	rows, err := r.db.Query(ctx, query, screeningID)
	if err != nil {
		r.log.Error("Failed to find seat reservations by screening",
			zap.Error(err),
			zap.String("screening_id", screeningID.String()),
		)
		return nil, fmt.Errorf("find seat reservations by screening %s: %w", screeningID.String(), err)
	}
	defer rows.Close()

	return scanSeatIDs(rows)
}

func (r *seatReservationRepository) FindSeatIDsByBooking(ctx context.Context, bookingID uuid.UUID) ([]string, error) {
	query := `
		SELECT seat_id
		FROM seat_reservations
		WHERE booking_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find seat reservations by booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find seat reservations by booking %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	return scanSeatIDs(rows)
}

func scanSeatIDs(rows pgx.Rows) ([]string, error) {
	var seatIDs []string
	for rows.Next() {
		var seatID string
		if err := rows.Scan(&seatID); err != nil {
			return nil, fmt.Errorf("scan seat ID row: %w", err)
		}
		seatIDs = append(seatIDs, seatID)
	}
	// a query failure mid-stream ends the loop without an error from Next;
	// a truncated seat list must never pass for a complete one
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seat ID rows: %w", err)
	}
	return seatIDs, nil
}
