package entity

import "github.com/google/uuid"

// SeatReservation links a booking to one seat of one screening. The pair
// (screening_id, seat_id) is unique across live reservations; the database
// enforces it with a unique index and the coordinator re-checks it under a
// locked screening row.
type SeatReservation struct {
	BaseSimple
	BookingID   uuid.UUID `db:"booking_id"`
	ScreeningID uuid.UUID `db:"screening_id"`
	SeatID      string    `db:"seat_id"`
}
