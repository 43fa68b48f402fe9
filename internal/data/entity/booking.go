package entity

import (
	"time"

	"screenbook/pkg/apperr"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusUsed     BookingStatus = "used"
	BookingStatusCanceled BookingStatus = "canceled"
)

// ParseBookingStatus validates a raw status value.
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case BookingStatusPending, BookingStatusUsed, BookingStatusCanceled:
		return BookingStatus(s), nil
	default:
		return "", apperr.BadRequest("unknown booking status %q", s)
	}
}

// IsTerminal reports whether the status permits no further transitions.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusUsed || s == BookingStatusCanceled
}

type Booking struct {
	Base
	UserID      uuid.UUID     `db:"user_id"`
	ScreeningID uuid.UUID     `db:"screening_id"`
	TotalSeats  int           `db:"total_seats"`
	TotalPrice  float64       `db:"total_price"`
	Status      BookingStatus `db:"status"`
	BookingDate time.Time     `db:"booking_date"`
}

// MarkUsed moves pending -> used. Terminal states never transition again.
func (b *Booking) MarkUsed() error {
	switch b.Status {
	case BookingStatusPending:
		b.Status = BookingStatusUsed
		return nil
	case BookingStatusUsed:
		return apperr.BadRequest("booking %s already marked as used", b.ID)
	default:
		return apperr.BadRequest("booking %s is canceled and cannot be marked as used", b.ID)
	}
}

// Cancel moves pending -> canceled. Terminal states never transition again.
func (b *Booking) Cancel() error {
	switch b.Status {
	case BookingStatusPending:
		b.Status = BookingStatusCanceled
		return nil
	case BookingStatusCanceled:
		return apperr.BadRequest("booking %s already canceled", b.ID)
	default:
		return apperr.BadRequest("booking %s is %s and cannot be canceled", b.ID, b.Status)
	}
}

// SetStatus applies a patched status value, refusing to leave a terminal
// state. pending -> terminal via patch is allowed.
func (b *Booking) SetStatus(status BookingStatus) error {
	if b.Status == status {
		return nil
	}
	if b.Status.IsTerminal() {
		return apperr.BadRequest("booking %s is already %s", b.ID, b.Status)
	}
	b.Status = status
	return nil
}
