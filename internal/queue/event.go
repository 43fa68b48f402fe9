// Package queue defines the booking events published to the aggregate-stats
// collaborator and the RabbitMQ publisher that delivers them.
package queue

// BookingEvent is emitted after a booking creation or deletion commits.
// Consumers update derived stats; the booking row stays the source of truth.
type BookingEvent struct {
	BookingID   string   `json:"booking_id"`
	UserID      string   `json:"user_id"`
	ScreeningID string   `json:"screening_id"`
	SeatIDs     []string `json:"seat_ids"`
	TotalPrice  float64  `json:"total_price"`
	OccurredAt  string   `json:"occurred_at"`
}

const (
	QueueBookingAdded   = "booking.added"
	QueueBookingRemoved = "booking.removed"
)
