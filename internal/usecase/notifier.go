package usecase

import (
	"context"

	"screenbook/internal/queue"
)

// StatsNotifier is the aggregate-stats collaborator boundary. It is invoked
// strictly after commit; a notification failure is logged and never unwinds
// the committed booking.
type StatsNotifier interface {
	BookingAdded(ctx context.Context, event queue.BookingEvent) error
	BookingRemoved(ctx context.Context, event queue.BookingEvent) error
}

// NopNotifier drops events. Used when the queue is disabled and in tests.
type NopNotifier struct{}

func (NopNotifier) BookingAdded(ctx context.Context, event queue.BookingEvent) error   { return nil }
func (NopNotifier) BookingRemoved(ctx context.Context, event queue.BookingEvent) error { return nil }

// BookedSeatsCache caches the booked-seats read path. Implementations must
// be best effort: a miss or failure falls back to the repository.
type BookedSeatsCache interface {
	Get(ctx context.Context, screeningID string) ([]string, bool)
	Set(ctx context.Context, screeningID string, seats []string)
	Invalidate(ctx context.Context, screeningID string)
}
