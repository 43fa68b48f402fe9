package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"screenbook/internal/data/entity"
	"screenbook/internal/dto/request"
	"screenbook/internal/dto/response"
	"screenbook/pkg/apperr"

	"github.com/google/uuid"
)

func (e *testEnv) createBooking(t *testing.T, screeningID uuid.UUID, seatIDs ...string) *response.BookingResponse {
	t.Helper()
	resp, err := e.svc.Booking.CreateBooking(context.Background(), &request.CreateBookingRequest{
		UserID:      uuid.New().String(),
		ScreeningID: screeningID.String(),
		SeatIDs:     seatIDs,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return resp
}

func (e *testEnv) seedDefaultScreening(t *testing.T) *entity.Screening {
	t.Helper()
	movie := e.seedMovie(t, "Dune", 120)
	hall := e.seedHall(t, defaultLayout)
	return e.seedScreening(t, movie, hall, time.Now().Add(24*time.Hour).Truncate(time.Second), 50000)
}

func (e *testEnv) reservationCount(t *testing.T) int {
	t.Helper()
	e.store.mu.RLock()
	defer e.store.mu.RUnlock()
	return len(e.store.reservations)
}

func (e *testEnv) bookingCount(t *testing.T) int {
	t.Helper()
	e.store.mu.RLock()
	defer e.store.mu.RUnlock()
	return len(e.store.bookings)
}

func TestCreateBooking(t *testing.T) {
	env := newTestEnv(t)
	screening := env.seedDefaultScreening(t)

	resp := env.createBooking(t, screening.ID, "A1", "A2")

	if resp.Status != entity.BookingStatusPending {
		t.Fatalf("status = %s, want pending", resp.Status)
	}
	if resp.TotalSeats != 2 {
		t.Fatalf("total seats = %d, want 2", resp.TotalSeats)
	}
	if resp.TotalPrice != 100000 {
		t.Fatalf("total price = %v, want 100000", resp.TotalPrice)
	}
	if env.reservationCount(t) != 2 {
		t.Fatalf("expected 2 reservations, got %d", env.reservationCount(t))
	}

	env.notifier.mu.Lock()
	defer env.notifier.mu.Unlock()
	if len(env.notifier.added) != 1 {
		t.Fatalf("expected 1 added event, got %d", len(env.notifier.added))
	}
	event := env.notifier.added[0]
	if event.BookingID != resp.ID || event.ScreeningID != screening.ID.String() {
		t.Fatalf("event ids mismatch: %+v", event)
	}
	if event.TotalPrice != 100000 {
		t.Fatalf("event total price = %v, want 100000", event.TotalPrice)
	}
	if env.cache.invalidations == 0 {
		t.Fatal("expected booked-seats cache invalidation")
	}
}

func TestCreateBookingDuplicateSeats(t *testing.T) {
	env := newTestEnv(t)
	screening := env.seedDefaultScreening(t)

	_, err := env.svc.Booking.CreateBooking(context.Background(), &request.CreateBookingRequest{
		UserID:      uuid.New().String(),
		ScreeningID: screening.ID.String(),
		SeatIDs:     []string{"A1", "A2", "A1"},
	})
	assertKind(t, err, apperr.KindBadRequest)
	if env.bookingCount(t) != 0 {
		t.Fatal("rejected booking must not persist anything")
	}
}

func TestCreateBookingUnknownSeat(t *testing.T) {
	env := newTestEnv(t)
	screening := env.seedDefaultScreening(t)

	_, err := env.svc.Booking.CreateBooking(context.Background(), &request.CreateBookingRequest{
		UserID:      uuid.New().String(),
		ScreeningID: screening.ID.String(),
		SeatIDs:     []string{"A1", "Z9"},
	})
	assertKind(t, err, apperr.KindBadRequest)
	if env.bookingCount(t) != 0 {
		t.Fatal("rejected booking must not persist anything")
	}
}

func TestCreateBookingScreeningNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Booking.CreateBooking(context.Background(), &request.CreateBookingRequest{
		UserID:      uuid.New().String(),
		ScreeningID: uuid.New().String(),
		SeatIDs:     []string{"A1"},
	})
	assertKind(t, err, apperr.KindNotFound)
}

func TestCreateBookingPastScreening(t *testing.T) {
	env := newTestEnv(t)
	movie := env.seedMovie(t, "Dune", 120)
	hall := env.seedHall(t, defaultLayout)
	screening := env.seedScreening(t, movie, hall, time.Now().Add(-time.Hour), 50000)

	_, err := env.svc.Booking.CreateBooking(context.Background(), &request.CreateBookingRequest{
		UserID:      uuid.New().String(),
		ScreeningID: screening.ID.String(),
		SeatIDs:     []string{"A1"},
	})
	assertKind(t, err, apperr.KindBadRequest)
}

func TestCreateBookingSeatTaken(t *testing.T) {
	env := newTestEnv(t)
	screening := env.seedDefaultScreening(t)
	env.createBooking(t, screening.ID, "A1", "A2")

	bookingsBefore := env.bookingCount(t)
	reservationsBefore := env.reservationCount(t)

	// B1 is free but the request still fails whole; the conflict reports
	// every taken seat, not just the first
	_, err := env.svc.Booking.CreateBooking(context.Background(), &request.CreateBookingRequest{
		UserID:      uuid.New().String(),
		ScreeningID: screening.ID.String(),
		SeatIDs:     []string{"A1", "A2", "B1"},
	})
	assertKind(t, err, apperr.KindConflict)

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	taken, ok := appErr.Details.([]string)
	if !ok {
		t.Fatalf("expected []string details, got %T", appErr.Details)
	}
	sort.Strings(taken)
	if len(taken) != 2 || taken[0] != "A1" || taken[1] != "A2" {
		t.Fatalf("taken seats = %v, want [A1 A2]", taken)
	}

	if env.bookingCount(t) != bookingsBefore || env.reservationCount(t) != reservationsBefore {
		t.Fatal("conflicting booking must not persist anything")
	}
}

func TestConcurrentBookingSameSeat(t *testing.T) {
	env := newTestEnv(t)
	screening := env.seedDefaultScreening(t)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.Booking.CreateBooking(context.Background(), &request.CreateBookingRequest{
				UserID:      uuid.New().String(),
				ScreeningID: screening.ID.String(),
				SeatIDs:     []string{"A1"},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assertKind(t, err, apperr.KindConflict)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one booking for the seat, got %d", succeeded)
	}
	if env.reservationCount(t) != 1 {
		t.Fatalf("expected 1 reservation, got %d", env.reservationCount(t))
	}
}

func TestCreateBookingSurvivesNotifierFailure(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.fail = errors.New("broker unreachable")
	screening := env.seedDefaultScreening(t)

	resp := env.createBooking(t, screening.ID, "A1")
	if resp.Status != entity.BookingStatusPending {
		t.Fatalf("status = %s, want pending", resp.Status)
	}
	if env.bookingCount(t) != 1 {
		t.Fatal("booking must commit even when notification fails")
	}
}

func TestMarkUsed(t *testing.T) {
	env := newTestEnv(t)
	screening := env.seedDefaultScreening(t)
	booking := env.createBooking(t, screening.ID, "A1")
	ctx := context.Background()

	resp, err := env.svc.Booking.MarkUsed(ctx, booking.ID)
	if err != nil {
		t.Fatalf("mark used: %v", err)
	}
	if resp.Status != entity.BookingStatusUsed {
		t.Fatalf("status = %s, want used", resp.Status)
	}

	// terminal: a second attempt fails and the status does not change
	_, err = env.svc.Booking.MarkUsed(ctx, booking.ID)
	assertKind(t, err, apperr.KindBadRequest)

	got, err := env.svc.Booking.GetBookingByID(ctx, booking.ID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if got.Status != entity.BookingStatusUsed {
		t.Fatalf("status after failed transition = %s, want used", got.Status)
	}
}

func TestCancelBooking(t *testing.T) {
	env := newTestEnv(t)
	screening := env.seedDefaultScreening(t)
	booking := env.createBooking(t, screening.ID, "A1")
	ctx := context.Background()

	resp, err := env.svc.Booking.CancelBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("cancel booking: %v", err)
	}
	if resp.Status != entity.BookingStatusCanceled {
		t.Fatalf("status = %s, want canceled", resp.Status)
	}

	_, err = env.svc.Booking.CancelBooking(ctx, booking.ID)
	assertKind(t, err, apperr.KindBadRequest)

	_, err = env.svc.Booking.MarkUsed(ctx, booking.ID)
	assertKind(t, err, apperr.KindBadRequest)
}

func TestCancelBookingNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Booking.CancelBooking(context.Background(), uuid.New().String())
	assertKind(t, err, apperr.KindNotFound)
}

func TestMarkUsedAfterCancel(t *testing.T) {
	env := newTestEnv(t)
	screening := env.seedDefaultScreening(t)
	booking := env.createBooking(t, screening.ID, "A1")
	ctx := context.Background()

	if _, err := env.svc.Booking.CancelBooking(ctx, booking.ID); err != nil {
		t.Fatalf("cancel booking: %v", err)
	}
	_, err := env.svc.Booking.MarkUsed(ctx, booking.ID)
	assertKind(t, err, apperr.KindBadRequest)
}

func TestUpdateBookingTerminalStatus(t *testing.T) {
	env := newTestEnv(t)
	screening := env.seedDefaultScreening(t)
	booking := env.createBooking(t, screening.ID, "A1")
	ctx := context.Background()

	used := string(entity.BookingStatusUsed)
	if _, err := env.svc.Booking.UpdateBooking(ctx, booking.ID, &request.UpdateBookingRequest{Status: &used}); err != nil {
		t.Fatalf("patch to used: %v", err)
	}

	pending := string(entity.BookingStatusPending)
	_, err := env.svc.Booking.UpdateBooking(ctx, booking.ID, &request.UpdateBookingRequest{Status: &pending})
	assertKind(t, err, apperr.KindBadRequest)
}

func TestUpdateBookingDate(t *testing.T) {
	env := newTestEnv(t)
	screening := env.seedDefaultScreening(t)
	booking := env.createBooking(t, screening.ID, "A1")

	date := time.Now().Add(48 * time.Hour).Truncate(time.Second).Format(time.RFC3339)
	resp, err := env.svc.Booking.UpdateBooking(context.Background(), booking.ID, &request.UpdateBookingRequest{BookingDate: &date})
	if err != nil {
		t.Fatalf("patch booking date: %v", err)
	}
	if resp.BookingDate.Format(time.RFC3339) != date {
		t.Fatalf("booking date = %v, want %s", resp.BookingDate, date)
	}
}

func TestGetBookingByID(t *testing.T) {
	env := newTestEnv(t)
	screening := env.seedDefaultScreening(t)
	booking := env.createBooking(t, screening.ID, "A1", "B2")

	resp, err := env.svc.Booking.GetBookingByID(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	seats := append([]string(nil), resp.SeatIDs...)
	sort.Strings(seats)
	if len(seats) != 2 || seats[0] != "A1" || seats[1] != "B2" {
		t.Fatalf("seat ids = %v, want [A1 B2]", seats)
	}

	_, err = env.svc.Booking.GetBookingByID(context.Background(), uuid.New().String())
	assertKind(t, err, apperr.KindNotFound)
}

func TestDeleteBooking(t *testing.T) {
	env := newTestEnv(t)
	screening := env.seedDefaultScreening(t)
	booking := env.createBooking(t, screening.ID, "A1", "A2")
	ctx := context.Background()

	if err := env.svc.Booking.DeleteBooking(ctx, booking.ID); err != nil {
		t.Fatalf("delete booking: %v", err)
	}
	if env.bookingCount(t) != 0 || env.reservationCount(t) != 0 {
		t.Fatal("delete must remove the booking and its reservations")
	}

	env.notifier.mu.Lock()
	removed := len(env.notifier.removed)
	env.notifier.mu.Unlock()
	if removed != 1 {
		t.Fatalf("expected 1 removed event, got %d", removed)
	}

	// the freed seats are immediately bookable again
	env.createBooking(t, screening.ID, "A1", "A2")
}

func TestDeleteBookingNotFound(t *testing.T) {
	env := newTestEnv(t)
	err := env.svc.Booking.DeleteBooking(context.Background(), uuid.New().String())
	assertKind(t, err, apperr.KindNotFound)
}
