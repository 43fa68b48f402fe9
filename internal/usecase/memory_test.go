package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"screenbook/internal/data/entity"
	"screenbook/internal/data/repository"
	"screenbook/internal/queue"
	"screenbook/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// memoryStore backs the fake repositories. Entities are stored by value and
// every read hands out a copy, so mutations inside a transaction never leak
// into committed state before commit.
type memoryStore struct {
	mu           sync.RWMutex
	movies       map[uuid.UUID]entity.Movie
	halls        map[uuid.UUID]entity.Hall
	screenings   map[uuid.UUID]entity.Screening
	bookings     map[uuid.UUID]entity.Booking
	reservations map[uuid.UUID]entity.SeatReservation
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		movies:       make(map[uuid.UUID]entity.Movie),
		halls:        make(map[uuid.UUID]entity.Hall),
		screenings:   make(map[uuid.UUID]entity.Screening),
		bookings:     make(map[uuid.UUID]entity.Booking),
		reservations: make(map[uuid.UUID]entity.SeatReservation),
	}
}

func (m *memoryStore) clone() *memoryStore {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tx := newMemoryStore()
	for id, v := range m.movies {
		tx.movies[id] = v
	}
	for id, v := range m.halls {
		tx.halls[id] = v
	}
	for id, v := range m.screenings {
		tx.screenings[id] = v
	}
	for id, v := range m.bookings {
		tx.bookings[id] = v
	}
	for id, v := range m.reservations {
		tx.reservations[id] = v
	}
	return tx
}

func (m *memoryStore) replaceWith(tx *memoryStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movies = tx.movies
	m.halls = tx.halls
	m.screenings = tx.screenings
	m.bookings = tx.bookings
	m.reservations = tx.reservations
}

// memoryUnitOfWork serializes transactions and commits a snapshot
// atomically: a failed fn leaves the store untouched.
type memoryUnitOfWork struct {
	store *memoryStore
	txMu  sync.Mutex
}

func (u *memoryUnitOfWork) WithinTx(ctx context.Context, fn func(repos *repository.Repository) error) error {
	u.txMu.Lock()
	defer u.txMu.Unlock()
	tx := u.store.clone()
	if err := fn(memRepos(tx)); err != nil {
		return err
	}
	u.store.replaceWith(tx)
	return nil
}

func memRepos(s *memoryStore) *repository.Repository {
	return &repository.Repository{
		Movie:           &memMovieRepo{s: s},
		Hall:            &memHallRepo{s: s},
		Screening:       &memScreeningRepo{s: s},
		Booking:         &memBookingRepo{s: s},
		SeatReservation: &memSeatReservationRepo{s: s},
	}
}

type memMovieRepo struct{ s *memoryStore }

func (r *memMovieRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Movie, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if movie, ok := r.s.movies[id]; ok {
		return &movie, nil
	}
	return nil, nil
}

type memHallRepo struct{ s *memoryStore }

func (r *memHallRepo) FindByTheaterAndID(ctx context.Context, theaterID, hallID uuid.UUID) (*entity.Hall, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if hall, ok := r.s.halls[hallID]; ok && hall.TheaterID == theaterID {
		return &hall, nil
	}
	return nil, nil
}

func (r *memHallRepo) FindByTheaterAndIDForUpdate(ctx context.Context, theaterID, hallID uuid.UUID) (*entity.Hall, error) {
	return r.FindByTheaterAndID(ctx, theaterID, hallID)
}

type memScreeningRepo struct{ s *memoryStore }

func (r *memScreeningRepo) Create(ctx context.Context, screening *entity.Screening) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.screenings[screening.ID] = *screening
	return nil
}

func (r *memScreeningRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Screening, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if screening, ok := r.s.screenings[id]; ok {
		return &screening, nil
	}
	return nil, nil
}

func (r *memScreeningRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Screening, error) {
	return r.FindByID(ctx, id)
}

func (r *memScreeningRepo) Update(ctx context.Context, screening *entity.Screening) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.screenings[screening.ID]; !ok {
		return apperr.NotFound("screening %s not found", screening.ID)
	}
	r.s.screenings[screening.ID] = *screening
	return nil
}

func (r *memScreeningRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.screenings[id]; !ok {
		return apperr.NotFound("screening %s not found", id)
	}
	delete(r.s.screenings, id)
	return nil
}

func (r *memScreeningRepo) FindByHall(ctx context.Context, theaterID, hallID, excludeID uuid.UUID) ([]*entity.Screening, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Screening
	for id, screening := range r.s.screenings {
		if id == excludeID || screening.TheaterID != theaterID || screening.HallID != hallID {
			continue
		}
		s := screening
		out = append(out, &s)
	}
	return out, nil
}

type memBookingRepo struct{ s *memoryStore }

func (r *memBookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.bookings[booking.ID] = *booking
	return nil
}

func (r *memBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if booking, ok := r.s.bookings[id]; ok {
		return &booking, nil
	}
	return nil, nil
}

func (r *memBookingRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *memBookingRepo) Update(ctx context.Context, booking *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[booking.ID]; !ok {
		return apperr.NotFound("booking %s not found", booking.ID)
	}
	r.s.bookings[booking.ID] = *booking
	return nil
}

func (r *memBookingRepo) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	booking, ok := r.s.bookings[bookingID]
	if !ok {
		return apperr.NotFound("booking %s not found", bookingID)
	}
	booking.Status = status
	booking.UpdatedAt = time.Now()
	r.s.bookings[bookingID] = booking
	return nil
}

func (r *memBookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[id]; !ok {
		return apperr.NotFound("booking %s not found", id)
	}
	delete(r.s.bookings, id)
	return nil
}

type memSeatReservationRepo struct{ s *memoryStore }

func (r *memSeatReservationRepo) CreateBatch(ctx context.Context, reservations []*entity.SeatReservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, res := range reservations {
		r.s.reservations[res.ID] = *res
	}
	return nil
}

func (r *memSeatReservationRepo) DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, res := range r.s.reservations {
		if res.BookingID == bookingID {
			delete(r.s.reservations, id)
		}
	}
	return nil
}

func (r *memSeatReservationRepo) FindTakenSeats(ctx context.Context, screeningID uuid.UUID, seatIDs []string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := make(map[string]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		wanted[id] = struct{}{}
	}
	var taken []string
	for _, res := range r.s.reservations {
		if res.ScreeningID != screeningID {
			continue
		}
		if _, ok := wanted[res.SeatID]; ok {
			taken = append(taken, res.SeatID)
		}
	}
	return taken, nil
}

func (r *memSeatReservationRepo) FindSeatIDsByScreening(ctx context.Context, screeningID uuid.UUID) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []string
	for _, res := range r.s.reservations {
		if res.ScreeningID == screeningID {
			out = append(out, res.SeatID)
		}
	}
	return out, nil
}

func (r *memSeatReservationRepo) FindSeatIDsByBooking(ctx context.Context, bookingID uuid.UUID) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []string
	for _, res := range r.s.reservations {
		if res.BookingID == bookingID {
			out = append(out, res.SeatID)
		}
	}
	return out, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	added   []queue.BookingEvent
	removed []queue.BookingEvent
	fail    error
}

func (n *recordingNotifier) BookingAdded(ctx context.Context, event queue.BookingEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.added = append(n.added, event)
	return nil
}

func (n *recordingNotifier) BookingRemoved(ctx context.Context, event queue.BookingEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.removed = append(n.removed, event)
	return nil
}

type recordingCache struct {
	mu            sync.Mutex
	entries       map[string][]string
	sets          int
	invalidations int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: make(map[string][]string)}
}

func (c *recordingCache) Get(ctx context.Context, screeningID string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	seats, ok := c.entries[screeningID]
	return seats, ok
}

func (c *recordingCache) Set(ctx context.Context, screeningID string, seats []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[screeningID] = seats
	c.sets++
}

func (c *recordingCache) Invalidate(ctx context.Context, screeningID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, screeningID)
	c.invalidations++
}

type testEnv struct {
	store    *memoryStore
	uow      *memoryUnitOfWork
	notifier *recordingNotifier
	cache    *recordingCache
	svc      *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemoryStore()
	uow := &memoryUnitOfWork{store: store}
	notifier := &recordingNotifier{}
	cache := newRecordingCache()
	return &testEnv{
		store:    store,
		uow:      uow,
		notifier: notifier,
		cache:    cache,
		svc:      NewService(memRepos(store), uow, notifier, cache, zap.NewNop()),
	}
}

const defaultLayout = `[["A1","A2","A3",null,"A4"],["B1","B2","B3",null,"B4"]]`

func (e *testEnv) seedMovie(t *testing.T, title string, durationMinutes int) *entity.Movie {
	t.Helper()
	movie := entity.Movie{
		Base:              entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Title:             title,
		DurationInMinutes: durationMinutes,
	}
	e.store.mu.Lock()
	e.store.movies[movie.ID] = movie
	e.store.mu.Unlock()
	return &movie
}

func (e *testEnv) seedHall(t *testing.T, layout string) *entity.Hall {
	t.Helper()
	var grid entity.SeatGrid
	if err := json.Unmarshal([]byte(layout), &grid); err != nil {
		t.Fatalf("seed hall layout: %v", err)
	}
	hall := entity.Hall{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		TheaterID:  uuid.New(),
		Name:       "Hall 1",
		SeatLayout: grid,
	}
	e.store.mu.Lock()
	e.store.halls[hall.ID] = hall
	e.store.mu.Unlock()
	return &hall
}

func (e *testEnv) seedScreening(t *testing.T, movie *entity.Movie, hall *entity.Hall, startTime time.Time, price float64) *entity.Screening {
	t.Helper()
	screening := entity.Screening{
		Base:      entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		MovieID:   movie.ID,
		TheaterID: hall.TheaterID,
		HallID:    hall.ID,
		StartTime: startTime,
		Price:     price,
		Quality:   entity.Quality2D,
	}
	e.store.mu.Lock()
	e.store.screenings[screening.ID] = screening
	e.store.mu.Unlock()
	return &screening
}
