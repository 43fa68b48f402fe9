package usecase

import (
	"context"
	"fmt"
	"time"

	"screenbook/internal/data/entity"
	"screenbook/internal/data/repository"
	"screenbook/internal/dto/request"
	"screenbook/internal/dto/response"
	"screenbook/pkg/apperr"
	"screenbook/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ScreeningService interface {
	CreateScreening(ctx context.Context, req *request.CreateScreeningRequest) (*response.ScreeningResponse, error)
	UpdateScreening(ctx context.Context, screeningID string, req *request.UpdateScreeningRequest) (*response.ScreeningResponse, error)
	DeleteScreening(ctx context.Context, screeningID string) error
	GetScreeningByID(ctx context.Context, screeningID string) (*response.ScreeningResponse, error)
	GetBookedSeats(ctx context.Context, screeningID string) ([]string, error)
}

type screeningService struct {
	repo       *repository.Repository
	uow        repository.UnitOfWork
	seatsCache BookedSeatsCache
	log        *zap.Logger
}

func NewScreeningService(repo *repository.Repository, uow repository.UnitOfWork, seatsCache BookedSeatsCache, log *zap.Logger) ScreeningService {
	return &screeningService{
		repo:       repo,
		uow:        uow,
		seatsCache: seatsCache,
		log:        log.With(zap.String("service", "screening")),
	}
}

func (s *screeningService) CreateScreening(ctx context.Context, req *request.CreateScreeningRequest) (*response.ScreeningResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create screening validation failed", zap.Any("errors", errs))
		return nil, apperr.BadRequest("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	movieID, err := uuid.Parse(req.MovieID)
	if err != nil {
		return nil, apperr.BadRequest("invalid movie ID format %s", req.MovieID)
	}
	theaterID, err := uuid.Parse(req.TheaterID)
	if err != nil {
		return nil, apperr.BadRequest("invalid theater ID format %s", req.TheaterID)
	}
	hallID, err := uuid.Parse(req.HallID)
	if err != nil {
		return nil, apperr.BadRequest("invalid hall ID format %s", req.HallID)
	}
	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, apperr.BadRequest("invalid start time %s: must be RFC3339", req.StartTime)
	}

	var screening *entity.Screening
	var duration int

	// Existence checks, the lock on the hall row, and the overlap check all
	// happen inside one transaction so two concurrent creations for the same
	// hall cannot both pass the check and both commit.
	err = s.uow.WithinTx(ctx, func(repos *repository.Repository) error {
		movie, err := repos.Movie.FindByID(ctx, movieID)
		if err != nil {
			return fmt.Errorf("check movie exists: %w", err)
		}
		if movie == nil {
			return apperr.NotFound("movie %s not found", req.MovieID)
		}
		duration = movie.DurationInMinutes

		hall, err := repos.Hall.FindByTheaterAndIDForUpdate(ctx, theaterID, hallID)
		if err != nil {
			return fmt.Errorf("lock hall: %w", err)
		}
		if hall == nil {
			return apperr.NotFound("hall %s not found in theater %s", req.HallID, req.TheaterID)
		}

		if err := s.assertNoOverlap(ctx, repos, theaterID, hallID, startTime, duration, uuid.Nil); err != nil {
			return err
		}

		now := time.Now()
		screening = &entity.Screening{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			MovieID:   movieID,
			TheaterID: theaterID,
			HallID:    hallID,
			StartTime: startTime,
			Price:     req.Price,
			Quality:   entity.ScreeningQuality(req.Quality),
		}

		return repos.Screening.Create(ctx, screening)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Screening created",
		zap.String("screening_id", screening.ID.String()),
		zap.String("movie_id", req.MovieID),
		zap.String("hall_id", req.HallID),
		zap.Time("start_time", startTime),
	)

	return response.ScreeningToResponse(screening, duration), nil
}

func (s *screeningService) UpdateScreening(ctx context.Context, screeningID string, req *request.UpdateScreeningRequest) (*response.ScreeningResponse, error) {
	id, err := uuid.Parse(screeningID)
	if err != nil {
		return nil, apperr.BadRequest("invalid screening ID format %s", screeningID)
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update screening validation failed", zap.Any("errors", errs))
		return nil, apperr.BadRequest("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	var screening *entity.Screening
	var duration int

	err = s.uow.WithinTx(ctx, func(repos *repository.Repository) error {
		existing, err := repos.Screening.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("lock screening: %w", err)
		}
		if existing == nil {
			return apperr.NotFound("screening %s not found", screeningID)
		}

		// merge update into the existing row, then validate the result as a
		// whole (same checks as create, excluding the screening itself)
		if req.MovieID != nil {
			movieID, err := uuid.Parse(*req.MovieID)
			if err != nil {
				return apperr.BadRequest("invalid movie ID format %s", *req.MovieID)
			}
			existing.MovieID = movieID
		}
		if req.TheaterID != nil {
			theaterID, err := uuid.Parse(*req.TheaterID)
			if err != nil {
				return apperr.BadRequest("invalid theater ID format %s", *req.TheaterID)
			}
			existing.TheaterID = theaterID
		}
		if req.HallID != nil {
			hallID, err := uuid.Parse(*req.HallID)
			if err != nil {
				return apperr.BadRequest("invalid hall ID format %s", *req.HallID)
			}
			existing.HallID = hallID
		}
		if req.StartTime != nil {
			startTime, err := time.Parse(time.RFC3339, *req.StartTime)
			if err != nil {
				return apperr.BadRequest("invalid start time %s: must be RFC3339", *req.StartTime)
			}
			existing.StartTime = startTime
		}
		if req.Price != nil {
			existing.Price = *req.Price
		}
		if req.Quality != nil {
			existing.Quality = entity.ScreeningQuality(*req.Quality)
		}

		movie, err := repos.Movie.FindByID(ctx, existing.MovieID)
		if err != nil {
			return fmt.Errorf("check movie exists: %w", err)
		}
		if movie == nil {
			return apperr.NotFound("movie %s not found", existing.MovieID)
		}
		duration = movie.DurationInMinutes

		hall, err := repos.Hall.FindByTheaterAndIDForUpdate(ctx, existing.TheaterID, existing.HallID)
		if err != nil {
			return fmt.Errorf("lock hall: %w", err)
		}
		if hall == nil {
			return apperr.NotFound("hall %s not found in theater %s", existing.HallID, existing.TheaterID)
		}

		if err := s.assertNoOverlap(ctx, repos, existing.TheaterID, existing.HallID, existing.StartTime, duration, existing.ID); err != nil {
			return err
		}

		existing.UpdatedAt = time.Now()
		screening = existing

		return repos.Screening.Update(ctx, screening)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Screening updated", zap.String("screening_id", screeningID))

	return response.ScreeningToResponse(screening, duration), nil
}

func (s *screeningService) DeleteScreening(ctx context.Context, screeningID string) error {
	id, err := uuid.Parse(screeningID)
	if err != nil {
		return apperr.BadRequest("invalid screening ID format %s", screeningID)
	}

	if err := s.repo.Screening.Delete(ctx, id); err != nil {
		return err
	}

	s.seatsCache.Invalidate(ctx, id.String())
	return nil
}

func (s *screeningService) GetScreeningByID(ctx context.Context, screeningID string) (*response.ScreeningResponse, error) {
	id, err := uuid.Parse(screeningID)
	if err != nil {
		return nil, apperr.BadRequest("invalid screening ID format %s", screeningID)
	}

	screening, err := s.repo.Screening.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get screening %s: %w", screeningID, err)
	}
	if screening == nil {
		return nil, apperr.NotFound("screening %s not found", screeningID)
	}

	duration := 0
	movie, err := s.repo.Movie.FindByID(ctx, screening.MovieID)
	if err == nil && movie != nil {
		duration = movie.DurationInMinutes
	}

	return response.ScreeningToResponse(screening, duration), nil
}

// GetBookedSeats lists reserved seat ids for a screening. A screening with
// no bookings (or an unknown screening) yields an empty list, never an
// error.
func (s *screeningService) GetBookedSeats(ctx context.Context, screeningID string) ([]string, error) {
	id, err := uuid.Parse(screeningID)
	if err != nil {
		return nil, apperr.BadRequest("invalid screening ID format %s", screeningID)
	}

	if seats, ok := s.seatsCache.Get(ctx, id.String()); ok {
		return seats, nil
	}

	seats, err := s.repo.SeatReservation.FindSeatIDsByScreening(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booked seats for screening %s: %w", screeningID, err)
	}
	if seats == nil {
		seats = []string{}
	}

	s.seatsCache.Set(ctx, id.String(), seats)

	return seats, nil
}

// assertNoOverlap fails with a conflict when the candidate interval
// [startTime, startTime+duration) overlaps any screening sharing the hall.
// Half-open semantics: a screening ending exactly at startTime does not
// conflict, so back-to-back scheduling works. Fails fast on the first
// collision. Must run with the hall row locked.
func (s *screeningService) assertNoOverlap(
	ctx context.Context,
	repos *repository.Repository,
	theaterID, hallID uuid.UUID,
	startTime time.Time,
	durationMinutes int,
	excludeID uuid.UUID,
) error {
	candidateEnd := startTime.Add(time.Duration(durationMinutes) * time.Minute)

	existing, err := repos.Screening.FindByHall(ctx, theaterID, hallID, excludeID)
	if err != nil {
		return fmt.Errorf("load screenings for hall %s: %w", hallID, err)
	}

	// durations come from the referenced movies; memoize per movie
	movies := make(map[uuid.UUID]*entity.Movie)

	for _, other := range existing {
		movie, ok := movies[other.MovieID]
		if !ok {
			movie, err = repos.Movie.FindByID(ctx, other.MovieID)
			if err != nil {
				return fmt.Errorf("resolve duration for screening %s: %w", other.ID, err)
			}
			movies[other.MovieID] = movie
		}
		if movie == nil {
			// catalog deleted the movie under an existing screening; its
			// interval cannot be derived, skip it
			s.log.Warn("Screening references missing movie, skipping overlap check",
				zap.String("screening_id", other.ID.String()),
				zap.String("movie_id", other.MovieID.String()),
			)
			continue
		}

		otherEnd := other.EndTime(movie.DurationInMinutes)
		if entity.Overlaps(startTime, candidateEnd, other.StartTime, otherEnd) {
			return apperr.Conflict("screening overlaps %q scheduled from %s to %s in this hall",
				movie.Title,
				other.StartTime.Format("2006-01-02 15:04"),
				otherEnd.Format("2006-01-02 15:04"),
			)
		}
	}

	return nil
}
