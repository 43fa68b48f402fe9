package repository

import (
	"context"
	"fmt"

	"screenbook/internal/data/entity"
	"screenbook/pkg/apperr"
	"screenbook/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ScreeningRepository interface {
	Create(ctx context.Context, screening *entity.Screening) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Screening, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Screening, error)
	Update(ctx context.Context, screening *entity.Screening) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Business queries
	FindByHall(ctx context.Context, theaterID, hallID, excludeID uuid.UUID) ([]*entity.Screening, error)
}

type screeningRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewScreeningRepository(db database.Querier, log *zap.Logger) ScreeningRepository {
	return &screeningRepository{
		db:  db,
		log: log.With(zap.String("repository", "screening")),
	}
}

const screeningColumns = `id, movie_id, theater_id, hall_id, start_time, price, quality, created_at, updated_at`

func (r *screeningRepository) Create(ctx context.Context, screening *entity.Screening) error {
	query := `
		INSERT INTO screenings (id, movie_id, theater_id, hall_id, start_time, price, quality, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		screening.ID,
		screening.MovieID,
		screening.TheaterID,
		screening.HallID,
		screening.StartTime,
		screening.Price,
		screening.Quality,
		screening.CreatedAt,
		screening.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create screening",
			zap.Error(err),
			zap.String("movie_id", screening.MovieID.String()),
			zap.String("hall_id", screening.HallID.String()),
			zap.Time("start_time", screening.StartTime),
		)
		return fmt.Errorf("create screening for movie %s hall %s: %w",
			screening.MovieID.String(), screening.HallID.String(), err)
	}

	return nil
}

func (r *screeningRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Screening, error) {
	query := `SELECT ` + screeningColumns + ` FROM screenings WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *screeningRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Screening, error) {
	query := `SELECT ` + screeningColumns + ` FROM screenings WHERE id = $1 FOR UPDATE`
	return r.findOne(ctx, query, id)
}

func (r *screeningRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Screening, error) {
	var screening entity.Screening
	err := r.db.QueryRow(ctx, query, id).Scan(
		&screening.ID,
		&screening.MovieID,
		&screening.TheaterID,
		&screening.HallID,
		&screening.StartTime,
		&screening.Price,
		&screening.Quality,
		&screening.CreatedAt,
		&screening.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find screening by ID",
			zap.Error(err),
			zap.String("screening_id", id.String()),
		)
		return nil, fmt.Errorf("find screening by ID %s: %w", id.String(), err)
	}

	return &screening, nil
}

func (r *screeningRepository) FindByHall(ctx context.Context, theaterID, hallID, excludeID uuid.UUID) ([]*entity.Screening, error) {
	query := `
		SELECT ` + screeningColumns + `
		FROM screenings
		WHERE theater_id = $1 AND hall_id = $2 AND id <> $3
		ORDER BY start_time
	`

	rows, err := r.db.Query(ctx, query, theaterID, hallID, excludeID)
	if err != nil {
		r.log.Error("Failed to find screenings by hall",
			zap.Error(err),
			zap.String("theater_id", theaterID.String()),
			zap.String("hall_id", hallID.String()),
		)
		return nil, fmt.Errorf("find screenings by hall %s: %w", hallID.String(), err)
	}
	defer rows.Close()

	var screenings []*entity.Screening
	for rows.Next() {
		var screening entity.Screening
		err := rows.Scan(
			&screening.ID,
			&screening.MovieID,
			&screening.TheaterID,
			&screening.HallID,
			&screening.StartTime,
			&screening.Price,
			&screening.Quality,
			&screening.CreatedAt,
			&screening.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan screening row", zap.Error(err))
			return nil, fmt.Errorf("scan screening row: %w", err)
		}
		screenings = append(screenings, &screening)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Screening rows iteration failed",
			zap.Error(err),
			zap.String("hall_id", hallID.String()),
		)
		return nil, fmt.Errorf("iterate screenings for hall %s: %w", hallID.String(), err)
	}

	return screenings, nil
}

func (r *screeningRepository) Update(ctx context.Context, screening *entity.Screening) error {
	query := `
		UPDATE screenings
		SET movie_id = $2, theater_id = $3, hall_id = $4, start_time = $5, price = $6, quality = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		screening.ID,
		screening.MovieID,
		screening.TheaterID,
		screening.HallID,
		screening.StartTime,
		screening.Price,
		screening.Quality,
		screening.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update screening",
			zap.Error(err),
			zap.String("screening_id", screening.ID.String()),
		)
		return fmt.Errorf("update screening %s: %w", screening.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("screening %s not found", screening.ID)
	}

	return nil
}

func (r *screeningRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM screenings WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete screening",
			zap.Error(err),
			zap.String("screening_id", id.String()),
		)
		return fmt.Errorf("delete screening %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("screening %s not found", id)
	}

	r.log.Info("Screening deleted", zap.String("screening_id", id.String()))
	return nil
}
