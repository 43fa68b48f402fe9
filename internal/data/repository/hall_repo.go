package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"screenbook/internal/data/entity"
	"screenbook/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// HallRepository is the narrow read side of the hall catalog. Halls are
// identified by (theater_id, hall_id). The ForUpdate variant locks the hall
// row so concurrent screening creations for the same hall serialize.
type HallRepository interface {
	FindByTheaterAndID(ctx context.Context, theaterID, hallID uuid.UUID) (*entity.Hall, error)
	FindByTheaterAndIDForUpdate(ctx context.Context, theaterID, hallID uuid.UUID) (*entity.Hall, error)
}

type hallRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewHallRepository(db database.Querier, log *zap.Logger) HallRepository {
	return &hallRepository{
		db:  db,
		log: log.With(zap.String("repository", "hall")),
	}
}

func (r *hallRepository) FindByTheaterAndID(ctx context.Context, theaterID, hallID uuid.UUID) (*entity.Hall, error) {
	query := `
		SELECT id, theater_id, name, seat_layout, created_at, updated_at
		FROM halls
		WHERE id = $1 AND theater_id = $2
	`
	return r.findOne(ctx, query, theaterID, hallID)
}

func (r *hallRepository) FindByTheaterAndIDForUpdate(ctx context.Context, theaterID, hallID uuid.UUID) (*entity.Hall, error) {
	query := `
		SELECT id, theater_id, name, seat_layout, created_at, updated_at
		FROM halls
		WHERE id = $1 AND theater_id = $2
		FOR UPDATE
	`
	return r.findOne(ctx, query, theaterID, hallID)
}

func (r *hallRepository) findOne(ctx context.Context, query string, theaterID, hallID uuid.UUID) (*entity.Hall, error) {
	var hall entity.Hall
	var layout []byte
	err := r.db.QueryRow(ctx, query, hallID, theaterID).Scan(
		&hall.ID,
		&hall.TheaterID,
		&hall.Name,
		&layout,
		&hall.CreatedAt,
		&hall.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find hall",
			zap.Error(err),
			zap.String("hall_id", hallID.String()),
			zap.String("theater_id", theaterID.String()),
		)
		return nil, fmt.Errorf("find hall %s in theater %s: %w", hallID.String(), theaterID.String(), err)
	}

	// an unparseable layout behaves like an empty one: every requested seat
	// fails the existence check downstream
	if len(layout) > 0 {
		if err := json.Unmarshal(layout, &hall.SeatLayout); err != nil {
			r.log.Warn("Failed to decode hall seat layout",
				zap.Error(err),
				zap.String("hall_id", hallID.String()),
			)
			hall.SeatLayout = nil
		}
	}

	return &hall, nil
}
