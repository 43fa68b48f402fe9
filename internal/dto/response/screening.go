package response

import (
	"time"

	"screenbook/internal/data/entity"
)

type ScreeningResponse struct {
	ID        string                  `json:"id"`
	MovieID   string                  `json:"movie_id"`
	TheaterID string                  `json:"theater_id"`
	HallID    string                  `json:"hall_id"`
	StartTime time.Time               `json:"start_time"`
	EndTime   time.Time               `json:"end_time"`
	Price     float64                 `json:"price"`
	Quality   entity.ScreeningQuality `json:"quality"`
	CreatedAt time.Time               `json:"created_at"`
}

// ScreeningToResponse derives the end time from the movie duration, the
// same way the conflict detector does.
func ScreeningToResponse(screening *entity.Screening, durationMinutes int) *ScreeningResponse {
	return &ScreeningResponse{
		ID:        screening.ID.String(),
		MovieID:   screening.MovieID.String(),
		TheaterID: screening.TheaterID.String(),
		HallID:    screening.HallID.String(),
		StartTime: screening.StartTime,
		EndTime:   screening.EndTime(durationMinutes),
		Price:     screening.Price,
		Quality:   screening.Quality,
		CreatedAt: screening.CreatedAt,
	}
}
