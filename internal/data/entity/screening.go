package entity

import (
	"time"

	"github.com/google/uuid"
)

type ScreeningQuality string

const (
	Quality2D   ScreeningQuality = "2D"
	Quality3D   ScreeningQuality = "3D"
	QualityIMAX ScreeningQuality = "IMAX"
	Quality4DX  ScreeningQuality = "4DX"
)

// Screening does not store its own duration; the interval end is derived
// from the referenced movie at validation time.
type Screening struct {
	Base
	MovieID   uuid.UUID        `db:"movie_id"`
	TheaterID uuid.UUID        `db:"theater_id"`
	HallID    uuid.UUID        `db:"hall_id"`
	StartTime time.Time        `db:"start_time"`
	Price     float64          `db:"price"`
	Quality   ScreeningQuality `db:"quality"`
}

// EndTime is the exclusive end of the screening interval for the given
// movie duration.
func (s *Screening) EndTime(durationMinutes int) time.Time {
	return s.StartTime.Add(time.Duration(durationMinutes) * time.Minute)
}

// Overlaps reports whether [aStart, aEnd) shares an instant with
// [bStart, bEnd). Half-open semantics: touching endpoints do not overlap,
// so back-to-back screenings are allowed.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
