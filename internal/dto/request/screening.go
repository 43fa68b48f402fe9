package request

type CreateScreeningRequest struct {
	MovieID   string  `json:"movie_id" validate:"required,uuid4"`
	TheaterID string  `json:"theater_id" validate:"required,uuid4"`
	HallID    string  `json:"hall_id" validate:"required,uuid4"`
	StartTime string  `json:"start_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Price     float64 `json:"price" validate:"required,gt=0"`
	Quality   string  `json:"quality" validate:"required,oneof=2D 3D IMAX 4DX"`
}

// UpdateScreeningRequest patches a screening. Validation (movie/hall
// existence, hall overlap) runs against the merged result of the existing
// row and the provided fields.
type UpdateScreeningRequest struct {
	MovieID   *string  `json:"movie_id,omitempty" validate:"omitempty,uuid4"`
	TheaterID *string  `json:"theater_id,omitempty" validate:"omitempty,uuid4"`
	HallID    *string  `json:"hall_id,omitempty" validate:"omitempty,uuid4"`
	StartTime *string  `json:"start_time,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Price     *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Quality   *string  `json:"quality,omitempty" validate:"omitempty,oneof=2D 3D IMAX 4DX"`
}
