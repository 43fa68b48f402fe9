package request

type CreateBookingRequest struct {
	UserID      string   `json:"user_id" validate:"required,uuid4"`
	ScreeningID string   `json:"screening_id" validate:"required,uuid4"`
	SeatIDs     []string `json:"seat_ids" validate:"required,min=1,dive,required"`
}

// UpdateBookingRequest is a partial update. The seat set is fixed at
// creation, so only status and booking date are patchable.
type UpdateBookingRequest struct {
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=pending used canceled"`
	BookingDate *string `json:"booking_date,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}
