package response

import (
	"time"

	"screenbook/internal/data/entity"
)

type BookingResponse struct {
	ID          string               `json:"id"`
	UserID      string               `json:"user_id"`
	ScreeningID string               `json:"screening_id"`
	SeatIDs     []string             `json:"seat_ids"`
	TotalSeats  int                  `json:"total_seats"`
	TotalPrice  float64              `json:"total_price"`
	Status      entity.BookingStatus `json:"status"`
	BookingDate time.Time            `json:"booking_date"`
	CreatedAt   time.Time            `json:"created_at"`
}

func BookingToResponse(booking *entity.Booking, seatIDs []string) *BookingResponse {
	if seatIDs == nil {
		seatIDs = []string{}
	}
	return &BookingResponse{
		ID:          booking.ID.String(),
		UserID:      booking.UserID.String(),
		ScreeningID: booking.ScreeningID.String(),
		SeatIDs:     seatIDs,
		TotalSeats:  booking.TotalSeats,
		TotalPrice:  booking.TotalPrice,
		Status:      booking.Status,
		BookingDate: booking.BookingDate,
		CreatedAt:   booking.CreatedAt,
	}
}
