package wire

import (
	"screenbook/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler) {
	r.Route("/api/bookings", func(r chi.Router) {
		// POST /api/bookings - Create new booking
		r.Post("/", bookingHandler.CreateBooking)

		// GET /api/bookings/{id} - Booking details with its seats
		r.Get("/{id}", bookingHandler.GetBookingByID)

		// PATCH /api/bookings/{id} - Patch status and/or booking date
		r.Patch("/{id}", bookingHandler.UpdateBooking)

		// DELETE /api/bookings/{id} - Remove booking and release its seats
		r.Delete("/{id}", bookingHandler.DeleteBooking)

		// PATCH /api/bookings/{id}/mark-used - Redeem the booking
		r.Patch("/{id}/mark-used", bookingHandler.MarkUsed)

		// PATCH /api/bookings/{id}/cancel - Cancel the booking
		r.Patch("/{id}/cancel", bookingHandler.CancelBooking)
	})
}
