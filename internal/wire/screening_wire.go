package wire

import (
	"screenbook/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireScreening(r chi.Router, screeningHandler *adaptor.ScreeningHandler) {
	r.Route("/api/screenings", func(r chi.Router) {
		// POST /api/screenings - Schedule a screening (overlap-checked)
		r.Post("/", screeningHandler.CreateScreening)

		// GET /api/screenings/{id} - Screening details with derived end time
		r.Get("/{id}", screeningHandler.GetScreeningByID)

		// PATCH /api/screenings/{id} - Reschedule (overlap-checked)
		r.Patch("/{id}", screeningHandler.UpdateScreening)

		// DELETE /api/screenings/{id} - Remove a screening
		r.Delete("/{id}", screeningHandler.DeleteScreening)

		// GET /api/screenings/{id}/booked-seats - Taken seat ids
		r.Get("/{id}/booked-seats", screeningHandler.GetBookedSeats)
	})
}
