package adaptor

import (
	"encoding/json"
	"net/http"

	"screenbook/internal/dto/request"
	"screenbook/internal/usecase"
	"screenbook/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ScreeningHandler struct {
	service usecase.ScreeningService
	log     *zap.Logger
}

func NewScreeningHandler(service usecase.ScreeningService, log *zap.Logger) *ScreeningHandler {
	return &ScreeningHandler{
		service: service,
		log:     log.With(zap.String("handler", "screening")),
	}
}

// CreateScreening handles POST /api/screenings
func (h *ScreeningHandler) CreateScreening(w http.ResponseWriter, r *http.Request) {
	var req request.CreateScreeningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body")
		return
	}

	screening, err := h.service.CreateScreening(r.Context(), &req)
	if err != nil {
		respondError(w, h.log, err, "create screening")
		return
	}

	utils.ResponseCreated(w, "success", screening)
}

// GetScreeningByID handles GET /api/screenings/{id}
func (h *ScreeningHandler) GetScreeningByID(w http.ResponseWriter, r *http.Request) {
	screening, err := h.service.GetScreeningByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err, "get screening")
		return
	}

	utils.ResponseSuccess(w, "success", screening)
}

// UpdateScreening handles PATCH /api/screenings/{id}
func (h *ScreeningHandler) UpdateScreening(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateScreeningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body")
		return
	}

	screening, err := h.service.UpdateScreening(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		respondError(w, h.log, err, "update screening")
		return
	}

	utils.ResponseSuccess(w, "success", screening)
}

// DeleteScreening handles DELETE /api/screenings/{id}
func (h *ScreeningHandler) DeleteScreening(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteScreening(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err, "delete screening")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// GetBookedSeats handles GET /api/screenings/{id}/booked-seats
func (h *ScreeningHandler) GetBookedSeats(w http.ResponseWriter, r *http.Request) {
	seats, err := h.service.GetBookedSeats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err, "get booked seats")
		return
	}

	utils.ResponseSuccess(w, "success", seats)
}
