package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wanderbook/apiserver/internal/services"
	"github.com/wanderbook/apiserver/internal/store"
)

// BookingHandler provides HTTP handlers for the booking engine.
type BookingHandler struct {
	bookingService *services.BookingService
}

func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// BookingRouter registers booking routes on the given router. All
// routes require authentication; per-booking ownership is enforced in
// the service.
func BookingRouter(
	r chi.Router,
	bookingService *services.BookingService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewBookingHandler(bookingService)

	r.Use(authMiddleware)
	r.Get("/", handler.ListBookings)
	r.Get("/user", handler.ListMyBookings)
	r.Post("/", handler.CreateBooking)
	r.Route("/{bookingID}", func(r chi.Router) {
		r.Get("/", handler.GetBooking)
		r.Put("/", handler.UpdateBooking)
		r.Delete("/", handler.DeleteBooking)
	})
}

// BookingRequest is the JSON body for booking creation and updates.
type BookingRequest struct {
	TripID         string    `json:"trip_id"`
	BookingDate    time.Time `json:"booking_date"`
	NumberOfPeople int       `json:"number_of_people"`
}

func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookingService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	bookings, err := h.bookingService.ListByUser(r.Context(), claims.UserID())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := parseBookingID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := h.bookingService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "booking not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch booking")
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := services.BookingCreateInput{
		TripID:         req.TripID,
		BookingDate:    req.BookingDate,
		NumberOfPeople: req.NumberOfPeople,
	}

	created, err := h.bookingService.Create(r.Context(), input, claims.UserID())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTripNotFound):
			writeError(w, http.StatusNotFound, "trip not found")
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create booking")
		}
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *BookingHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	id, err := parseBookingID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := services.BookingUpdateInput{
		ID:             id,
		TripID:         req.TripID,
		BookingDate:    req.BookingDate,
		NumberOfPeople: req.NumberOfPeople,
	}

	updated, err := h.bookingService.Update(r.Context(), input, claims)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "booking not found")
		case errors.Is(err, services.ErrForbidden):
			writeError(w, http.StatusForbidden, "forbidden")
		case errors.Is(err, services.ErrTripNotFound):
			writeError(w, http.StatusNotFound, "trip not found")
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update booking")
		}
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *BookingHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	id, err := parseBookingID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.bookingService.Delete(r.Context(), id, claims); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "booking not found")
		case errors.Is(err, services.ErrForbidden):
			writeError(w, http.StatusForbidden, "forbidden")
		default:
			writeError(w, http.StatusInternalServerError, "failed to delete booking")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseBookingID(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "bookingID")
	if _, err := uuid.Parse(raw); err != nil {
		return "", errors.New("invalid booking id")
	}
	return raw, nil
}
