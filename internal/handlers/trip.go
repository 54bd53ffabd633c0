package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wanderbook/apiserver/internal/services"
	"github.com/wanderbook/apiserver/internal/store"
	"github.com/wanderbook/apiserver/types"
)

const (
	maxMultipartMemory = 32 << 20
	maxImageBytes      = 16 << 20

	formFieldDestination = "destination"
	formFieldDescription = "description"
	formFieldPrice       = "price"
	formFieldImage       = "image"
)

// TripHandler provides HTTP handlers for the trip catalog.
type TripHandler struct {
	tripService *services.TripService
}

// NewTripHandler constructs a handler with the provided service.
func NewTripHandler(tripService *services.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// TripRouter registers trip routes on the given router. Reads are
// public; mutations require an authenticated admin.
func TripRouter(
	r chi.Router,
	tripService *services.TripService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewTripHandler(tripService)
	adminOnly := RequireRole(types.RoleAdmin)

	r.Get("/", handler.ListTrips)
	r.With(authMiddleware, adminOnly).Post("/", handler.CreateTrip)
	r.Route("/{tripID}", func(r chi.Router) {
		r.Get("/", handler.GetTrip)
		r.With(authMiddleware, adminOnly).Put("/", handler.UpdateTrip)
		r.With(authMiddleware, adminOnly).Delete("/", handler.DeleteTrip)
	})
}

func (h *TripHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.tripService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list trips")
		return
	}
	// Empty catalogs are a valid, successful result.
	writeJSON(w, http.StatusOK, trips)
}

func (h *TripHandler) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := parseTripID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := h.tripService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "trip not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch trip")
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (h *TripHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	price, err := services.ParsePrice(r.FormValue(formFieldPrice))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid price")
		return
	}

	image, err := parseImageFile(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input := services.TripInput{
		Destination: strings.TrimSpace(r.FormValue(formFieldDestination)),
		Description: strings.TrimSpace(r.FormValue(formFieldDescription)),
		Price:       price,
	}

	created, err := h.tripService.Create(r.Context(), input, image)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create trip")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *TripHandler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := parseTripID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	image, err := parseImageFile(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input := services.TripUpdateInput{
		ID:          id,
		Destination: strings.TrimSpace(r.FormValue(formFieldDestination)),
		Description: strings.TrimSpace(r.FormValue(formFieldDescription)),
		Price:       r.FormValue(formFieldPrice),
	}

	updated, err := h.tripService.Update(r.Context(), input, image)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "trip not found")
		case errors.Is(err, services.ErrInvalidPrice):
			writeError(w, http.StatusBadRequest, "invalid price")
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update trip")
		}
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *TripHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := parseTripID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.tripService.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "trip not found")
		case errors.Is(err, services.ErrTripHasBookings):
			writeError(w, http.StatusConflict, "trip has existing bookings")
		default:
			writeError(w, http.StatusInternalServerError, "failed to delete trip")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseTripID(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "tripID")
	if _, err := uuid.Parse(raw); err != nil {
		return "", errors.New("invalid trip id")
	}
	return raw, nil
}

func parseImageFile(form *multipart.Form) (*services.ImageUpload, error) {
	if form == nil {
		return nil, nil
	}

	files := form.File[formFieldImage]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > 1 {
		return nil, errors.New("only one image is allowed")
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	data, err := readFileLimited(file, maxImageBytes)
	_ = file.Close()
	if err != nil {
		return nil, err
	}

	return &services.ImageUpload{
		Filename:    fileHeader.Filename,
		Data:        data,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
