package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/wanderbook/apiserver/config"
	"github.com/wanderbook/apiserver/types"
)

// TripRepository defines persistence operations for trips.
type TripRepository interface {
	List(ctx context.Context) ([]types.Trip, error)
	Get(ctx context.Context, id string) (types.Trip, error)
	Create(ctx context.Context, trip types.Trip) (types.Trip, error)
	Update(ctx context.Context, trip types.Trip) (types.Trip, error)
	Delete(ctx context.Context, id string) error
	HasBookings(ctx context.Context, tripID string) (bool, error)
}

// ImageStore is the slice of the object-storage API the trip catalog
// needs for image assets.
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// TripInput carries the fields for trip creation.
type TripInput struct {
	Destination string
	Description string
	Price       float64
}

// TripUpdateInput carries the fields for a trip update. Price arrives as
// text from the form-encoded update path and is parsed with an
// invariant decimal format.
type TripUpdateInput struct {
	ID          string
	Destination string
	Description string
	Price       string
}

// ImageUpload is an optional image payload attached to a create or
// update.
type ImageUpload struct {
	Filename    string
	Data        []byte
	ContentType string
}

// TripService manages the trip catalog. Mutations are admin-only; that
// gate is enforced by the HTTP layer, not here.
type TripService struct {
	repo   TripRepository
	images ImageStore
	cfg    config.StorageConfig
}

func NewTripService(repo TripRepository, images ImageStore, cfg config.StorageConfig) *TripService {
	return &TripService{repo: repo, images: images, cfg: cfg}
}

func (s *TripService) List(ctx context.Context) ([]types.Trip, error) {
	return s.repo.List(ctx)
}

func (s *TripService) Get(ctx context.Context, id string) (types.Trip, error) {
	return s.repo.Get(ctx, id)
}

// Create validates the input, stores the image (if any) under a fresh
// unique key, and persists the trip. Without an image the trip gets the
// configured placeholder path.
func (s *TripService) Create(ctx context.Context, input TripInput, image *ImageUpload) (types.Trip, error) {
	if err := validateTrip(input.Destination, input.Description, input.Price); err != nil {
		return types.Trip{}, err
	}

	imagePath := s.cfg.DefaultImage
	if image != nil && len(image.Data) > 0 {
		stored, err := s.storeImage(ctx, image)
		if err != nil {
			return types.Trip{}, err
		}
		imagePath = stored
	}

	trip, err := s.repo.Create(ctx, types.Trip{
		ID:          uuid.New().String(),
		Destination: input.Destination,
		Description: input.Description,
		Price:       input.Price,
		ImagePath:   imagePath,
	})
	if err != nil {
		return types.Trip{}, fmt.Errorf("create trip: %w", err)
	}
	return trip, nil
}

// Update parses the textual price, validates everything, and only then
// touches the record: a failed parse mutates nothing.
func (s *TripService) Update(ctx context.Context, input TripUpdateInput, image *ImageUpload) (types.Trip, error) {
	price, err := ParsePrice(input.Price)
	if err != nil {
		return types.Trip{}, err
	}
	if err := validateTrip(input.Destination, input.Description, price); err != nil {
		return types.Trip{}, err
	}

	trip, err := s.repo.Get(ctx, input.ID)
	if err != nil {
		return types.Trip{}, err
	}

	trip.Destination = input.Destination
	trip.Description = input.Description
	trip.Price = price

	if image != nil && len(image.Data) > 0 {
		stored, err := s.storeImage(ctx, image)
		if err != nil {
			return types.Trip{}, err
		}
		trip.ImagePath = stored
	}

	updated, err := s.repo.Update(ctx, trip)
	if err != nil {
		return types.Trip{}, fmt.Errorf("update trip: %w", err)
	}
	return updated, nil
}

// Delete removes a trip. Trips with dependent bookings are protected:
// deletion fails with ErrTripHasBookings instead of cascading away the
// users' reservations.
func (s *TripService) Delete(ctx context.Context, id string) error {
	booked, err := s.repo.HasBookings(ctx, id)
	if err != nil {
		return fmt.Errorf("check bookings: %w", err)
	}
	if booked {
		return ErrTripHasBookings
	}
	return s.repo.Delete(ctx, id)
}

// ParsePrice parses a textual price using the invariant decimal format
// (period separator, no grouping). It fails with ErrInvalidPrice for
// anything else, including negative values.
func ParsePrice(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, ",_ ") {
		return 0, ErrInvalidPrice
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price < 0 {
		return 0, ErrInvalidPrice
	}
	return price, nil
}

func (s *TripService) storeImage(ctx context.Context, image *ImageUpload) (string, error) {
	if s.images == nil {
		return s.cfg.DefaultImage, nil
	}

	// uuid prefix keeps concurrent uploads collision-free.
	key := uuid.New().String() + "_" + sanitizeFilename(image.Filename)
	contentType := image.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(image.Data)
	}
	if err := s.images.Put(ctx, key, image.Data, contentType); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return strings.TrimSuffix(s.cfg.PublicPrefix, "/") + "/" + key, nil
}

func validateTrip(destination, description string, price float64) error {
	if strings.TrimSpace(destination) == "" {
		return fmt.Errorf("%w: destination is required", ErrValidation)
	}
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if len(description) > types.MaxTripDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrValidation, types.MaxTripDescriptionLength)
	}
	if price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return nil
}

func sanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" || base == "" {
		return "image"
	}
	var b bytes.Buffer
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
