package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wanderbook/apiserver/internal/store"
	"github.com/wanderbook/apiserver/internal/token"
	"github.com/wanderbook/apiserver/types"
)

// Booking lifecycle event channels.
const (
	EventBookingCreated = "booking.created"
	EventBookingUpdated = "booking.updated"
	EventBookingDeleted = "booking.deleted"
)

// BookingRepository defines persistence operations for bookings.
type BookingRepository interface {
	List(ctx context.Context) ([]types.BookingView, error)
	ListByUser(ctx context.Context, userID string) ([]types.BookingView, error)
	Get(ctx context.Context, id string) (types.BookingView, error)
	Create(ctx context.Context, booking types.Booking) (types.Booking, error)
	Update(ctx context.Context, booking types.Booking) (types.Booking, error)
	Delete(ctx context.Context, id string) error
}

// TripReader is the read-only slice of the trip catalog the booking
// engine needs for pricing.
type TripReader interface {
	Get(ctx context.Context, id string) (types.Trip, error)
}

// EventPublisher publishes booking lifecycle events to a broker. A nil
// publisher disables events.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// BookingCreateInput carries the fields for booking creation.
type BookingCreateInput struct {
	TripID         string
	BookingDate    time.Time
	NumberOfPeople int
}

// BookingUpdateInput carries the fields for a booking update. The trip
// may change; the price snapshot always comes from the target trip.
type BookingUpdateInput struct {
	ID             string
	TripID         string
	BookingDate    time.Time
	NumberOfPeople int
}

// BookingService manages the booking lifecycle. Every write recomputes
// the TotalPrice snapshot from the referenced trip's current price;
// nothing ever recomputes it on read.
type BookingService struct {
	repo      BookingRepository
	trips     TripReader
	policy    Policy
	publisher EventPublisher
}

func NewBookingService(repo BookingRepository, trips TripReader, policy Policy, publisher EventPublisher) *BookingService {
	return &BookingService{
		repo:      repo,
		trips:     trips,
		policy:    policy,
		publisher: publisher,
	}
}

// Create books a trip for the caller. The referenced trip must exist;
// TotalPrice is snapshotted as trip.Price * NumberOfPeople. Bookings are
// confirmed immediately, there is no pending state.
func (s *BookingService) Create(ctx context.Context, input BookingCreateInput, callerID string) (types.BookingView, error) {
	if input.NumberOfPeople < 1 {
		return types.BookingView{}, fmt.Errorf("%w: number of people must be at least 1", ErrValidation)
	}

	trip, err := s.trips.Get(ctx, input.TripID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.BookingView{}, ErrTripNotFound
		}
		return types.BookingView{}, fmt.Errorf("load trip: %w", err)
	}

	bookingDate := input.BookingDate
	if bookingDate.IsZero() {
		bookingDate = time.Now().UTC()
	}

	booking := types.Booking{
		ID:             uuid.New().String(),
		UserID:         callerID,
		TripID:         trip.ID,
		BookingDate:    bookingDate,
		NumberOfPeople: input.NumberOfPeople,
		TotalPrice:     trip.Price * float64(input.NumberOfPeople),
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := s.repo.Create(ctx, booking); err != nil {
		return types.BookingView{}, fmt.Errorf("create booking: %w", err)
	}

	view, err := s.repo.Get(ctx, booking.ID)
	if err != nil {
		return types.BookingView{}, fmt.Errorf("load booking: %w", err)
	}

	go s.publish(context.WithoutCancel(ctx), EventBookingCreated, view)
	return view, nil
}

func (s *BookingService) List(ctx context.Context) ([]types.BookingView, error) {
	return s.repo.List(ctx)
}

func (s *BookingService) ListByUser(ctx context.Context, userID string) ([]types.BookingView, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *BookingService) Get(ctx context.Context, id string) (types.BookingView, error) {
	return s.repo.Get(ctx, id)
}

// Update rewrites a booking. The booking and the target trip must both
// exist; TotalPrice is recomputed from the target trip's current price
// and the new party size, overwriting the prior snapshot. Only the owner
// or an admin may update.
func (s *BookingService) Update(ctx context.Context, input BookingUpdateInput, caller token.Claims) (types.BookingView, error) {
	if input.NumberOfPeople < 1 {
		return types.BookingView{}, fmt.Errorf("%w: number of people must be at least 1", ErrValidation)
	}

	current, err := s.repo.Get(ctx, input.ID)
	if err != nil {
		return types.BookingView{}, err
	}

	if !s.policy.CanMutate(caller, current.UserID, "") {
		return types.BookingView{}, ErrForbidden
	}

	trip, err := s.trips.Get(ctx, input.TripID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.BookingView{}, ErrTripNotFound
		}
		return types.BookingView{}, fmt.Errorf("load trip: %w", err)
	}

	booking := current.Booking
	booking.TripID = trip.ID
	if !input.BookingDate.IsZero() {
		booking.BookingDate = input.BookingDate
	}
	booking.NumberOfPeople = input.NumberOfPeople
	booking.TotalPrice = trip.Price * float64(input.NumberOfPeople)

	if _, err := s.repo.Update(ctx, booking); err != nil {
		return types.BookingView{}, fmt.Errorf("update booking: %w", err)
	}

	view, err := s.repo.Get(ctx, booking.ID)
	if err != nil {
		return types.BookingView{}, fmt.Errorf("load booking: %w", err)
	}

	go s.publish(context.WithoutCancel(ctx), EventBookingUpdated, view)
	return view, nil
}

// Delete removes a booking. Permitted only for the owner or an admin;
// everyone else gets ErrForbidden.
func (s *BookingService) Delete(ctx context.Context, id string, caller token.Claims) error {
	view, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if !s.policy.CanMutate(caller, view.UserID, "") {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	go s.publish(context.WithoutCancel(ctx), EventBookingDeleted, view)
	return nil
}

// publish sends a booking event; failures are best-effort and never
// affect the request that triggered them.
func (s *BookingService) publish(ctx context.Context, channel string, view types.BookingView) {
	if s.publisher == nil {
		return
	}
	data, err := json.Marshal(view)
	if err != nil {
		return
	}
	_, _ = s.publisher.Publish(ctx, channel, data, map[string]string{
		"booking_id": view.ID,
		"user_id":    view.UserID,
	})
}
