package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wanderbook/apiserver/types"
)

// TripRepository handles persistence for trips.
type TripRepository struct {
	db *sql.DB
}

func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) List(ctx context.Context) ([]types.Trip, error) {
	const query = `
		SELECT id, destination, description, price, image_path, created_at, updated_at
		FROM trips
		ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := make([]types.Trip, 0)
	for rows.Next() {
		var trip types.Trip
		if err := rows.Scan(
			&trip.ID,
			&trip.Destination,
			&trip.Description,
			&trip.Price,
			&trip.ImagePath,
			&trip.CreatedAt,
			&trip.UpdatedAt,
		); err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trips, nil
}

func (r *TripRepository) Get(ctx context.Context, id string) (types.Trip, error) {
	const query = `
		SELECT id, destination, description, price, image_path, created_at, updated_at
		FROM trips
		WHERE id = $1`
	var trip types.Trip
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&trip.ID,
		&trip.Destination,
		&trip.Description,
		&trip.Price,
		&trip.ImagePath,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Trip{}, ErrNotFound
		}
		return types.Trip{}, err
	}
	return trip, nil
}

func (r *TripRepository) Create(ctx context.Context, trip types.Trip) (types.Trip, error) {
	now := time.Now()
	trip.CreatedAt = now
	trip.UpdatedAt = now

	const query = `
		INSERT INTO trips (id, destination, description, price, image_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		trip.ID,
		trip.Destination,
		trip.Description,
		trip.Price,
		trip.ImagePath,
		trip.CreatedAt,
		trip.UpdatedAt,
	); err != nil {
		return types.Trip{}, err
	}
	return trip, nil
}

func (r *TripRepository) Update(ctx context.Context, trip types.Trip) (types.Trip, error) {
	trip.UpdatedAt = time.Now()

	const query = `
		UPDATE trips
		SET destination = $1,
			description = $2,
			price = $3,
			image_path = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		trip.Destination,
		trip.Description,
		trip.Price,
		trip.ImagePath,
		trip.UpdatedAt,
		trip.ID,
	)
	if err != nil {
		return types.Trip{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Trip{}, err
	}
	if affected == 0 {
		return types.Trip{}, ErrNotFound
	}
	return trip, nil
}

func (r *TripRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM trips WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// HasBookings reports whether any booking references the trip. The trip
// service uses it to restrict deletion of booked trips.
func (r *TripRepository) HasBookings(ctx context.Context, tripID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM bookings WHERE trip_id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, tripID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
