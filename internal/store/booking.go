package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wanderbook/apiserver/types"
)

const bookingSelect = `
	SELECT b.id, b.user_id, b.trip_id, b.booking_date, b.number_of_people, b.total_price,
		b.created_at, b.updated_at,
		t.destination AS trip_destination,
		t.price AS trip_price,
		CONCAT(u.first_name, ' ', u.last_name) AS user_full_name
	FROM bookings b
	JOIN trips t ON t.id = b.trip_id
	JOIN users u ON u.id = b.user_id`

// BookingRepository handles persistence for bookings. Reads join the
// trip and owner so callers get the display view in one query.
type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) List(ctx context.Context) ([]types.BookingView, error) {
	const query = bookingSelect + `
	ORDER BY b.created_at`
	return r.queryViews(ctx, query)
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]types.BookingView, error) {
	const query = bookingSelect + `
	WHERE b.user_id = $1
	ORDER BY b.created_at`
	return r.queryViews(ctx, query, userID)
}

func (r *BookingRepository) Get(ctx context.Context, id string) (types.BookingView, error) {
	const query = bookingSelect + `
	WHERE b.id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	view, err := scanBookingView(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.BookingView{}, ErrNotFound
		}
		return types.BookingView{}, err
	}
	return view, nil
}

func (r *BookingRepository) Create(ctx context.Context, booking types.Booking) (types.Booking, error) {
	booking.UpdatedAt = booking.CreatedAt

	const query = `
		INSERT INTO bookings (id, user_id, trip_id, booking_date, number_of_people, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		booking.ID,
		booking.UserID,
		booking.TripID,
		booking.BookingDate,
		booking.NumberOfPeople,
		booking.TotalPrice,
		booking.CreatedAt,
		booking.UpdatedAt,
	); err != nil {
		return types.Booking{}, err
	}
	return booking, nil
}

// Update writes the mutable booking fields in a single statement so the
// snapshot recompute is all-or-nothing.
func (r *BookingRepository) Update(ctx context.Context, booking types.Booking) (types.Booking, error) {
	booking.UpdatedAt = time.Now()

	const query = `
		UPDATE bookings
		SET trip_id = $1,
			booking_date = $2,
			number_of_people = $3,
			total_price = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		booking.TripID,
		booking.BookingDate,
		booking.NumberOfPeople,
		booking.TotalPrice,
		booking.UpdatedAt,
		booking.ID,
	)
	if err != nil {
		return types.Booking{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Booking{}, err
	}
	if affected == 0 {
		return types.Booking{}, ErrNotFound
	}
	return booking, nil
}

func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM bookings WHERE id = $1`
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

func (r *BookingRepository) queryViews(ctx context.Context, query string, args ...any) ([]types.BookingView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]types.BookingView, 0)
	for rows.Next() {
		view, err := scanBookingView(rows.Scan)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return views, nil
}

func scanBookingView(scan func(...any) error) (types.BookingView, error) {
	var view types.BookingView
	err := scan(
		&view.ID,
		&view.UserID,
		&view.TripID,
		&view.BookingDate,
		&view.NumberOfPeople,
		&view.TotalPrice,
		&view.CreatedAt,
		&view.UpdatedAt,
		&view.TripDestination,
		&view.TripPrice,
		&view.UserFullName,
	)
	if err != nil {
		return types.BookingView{}, err
	}
	return view, nil
}
