package types

import "time"

// Booking represents a user's reservation of a trip for a party.
//
// TotalPrice is a snapshot: it equals the referenced trip's price times
// NumberOfPeople at the moment the booking was last written. It is not
// recomputed when the trip's price later changes (audit semantics), but
// every create or update of the booking itself recomputes it from the
// current trip price.
type Booking struct {
	// ID is the unique identifier of the booking (UUID string).
	ID string `json:"id" db:"id"`

	// UserID identifies the user who owns the booking.
	UserID string `json:"user_id" db:"user_id"`

	// TripID identifies the booked trip.
	TripID string `json:"trip_id" db:"trip_id"`

	// BookingDate is the date the trip is booked for.
	BookingDate time.Time `json:"booking_date" db:"booking_date"`

	// NumberOfPeople is the party size.
	NumberOfPeople int `json:"number_of_people" db:"number_of_people"`

	// TotalPrice is the price snapshot captured at the last write.
	TotalPrice float64 `json:"total_price" db:"total_price"`

	// CreatedAt is the timestamp at which the booking was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the booking.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// BookingView is the read model returned by booking endpoints: the
// booking joined with the display fields of its trip and owner.
type BookingView struct {
	Booking

	// TripDestination is the destination of the booked trip.
	TripDestination string `json:"trip_destination" db:"trip_destination"`

	// TripPrice is the trip's current per-person price, which may differ
	// from the snapshot captured in TotalPrice.
	TripPrice float64 `json:"trip_price" db:"trip_price"`

	// UserFullName is the owner's display name.
	UserFullName string `json:"user_full_name" db:"user_full_name"`
}
