package types

import "time"

// MaxTripDescriptionLength bounds the description accepted on trip
// create/update.
const MaxTripDescriptionLength = 5000

// Trip represents a bookable travel offering.
type Trip struct {
	// ID is the unique identifier of the trip (UUID string).
	ID string `json:"id" db:"id"`

	// Destination is the human-readable destination name.
	Destination string `json:"destination" db:"destination"`

	// Description contains the full trip description shown to users.
	Description string `json:"description" db:"description"`

	// Price is the per-person price of the trip. Bookings snapshot this
	// value at write time; later changes do not touch existing bookings.
	Price float64 `json:"price" db:"price"`

	// ImagePath is the public path of the trip image, e.g.
	// "/uploads/<key>". Trips created without an image reference the
	// configured default image.
	ImagePath string `json:"image_path" db:"image_path"`

	// CreatedAt is the timestamp at which the trip was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the trip.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
