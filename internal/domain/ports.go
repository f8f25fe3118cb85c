package domain

import (
	"context"
	"time"
)

// HotelRepository is the Inventory Store. Every method that takes an ownerID
// applies it as part of the lookup predicate.
type HotelRepository interface {
	// Write paths
	CreateHotel(ctx context.Context, h Hotel) (Hotel, error)
	UpdateHotel(ctx context.Context, ownerID string, h Hotel) (Hotel, error)
	// AppendBooking adds b to the hotel's bookings unless a booking with the same
	// PaymentIntentID exists, in which case the stored booking is returned with
	// created=false. Check and append are atomic per hotel; a lost race is
	// reported as ErrConflict.
	AppendBooking(ctx context.Context, hotelID string, b Booking, at time.Time) (stored Booking, created bool, err error)

	// Read paths
	GetHotel(ctx context.Context, id string) (Hotel, error)
	FindOwnedHotel(ctx context.Context, ownerID, id string) (Hotel, error)
	ListHotels(ctx context.Context) ([]Hotel, error)
	ListOwnedHotels(ctx context.Context, ownerID string) ([]Hotel, error)
	SearchHotels(ctx context.Context, f HotelFilter, o SortOption, skip, limit int) ([]Hotel, error)
	CountHotels(ctx context.Context, f HotelFilter) (int, error)
	SuggestHotels(ctx context.Context, term string, limit int) ([]Hotel, error)
	// ListHotelsBookedBy returns hotels holding at least one booking by userID,
	// with all of their bookings.
	ListHotelsBookedBy(ctx context.Context, userID string) ([]Hotel, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type IntentRequest struct {
	HotelID string
	UserID  string
	Nights  int
	Amount  float64
}

// PaymentGateway mints the opaque intent handle the client pays against.
type PaymentGateway interface {
	Name() string
	CreateIntent(ctx context.Context, req IntentRequest) (PaymentIntent, error)
}

type BookingEvents interface {
	BookingConfirmed(ctx context.Context, ev BookingConfirmed) error
}
