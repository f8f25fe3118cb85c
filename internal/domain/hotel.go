package domain

import "time"

// Principal is the authenticated caller id. The zero value is an anonymous caller.
type Principal string

func (p Principal) Anonymous() bool { return p == "" }

type Hotel struct {
	ID            string    `json:"_id"`
	OwnerID       string    `json:"userId"`
	Name          string    `json:"name"`
	City          string    `json:"city"`
	Country       string    `json:"country"`
	Description   string    `json:"description"`
	Type          string    `json:"type"`
	AdultCount    int       `json:"adultCount"`
	ChildCount    int       `json:"childCount"`
	Facilities    []string  `json:"facilities"`
	PricePerNight float64   `json:"pricePerNight"`
	StarRating    int       `json:"starRating"`
	ImageURLs     []string  `json:"imageUrls"`
	LastUpdated   time.Time `json:"lastUpdated"`
	Bookings      []Booking `json:"bookings"`
}

// Booking lives only inside its Hotel's Bookings slice.
type Booking struct {
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	AdultCount      int       `json:"adultCount"`
	ChildCount      int       `json:"childCount"`
	CheckIn         time.Time `json:"checkIn"`
	CheckOut        time.Time `json:"checkOut"`
	UserID          string    `json:"userId"`
	PaymentIntentID string    `json:"paymentIntentId"`
	TotalCost       float64   `json:"totalCost"`
}

// Public strips the embedded bookings; guest contact data is never part of a
// listing shown to other principals.
func (h Hotel) Public() Hotel {
	h.Bookings = []Booking{}
	return h
}

// BookingByIntent returns the booking carrying the given payment intent id.
func (h Hotel) BookingByIntent(intentID string) (Booking, bool) {
	for _, b := range h.Bookings {
		if b.PaymentIntentID == intentID {
			return b, true
		}
	}
	return Booking{}, false
}

// BookingsOf keeps only the bookings made by userID, preserving order.
func (h Hotel) BookingsOf(userID string) []Booking {
	out := make([]Booking, 0, len(h.Bookings))
	for _, b := range h.Bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out
}

// HotelUpdate carries the owner-editable fields. Nil pointers keep the stored value.
type HotelUpdate struct {
	Name          *string
	City          *string
	Country       *string
	Description   *string
	Type          *string
	AdultCount    *int
	ChildCount    *int
	Facilities    []string
	PricePerNight *float64
	StarRating    *int
	// ImageURLs lists the existing URLs to keep; nil keeps them all.
	ImageURLs    []string
	NewImageURLs []string
}

type BookingRequest struct {
	FirstName       string
	LastName        string
	Email           string
	AdultCount      int
	ChildCount      int
	CheckIn         time.Time
	CheckOut        time.Time
	PaymentIntentID string
	// TotalCost is whatever the client claims; it is never persisted.
	TotalCost float64
}

type PaymentIntent struct {
	ID           string  `json:"paymentIntentId"`
	ClientSecret string  `json:"clientSecret,omitempty"`
	TotalCost    float64 `json:"totalCost"`
}

type BookingConfirmed struct {
	HotelID         string    `json:"hotelId"`
	HotelName       string    `json:"hotelName"`
	UserID          string    `json:"userId"`
	PaymentIntentID string    `json:"paymentIntentId"`
	CheckIn         time.Time `json:"checkIn"`
	CheckOut        time.Time `json:"checkOut"`
	Nights          int       `json:"nights"`
	TotalCost       float64   `json:"totalCost"`
	ConfirmedAt     time.Time `json:"confirmedAt"`
}
