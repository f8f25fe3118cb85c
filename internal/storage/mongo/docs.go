package mongostore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"hotel_booking/internal/domain"
)

type hotelDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID       string             `bson:"userId"`
	Name          string             `bson:"name"`
	City          string             `bson:"city"`
	Country       string             `bson:"country"`
	Description   string             `bson:"description"`
	Type          string             `bson:"type"`
	AdultCount    int                `bson:"adultCount"`
	ChildCount    int                `bson:"childCount"`
	Facilities    []string           `bson:"facilities"`
	PricePerNight float64            `bson:"pricePerNight"`
	StarRating    int                `bson:"starRating"`
	ImageURLs     []string           `bson:"imageUrls"`
	LastUpdated   time.Time          `bson:"lastUpdated"`
	Bookings      []bookingDoc       `bson:"bookings"`
}

type bookingDoc struct {
	FirstName       string    `bson:"firstName"`
	LastName        string    `bson:"lastName"`
	Email           string    `bson:"email"`
	AdultCount      int       `bson:"adultCount"`
	ChildCount      int       `bson:"childCount"`
	CheckIn         time.Time `bson:"checkIn"`
	CheckOut        time.Time `bson:"checkOut"`
	UserID          string    `bson:"userId"`
	PaymentIntentID string    `bson:"paymentIntentId"`
	TotalCost       float64   `bson:"totalCost"`
}

func toDoc(h domain.Hotel) hotelDoc {
	d := hotelDoc{
		OwnerID:       h.OwnerID,
		Name:          h.Name,
		City:          h.City,
		Country:       h.Country,
		Description:   h.Description,
		Type:          h.Type,
		AdultCount:    h.AdultCount,
		ChildCount:    h.ChildCount,
		Facilities:    nonNil(h.Facilities),
		PricePerNight: h.PricePerNight,
		StarRating:    h.StarRating,
		ImageURLs:     nonNil(h.ImageURLs),
		LastUpdated:   h.LastUpdated,
		Bookings:      make([]bookingDoc, 0, len(h.Bookings)),
	}
	for _, b := range h.Bookings {
		d.Bookings = append(d.Bookings, toBookingDoc(b))
	}
	return d
}

func toBookingDoc(b domain.Booking) bookingDoc {
	return bookingDoc{
		FirstName:       b.FirstName,
		LastName:        b.LastName,
		Email:           b.Email,
		AdultCount:      b.AdultCount,
		ChildCount:      b.ChildCount,
		CheckIn:         bsonTime(b.CheckIn),
		CheckOut:        bsonTime(b.CheckOut),
		UserID:          b.UserID,
		PaymentIntentID: b.PaymentIntentID,
		TotalCost:       b.TotalCost,
	}
}

// bsonTime cuts t to the millisecond precision a BSON datetime keeps, so a
// value handed back before a write equals the one read after it.
func bsonTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func (d hotelDoc) domain() domain.Hotel {
	h := domain.Hotel{
		ID:            d.ID.Hex(),
		OwnerID:       d.OwnerID,
		Name:          d.Name,
		City:          d.City,
		Country:       d.Country,
		Description:   d.Description,
		Type:          d.Type,
		AdultCount:    d.AdultCount,
		ChildCount:    d.ChildCount,
		Facilities:    nonNil(d.Facilities),
		PricePerNight: d.PricePerNight,
		StarRating:    d.StarRating,
		ImageURLs:     nonNil(d.ImageURLs),
		LastUpdated:   d.LastUpdated.UTC(),
		Bookings:      make([]domain.Booking, 0, len(d.Bookings)),
	}
	for _, b := range d.Bookings {
		h.Bookings = append(h.Bookings, b.domain())
	}
	return h
}

func (b bookingDoc) domain() domain.Booking {
	return domain.Booking{
		FirstName:       b.FirstName,
		LastName:        b.LastName,
		Email:           b.Email,
		AdultCount:      b.AdultCount,
		ChildCount:      b.ChildCount,
		CheckIn:         b.CheckIn.UTC(),
		CheckOut:        b.CheckOut.UTC(),
		UserID:          b.UserID,
		PaymentIntentID: b.PaymentIntentID,
		TotalCost:       b.TotalCost,
	}
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
