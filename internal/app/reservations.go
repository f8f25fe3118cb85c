package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

// ReservationService is the reservation engine plus the "my bookings" aggregator.
type ReservationService struct {
	repo     domain.HotelRepository
	cache    domain.Cache
	payments domain.PaymentGateway
	events   domain.BookingEvents
	retries  int

	eventTimeout time.Duration
}

// NewReservationService wires the engine. cache and events may be nil.
func NewReservationService(r domain.HotelRepository, cache domain.Cache, pg domain.PaymentGateway, ev domain.BookingEvents) *ReservationService {
	return &ReservationService{repo: r, cache: cache, payments: pg, events: ev, retries: 1, eventTimeout: 2 * time.Second}
}

// PrepareBookingIntent prices a stay and asks the payment gateway for an
// intent handle. Nothing is written to the inventory.
func (s *ReservationService) PrepareBookingIntent(ctx context.Context, hotelID string, p domain.Principal, nights int) (domain.PaymentIntent, error) {
	if err := requirePrincipal(p); err != nil {
		return domain.PaymentIntent{}, err
	}
	if nights <= 0 {
		return domain.PaymentIntent{}, domain.Invalid("numberOfNights must be positive")
	}
	h, err := s.repo.GetHotel(ctx, hotelID)
	if err != nil {
		return domain.PaymentIntent{}, err
	}

	cost := totalCost(h.PricePerNight, nights)
	pi, err := s.payments.CreateIntent(ctx, domain.IntentRequest{
		HotelID: h.ID,
		UserID:  string(p),
		Nights:  nights,
		Amount:  cost,
	})
	if err != nil {
		return domain.PaymentIntent{}, err
	}
	pi.TotalCost = cost
	return pi, nil
}

// CreateBooking records a paid stay. Replaying the same payment intent returns
// the booking stored the first time with created=false.
func (s *ReservationService) CreateBooking(ctx context.Context, hotelID string, p domain.Principal, req domain.BookingRequest) (domain.Booking, bool, error) {
	if err := requirePrincipal(p); err != nil {
		return domain.Booking{}, false, err
	}
	h, err := s.repo.GetHotel(ctx, hotelID)
	if err != nil {
		return domain.Booking{}, false, err
	}
	nights := nightsBetween(req.CheckIn, req.CheckOut)
	if nights <= 0 {
		return domain.Booking{}, false, domain.Invalid("checkOut must be after checkIn")
	}
	intentID := strings.TrimSpace(req.PaymentIntentID)
	if intentID == "" {
		return domain.Booking{}, false, domain.Invalid("paymentIntentId is required")
	}

	b := domain.Booking{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		AdultCount:      req.AdultCount,
		ChildCount:      req.ChildCount,
		CheckIn:         req.CheckIn.UTC(),
		CheckOut:        req.CheckOut.UTC(),
		UserID:          string(p),
		PaymentIntentID: intentID,
		TotalCost:       totalCost(h.PricePerNight, nights),
	}

	var (
		stored  domain.Booking
		created bool
	)
	for attempt := 0; ; attempt++ {
		stored, created, err = s.repo.AppendBooking(ctx, hotelID, b, time.Now().UTC())
		if !errors.Is(err, domain.ErrConflict) || attempt >= s.retries {
			break
		}
		log.Warn().
			Str("hotel", hotelID).
			Str("intent", intentID).
			Int("attempt", attempt+1).
			Msg("booking append conflict, retrying")
	}
	if err != nil {
		return domain.Booking{}, false, err
	}

	if created {
		invalidateHotel(ctx, s.cache, hotelID)
		s.publishConfirmed(ctx, h, stored, nights)
	}
	return stored, created, nil
}

// ListMyBookings returns the hotels p has booked, each carrying only p's bookings.
func (s *ReservationService) ListMyBookings(ctx context.Context, p domain.Principal) ([]domain.Hotel, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	hs, err := s.repo.ListHotelsBookedBy(ctx, string(p))
	if err != nil {
		return nil, err
	}
	out := make([]domain.Hotel, 0, len(hs))
	for _, h := range hs {
		mine := h.BookingsOf(string(p))
		if len(mine) == 0 {
			continue
		}
		h.Bookings = mine
		out = append(out, h)
	}
	return out, nil
}

func (s *ReservationService) publishConfirmed(ctx context.Context, h domain.Hotel, b domain.Booking, nights int) {
	if s.events == nil {
		return
	}
	ev := domain.BookingConfirmed{
		HotelID:         h.ID,
		HotelName:       h.Name,
		UserID:          b.UserID,
		PaymentIntentID: b.PaymentIntentID,
		CheckIn:         b.CheckIn,
		CheckOut:        b.CheckOut,
		Nights:          nights,
		TotalCost:       b.TotalCost,
		ConfirmedAt:     time.Now().UTC(),
	}
	// the booking is already stored: a cancelled request must not drop the
	// event, and a slow broker must not hold the response
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.eventTimeout)
	defer cancel()
	if err := s.events.BookingConfirmed(ctx, ev); err != nil {
		log.Warn().Err(err).Str("hotel", h.ID).Str("intent", b.PaymentIntentID).Msg("publish booking.confirmed failed")
	}
}
