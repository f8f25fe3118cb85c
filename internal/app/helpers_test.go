package app_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/memory"
)

// ---- fakes ----

// jsonCache round-trips values through JSON the way the Redis adapter does.
type jsonCache struct {
	mu    sync.Mutex
	store map[string][]byte
	gets  int
	hits  int
	dels  []string
}

func (c *jsonCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dst)
}

func (c *jsonCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	c.store[key] = b
	return nil
}

func (c *jsonCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

// untouchable fails the test on any store access.
type untouchable struct {
	domain.HotelRepository
	t *testing.T
}

func (u untouchable) touched() { u.t.Fatalf("store must not be touched") }

func (u untouchable) CreateHotel(context.Context, domain.Hotel) (domain.Hotel, error) {
	u.touched()
	return domain.Hotel{}, nil
}
func (u untouchable) ListHotelsBookedBy(context.Context, string) ([]domain.Hotel, error) {
	u.touched()
	return nil, nil
}
func (u untouchable) ListOwnedHotels(context.Context, string) ([]domain.Hotel, error) {
	u.touched()
	return nil, nil
}
func (u untouchable) GetHotel(context.Context, string) (domain.Hotel, error) {
	u.touched()
	return domain.Hotel{}, nil
}
func (u untouchable) FindOwnedHotel(context.Context, string, string) (domain.Hotel, error) {
	u.touched()
	return domain.Hotel{}, nil
}

// conflicting loses the append race a fixed number of times before delegating.
type conflicting struct {
	*memory.Repo
	mu        sync.Mutex
	conflicts int
	calls     int
}

func (c *conflicting) AppendBooking(ctx context.Context, id string, b domain.Booking, at time.Time) (domain.Booking, bool, error) {
	c.mu.Lock()
	c.calls++
	lose := c.conflicts > 0
	if lose {
		c.conflicts--
	}
	c.mu.Unlock()
	if lose {
		return domain.Booking{}, false, domain.ErrConflict
	}
	return c.Repo.AppendBooking(ctx, id, b, at)
}

type recordingGateway struct {
	reqs []domain.IntentRequest
}

func (g *recordingGateway) Name() string { return "recording" }

func (g *recordingGateway) CreateIntent(ctx context.Context, req domain.IntentRequest) (domain.PaymentIntent, error) {
	g.reqs = append(g.reqs, req)
	return domain.PaymentIntent{ID: "pi_test", ClientSecret: "secret"}, nil
}

type recordingEvents struct {
	mu  sync.Mutex
	got []domain.BookingConfirmed
}

func (e *recordingEvents) BookingConfirmed(ctx context.Context, ev domain.BookingConfirmed) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.got = append(e.got, ev)
	return nil
}

// ---- fixtures ----

func ptr[T any](v T) *T { return &v }

func sampleHotel(name string) domain.Hotel {
	return domain.Hotel{
		Name:          name,
		City:          "Test City",
		Country:       "Test Country",
		Description:   "Test Description",
		Type:          "Budget",
		AdultCount:    2,
		ChildCount:    1,
		Facilities:    []string{"Free WiFi", "Parking"},
		PricePerNight: 100,
		StarRating:    4,
		ImageURLs:     []string{"https://img.example/a.jpg", "https://img.example/b.jpg"},
	}
}

func seed(t *testing.T, repo domain.HotelRepository, owner string, h domain.Hotel) domain.Hotel {
	t.Helper()
	h.OwnerID = owner
	h.LastUpdated = time.Now().UTC()
	out, err := repo.CreateHotel(context.Background(), h)
	if err != nil {
		t.Fatalf("seed %s: %v", h.Name, err)
	}
	return out
}

func bookingReq(intent string, checkIn time.Time, nights int) domain.BookingRequest {
	return domain.BookingRequest{
		FirstName:       "Test",
		LastName:        "Guest",
		Email:           "guest@example.com",
		AdultCount:      2,
		CheckIn:         checkIn,
		CheckOut:        checkIn.Add(time.Duration(nights) * 24 * time.Hour),
		PaymentIntentID: intent,
	}
}
