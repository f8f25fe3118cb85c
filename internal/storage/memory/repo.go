// Package memory is a single-process Inventory Store for local development
// and tests. Hotels are kept in insertion order, which is the storage order
// searches fall back to.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hotel_booking/internal/domain"
)

type Repo struct {
	mu     sync.RWMutex
	hotels []domain.Hotel
	index  map[string]int
}

func New() *Repo { return &Repo{index: map[string]int{}} }

func (r *Repo) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h.ID = uuid.NewString()
	if h.Bookings == nil {
		h.Bookings = []domain.Booking{}
	}
	r.index[h.ID] = len(r.hotels)
	r.hotels = append(r.hotels, clone(h))
	return clone(h), nil
}

func (r *Repo) UpdateHotel(ctx context.Context, ownerID string, h domain.Hotel) (domain.Hotel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.owned(ownerID, h.ID)
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	cur := &r.hotels[i]
	cur.Name, cur.City, cur.Country = h.Name, h.City, h.Country
	cur.Description, cur.Type = h.Description, h.Type
	cur.AdultCount, cur.ChildCount = h.AdultCount, h.ChildCount
	cur.Facilities = append([]string(nil), h.Facilities...)
	cur.PricePerNight, cur.StarRating = h.PricePerNight, h.StarRating
	cur.ImageURLs = append([]string(nil), h.ImageURLs...)
	cur.LastUpdated = h.LastUpdated
	return clone(*cur), nil
}

func (r *Repo) AppendBooking(ctx context.Context, hotelID string, b domain.Booking, at time.Time) (domain.Booking, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[hotelID]
	if !ok {
		return domain.Booking{}, false, domain.ErrNotFound
	}
	h := &r.hotels[i]
	if existing, ok := h.BookingByIntent(b.PaymentIntentID); ok {
		return existing, false, nil
	}
	h.Bookings = append(h.Bookings, b)
	h.LastUpdated = at
	return b, true, nil
}

func (r *Repo) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return clone(r.hotels[i]), nil
}

func (r *Repo) FindOwnedHotel(ctx context.Context, ownerID, id string) (domain.Hotel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.owned(ownerID, id)
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return clone(r.hotels[i]), nil
}

func (r *Repo) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	out := r.collect(func(domain.Hotel) bool { return true })
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastUpdated.After(out[j].LastUpdated) })
	return out, nil
}

func (r *Repo) ListOwnedHotels(ctx context.Context, ownerID string) ([]domain.Hotel, error) {
	return r.collect(func(h domain.Hotel) bool { return h.OwnerID == ownerID }), nil
}

func (r *Repo) SearchHotels(ctx context.Context, f domain.HotelFilter, o domain.SortOption, skip, limit int) ([]domain.Hotel, error) {
	hs := r.collect(f.Matches)
	domain.SortHotels(hs, o)
	if skip < 0 || skip >= len(hs) || limit <= 0 {
		return []domain.Hotel{}, nil
	}
	end := len(hs)
	if limit < end-skip {
		end = skip + limit
	}
	return hs[skip:end], nil
}

func (r *Repo) CountHotels(ctx context.Context, f domain.HotelFilter) (int, error) {
	return len(r.collect(f.Matches)), nil
}

func (r *Repo) SuggestHotels(ctx context.Context, term string, limit int) ([]domain.Hotel, error) {
	term = strings.ToLower(term)
	hs := r.collect(func(h domain.Hotel) bool { return strings.Contains(strings.ToLower(h.Name), term) })
	if len(hs) > limit {
		hs = hs[:limit]
	}
	return hs, nil
}

func (r *Repo) ListHotelsBookedBy(ctx context.Context, userID string) ([]domain.Hotel, error) {
	return r.collect(func(h domain.Hotel) bool {
		for _, b := range h.Bookings {
			if b.UserID == userID {
				return true
			}
		}
		return false
	}), nil
}

func (r *Repo) owned(ownerID, id string) (int, bool) {
	i, ok := r.index[id]
	if !ok || r.hotels[i].OwnerID != ownerID {
		return 0, false
	}
	return i, true
}

func (r *Repo) collect(keep func(domain.Hotel) bool) []domain.Hotel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Hotel{}
	for _, h := range r.hotels {
		if keep(h) {
			out = append(out, clone(h))
		}
	}
	return out
}

func clone(h domain.Hotel) domain.Hotel {
	h.Facilities = append([]string{}, h.Facilities...)
	h.ImageURLs = append([]string{}, h.ImageURLs...)
	h.Bookings = append([]domain.Booking{}, h.Bookings...)
	return h
}
