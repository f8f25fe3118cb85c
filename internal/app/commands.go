package app

import (
	"context"
	"strings"
	"time"

	"hotel_booking/internal/domain"
)

// InventoryService handles the owner-scoped side of the inventory:
// "my hotels" reads and hotel create/update.
type InventoryService struct {
	repo  domain.HotelRepository
	cache domain.Cache
}

func NewInventoryService(r domain.HotelRepository, cache domain.Cache) *InventoryService {
	return &InventoryService{repo: r, cache: cache}
}

func (s *InventoryService) ListOwnedHotels(ctx context.Context, p domain.Principal) ([]domain.Hotel, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	return s.repo.ListOwnedHotels(ctx, string(p))
}

// GetOwnedHotel reports ErrNotFound both for unknown ids and for hotels owned
// by someone else.
func (s *InventoryService) GetOwnedHotel(ctx context.Context, p domain.Principal, id string) (domain.Hotel, error) {
	if err := requirePrincipal(p); err != nil {
		return domain.Hotel{}, err
	}
	return s.repo.FindOwnedHotel(ctx, string(p), id)
}

func (s *InventoryService) CreateHotel(ctx context.Context, p domain.Principal, h domain.Hotel) (domain.Hotel, error) {
	if err := requirePrincipal(p); err != nil {
		return domain.Hotel{}, err
	}
	h.ID = ""
	h.OwnerID = string(p)
	h.Facilities = trimAll(h.Facilities)
	h.ImageURLs = mergeImages(nil, h.ImageURLs)
	h.Bookings = []domain.Booking{}
	h.LastUpdated = time.Now().UTC()
	if err := validateHotel(h); err != nil {
		return domain.Hotel{}, err
	}
	return s.repo.CreateHotel(ctx, h)
}

func (s *InventoryService) UpdateHotel(ctx context.Context, p domain.Principal, id string, u domain.HotelUpdate) (domain.Hotel, error) {
	if err := requirePrincipal(p); err != nil {
		return domain.Hotel{}, err
	}
	cur, err := s.repo.FindOwnedHotel(ctx, string(p), id)
	if err != nil {
		return domain.Hotel{}, err
	}

	next := applyUpdate(cur, u)
	next.LastUpdated = time.Now().UTC()
	if err := validateHotel(next); err != nil {
		return domain.Hotel{}, err
	}

	out, err := s.repo.UpdateHotel(ctx, string(p), next)
	if err != nil {
		return domain.Hotel{}, err
	}
	invalidateHotel(ctx, s.cache, id)
	return out, nil
}

func applyUpdate(h domain.Hotel, u domain.HotelUpdate) domain.Hotel {
	setStr := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	setStr(&h.Name, u.Name)
	setStr(&h.City, u.City)
	setStr(&h.Country, u.Country)
	setStr(&h.Description, u.Description)
	setStr(&h.Type, u.Type)
	if u.AdultCount != nil {
		h.AdultCount = *u.AdultCount
	}
	if u.ChildCount != nil {
		h.ChildCount = *u.ChildCount
	}
	if u.Facilities != nil {
		h.Facilities = trimAll(u.Facilities)
	}
	if u.PricePerNight != nil {
		h.PricePerNight = *u.PricePerNight
	}
	if u.StarRating != nil {
		h.StarRating = *u.StarRating
	}

	retained := h.ImageURLs
	if u.ImageURLs != nil {
		// only URLs the hotel actually had can be retained
		retained = retained[:0:0]
		for _, url := range u.ImageURLs {
			if containsURL(h.ImageURLs, url) {
				retained = append(retained, url)
			}
		}
	}
	h.ImageURLs = mergeImages(retained, u.NewImageURLs)
	return h
}

func validateHotel(h domain.Hotel) error {
	required := []struct{ field, val string }{
		{"name", h.Name},
		{"city", h.City},
		{"country", h.Country},
		{"description", h.Description},
		{"type", h.Type},
	}
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			return domain.Invalid("%s is required", r.field)
		}
	}
	switch {
	case h.AdultCount < 1:
		return domain.Invalid("adultCount must be at least 1")
	case h.ChildCount < 0:
		return domain.Invalid("childCount must not be negative")
	case len(h.Facilities) == 0:
		return domain.Invalid("facilities are required")
	case h.PricePerNight <= 0:
		return domain.Invalid("pricePerNight must be positive")
	case h.StarRating < 1 || h.StarRating > 5:
		return domain.Invalid("starRating must be between 1 and 5")
	}
	return nil
}

// mergeImages appends fresh URLs after the retained ones, dropping blanks and duplicates.
func mergeImages(retained, fresh []string) []string {
	out := make([]string, 0, len(retained)+len(fresh))
	for _, list := range [][]string{retained, fresh} {
		for _, url := range list {
			url = strings.TrimSpace(url)
			if url == "" || containsURL(out, url) {
				continue
			}
			out = append(out, url)
		}
	}
	return out
}

func containsURL(urls []string, u string) bool {
	for _, x := range urls {
		if x == u {
			return true
		}
	}
	return false
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
