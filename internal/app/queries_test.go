package app_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/memory"
)

func TestGetHotel_CacheMissThenHit(t *testing.T) {
	repo := memory.New()
	h := seed(t, repo, "owner-1", sampleHotel("Cached"))
	if _, _, err := repo.AppendBooking(context.Background(), h.ID, domain.Booking{UserID: "u1", PaymentIntentID: "pi_1"}, time.Now()); err != nil {
		t.Fatalf("append: %v", err)
	}

	cache := &jsonCache{}
	svc := app.NewQueryService(repo, cache, 5*time.Minute)

	// 1) cache miss -> repo -> cache set
	got, err := svc.GetHotel(context.Background(), h.ID)
	if err != nil {
		t.Fatalf("GetHotel: %v", err)
	}
	if got.Name != "Cached" || len(got.Bookings) != 0 {
		t.Fatalf("unexpected public hotel: %+v", got)
	}
	if cache.hits != 0 || len(cache.store) != 1 {
		t.Fatalf("expected one cached entry after a miss, hits=%d entries=%d", cache.hits, len(cache.store))
	}

	// 2) cache hit
	got2, err := svc.GetHotel(context.Background(), h.ID)
	if err != nil {
		t.Fatalf("GetHotel (hit): %v", err)
	}
	if cache.hits != 1 || got2.ID != h.ID || len(got2.Bookings) != 0 {
		t.Fatalf("expected cache hit with public view, hits=%d got=%+v", cache.hits, got2)
	}
}

func TestGetHotel_NotFound(t *testing.T) {
	svc := app.NewQueryService(memory.New(), nil, 0)
	if _, err := svc.GetHotel(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSearchHotels_TestCity(t *testing.T) {
	repo := memory.New()
	seed(t, repo, "owner-1", sampleHotel("Test Hotel"))
	other := sampleHotel("Elsewhere")
	other.City = "Other Town"
	other.Country = "Nowhere"
	seed(t, repo, "owner-1", other)

	svc := app.NewQueryService(repo, nil, 0)
	res, err := svc.SearchHotels(context.Background(), domain.SearchQuery{
		Destination: "Test City",
		AdultCount:  ptr(2),
		ChildCount:  ptr(1),
		Page:        1,
	})
	if err != nil {
		t.Fatalf("SearchHotels: %v", err)
	}
	if len(res.Data) != 1 || res.Pagination.Total != 1 || res.Pagination.Pages != 1 || res.Pagination.Page != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Data[0].Name != "Test Hotel" {
		t.Fatalf("wrong hotel: %s", res.Data[0].Name)
	}
}

func TestSearchHotels_Filters(t *testing.T) {
	repo := memory.New()
	a := sampleHotel("Alpha")
	a.Type, a.StarRating, a.PricePerNight = "Luxury", 5, 300
	a.Facilities = []string{"Spa", "Parking"}
	b := sampleHotel("Beta")
	b.Type, b.StarRating, b.PricePerNight = "Budget", 2, 80
	c := sampleHotel("Gamma")
	c.Type, c.StarRating, c.PricePerNight = "Family", 3, 150
	c.AdultCount = 4
	for _, h := range []domain.Hotel{a, b, c} {
		seed(t, repo, "owner-1", h)
	}
	svc := app.NewQueryService(repo, nil, 0)

	cases := []struct {
		name string
		q    domain.SearchQuery
		want []string
	}{
		{"no filters keeps storage order", domain.SearchQuery{}, []string{"Alpha", "Beta", "Gamma"}},
		{"destination is case-insensitive", domain.SearchQuery{Destination: "tEsT cOuNtRy"}, []string{"Alpha", "Beta", "Gamma"}},
		{"adult capacity", domain.SearchQuery{AdultCount: ptr(3)}, []string{"Gamma"}},
		{"facilities must all be present", domain.SearchQuery{Facilities: []string{"Spa", "Parking"}}, []string{"Alpha"}},
		{"types", domain.SearchQuery{Types: []string{"Budget", "Family"}}, []string{"Beta", "Gamma"}},
		{"stars", domain.SearchQuery{Stars: []int{5, 2}}, []string{"Alpha", "Beta"}},
		{"max price", domain.SearchQuery{MaxPrice: ptr(150.0)}, []string{"Beta", "Gamma"}},
		{"price ascending", domain.SearchQuery{SortOption: domain.SortPricePerNightAsc}, []string{"Beta", "Gamma", "Alpha"}},
		{"price descending", domain.SearchQuery{SortOption: domain.SortPricePerNightDesc}, []string{"Alpha", "Gamma", "Beta"}},
		{"stars descending", domain.SearchQuery{SortOption: domain.SortStarRating}, []string{"Alpha", "Gamma", "Beta"}},
		{"no match", domain.SearchQuery{Destination: "atlantis"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := svc.SearchHotels(context.Background(), tc.q)
			if err != nil {
				t.Fatalf("SearchHotels: %v", err)
			}
			var names []string
			for _, h := range res.Data {
				names = append(names, h.Name)
			}
			if fmt.Sprint(names) != fmt.Sprint(tc.want) {
				t.Fatalf("got %v, want %v", names, tc.want)
			}
			if res.Pagination.Total != len(tc.want) {
				t.Fatalf("total %d, want %d", res.Pagination.Total, len(tc.want))
			}
		})
	}
}

func TestSearchHotels_PaginationCompleteness(t *testing.T) {
	repo := memory.New()
	const total = 12
	for i := 0; i < total; i++ {
		h := sampleHotel(fmt.Sprintf("Hotel %02d", i))
		h.PricePerNight = float64(100 + i%3) // ties exercise the stable tie-break
		seed(t, repo, "owner-1", h)
	}
	svc := app.NewQueryService(repo, nil, 0)

	for _, o := range []domain.SortOption{domain.SortDefault, domain.SortPricePerNightAsc, domain.SortStarRating} {
		seen := map[string]int{}
		first, err := svc.SearchHotels(context.Background(), domain.SearchQuery{SortOption: o, Page: 1})
		if err != nil {
			t.Fatalf("page 1: %v", err)
		}
		if first.Pagination.Pages != 3 || first.Pagination.Total != total {
			t.Fatalf("unexpected pagination: %+v", first.Pagination)
		}
		for p := 1; p <= first.Pagination.Pages; p++ {
			res, err := svc.SearchHotels(context.Background(), domain.SearchQuery{SortOption: o, Page: p})
			if err != nil {
				t.Fatalf("page %d: %v", p, err)
			}
			if len(res.Data) > domain.SearchPageSize {
				t.Fatalf("page %d has %d items", p, len(res.Data))
			}
			for _, h := range res.Data {
				seen[h.ID]++
			}
		}
		if len(seen) != total {
			t.Fatalf("sort %q: saw %d distinct hotels, want %d", o, len(seen), total)
		}
		for id, n := range seen {
			if n != 1 {
				t.Fatalf("sort %q: hotel %s returned %d times", o, id, n)
			}
		}
	}

	// past the last page is empty, not an error
	res, err := svc.SearchHotels(context.Background(), domain.SearchQuery{Page: 9})
	if err != nil || len(res.Data) != 0 || res.Pagination.Page != 9 {
		t.Fatalf("unexpected out-of-range page: %+v, %v", res, err)
	}
}

func TestSearchHotels_EmptyStore(t *testing.T) {
	svc := app.NewQueryService(memory.New(), nil, 0)
	res, err := svc.SearchHotels(context.Background(), domain.SearchQuery{})
	if err != nil {
		t.Fatalf("SearchHotels: %v", err)
	}
	if res.Data == nil || len(res.Data) != 0 || res.Pagination != (domain.Pagination{Total: 0, Page: 1, Pages: 0}) {
		t.Fatalf("unexpected empty result: %+v", res)
	}
}

func TestSearchHotels_HugePageIsEmpty(t *testing.T) {
	repo := memory.New()
	for i := 0; i < 3; i++ {
		seed(t, repo, "owner-1", sampleHotel(fmt.Sprintf("Hotel %d", i)))
	}
	svc := app.NewQueryService(repo, nil, 0)

	for _, page := range []int{1844674407370955163, math.MaxInt, math.MaxInt / domain.SearchPageSize} {
		res, err := svc.SearchHotels(context.Background(), domain.SearchQuery{Page: page})
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if res.Data == nil || len(res.Data) != 0 {
			t.Fatalf("page %d: want empty data, got %+v", page, res.Data)
		}
		if res.Pagination.Total != 3 || res.Pagination.Pages != 1 || res.Pagination.Page != page {
			t.Fatalf("page %d: unexpected pagination %+v", page, res.Pagination)
		}
	}
}

func TestSuggestHotels(t *testing.T) {
	repo := memory.New()
	for i := 0; i < 7; i++ {
		seed(t, repo, "owner-1", sampleHotel(fmt.Sprintf("Grand Palace %d", i)))
	}
	seed(t, repo, "owner-1", sampleHotel("Seaside"))
	svc := app.NewQueryService(repo, nil, 0)

	got, err := svc.SuggestHotels(context.Background(), "PALACE")
	if err != nil {
		t.Fatalf("SuggestHotels: %v", err)
	}
	if len(got) != domain.SuggestionLimit {
		t.Fatalf("want %d suggestions, got %d", domain.SuggestionLimit, len(got))
	}

	got, err = svc.SuggestHotels(context.Background(), "  ")
	if err != nil || len(got) != 0 {
		t.Fatalf("blank term should yield nothing: %v %v", got, err)
	}
}

func TestListHotels_MostRecentFirst(t *testing.T) {
	repo := memory.New()
	old := sampleHotel("Old")
	old.OwnerID = "o"
	old.LastUpdated = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := sampleHotel("Recent")
	recent.OwnerID = "o"
	recent.LastUpdated = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, h := range []domain.Hotel{old, recent} {
		if _, err := repo.CreateHotel(context.Background(), h); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	hs, err := app.NewQueryService(repo, nil, 0).ListHotels(context.Background())
	if err != nil {
		t.Fatalf("ListHotels: %v", err)
	}
	if len(hs) != 2 || hs[0].Name != "Recent" || hs[1].Name != "Old" {
		t.Fatalf("unexpected order: %+v", hs)
	}
}
