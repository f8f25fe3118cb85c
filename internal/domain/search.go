package domain

import (
	"sort"
	"strings"
)

const (
	SearchPageSize  = 5
	SuggestionLimit = 5
)

type SortOption string

const (
	SortDefault           SortOption = ""
	SortPricePerNightAsc  SortOption = "pricePerNightAsc"
	SortPricePerNightDesc SortOption = "pricePerNightDesc"
	SortStarRating        SortOption = "starRating"
)

// ParseSortOption maps unknown values to SortDefault.
func ParseSortOption(s string) SortOption {
	switch o := SortOption(s); o {
	case SortPricePerNightAsc, SortPricePerNightDesc, SortStarRating:
		return o
	}
	return SortDefault
}

type SearchQuery struct {
	Destination string
	AdultCount  *int
	ChildCount  *int
	Facilities  []string
	Types       []string
	Stars       []int
	MaxPrice    *float64
	SortOption  SortOption
	Page        int
}

// HotelFilter is the conjunctive predicate derived from a SearchQuery.
// Zero-valued fields impose no constraint.
type HotelFilter struct {
	Destination string // already lower-cased
	MinAdults   *int
	MinChildren *int
	Facilities  []string
	Types       []string
	Stars       []int
	MaxPrice    *float64
}

func (q SearchQuery) Filter() HotelFilter {
	return HotelFilter{
		Destination: strings.ToLower(strings.TrimSpace(q.Destination)),
		MinAdults:   q.AdultCount,
		MinChildren: q.ChildCount,
		Facilities:  nonEmpty(q.Facilities),
		Types:       nonEmpty(q.Types),
		Stars:       q.Stars,
		MaxPrice:    q.MaxPrice,
	}
}

// Matches evaluates the filter against a hotel in memory. Storage adapters
// that can push the predicate down to the database do so instead.
func (f HotelFilter) Matches(h Hotel) bool {
	if f.Destination != "" &&
		!strings.Contains(strings.ToLower(h.City), f.Destination) &&
		!strings.Contains(strings.ToLower(h.Country), f.Destination) &&
		!strings.Contains(strings.ToLower(h.Name), f.Destination) {
		return false
	}
	if f.MinAdults != nil && h.AdultCount < *f.MinAdults {
		return false
	}
	if f.MinChildren != nil && h.ChildCount < *f.MinChildren {
		return false
	}
	for _, want := range f.Facilities {
		if !containsStr(h.Facilities, want) {
			return false
		}
	}
	if len(f.Types) > 0 && !containsStr(f.Types, h.Type) {
		return false
	}
	if len(f.Stars) > 0 && !containsInt(f.Stars, h.StarRating) {
		return false
	}
	if f.MaxPrice != nil && h.PricePerNight > *f.MaxPrice {
		return false
	}
	return true
}

// SortHotels orders hotels in place; ties keep their incoming (storage) order.
func SortHotels(hs []Hotel, o SortOption) {
	switch o {
	case SortPricePerNightAsc:
		sort.SliceStable(hs, func(i, j int) bool { return hs[i].PricePerNight < hs[j].PricePerNight })
	case SortPricePerNightDesc:
		sort.SliceStable(hs, func(i, j int) bool { return hs[i].PricePerNight > hs[j].PricePerNight })
	case SortStarRating:
		sort.SliceStable(hs, func(i, j int) bool { return hs[i].StarRating > hs[j].StarRating })
	}
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

type SearchResult struct {
	Data       []Hotel    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func containsStr(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
