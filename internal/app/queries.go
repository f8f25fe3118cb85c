package app

import (
	"context"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"hotel_booking/internal/domain"
)

// maxSearchPage keeps (page-1)*SearchPageSize+SearchPageSize within int.
const maxSearchPage = math.MaxInt/domain.SearchPageSize - 1

type QueryService struct {
	repo     domain.HotelRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.HotelRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	key := hotelKey(id)
	var h domain.Hotel
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &h); ok {
			return h, nil
		}
	}
	stored, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	h = stored.Public()
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	}
	return h, nil
}

// SearchHotels counts all matches and loads the requested page concurrently.
func (s *QueryService) SearchHotels(ctx context.Context, q domain.SearchQuery) (domain.SearchResult, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	f := q.Filter()

	var (
		total  int
		hotels []domain.Hotel
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountHotels(gctx, f)
		total = n
		return err
	})
	// a page whose offset would overflow is past the end of any result set
	if page <= maxSearchPage {
		g.Go(func() error {
			hs, err := s.repo.SearchHotels(gctx, f, q.SortOption, (page-1)*domain.SearchPageSize, domain.SearchPageSize)
			hotels = hs
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return domain.SearchResult{}, err
	}

	return domain.SearchResult{
		Data: publicAll(hotels),
		Pagination: domain.Pagination{
			Total: total,
			Page:  page,
			Pages: (total + domain.SearchPageSize - 1) / domain.SearchPageSize,
		},
	}, nil
}

func (s *QueryService) SuggestHotels(ctx context.Context, term string) ([]domain.Hotel, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.Hotel{}, nil
	}
	hs, err := s.repo.SuggestHotels(ctx, strings.ToLower(term), domain.SuggestionLimit)
	if err != nil {
		return nil, err
	}
	return publicAll(hs), nil
}

// ListHotels returns every hotel, most recently updated first.
func (s *QueryService) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	hs, err := s.repo.ListHotels(ctx)
	if err != nil {
		return nil, err
	}
	return publicAll(hs), nil
}

// publicAll copies into a fresh slice so callers never alias the repo's backing array.
func publicAll(in []domain.Hotel) []domain.Hotel {
	out := make([]domain.Hotel, 0, len(in))
	for _, h := range in {
		out = append(out, h.Public())
	}
	return out
}
