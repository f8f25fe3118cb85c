package mysql

import (
	"strings"

	"hotel_booking/internal/domain"
)

// buildWhere turns a filter into a WHERE condition and its positional args.
func buildWhere(f domain.HotelFilter) (string, []any) {
	where := []string{}
	args := []any{}

	if f.Destination != "" {
		like := "%" + escapeLike(f.Destination) + "%"
		where = append(where, "(LOWER(city) LIKE ? OR LOWER(country) LIKE ? OR LOWER(name) LIKE ?)")
		args = append(args, like, like, like)
	}
	if f.MinAdults != nil {
		where = append(where, "adult_count >= ?")
		args = append(args, *f.MinAdults)
	}
	if f.MinChildren != nil {
		where = append(where, "child_count >= ?")
		args = append(args, *f.MinChildren)
	}
	for _, fac := range f.Facilities {
		where = append(where, "JSON_CONTAINS(facilities, JSON_QUOTE(?))")
		args = append(args, fac)
	}
	if len(f.Types) > 0 {
		where = append(where, "type IN ("+placeholders(len(f.Types))+")")
		for _, t := range f.Types {
			args = append(args, t)
		}
	}
	if len(f.Stars) > 0 {
		where = append(where, "star_rating IN ("+placeholders(len(f.Stars))+")")
		for _, s := range f.Stars {
			args = append(args, s)
		}
	}
	if f.MaxPrice != nil {
		where = append(where, "price_per_night <= ?")
		args = append(args, *f.MaxPrice)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	return cond, args
}

// orderBy always ends on seq so ties fall back to insertion order.
func orderBy(o domain.SortOption) string {
	switch o {
	case domain.SortPricePerNightAsc:
		return "price_per_night ASC, seq ASC"
	case domain.SortPricePerNightDesc:
		return "price_per_night DESC, seq ASC"
	case domain.SortStarRating:
		return "star_rating DESC, seq ASC"
	default:
		return "seq ASC"
	}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
