package mongostore

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hotel_booking/internal/domain"
)

func buildFilter(f domain.HotelFilter) bson.M {
	q := bson.M{}
	if f.Destination != "" {
		re := containsRegex(f.Destination)
		q["$or"] = bson.A{
			bson.M{"city": re},
			bson.M{"country": re},
			bson.M{"name": re},
		}
	}
	if f.MinAdults != nil {
		q["adultCount"] = bson.M{"$gte": *f.MinAdults}
	}
	if f.MinChildren != nil {
		q["childCount"] = bson.M{"$gte": *f.MinChildren}
	}
	if len(f.Facilities) > 0 {
		q["facilities"] = bson.M{"$all": f.Facilities}
	}
	if len(f.Types) > 0 {
		q["type"] = bson.M{"$in": f.Types}
	}
	if len(f.Stars) > 0 {
		q["starRating"] = bson.M{"$in": f.Stars}
	}
	if f.MaxPrice != nil {
		q["pricePerNight"] = bson.M{"$lte": *f.MaxPrice}
	}
	return q
}

// sortSpec ends on _id; ObjectIDs grow with insertion so ties keep storage order.
func sortSpec(o domain.SortOption) bson.D {
	switch o {
	case domain.SortPricePerNightAsc:
		return bson.D{{Key: "pricePerNight", Value: 1}, {Key: "_id", Value: 1}}
	case domain.SortPricePerNightDesc:
		return bson.D{{Key: "pricePerNight", Value: -1}, {Key: "_id", Value: 1}}
	case domain.SortStarRating:
		return bson.D{{Key: "starRating", Value: -1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "_id", Value: 1}}
	}
}

// containsRegex matches term as a literal, case-insensitive substring.
func containsRegex(term string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
}
