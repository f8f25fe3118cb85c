// Package mongostore keeps hotels as MongoDB documents with their bookings
// embedded in each hotel.
package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotel_booking/internal/domain"
)

const hotelsCollection = "hotels"

type Repo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func New(db *mongo.Database, timeout time.Duration) *Repo {
	return &Repo{coll: db.Collection(hotelsCollection), timeout: timeout}
}

func (r *Repo) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

// EnsureIndexes creates the indexes the search, owner and my-bookings paths rely on.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "bookings.userId", Value: 1}}},
		{Keys: bson.D{{Key: "pricePerNight", Value: 1}}},
		{Keys: bson.D{{Key: "starRating", Value: -1}}},
		{Keys: bson.D{{Key: "lastUpdated", Value: -1}}},
	})
	return storeErr(err)
}

func (r *Repo) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	doc := toDoc(h)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return domain.Hotel{}, storeErr(err)
	}
	return doc.domain(), nil
}

func (r *Repo) UpdateHotel(ctx context.Context, ownerID string, h domain.Hotel) (domain.Hotel, error) {
	oid, ok := objectID(h.ID)
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	d := toDoc(h)
	set := bson.M{
		"name":          d.Name,
		"city":          d.City,
		"country":       d.Country,
		"description":   d.Description,
		"type":          d.Type,
		"adultCount":    d.AdultCount,
		"childCount":    d.ChildCount,
		"facilities":    d.Facilities,
		"pricePerNight": d.PricePerNight,
		"starRating":    d.StarRating,
		"imageUrls":     d.ImageURLs,
		"lastUpdated":   d.LastUpdated,
	}
	var out hotelDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "userId": ownerID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return domain.Hotel{}, storeErr(err)
	}
	return out.domain(), nil
}

// AppendBooking pushes only when no embedded booking carries the intent id;
// the guard and the push are one document update.
func (r *Repo) AppendBooking(ctx context.Context, hotelID string, b domain.Booking, at time.Time) (domain.Booking, bool, error) {
	oid, ok := objectID(hotelID)
	if !ok {
		return domain.Booking{}, false, domain.ErrNotFound
	}
	ctx, cancel := r.bound(ctx)
	defer cancel()

	bd := toBookingDoc(b)
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "bookings.paymentIntentId": bson.M{"$ne": b.PaymentIntentID}},
		bson.M{
			"$push": bson.M{"bookings": bd},
			"$set":  bson.M{"lastUpdated": at},
		},
	)
	if err != nil {
		return domain.Booking{}, false, storeErr(err)
	}
	if res.MatchedCount == 1 {
		return bd.domain(), true, nil
	}

	// Either the hotel is gone or the intent is already booked.
	var doc hotelDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return domain.Booking{}, false, storeErr(err)
	}
	if existing, ok := doc.domain().BookingByIntent(b.PaymentIntentID); ok {
		return existing, false, nil
	}
	return domain.Booking{}, false, domain.ErrConflict
}

func (r *Repo) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	oid, ok := objectID(id)
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *Repo) FindOwnedHotel(ctx context.Context, ownerID, id string) (domain.Hotel, error) {
	oid, ok := objectID(id)
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid, "userId": ownerID})
}

func (r *Repo) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{
		{Key: "lastUpdated", Value: -1},
		{Key: "_id", Value: 1},
	}))
}

func (r *Repo) ListOwnedHotels(ctx context.Context, ownerID string) ([]domain.Hotel, error) {
	return r.find(ctx, bson.M{"userId": ownerID}, options.Find().SetSort(sortSpec(domain.SortDefault)))
}

func (r *Repo) SearchHotels(ctx context.Context, f domain.HotelFilter, o domain.SortOption, skip, limit int) ([]domain.Hotel, error) {
	opts := options.Find().
		SetSort(sortSpec(o)).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))
	return r.find(ctx, buildFilter(f), opts)
}

func (r *Repo) CountHotels(ctx context.Context, f domain.HotelFilter) (int, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	n, err := r.coll.CountDocuments(ctx, buildFilter(f))
	if err != nil {
		return 0, storeErr(err)
	}
	return int(n), nil
}

func (r *Repo) SuggestHotels(ctx context.Context, term string, limit int) ([]domain.Hotel, error) {
	opts := options.Find().SetSort(sortSpec(domain.SortDefault)).SetLimit(int64(limit))
	return r.find(ctx, bson.M{"name": containsRegex(term)}, opts)
}

func (r *Repo) ListHotelsBookedBy(ctx context.Context, userID string) ([]domain.Hotel, error) {
	return r.find(ctx, bson.M{"bookings.userId": userID}, options.Find().SetSort(sortSpec(domain.SortDefault)))
}

func (r *Repo) findOne(ctx context.Context, filter bson.M) (domain.Hotel, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	var doc hotelDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return domain.Hotel{}, storeErr(err)
	}
	return doc.domain(), nil
}

func (r *Repo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Hotel, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeErr(err)
	}
	var docs []hotelDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeErr(err)
	}
	out := make([]domain.Hotel, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.domain())
	}
	return out, nil
}

func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case mongo.IsTimeout(err),
		mongo.IsNetworkError(err),
		errors.Is(err, mongo.ErrClientDisconnected),
		errors.Is(err, context.DeadlineExceeded):
		return domain.Unavailable(err)
	}
	return err
}
