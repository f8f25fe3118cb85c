package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"hotel_booking/internal/domain"
)

type Repo struct {
	db      *sql.DB
	timeout time.Duration
}

// New returns a repo whose calls are each bounded by timeout (0 disables it).
func New(db *sql.DB, timeout time.Duration) *Repo { return &Repo{db: db, timeout: timeout} }

func (r *Repo) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Repo) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	h.ID = uuid.NewString()
	if h.Bookings == nil {
		h.Bookings = []domain.Booking{}
	}
	bookings, err := json.Marshal(h.Bookings)
	if err != nil {
		return domain.Hotel{}, err
	}
	_, err = r.db.ExecContext(ctx, insertHotelSQL,
		h.ID,
		h.OwnerID,
		h.Name,
		h.City,
		h.Country,
		h.Description,
		h.Type,
		h.AdultCount,
		h.ChildCount,
		valJSONList(h.Facilities),
		h.PricePerNight,
		h.StarRating,
		valJSONList(h.ImageURLs),
		h.LastUpdated,
		string(bookings),
	)
	if err != nil {
		return domain.Hotel{}, storeErr(err)
	}
	return h, nil
}

func (r *Repo) UpdateHotel(ctx context.Context, ownerID string, h domain.Hotel) (domain.Hotel, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, updateHotelSQL,
		h.Name,
		h.City,
		h.Country,
		h.Description,
		h.Type,
		h.AdultCount,
		h.ChildCount,
		valJSONList(h.Facilities),
		h.PricePerNight,
		h.StarRating,
		valJSONList(h.ImageURLs),
		h.LastUpdated,
		h.ID,
		ownerID,
	)
	if err != nil {
		return domain.Hotel{}, storeErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return r.queryOne(ctx, findOwnedHotelSQL, h.ID, ownerID)
}

func (r *Repo) AppendBooking(ctx context.Context, hotelID string, b domain.Booking, at time.Time) (domain.Booking, bool, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var raw []byte
	var version int64
	if err := r.db.QueryRowContext(ctx, selectBookingsSQL, hotelID).Scan(&raw, &version); err != nil {
		return domain.Booking{}, false, storeErr(err)
	}
	var existing []domain.Booking
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &existing); err != nil {
			return domain.Booking{}, false, fmt.Errorf("decode bookings of %s: %w", hotelID, err)
		}
	}
	for _, e := range existing {
		if e.PaymentIntentID == b.PaymentIntentID {
			return e, false, nil
		}
	}

	entry, err := json.Marshal(b)
	if err != nil {
		return domain.Booking{}, false, err
	}
	res, err := r.db.ExecContext(ctx, appendBookingSQL, string(entry), at, hotelID, version)
	if err != nil {
		return domain.Booking{}, false, storeErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Booking{}, false, storeErr(err)
	}
	if n == 0 {
		return domain.Booking{}, false, domain.ErrConflict
	}
	return b, true, nil
}

func (r *Repo) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	return r.queryOne(ctx, getHotelSQL, id)
}

func (r *Repo) FindOwnedHotel(ctx context.Context, ownerID, id string) (domain.Hotel, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	return r.queryOne(ctx, findOwnedHotelSQL, id, ownerID)
}

func (r *Repo) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	return r.queryMany(ctx, listHotelsSQL)
}

func (r *Repo) ListOwnedHotels(ctx context.Context, ownerID string) ([]domain.Hotel, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	return r.queryMany(ctx, listOwnedHotelsSQL, ownerID)
}

func (r *Repo) SearchHotels(ctx context.Context, f domain.HotelFilter, o domain.SortOption, skip, limit int) ([]domain.Hotel, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	cond, args := buildWhere(f)
	q := `SELECT ` + hotelColumns + ` FROM hotels WHERE ` + cond + ` ORDER BY ` + orderBy(o) + ` LIMIT ? OFFSET ?`
	args = append(args, limit, skip)
	return r.queryMany(ctx, q, args...)
}

func (r *Repo) CountHotels(ctx context.Context, f domain.HotelFilter) (int, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	cond, args := buildWhere(f)
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hotels WHERE `+cond, args...).Scan(&total); err != nil {
		return 0, storeErr(err)
	}
	return total, nil
}

func (r *Repo) SuggestHotels(ctx context.Context, term string, limit int) ([]domain.Hotel, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	return r.queryMany(ctx, suggestHotelsSQL, "%"+escapeLike(term)+"%", limit)
}

func (r *Repo) ListHotelsBookedBy(ctx context.Context, userID string) ([]domain.Hotel, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	return r.queryMany(ctx, hotelsBookedBySQL, userID)
}

// ---- scanning ----

type rowScanner interface{ Scan(dest ...any) error }

func scanHotel(s rowScanner) (domain.Hotel, error) {
	var h domain.Hotel
	var facilities, images, bookings []byte
	if err := s.Scan(
		&h.ID,
		&h.OwnerID,
		&h.Name,
		&h.City,
		&h.Country,
		&h.Description,
		&h.Type,
		&h.AdultCount,
		&h.ChildCount,
		&facilities,
		&h.PricePerNight,
		&h.StarRating,
		&images,
		&h.LastUpdated,
		&bookings,
	); err != nil {
		return domain.Hotel{}, err
	}
	if err := decodeColumn(facilities, &h.Facilities); err != nil {
		return domain.Hotel{}, fmt.Errorf("decode facilities of %s: %w", h.ID, err)
	}
	if err := decodeColumn(images, &h.ImageURLs); err != nil {
		return domain.Hotel{}, fmt.Errorf("decode image urls of %s: %w", h.ID, err)
	}
	if err := decodeColumn(bookings, &h.Bookings); err != nil {
		return domain.Hotel{}, fmt.Errorf("decode bookings of %s: %w", h.ID, err)
	}
	return h, nil
}

// decodeColumn reads a JSON array column; NULL or empty leaves an empty, non-nil slice.
func decodeColumn[T any](raw []byte, dst *[]T) error {
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, dst); err != nil {
			return err
		}
	}
	if *dst == nil {
		*dst = []T{}
	}
	return nil
}

func (r *Repo) queryOne(ctx context.Context, q string, args ...any) (domain.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return domain.Hotel{}, storeErr(err)
	}
	return h, nil
}

func (r *Repo) queryMany(ctx context.Context, q string, args ...any) ([]domain.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	out := []domain.Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

// ---- helpers ----

func valJSONList(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// storeErr maps driver errors onto the domain taxonomy.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrNotFound
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, mysqldrv.ErrInvalidConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded):
		return domain.Unavailable(err)
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return domain.Unavailable(err)
	}
	return err
}
