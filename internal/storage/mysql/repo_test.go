package mysql

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_booking/internal/domain"
)

var hotelCols = []string{
	"id", "owner_id", "name", "city", "country", "description", "type",
	"adult_count", "child_count", "facilities", "price_per_night", "star_rating",
	"image_urls", "last_updated", "bookings",
}

func newMock(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, time.Second), mock
}

func hotelRow(id, owner string, bookings string) *sqlmock.Rows {
	return sqlmock.NewRows(hotelCols).AddRow(
		id, owner, "Sea View", "Test City", "Testland", "desc", "Budget",
		int64(2), int64(1), []byte(`["Parking"]`), 100.0, int64(3),
		[]byte(`["https://img.example/1.jpg"]`), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), []byte(bookings),
	)
}

func TestBuildWhere(t *testing.T) {
	cond, args := buildWhere(domain.HotelFilter{})
	assert.Equal(t, "1=1", cond)
	assert.Empty(t, args)

	adults, maxPrice := 2, 150.0
	cond, args = buildWhere(domain.HotelFilter{
		Destination: "te_st",
		MinAdults:   &adults,
		Facilities:  []string{"Spa", "Parking"},
		Types:       []string{"Budget", "Family"},
		Stars:       []int{4, 5},
		MaxPrice:    &maxPrice,
	})
	assert.Equal(t,
		"(LOWER(city) LIKE ? OR LOWER(country) LIKE ? OR LOWER(name) LIKE ?) AND adult_count >= ? AND "+
			"JSON_CONTAINS(facilities, JSON_QUOTE(?)) AND JSON_CONTAINS(facilities, JSON_QUOTE(?)) AND "+
			"type IN (?,?) AND star_rating IN (?,?) AND price_per_night <= ?",
		cond)
	assert.Equal(t, []any{
		`%te\_st%`, `%te\_st%`, `%te\_st%`, 2, "Spa", "Parking", "Budget", "Family", 4, 5, 150.0,
	}, args)
}

func TestOrderBy(t *testing.T) {
	assert.Equal(t, "seq ASC", orderBy(domain.SortDefault))
	assert.Equal(t, "price_per_night ASC, seq ASC", orderBy(domain.SortPricePerNightAsc))
	assert.Equal(t, "price_per_night DESC, seq ASC", orderBy(domain.SortPricePerNightDesc))
	assert.Equal(t, "star_rating DESC, seq ASC", orderBy(domain.SortStarRating))
}

func TestAppendBooking(t *testing.T) {
	ctx := context.Background()
	b := domain.Booking{UserID: "u1", PaymentIntentID: "pi_1", TotalCost: 200}

	t.Run("Appends", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectBookingsSQL)).
			WithArgs("h1").
			WillReturnRows(sqlmock.NewRows([]string{"bookings", "version"}).AddRow([]byte(`[]`), int64(3)))
		mock.ExpectExec(`UPDATE hotels SET\s+bookings\s+= JSON_ARRAY_APPEND`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "h1", int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		stored, created, err := repo.AppendBooking(ctx, "h1", b, time.Now())
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, b, stored)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Replay returns stored booking", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectBookingsSQL)).
			WithArgs("h1").
			WillReturnRows(sqlmock.NewRows([]string{"bookings", "version"}).
				AddRow([]byte(`[{"userId":"u1","paymentIntentId":"pi_1","totalCost":150}]`), int64(4)))

		stored, created, err := repo.AppendBooking(ctx, "h1", b, time.Now())
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, 150.0, stored.TotalCost)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Lost race", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectBookingsSQL)).
			WithArgs("h1").
			WillReturnRows(sqlmock.NewRows([]string{"bookings", "version"}).AddRow([]byte(`[]`), int64(3)))
		mock.ExpectExec(`JSON_ARRAY_APPEND`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "h1", int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, _, err := repo.AppendBooking(ctx, "h1", b, time.Now())
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown hotel", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectBookingsSQL)).
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		_, _, err := repo.AppendBooking(ctx, "nope", b, time.Now())
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Store unreachable", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectBookingsSQL)).
			WithArgs("h1").
			WillReturnError(mysqldrv.ErrInvalidConn)

		_, _, err := repo.AppendBooking(ctx, "h1", b, time.Now())
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateHotel(t *testing.T) {
	ctx := context.Background()
	h := domain.Hotel{ID: "h1", Name: "Renamed", Facilities: []string{"Parking"}, LastUpdated: time.Now()}

	t.Run("Owner", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectExec(`UPDATE hotels SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta(findOwnedHotelSQL)).
			WithArgs("h1", "owner-1").
			WillReturnRows(hotelRow("h1", "owner-1", `[{"userId":"u1","paymentIntentId":"pi_1"}]`))

		out, err := repo.UpdateHotel(ctx, "owner-1", h)
		require.NoError(t, err)
		assert.Equal(t, "h1", out.ID)
		assert.Len(t, out.Bookings, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not owner", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectExec(`UPDATE hotels SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := repo.UpdateHotel(ctx, "intruder", h)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetHotelScansJSONColumns(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(getHotelSQL)).
		WithArgs("h1").
		WillReturnRows(hotelRow("h1", "owner-1", `[]`))

	h, err := repo.GetHotel(context.Background(), "h1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Parking"}, h.Facilities)
	assert.Equal(t, []string{"https://img.example/1.jpg"}, h.ImageURLs)
	assert.NotNil(t, h.Bookings)
	assert.Empty(t, h.Bookings)
	assert.Equal(t, 100.0, h.PricePerNight)
	assert.Equal(t, 3, h.StarRating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanRejectsCorruptJSONColumns(t *testing.T) {
	good := []byte(`["ok"]`)
	cases := []struct {
		name                       string
		facilities, images, booked []byte
		want                       string
	}{
		{"facilities", []byte(`{"broken"`), good, []byte(`[]`), "decode facilities of h1"},
		{"images", good, []byte(`not json`), []byte(`[]`), "decode image urls of h1"},
		{"bookings", good, good, []byte(`[{`), "decode bookings of h1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMock(t)
			mock.ExpectQuery(regexp.QuoteMeta(getHotelSQL)).
				WithArgs("h1").
				WillReturnRows(sqlmock.NewRows(hotelCols).AddRow(
					"h1", "owner-1", "Sea View", "Test City", "Testland", "desc", "Budget",
					int64(2), int64(1), tc.facilities, 100.0, int64(3),
					tc.images, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), tc.booked,
				))

			_, err := repo.GetHotel(context.Background(), "h1")
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSearchAndCount(t *testing.T) {
	repo, mock := newMock(t)
	maxPrice := 120.0
	f := domain.HotelFilter{MaxPrice: &maxPrice}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM hotels WHERE price_per_night <= ? ORDER BY price_per_night DESC, seq ASC LIMIT ? OFFSET ?`)).
		WithArgs(120.0, int64(5), int64(10)).
		WillReturnRows(hotelRow("h1", "o", `[]`))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM hotels WHERE price_per_night <= ?`)).
		WithArgs(120.0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(11)))

	hs, err := repo.SearchHotels(context.Background(), f, domain.SortPricePerNightDesc, 10, 5)
	require.NoError(t, err)
	assert.Len(t, hs, 1)

	n, err := repo.CountHotels(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSuggestAndBookedBy(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(suggestHotelsSQL)).
		WithArgs("%sea%", int64(5)).
		WillReturnRows(hotelRow("h1", "o", `[]`))
	mock.ExpectQuery(`JSON_CONTAINS\(bookings, JSON_OBJECT\('userId', \?\)\)`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(hotelCols))

	hs, err := repo.SuggestHotels(context.Background(), "sea", 5)
	require.NoError(t, err)
	assert.Len(t, hs, 1)

	hs, err = repo.ListHotelsBookedBy(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, hs)
	assert.Empty(t, hs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
