package redisad

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_booking/internal/domain"
)

func TestCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	var miss domain.Hotel
	ok, err := c.Get(ctx, "hotel:1", &miss)
	require.NoError(t, err)
	assert.False(t, ok)

	in := domain.Hotel{ID: "1", Name: "Sea View", PricePerNight: 99.5, Facilities: []string{"Spa"}, Bookings: []domain.Booking{}}
	require.NoError(t, c.Set(ctx, "hotel:1", in, 60))
	assert.True(t, mr.Exists("hotel_booking:hotel:1"))

	var out domain.Hotel
	ok, err = c.Get(ctx, "hotel:1", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, out)

	mr.FastForward(61 * time.Second)
	ok, err = c.Get(ctx, "hotel:1", &out)
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire")

	require.NoError(t, c.Set(ctx, "hotel:1", in, 60))
	require.NoError(t, c.Del(ctx, "hotel:1"))
	assert.False(t, mr.Exists("hotel_booking:hotel:1"))
}

func TestCacheUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	mr.Close()

	var out domain.Hotel
	_, err := c.Get(context.Background(), "hotel:1", &out)
	assert.Error(t, err)
}
