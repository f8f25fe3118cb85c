package app

import (
	"context"

	"hotel_booking/internal/domain"
)

func hotelKey(id string) string { return "hotel:" + id }

func invalidateHotel(ctx context.Context, c domain.Cache, id string) {
	if c == nil {
		return
	}
	_ = c.Del(ctx, hotelKey(id))
}
