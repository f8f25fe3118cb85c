package observability_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record one sample per family so every counter is exported
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)
	observability.ObserveBooking(true, nil)
	observability.ObservePaymentIntent("local", nil)
	observability.ObserveCache("redis", "hit")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{
		"hotel_http_requests_total",
		"hotel_booking_attempts_total",
		"hotel_payment_intents_total",
		"hotel_cache_events_total",
	} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}

func TestBookingOutcome(t *testing.T) {
	cases := []struct {
		created bool
		err     error
		want    string
	}{
		{true, nil, "created"},
		{false, nil, "duplicate"},
		{false, domain.ErrConflict, "conflict"},
		{false, domain.Invalid("bad dates"), "rejected"},
		{false, domain.ErrNotFound, "rejected"},
		{false, domain.ErrUnauthorized, "rejected"},
		{false, errors.New("boom"), "error"},
	}
	for _, c := range cases {
		if got := observability.BookingOutcome(c.created, c.err); got != c.want {
			t.Fatalf("BookingOutcome(%v, %v) = %q, want %q", c.created, c.err, got, c.want)
		}
	}
}
