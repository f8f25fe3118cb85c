package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

type Handlers struct {
	Q   *app.QueryService
	Inv *app.InventoryService
	Res *app.ReservationService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/api/hotels", func(r chi.Router) {
		r.Get("/", h.listHotels)
		r.Get("/search", h.searchHotels)
		r.Get("/search/suggestion/{query}", h.suggestHotels)
		r.Get("/{id}", h.getHotel)
		r.Post("/{id}/bookings/payment-intent", h.createPaymentIntent)
		r.Post("/{id}/bookings", h.createBooking)
	})
	s.mux.Route("/api/my-hotels", func(r chi.Router) {
		r.Get("/", h.listMyHotels)
		r.Post("/", h.createHotel)
		r.Get("/{id}", h.getMyHotel)
		r.Put("/{id}", h.updateHotel)
	})
	s.mux.Get("/api/my-bookings", h.listMyBookings)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps the domain error taxonomy onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "unauthorized")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
	case errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "Conflict", "hotel was modified concurrently, retry the request")
	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Error().Err(err).Str("path", r.URL.Path).Msg("store unavailable")
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "inventory store unavailable")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "something went wrong")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return domain.Invalid("malformed JSON body: %v", err)
	}
	return nil
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// ---- public inventory ----

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	hs, err := h.Q.ListHotels(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hs)
}

func (h *Handlers) searchHotels(w http.ResponseWriter, r *http.Request) {
	q, err := parseSearchQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.Q.SearchHotels(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) suggestHotels(w http.ResponseWriter, r *http.Request) {
	hs, err := h.Q.SuggestHotels(r.Context(), chi.URLParam(r, "query"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hs)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "hotel id is required")
		return
	}
	resp, err := h.Q.GetHotel(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	etag, body := calcETagAndBody(resp)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getHotel body")
	}
}

// ---- reservations ----

type paymentIntentBody struct {
	NumberOfNights json.Number `json:"numberOfNights"`
}

func (h *Handlers) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFrom(r.Context())
	if p.Anonymous() {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	var body paymentIntentBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	nights, err := strconv.Atoi(body.NumberOfNights.String())
	if err != nil {
		writeError(w, r, domain.Invalid("numberOfNights must be an integer"))
		return
	}
	pi, err := h.Res.PrepareBookingIntent(r.Context(), chi.URLParam(r, "id"), p, nights)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pi)
}

type bookingBody struct {
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	AdultCount      int       `json:"adultCount"`
	ChildCount      int       `json:"childCount"`
	CheckIn         time.Time `json:"checkIn"`
	CheckOut        time.Time `json:"checkOut"`
	PaymentIntentID string    `json:"paymentIntentId"`
	TotalCost       float64   `json:"totalCost"`
}

// createBooking answers 201 for a new booking and 200 when the payment intent
// was already booked.
func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFrom(r.Context())
	if p.Anonymous() {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	var body bookingBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	b, created, err := h.Res.CreateBooking(r.Context(), chi.URLParam(r, "id"), p, domain.BookingRequest{
		FirstName:       body.FirstName,
		LastName:        body.LastName,
		Email:           body.Email,
		AdultCount:      body.AdultCount,
		ChildCount:      body.ChildCount,
		CheckIn:         body.CheckIn,
		CheckOut:        body.CheckOut,
		PaymentIntentID: body.PaymentIntentID,
		TotalCost:       body.TotalCost,
	})
	observability.ObserveBooking(created, err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, b)
}

func (h *Handlers) listMyBookings(w http.ResponseWriter, r *http.Request) {
	hs, err := h.Res.ListMyBookings(r.Context(), PrincipalFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hs)
}

// ---- owner inventory ----

type hotelBody struct {
	Name          *string  `json:"name"`
	City          *string  `json:"city"`
	Country       *string  `json:"country"`
	Description   *string  `json:"description"`
	Type          *string  `json:"type"`
	AdultCount    *int     `json:"adultCount"`
	ChildCount    *int     `json:"childCount"`
	Facilities    []string `json:"facilities"`
	PricePerNight *float64 `json:"pricePerNight"`
	StarRating    *int     `json:"starRating"`
	ImageURLs     []string `json:"imageUrls"`
	NewImageURLs  []string `json:"newImageUrls"`
}

func (b hotelBody) hotel() domain.Hotel {
	str := func(p *string) string {
		if p == nil {
			return ""
		}
		return strings.TrimSpace(*p)
	}
	h := domain.Hotel{
		Name:        str(b.Name),
		City:        str(b.City),
		Country:     str(b.Country),
		Description: str(b.Description),
		Type:        str(b.Type),
		Facilities:  b.Facilities,
		ImageURLs:   append(append([]string{}, b.ImageURLs...), b.NewImageURLs...),
	}
	if b.AdultCount != nil {
		h.AdultCount = *b.AdultCount
	}
	if b.ChildCount != nil {
		h.ChildCount = *b.ChildCount
	}
	if b.PricePerNight != nil {
		h.PricePerNight = *b.PricePerNight
	}
	if b.StarRating != nil {
		h.StarRating = *b.StarRating
	}
	return h
}

func (b hotelBody) update() domain.HotelUpdate {
	return domain.HotelUpdate{
		Name:          b.Name,
		City:          b.City,
		Country:       b.Country,
		Description:   b.Description,
		Type:          b.Type,
		AdultCount:    b.AdultCount,
		ChildCount:    b.ChildCount,
		Facilities:    b.Facilities,
		PricePerNight: b.PricePerNight,
		StarRating:    b.StarRating,
		ImageURLs:     b.ImageURLs,
		NewImageURLs:  b.NewImageURLs,
	}
}

func (h *Handlers) listMyHotels(w http.ResponseWriter, r *http.Request) {
	hs, err := h.Inv.ListOwnedHotels(r.Context(), PrincipalFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hs)
}

func (h *Handlers) getMyHotel(w http.ResponseWriter, r *http.Request) {
	hotel, err := h.Inv.GetOwnedHotel(r.Context(), PrincipalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hotel)
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFrom(r.Context())
	if p.Anonymous() {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	var body hotelBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	hotel, err := h.Inv.CreateHotel(r.Context(), p, body.hotel())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/my-hotels/"+url.PathEscape(hotel.ID))
	writeJSON(w, http.StatusCreated, hotel)
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFrom(r.Context())
	if p.Anonymous() {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	var body hotelBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	hotel, err := h.Inv.UpdateHotel(r.Context(), p, chi.URLParam(r, "id"), body.update())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hotel)
}

// ---- query parsing ----

// parseSearchQuery reads the search parameters. Multi-valued filters accept
// repeated keys, the bracketed form (facilities[]=...) and comma lists.
func parseSearchQuery(v url.Values) (domain.SearchQuery, error) {
	q := domain.SearchQuery{
		Destination: strings.TrimSpace(v.Get("destination")),
		Facilities:  multi(v, "facilities"),
		Types:       multi(v, "types"),
		SortOption:  domain.ParseSortOption(v.Get("sortOption")),
	}
	var err error
	if q.AdultCount, err = optInt(v, "adultCount"); err != nil {
		return q, err
	}
	if q.ChildCount, err = optInt(v, "childCount"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = optFloat(v, "maxPrice"); err != nil {
		return q, err
	}
	for _, s := range multi(v, "stars") {
		n, err := strconv.Atoi(s)
		if err != nil {
			return q, domain.Invalid("stars must be integers, got %q", s)
		}
		q.Stars = append(q.Stars, n)
	}
	if p := v.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return q, domain.Invalid("page must be a positive integer")
		}
		q.Page = n
	}
	return q, nil
}

func multi(v url.Values, key string) []string {
	var out []string
	for _, raw := range append(v[key], v[key+"[]"]...) {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func optInt(v url.Values, key string) (*int, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, domain.Invalid("%s must be an integer", key)
	}
	return &n, nil
}

func optFloat(v url.Values, key string) (*float64, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, domain.Invalid("%s must be a number", key)
	}
	return &f, nil
}
