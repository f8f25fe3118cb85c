// Package payments creates payment intents for hotel stays.
package payments

import (
	"context"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

// intentAPI is the slice of the Stripe client the gateway calls.
type intentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type Stripe struct {
	api      intentAPI
	currency string
}

func NewStripe(apiKey, currency string) *Stripe {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &Stripe{api: sc.PaymentIntents, currency: currency}
}

func (s *Stripe) Name() string { return "stripe" }

func (s *Stripe) CreateIntent(ctx context.Context, req domain.IntentRequest) (domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(req.Amount)),
		Currency: stripe.String(s.currency),
	}
	params.Context = ctx
	params.AddMetadata("hotelId", req.HotelID)
	params.AddMetadata("userId", req.UserID)
	params.AddMetadata("nights", fmt.Sprint(req.Nights))

	pi, err := s.api.New(params)
	observability.ObservePaymentIntent(s.Name(), err)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	if pi.ClientSecret == "" {
		return domain.PaymentIntent{}, fmt.Errorf("stripe: payment intent %s has no client secret", pi.ID)
	}
	return domain.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		TotalCost:    req.Amount,
	}, nil
}

func toMinorUnits(amount float64) int64 { return int64(math.Round(amount * 100)) }
