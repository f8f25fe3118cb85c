package payments

import (
	"context"

	"github.com/google/uuid"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

// Local mints intents without a provider. Used in development and tests.
type Local struct{}

func (Local) Name() string { return "local" }

func (l Local) CreateIntent(_ context.Context, req domain.IntentRequest) (domain.PaymentIntent, error) {
	id := "pi_" + uuid.NewString()
	observability.ObservePaymentIntent(l.Name(), nil)
	return domain.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret_" + uuid.NewString(),
		TotalCost:    req.Amount,
	}, nil
}
