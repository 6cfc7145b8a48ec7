package service

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

// StripePSP charges cards through Stripe PaymentIntents.
type StripePSP struct {
	api      *client.API
	currency string
}

// NewStripePSP creates a provider using secretKey. backends may be nil to use
// the default Stripe endpoints.
func NewStripePSP(secretKey, currency string, backends *stripe.Backends) *StripePSP {
	api := &client.API{}
	api.Init(secretKey, backends)
	if currency == "" {
		currency = "kes"
	}
	return &StripePSP{api: api, currency: currency}
}

// Charge creates and confirms a PaymentIntent for the card token.
func (p *StripePSP) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(int64(req.Amount) * 100), // minor units
		Currency:      stripe.String(p.currency),
		PaymentMethod: stripe.String(req.CardToken),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	if req.UserEmail != "" {
		params.ReceiptEmail = stripe.String(req.UserEmail)
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: payment intent %s is %s", ErrPaymentDeclined, pi.ID, pi.Status)
	}
	return &ChargeResult{Reference: pi.ID}, nil
}
