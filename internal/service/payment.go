package service

import (
	"context"
	"errors"
	"time"
)

var ErrPaymentDeclined = errors.New("payment declined")

// PaymentGateway authorizes a charge for the given amount. Authorize
// must honor context cancellation: an abandoned checkout cancels the
// in-flight authorization.
type PaymentGateway interface {
	Authorize(ctx context.Context, amount int64) error
}

// SimulatedGateway stands in for a real payment processor. It settles
// after a fixed delay and never contacts anything.
type SimulatedGateway struct {
	SettleDelay time.Duration

	// Decline forces every authorization to fail; used to exercise the
	// declined-payment path in demos and tests.
	Decline bool
}

func (g *SimulatedGateway) Authorize(ctx context.Context, _ int64) error {
	timer := time.NewTimer(g.SettleDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	if g.Decline {
		return ErrPaymentDeclined
	}

	return nil
}
