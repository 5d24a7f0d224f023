package domain

import "time"

type CheckoutStep string

const (
	StepInfo     CheckoutStep = "info"
	StepPayment  CheckoutStep = "payment"
	StepComplete CheckoutStep = "complete"
)

// CheckoutDraft holds the shipping form for the current checkout
// session only. Building is the one optional field.
type CheckoutDraft struct {
	Name       string `validate:"required"`
	Email      string `validate:"required,email"`
	Phone      string `validate:"required"`
	PostalCode string `validate:"required"`
	Prefecture string `validate:"required"`
	City       string `validate:"required"`
	Address    string `validate:"required"`
	Building   string
}

type Receipt struct {
	OrderNumber string
	Summary     OrderSummary
	ShipTo      CheckoutDraft
	PlacedAt    time.Time
}
