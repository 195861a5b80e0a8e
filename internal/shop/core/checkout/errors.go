package checkout

import "errors"

var (
	ErrWrongStage           = errors.New("operation not allowed in the current checkout stage")
	ErrIncompleteAddress    = errors.New("shipping address requires street, city, postal code and country")
	ErrInvalidPaymentMethod = errors.New("payment method must be PayPal or Stripe")
	ErrEmptyCart            = errors.New("cannot place an order for an empty cart")
	ErrSessionClosed        = errors.New("checkout session already placed its order")
	ErrSubmissionInFlight   = errors.New("order submission already in progress")
	ErrNoPreviousStage      = errors.New("shipping is the first checkout stage")
)
