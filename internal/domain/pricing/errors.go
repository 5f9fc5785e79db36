package pricing

import "errors"

var (
	ErrInvalidDuration    = errors.New("durata must be greater than zero")
	ErrInvalidDownPayment = errors.New("anticipo must be between 0 and 100")
	ErrInvalidStatus      = errors.New("invalid quote status")
	ErrQuoteNotOwned      = errors.New("quote belongs to another user")
	ErrAlreadyClaimed     = errors.New("quote already has an owner")
)

var (
	ErrInvalidConfigStep = errors.New("configurator step must be between 1 and 4")
	ErrMissingClient     = errors.New("missing client id")
)
