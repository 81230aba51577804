package errors

import "errors"

var (
	ErrNotAdmin              = errors.New("caller is not the distribution administrator")
	ErrInvalidInput          = errors.New("fee distribution input is invalid")
	ErrWrongRates            = errors.New("distribution rates exceed the whole")
	ErrTezTransfer           = errors.New("operation does not accept attached funds")
	ErrNotFound              = errors.New("fee distribution record not found")
	ErrShareNotFound         = errors.New("revenue share not found")
	ErrIdempotencyKeyMissing = errors.New("idempotency key is required")
	ErrIdempotencyConflict   = errors.New("idempotency key already used with different payload")
)
