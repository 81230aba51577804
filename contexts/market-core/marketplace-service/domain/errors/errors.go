package errors

import "errors"

var (
	ErrNotAdmin            = errors.New("caller is not the marketplace administrator")
	ErrTezTransfer         = errors.New("operation does not accept attached funds")
	ErrWrongTezAmount      = errors.New("attached amount does not match the required amount")
	ErrCollectsPaused      = errors.New("purchases are paused")
	ErrWrongFees           = errors.New("fee rate exceeds the allowed maximum")
	ErrListingNotFound     = errors.New("listing not found")
	ErrListingNotActive    = errors.New("listing is not open for purchase")
	ErrNotSeller           = errors.New("caller is not the listing seller")
	ErrIsSeller            = errors.New("seller cannot purchase their own listing")
	ErrInvalidInput        = errors.New("marketplace input is invalid")
	ErrIdempotencyConflict = errors.New("idempotency key already used with different payload")
	ErrConflict            = errors.New("marketplace write conflict")
)
