package errors

import "errors"

var (
	ErrNotAdmin         = errors.New("caller is not the administrator")
	ErrNoNewAdmin       = errors.New("no administrator handoff is pending")
	ErrNotProposedAdmin = errors.New("caller is not the proposed administrator")
	ErrTezTransfer      = errors.New("operation must not carry an attached amount")
	ErrInvalidInput     = errors.New("administration input is invalid")
)
