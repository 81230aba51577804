package errors

import "errors"

var (
	ErrNotAdmin            = errors.New("caller is not the ledger administrator")
	ErrMintPaused          = errors.New("minting is paused")
	ErrTokenUndefined      = errors.New("token is not defined")
	ErrNotOperator         = errors.New("caller is not an operator for the token")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrNotOwner            = errors.New("caller is not the token owner")
	ErrInvalidInput        = errors.New("ledger input is invalid")
	ErrLedgerInvariant     = errors.New("ledger invariant violated")
	ErrConflict            = errors.New("ledger write conflict")
)
