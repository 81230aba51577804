package entities

import domainerrors "fatcow/contexts/token-core/ledger-service/domain/errors"

// TransferTx moves amount units of a token to a destination. NFT balances are
// 0/1, so amount 0 is a legal no-op and any positive amount must be exactly 1.
type TransferTx struct {
	To      string
	TokenID uint64
	Amount  uint64
}

// TransferBatch groups transactions sourced from one owner.
type TransferBatch struct {
	From string
	Txs  []TransferTx
}

func (b TransferBatch) Validate() error {
	if b.From == "" {
		return domainerrors.ErrInvalidInput
	}
	for _, tx := range b.Txs {
		if tx.To == "" {
			return domainerrors.ErrInvalidInput
		}
	}
	return nil
}
