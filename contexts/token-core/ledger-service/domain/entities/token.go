package entities

import (
	"time"

	domainerrors "fatcow/contexts/token-core/ledger-service/domain/errors"
)

// Token is a single-ownership asset. TokenID is assigned from the monotonic
// ledger counter at mint time and never reused; metadata is immutable after
// mint, so the constructor takes a defensive copy.
type Token struct {
	TokenID  uint64
	Owner    string
	Metadata map[string][]byte
	MintedAt time.Time
}

func NewToken(tokenID uint64, owner string, metadata map[string][]byte, mintedAt time.Time) (Token, error) {
	if owner == "" {
		return Token{}, domainerrors.ErrInvalidInput
	}

	copied := make(map[string][]byte, len(metadata))
	for key, value := range metadata {
		copied[key] = append([]byte(nil), value...)
	}
	return Token{
		TokenID:  tokenID,
		Owner:    owner,
		Metadata: copied,
		MintedAt: mintedAt.UTC(),
	}, nil
}

// BalanceOf answers NFT balance semantics: 1 for the current owner, 0 for
// anyone else.
func (t Token) BalanceOf(owner string) uint64 {
	if owner != "" && owner == t.Owner {
		return 1
	}
	return 0
}
