package queries

import (
	"context"
	"log/slog"

	"fatcow/contexts/token-core/ledger-service/ports"
)

type GetBalanceQuery struct {
	Owner   string
	TokenID uint64
}

type GetBalanceResult struct {
	Balance uint64
}

// GetBalanceUseCase is the synchronous read-side counterpart of the
// balance_of callback flow, for clients that only need the current value.
type GetBalanceUseCase struct {
	Ledger ports.LedgerRepository
	Logger *slog.Logger
}

func (u GetBalanceUseCase) Execute(ctx context.Context, query GetBalanceQuery) (GetBalanceResult, error) {
	token, err := u.Ledger.GetToken(ctx, query.TokenID)
	if err != nil {
		return GetBalanceResult{}, err
	}
	return GetBalanceResult{Balance: token.BalanceOf(query.Owner)}, nil
}
