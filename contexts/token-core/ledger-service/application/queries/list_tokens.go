package queries

import (
	"context"
	"log/slog"

	"fatcow/contexts/token-core/ledger-service/domain/entities"
	"fatcow/contexts/token-core/ledger-service/ports"
)

type ListTokensQuery struct {
	Limit  int
	Offset int
}

type ListTokensResult struct {
	Items []entities.Token
	// TotalSupply is the next token id, which equals the number of tokens
	// ever minted because ids are dense and never reused.
	TotalSupply uint64
}

type ListTokensUseCase struct {
	Ledger ports.LedgerRepository
	Logger *slog.Logger
}

func (u ListTokensUseCase) Execute(ctx context.Context, query ListTokensQuery) (ListTokensResult, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	items, err := u.Ledger.ListTokens(ctx, limit, offset)
	if err != nil {
		return ListTokensResult{}, err
	}
	supply, err := u.Ledger.NextTokenID(ctx)
	if err != nil {
		return ListTokensResult{}, err
	}
	return ListTokensResult{
		Items:       items,
		TotalSupply: supply,
	}, nil
}
