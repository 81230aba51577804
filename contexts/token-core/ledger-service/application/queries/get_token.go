package queries

import (
	"context"
	"log/slog"

	"fatcow/contexts/token-core/ledger-service/domain/entities"
	"fatcow/contexts/token-core/ledger-service/ports"
)

type GetTokenQuery struct {
	TokenID uint64
}

type GetTokenResult struct {
	Token entities.Token
}

type GetTokenUseCase struct {
	Ledger ports.LedgerRepository
	Logger *slog.Logger
}

func (u GetTokenUseCase) Execute(ctx context.Context, query GetTokenQuery) (GetTokenResult, error) {
	token, err := u.Ledger.GetToken(ctx, query.TokenID)
	if err != nil {
		return GetTokenResult{}, err
	}
	return GetTokenResult{Token: token}, nil
}
