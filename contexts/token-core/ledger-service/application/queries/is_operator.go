package queries

import (
	"context"
	"log/slog"

	"fatcow/contexts/token-core/ledger-service/domain/entities"
	"fatcow/contexts/token-core/ledger-service/ports"
)

type IsOperatorQuery struct {
	Owner    string
	Operator string
	TokenID  uint64
}

type IsOperatorResult struct {
	Authorized bool
}

type IsOperatorUseCase struct {
	Operators ports.OperatorRegistry
	Logger    *slog.Logger
}

func (u IsOperatorUseCase) Execute(ctx context.Context, query IsOperatorQuery) (IsOperatorResult, error) {
	key, err := entities.NewOperatorKey(query.Owner, query.Operator, query.TokenID)
	if err != nil {
		return IsOperatorResult{}, err
	}
	authorized, err := u.Operators.HasOperator(ctx, key)
	if err != nil {
		return IsOperatorResult{}, err
	}
	return IsOperatorResult{Authorized: authorized}, nil
}
