package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"fatcow/contexts/token-core/ledger-service/application/commands"
	"fatcow/contexts/token-core/ledger-service/application/queries"
	"fatcow/contexts/token-core/ledger-service/domain/entities"
	"fatcow/contexts/token-core/ledger-service/ports"
	httptransport "fatcow/contexts/token-core/ledger-service/transport/http"
)

type Handler struct {
	Mint      commands.MintUseCase
	Transfer  commands.TransferUseCase
	BalanceOf commands.BalanceOfUseCase
	Operators commands.UpdateOperatorsUseCase

	GetToken   queries.GetTokenUseCase
	ListTokens queries.ListTokensUseCase
	IsOperator queries.IsOperatorUseCase
	GetBalance queries.GetBalanceUseCase

	Logger *slog.Logger
}

// MintHandler godoc
// @Summary Mint a token
// @Description Administrator mints one single-ownership token to the target address.
// @Tags ledger
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Invocation caller address"
// @Param request body httptransport.MintRequest true "Mint payload"
// @Success 201 {object} httptransport.MintResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /ledger/tokens [post]
func (h Handler) MintHandler(
	ctx context.Context,
	caller string,
	req httptransport.MintRequest,
) (httptransport.MintResponse, error) {
	result, err := h.Mint.Execute(ctx, commands.MintCommand{
		Caller:   caller,
		To:       req.To,
		Metadata: req.Metadata,
	})
	if err != nil {
		return httptransport.MintResponse{}, err
	}
	return httptransport.MintResponse{Item: tokenDTO(result.Token)}, nil
}

// TransferHandler godoc
// @Summary Apply a transfer batch
// @Description Applies the whole batch list atomically; one failing entry rejects the call.
// @Tags ledger
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Invocation caller address"
// @Param request body httptransport.TransferRequest true "Transfer batches"
// @Success 200 {object} httptransport.TransferResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /ledger/transfers [post]
func (h Handler) TransferHandler(
	ctx context.Context,
	caller string,
	req httptransport.TransferRequest,
) (httptransport.TransferResponse, error) {
	batches := make([]entities.TransferBatch, 0, len(req.Batches))
	for _, batch := range req.Batches {
		txs := make([]entities.TransferTx, 0, len(batch.Txs))
		for _, tx := range batch.Txs {
			txs = append(txs, entities.TransferTx{
				To:      tx.To,
				TokenID: tx.TokenID,
				Amount:  tx.Amount,
			})
		}
		batches = append(batches, entities.TransferBatch{
			From: batch.From,
			Txs:  txs,
		})
	}
	result, err := h.Transfer.Execute(ctx, commands.TransferCommand{
		Caller:  caller,
		Batches: batches,
	})
	if err != nil {
		return httptransport.TransferResponse{}, err
	}
	return httptransport.TransferResponse{AppliedCount: len(result.Changes)}, nil
}

// BalanceOfHandler godoc
// @Summary Queue a balance callback
// @Description Answers every request and queues the result list for the callback target.
// @Tags ledger
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Invocation caller address"
// @Param request body httptransport.BalanceOfRequest true "Balance requests"
// @Success 202 {object} httptransport.BalanceOfResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /ledger/balance-of [post]
func (h Handler) BalanceOfHandler(
	ctx context.Context,
	caller string,
	req httptransport.BalanceOfRequest,
) (httptransport.BalanceOfResponse, error) {
	requests := make([]ports.BalanceRequest, 0, len(req.Requests))
	for _, request := range req.Requests {
		requests = append(requests, ports.BalanceRequest{
			Owner:   request.Owner,
			TokenID: request.TokenID,
		})
	}
	result, err := h.BalanceOf.Execute(ctx, commands.BalanceOfCommand{
		Caller:   caller,
		Requests: requests,
		Callback: req.Callback,
	})
	if err != nil {
		return httptransport.BalanceOfResponse{}, err
	}
	return httptransport.BalanceOfResponse{
		EventID:      result.EventID,
		RequestCount: result.RequestCount,
	}, nil
}

// UpdateOperatorsHandler godoc
// @Summary Update operator grants
// @Description Owner adds or removes (owner, operator, token) grants atomically.
// @Tags ledger
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Invocation caller address"
// @Param request body httptransport.UpdateOperatorsRequest true "Operator actions"
// @Success 200 {object} httptransport.UpdateOperatorsResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /ledger/operators [post]
func (h Handler) UpdateOperatorsHandler(
	ctx context.Context,
	caller string,
	req httptransport.UpdateOperatorsRequest,
) (httptransport.UpdateOperatorsResponse, error) {
	updates := make([]entities.OperatorUpdate, 0, len(req.Updates))
	for _, update := range req.Updates {
		updates = append(updates, entities.OperatorUpdate{
			Kind: entities.OperatorUpdateKind(update.Kind),
			Key: entities.OperatorKey{
				Owner:    update.Owner,
				Operator: update.Operator,
				TokenID:  update.TokenID,
			},
		})
	}
	if err := h.Operators.Execute(ctx, commands.UpdateOperatorsCommand{
		Caller:  caller,
		Updates: updates,
	}); err != nil {
		return httptransport.UpdateOperatorsResponse{}, err
	}
	return httptransport.UpdateOperatorsResponse{AppliedCount: len(updates)}, nil
}

// GetTokenHandler godoc
// @Summary Get a token
// @Tags ledger
// @Produce json
// @Param id path int true "Token id"
// @Success 200 {object} httptransport.GetTokenResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /ledger/tokens/{id} [get]
func (h Handler) GetTokenHandler(ctx context.Context, tokenID uint64) (httptransport.GetTokenResponse, error) {
	result, err := h.GetToken.Execute(ctx, queries.GetTokenQuery{TokenID: tokenID})
	if err != nil {
		return httptransport.GetTokenResponse{}, err
	}
	return httptransport.GetTokenResponse{Item: tokenDTO(result.Token)}, nil
}

// ListTokensHandler godoc
// @Summary List tokens
// @Tags ledger
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} httptransport.ListTokensResponse
// @Router /ledger/tokens [get]
func (h Handler) ListTokensHandler(
	ctx context.Context,
	limit int,
	offset int,
) (httptransport.ListTokensResponse, error) {
	result, err := h.ListTokens.Execute(ctx, queries.ListTokensQuery{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return httptransport.ListTokensResponse{}, err
	}
	items := make([]httptransport.TokenDTO, 0, len(result.Items))
	for _, token := range result.Items {
		items = append(items, tokenDTO(token))
	}
	return httptransport.ListTokensResponse{
		Items:       items,
		TotalSupply: result.TotalSupply,
	}, nil
}

// IsOperatorHandler godoc
// @Summary Check an operator grant
// @Tags ledger
// @Produce json
// @Param owner query string true "Owner address"
// @Param operator query string true "Operator address"
// @Param token_id query int true "Token id"
// @Success 200 {object} httptransport.IsOperatorResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /ledger/operators/check [get]
func (h Handler) IsOperatorHandler(
	ctx context.Context,
	owner string,
	operator string,
	tokenID uint64,
) (httptransport.IsOperatorResponse, error) {
	result, err := h.IsOperator.Execute(ctx, queries.IsOperatorQuery{
		Owner:    owner,
		Operator: operator,
		TokenID:  tokenID,
	})
	if err != nil {
		return httptransport.IsOperatorResponse{}, err
	}
	return httptransport.IsOperatorResponse{
		Owner:      owner,
		Operator:   operator,
		TokenID:    tokenID,
		Authorized: result.Authorized,
	}, nil
}

// GetBalanceHandler godoc
// @Summary Get a balance directly
// @Description Synchronous read of the 0/1 balance for an (owner, token) pair.
// @Tags ledger
// @Produce json
// @Param id path int true "Token id"
// @Param owner query string true "Owner address"
// @Success 200 {object} httptransport.GetBalanceResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /ledger/tokens/{id}/balance [get]
func (h Handler) GetBalanceHandler(
	ctx context.Context,
	owner string,
	tokenID uint64,
) (httptransport.GetBalanceResponse, error) {
	result, err := h.GetBalance.Execute(ctx, queries.GetBalanceQuery{
		Owner:   owner,
		TokenID: tokenID,
	})
	if err != nil {
		return httptransport.GetBalanceResponse{}, err
	}
	return httptransport.GetBalanceResponse{
		Owner:   owner,
		TokenID: tokenID,
		Balance: result.Balance,
	}, nil
}

func tokenDTO(token entities.Token) httptransport.TokenDTO {
	return httptransport.TokenDTO{
		TokenID:  token.TokenID,
		Owner:    token.Owner,
		Metadata: token.Metadata,
		MintedAt: token.MintedAt.UTC().Format(time.RFC3339),
	}
}
