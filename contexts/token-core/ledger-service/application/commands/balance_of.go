package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "fatcow/contexts/token-core/ledger-service/application"
	domainerrors "fatcow/contexts/token-core/ledger-service/domain/errors"
	"fatcow/contexts/token-core/ledger-service/ports"
)

const balanceRespondedEventType = "ledger.balance_of.responded"

type BalanceOfCommand struct {
	Caller   string
	Requests []ports.BalanceRequest
	Callback string
}

type BalanceOfResult struct {
	EventID      string
	RequestCount int
}

type BalanceOfUseCase struct {
	Ledger ports.LedgerRepository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// Execute answers every request and queues the complete result list as one
// outbound callback effect. Results never flow back to the caller directly;
// the callback contract receives them after this invocation commits.
func (u BalanceOfUseCase) Execute(ctx context.Context, cmd BalanceOfCommand) (BalanceOfResult, error) {
	logger := application.ResolveLogger(u.Logger)
	if cmd.Callback == "" || len(cmd.Requests) == 0 {
		return BalanceOfResult{}, domainerrors.ErrInvalidInput
	}

	nextTokenID, err := u.Ledger.NextTokenID(ctx)
	if err != nil {
		return BalanceOfResult{}, err
	}

	results := make([]ports.BalanceResult, 0, len(cmd.Requests))
	for _, request := range cmd.Requests {
		if request.TokenID >= nextTokenID {
			return BalanceOfResult{}, domainerrors.ErrTokenUndefined
		}
		token, err := u.Ledger.GetToken(ctx, request.TokenID)
		if err != nil {
			return BalanceOfResult{}, err
		}
		results = append(results, ports.BalanceResult{
			Request: request,
			Balance: token.BalanceOf(request.Owner),
		})
	}

	eventID, err := u.IDGen.NewID(ctx)
	if err != nil {
		return BalanceOfResult{}, err
	}
	data, err := json.Marshal(map[string]any{
		"callback": cmd.Callback,
		"results":  results,
	})
	if err != nil {
		return BalanceOfResult{}, err
	}
	envelope := ports.EventEnvelope{
		EventID:          eventID,
		EventType:        balanceRespondedEventType,
		OccurredAt:       u.now(),
		SourceService:    "ledger-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "callback",
		PartitionKey:     cmd.Callback,
		Data:             data,
	}
	if err := u.Outbox.AppendOutbox(ctx, envelope); err != nil {
		return BalanceOfResult{}, err
	}

	logger.Info("balance callback queued",
		"event", "ledger_balance_of_queued",
		"module", "token-core/ledger-service",
		"layer", "application",
		"callback", cmd.Callback,
		"request_count", len(results),
	)
	return BalanceOfResult{
		EventID:      eventID,
		RequestCount: len(results),
	}, nil
}

func (u BalanceOfUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
