package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "fatcow/contexts/token-core/ledger-service/application"
	"fatcow/contexts/token-core/ledger-service/domain/entities"
	domainerrors "fatcow/contexts/token-core/ledger-service/domain/errors"
	"fatcow/contexts/token-core/ledger-service/ports"
)

const transferAppliedEventType = "ledger.transfer.applied"

type TransferCommand struct {
	Caller  string
	Batches []entities.TransferBatch
}

type TransferResult struct {
	Changes []ports.OwnerChange
}

type TransferUseCase struct {
	Ledger    ports.LedgerRepository
	Operators ports.OperatorRegistry
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Execute processes the batch list in one validate-then-apply pass. The
// staging map tracks ownership as the batch would mutate it, so later entries
// see the effect of earlier ones, and nothing is written until every entry of
// every batch has passed validation. A single failing entry therefore leaves
// the whole call without effect.
func (u TransferUseCase) Execute(ctx context.Context, cmd TransferCommand) (TransferResult, error) {
	logger := application.ResolveLogger(u.Logger)
	if cmd.Caller == "" {
		return TransferResult{}, domainerrors.ErrInvalidInput
	}

	nextTokenID, err := u.Ledger.NextTokenID(ctx)
	if err != nil {
		return TransferResult{}, err
	}

	staged := make(map[uint64]string)
	changes := make([]ports.OwnerChange, 0)
	for _, batch := range cmd.Batches {
		if err := batch.Validate(); err != nil {
			return TransferResult{}, err
		}
		for _, tx := range batch.Txs {
			if tx.TokenID >= nextTokenID {
				return TransferResult{}, domainerrors.ErrTokenUndefined
			}
			if batch.From != cmd.Caller {
				key, err := entities.NewOperatorKey(batch.From, cmd.Caller, tx.TokenID)
				if err != nil {
					return TransferResult{}, err
				}
				authorized, err := u.Operators.HasOperator(ctx, key)
				if err != nil {
					return TransferResult{}, err
				}
				if !authorized {
					return TransferResult{}, domainerrors.ErrNotOperator
				}
			}
			if tx.Amount == 0 {
				continue
			}

			owner, ok := staged[tx.TokenID]
			if !ok {
				token, err := u.Ledger.GetToken(ctx, tx.TokenID)
				if err != nil {
					return TransferResult{}, err
				}
				owner = token.Owner
			}
			if tx.Amount != 1 || owner != batch.From {
				return TransferResult{}, domainerrors.ErrInsufficientBalance
			}
			staged[tx.TokenID] = tx.To
			changes = append(changes, ports.OwnerChange{
				TokenID:  tx.TokenID,
				NewOwner: tx.To,
			})
		}
	}

	if len(changes) == 0 {
		return TransferResult{}, nil
	}

	eventID, err := u.IDGen.NewID(ctx)
	if err != nil {
		return TransferResult{}, err
	}
	payloadChanges := make([]map[string]any, 0, len(changes))
	for _, change := range changes {
		payloadChanges = append(payloadChanges, map[string]any{
			"token_id": change.TokenID,
			"owner":    change.NewOwner,
		})
	}
	data, err := json.Marshal(map[string]any{
		"caller":  cmd.Caller,
		"changes": payloadChanges,
	})
	if err != nil {
		return TransferResult{}, err
	}
	envelope := ports.EventEnvelope{
		EventID:          eventID,
		EventType:        transferAppliedEventType,
		OccurredAt:       u.now(),
		SourceService:    "ledger-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "caller",
		PartitionKey:     cmd.Caller,
		Data:             data,
	}

	if err := u.Ledger.ApplyOwnerChangesWithOutbox(ctx, changes, envelope); err != nil {
		logger.Error("transfer failed on write transaction",
			"event", "ledger_transfer_write_failed",
			"module", "token-core/ledger-service",
			"layer", "application",
			"caller", cmd.Caller,
			"change_count", len(changes),
			"error", err.Error(),
		)
		return TransferResult{}, err
	}

	logger.Info("transfer batch applied",
		"event", "ledger_transfer_applied",
		"module", "token-core/ledger-service",
		"layer", "application",
		"caller", cmd.Caller,
		"change_count", len(changes),
	)
	return TransferResult{Changes: changes}, nil
}

func (u TransferUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
