package commands

import (
	"context"
	"log/slog"

	application "fatcow/contexts/token-core/ledger-service/application"
	"fatcow/contexts/token-core/ledger-service/domain/entities"
	domainerrors "fatcow/contexts/token-core/ledger-service/domain/errors"
	"fatcow/contexts/token-core/ledger-service/ports"
)

type UpdateOperatorsCommand struct {
	Caller  string
	Updates []entities.OperatorUpdate
}

type UpdateOperatorsUseCase struct {
	Operators ports.OperatorRegistry
	Logger    *slog.Logger
}

// Execute validates the whole action list before anything is written: only an
// owner may add or remove operators naming themselves. Removing an absent
// triple is a silent no-op.
func (u UpdateOperatorsUseCase) Execute(ctx context.Context, cmd UpdateOperatorsCommand) error {
	logger := application.ResolveLogger(u.Logger)
	if cmd.Caller == "" || len(cmd.Updates) == 0 {
		return domainerrors.ErrInvalidInput
	}

	for _, update := range cmd.Updates {
		if err := update.Validate(); err != nil {
			return err
		}
		if update.Key.Owner != cmd.Caller {
			return domainerrors.ErrNotOwner
		}
	}

	if err := u.Operators.ApplyOperatorUpdates(ctx, cmd.Updates); err != nil {
		return err
	}

	logger.Info("operator updates applied",
		"event", "ledger_operators_updated",
		"module", "token-core/ledger-service",
		"layer", "application",
		"caller", cmd.Caller,
		"update_count", len(cmd.Updates),
	)
	return nil
}
