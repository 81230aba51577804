package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	application "fatcow/contexts/token-core/ledger-service/application"
	"fatcow/contexts/token-core/ledger-service/domain/entities"
	domainerrors "fatcow/contexts/token-core/ledger-service/domain/errors"
	"fatcow/contexts/token-core/ledger-service/ports"
)

const mintedEventType = "ledger.token.minted"

type MintCommand struct {
	Caller   string
	To       string
	Metadata map[string][]byte
}

type MintResult struct {
	Token entities.Token
}

type MintUseCase struct {
	Ledger ports.LedgerRepository
	Admin  ports.AdminGuard
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// Execute mints one token to cmd.To. The pause gate is checked before the
// administrator check so a paused ledger rejects every caller the same way.
func (u MintUseCase) Execute(ctx context.Context, cmd MintCommand) (MintResult, error) {
	logger := application.ResolveLogger(u.Logger)
	if cmd.Caller == "" || cmd.To == "" {
		return MintResult{}, domainerrors.ErrInvalidInput
	}

	paused, err := u.Admin.IsPaused(ctx)
	if err != nil {
		return MintResult{}, err
	}
	if paused {
		return MintResult{}, domainerrors.ErrMintPaused
	}

	isAdmin, err := u.Admin.IsAdministrator(ctx, cmd.Caller)
	if err != nil {
		return MintResult{}, err
	}
	if !isAdmin {
		return MintResult{}, domainerrors.ErrNotAdmin
	}

	tokenID, err := u.Ledger.NextTokenID(ctx)
	if err != nil {
		return MintResult{}, err
	}
	token, err := entities.NewToken(tokenID, cmd.To, cmd.Metadata, u.now())
	if err != nil {
		return MintResult{}, err
	}

	eventID, err := u.IDGen.NewID(ctx)
	if err != nil {
		return MintResult{}, err
	}
	data, err := json.Marshal(map[string]any{
		"token_id": token.TokenID,
		"owner":    token.Owner,
	})
	if err != nil {
		return MintResult{}, err
	}
	envelope := ports.EventEnvelope{
		EventID:          eventID,
		EventType:        mintedEventType,
		OccurredAt:       token.MintedAt,
		SourceService:    "ledger-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "token_id",
		PartitionKey:     strconv.FormatUint(token.TokenID, 10),
		Data:             data,
	}

	// Token row, counter advance and minted envelope commit together.
	if err := u.Ledger.CreateTokenWithOutbox(ctx, token, envelope); err != nil {
		logger.Error("mint failed on write transaction",
			"event", "ledger_mint_write_failed",
			"module", "token-core/ledger-service",
			"layer", "application",
			"token_id", token.TokenID,
			"error", err.Error(),
		)
		return MintResult{}, err
	}

	logger.Info("token minted",
		"event", "ledger_token_minted",
		"module", "token-core/ledger-service",
		"layer", "application",
		"token_id", token.TokenID,
		"owner", token.Owner,
	)
	return MintResult{Token: token}, nil
}

func (u MintUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
