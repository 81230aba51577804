package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "fatcow/contexts/token-core/ledger-service/application"
	"fatcow/contexts/token-core/ledger-service/application/commands"
	"fatcow/contexts/token-core/ledger-service/domain/entities"
	"fatcow/contexts/token-core/ledger-service/ports"
)

const (
	transferRequestedTopic = "ledger.transfer.requested"
	defaultTransferCG      = "ledger-service-transfer-cg"
)

// TransferRequestConsumer executes transfer requests queued by other modules,
// most notably escrow release after a marketplace sale. The requesting module
// names the operator on whose authority the transfer runs.
type TransferRequestConsumer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Transfer      commands.TransferUseCase
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Logger        *slog.Logger
}

func (c TransferRequestConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultTransferCG
	}
	if err := c.Subscriber.Subscribe(ctx, transferRequestedTopic, group, c.handleTransferRequested); err != nil {
		logger.Error("transfer consumer subscribe failed",
			"event", "ledger_transfer_consumer_subscribe_failed",
			"module", "token-core/ledger-service",
			"layer", "worker",
			"topic", transferRequestedTopic,
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("transfer consumer subscription active",
		"event", "ledger_transfer_consumer_started",
		"module", "token-core/ledger-service",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (c TransferRequestConsumer) handleTransferRequested(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	alreadyProcessed, err := c.Dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), c.now().Add(c.dedupTTL()))
	if err != nil {
		logger.Error("transfer request dedupe failed",
			"event", "ledger_transfer_request_dedupe_failed",
			"module", "token-core/ledger-service",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if alreadyProcessed {
		logger.Debug("transfer request replay skipped",
			"event", "ledger_transfer_request_replayed",
			"module", "token-core/ledger-service",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}

	var payload struct {
		Operator string `json:"operator"`
		From     string `json:"from_"`
		To       string `json:"to_"`
		TokenID  uint64 `json:"token_id"`
		Amount   uint64 `json:"amount"`
	}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("transfer request payload decode failed",
			"event", "ledger_transfer_request_decode_failed",
			"module", "token-core/ledger-service",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}

	_, err = c.Transfer.Execute(ctx, commands.TransferCommand{
		Caller: payload.Operator,
		Batches: []entities.TransferBatch{{
			From: payload.From,
			Txs: []entities.TransferTx{{
				To:      payload.To,
				TokenID: payload.TokenID,
				Amount:  payload.Amount,
			}},
		}},
	})
	if err != nil {
		logger.Error("queued transfer request rejected",
			"event", "ledger_transfer_request_rejected",
			"module", "token-core/ledger-service",
			"layer", "worker",
			"event_id", event.EventID,
			"token_id", payload.TokenID,
			"from", payload.From,
			"to", payload.To,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("queued transfer request applied",
		"event", "ledger_transfer_request_applied",
		"module", "token-core/ledger-service",
		"layer", "worker",
		"event_id", event.EventID,
		"token_id", payload.TokenID,
		"from", payload.From,
		"to", payload.To,
	)
	return nil
}

func (c TransferRequestConsumer) now() time.Time {
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}
	return now
}

func (c TransferRequestConsumer) dedupTTL() time.Duration {
	if c.DedupTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return c.DedupTTL
}

func hashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
