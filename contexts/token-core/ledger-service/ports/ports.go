package ports

import (
	"context"
	"time"

	"fatcow/contexts/token-core/ledger-service/domain/entities"
	contractsv1 "fatcow/contracts/gen/events/v1"
	"fatcow/internal/shared/outbox"
)

// OwnerChange is one staged ownership mutation produced by a validated
// transfer batch. Changes of a batch are applied atomically or not at all.
type OwnerChange struct {
	TokenID  uint64
	NewOwner string
}

// LedgerRepository owns token persistence and the monotonic id counter.
type LedgerRepository interface {
	NextTokenID(ctx context.Context) (uint64, error)
	GetToken(ctx context.Context, tokenID uint64) (entities.Token, error)
	ListTokens(ctx context.Context, limit int, offset int) ([]entities.Token, error)
	// CreateTokenWithOutbox must atomically persist the token, advance the
	// counter and append the minted envelope.
	CreateTokenWithOutbox(ctx context.Context, token entities.Token, envelope EventEnvelope) error
	// ApplyOwnerChangesWithOutbox must atomically apply every change and
	// append the transfer envelope; a partial application is never visible.
	ApplyOwnerChangesWithOutbox(ctx context.Context, changes []OwnerChange, envelope EventEnvelope) error
}

// OperatorRegistry owns the (owner, operator, token) authorization triples.
type OperatorRegistry interface {
	HasOperator(ctx context.Context, key entities.OperatorKey) (bool, error)
	// ApplyOperatorUpdates applies the whole action list atomically. Removing
	// an absent triple is a silent no-op.
	ApplyOperatorUpdates(ctx context.Context, updates []entities.OperatorUpdate) error
}

// AdminGuard is implemented by the governance module and consulted before
// administrator-only and pause-gated operations.
type AdminGuard interface {
	IsAdministrator(ctx context.Context, caller string) (bool, error)
	IsPaused(ctx context.Context) (bool, error)
}

// BalanceRequest asks for the balance of one (owner, token) pair.
type BalanceRequest struct {
	Owner   string
	TokenID uint64
}

// BalanceResult echoes the request next to the 0/1 balance, matching the
// callback payload shape delivered to the requesting contract.
type BalanceResult struct {
	Request BalanceRequest `json:"request"`
	Balance uint64         `json:"balance"`
}

// OutboxWriter appends a queued outbound effect envelope.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

// OutboxMessage reuses the shared outbox row shape.
type OutboxMessage = outbox.Message

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

// EventDedupStore provides idempotent processing guarantees for consumed
// cross-contract transfer requests.
type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts envelope/outbox identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber registers a topic consumer callback.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
