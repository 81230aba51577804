package ports

import (
	"context"
	"time"

	"fatcow/contexts/market-core/marketplace-service/domain/entities"
	contractsv1 "fatcow/contracts/gen/events/v1"
	"fatcow/internal/shared/feesplit"
	"fatcow/internal/shared/outbox"
)

// ListingRepository owns listing persistence and the monotonic id counter.
type ListingRepository interface {
	NextListingID(ctx context.Context) (uint64, error)
	GetListing(ctx context.Context, listingID uint64) (entities.Listing, error)
	ListUserListings(ctx context.Context, user string, limit int, offset int) ([]entities.Listing, error)
	// CreateListingWithOutbox must atomically persist the listing, advance the
	// counter and append every envelope.
	CreateListingWithOutbox(ctx context.Context, listing entities.Listing, envelopes []EventEnvelope) error
	// UpdateListingWithOutbox must atomically save the new listing state and
	// append every envelope.
	UpdateListingWithOutbox(ctx context.Context, listing entities.Listing, envelopes []EventEnvelope) error
}

type SettingsRepository interface {
	GetSettings(ctx context.Context) (entities.Settings, error)
	SaveSettings(ctx context.Context, settings entities.Settings) error
}

// AdminGuard is implemented by the governance module.
type AdminGuard interface {
	IsAdministrator(ctx context.Context, caller string) (bool, error)
	IsPaused(ctx context.Context) (bool, error)
}

// RevenueShareProvider exposes the revenue-share pool the checkout drain is
// split across. Implemented by the fee-distribution engine.
type RevenueShareProvider interface {
	RevenueLines(ctx context.Context) ([]feesplit.Line, error)
}

type IdempotencyRecord struct {
	Key             string
	RequestHash     string
	ResponsePayload []byte
	ExpiresAt       time.Time
}

// IdempotencyStore guards purchase replays.
type IdempotencyStore interface {
	GetRecord(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	PutRecord(ctx context.Context, record IdempotencyRecord) error
}

type OutboxMessage = outbox.Message

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
