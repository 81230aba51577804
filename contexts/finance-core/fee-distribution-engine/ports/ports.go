package ports

import (
	"context"
	"time"

	contractsv1 "fatcow/contracts/gen/events/v1"
	"fatcow/internal/shared/feesplit"
)

// Policy is the current distribution rule set: proportional lines plus the
// recipient of whatever the floor division leaves over.
type Policy struct {
	Lines             []feesplit.Line
	ResidualRecipient string
	UpdatedAt         time.Time
}

// Share is one registered revenue-share participant.
type Share struct {
	Address      string
	RatePermille uint64
	RegisteredAt time.Time
}

// Distribution is a persisted split of one incoming amount.
type Distribution struct {
	DistributionID string
	AmountMutez    uint64
	Payouts        []feesplit.Payout
	ResidualMutez  uint64
	ResidualTo     string
	DistributedAt  time.Time
	SourceEventID  string
}

type PolicyRepository interface {
	GetPolicy(ctx context.Context) (Policy, bool, error)
	SavePolicy(ctx context.Context, policy Policy) error
}

type ShareRegistry interface {
	SaveShare(ctx context.Context, share Share) error
	GetShare(ctx context.Context, address string) (Share, error)
	ListShares(ctx context.Context) ([]Share, error)
}

type DistributionRepository interface {
	CreateDistribution(ctx context.Context, distribution Distribution) error
	GetDistribution(ctx context.Context, distributionID string) (Distribution, error)
	ListDistributions(ctx context.Context, limit int, offset int) ([]Distribution, error)
}

// AdminGuard is implemented by the governance module.
type AdminGuard interface {
	IsAdministrator(ctx context.Context, caller string) (bool, error)
	IsPaused(ctx context.Context) (bool, error)
}

type IdempotencyRecord struct {
	Key             string
	RequestHash     string
	ResponsePayload []byte
	ExpiresAt       time.Time
}

type IdempotencyStore interface {
	GetRecord(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	PutRecord(ctx context.Context, record IdempotencyRecord) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}
