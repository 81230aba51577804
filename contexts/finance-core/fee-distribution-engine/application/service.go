package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"time"

	domainerrors "fatcow/contexts/finance-core/fee-distribution-engine/domain/errors"
	"fatcow/contexts/finance-core/fee-distribution-engine/ports"
	"fatcow/internal/shared/feesplit"
)

const distributedEventType = "fee.distributed"

type Service struct {
	Policies       ports.PolicyRepository
	Shares         ports.ShareRegistry
	Distributions  ports.DistributionRepository
	Admin          ports.AdminGuard
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxWriter
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

type ConfigurePolicyCommand struct {
	Caller            string
	AttachedMutez     uint64
	Lines             []feesplit.Line
	ResidualRecipient string
}

// ConfigurePolicy replaces the distribution rule set. Administrator only,
// value neutral.
func (s Service) ConfigurePolicy(ctx context.Context, cmd ConfigurePolicyCommand) (ports.Policy, error) {
	if cmd.AttachedMutez != 0 {
		return ports.Policy{}, domainerrors.ErrTezTransfer
	}
	if strings.TrimSpace(cmd.Caller) == "" || strings.TrimSpace(cmd.ResidualRecipient) == "" {
		return ports.Policy{}, domainerrors.ErrInvalidInput
	}
	isAdmin, err := s.Admin.IsAdministrator(ctx, cmd.Caller)
	if err != nil {
		return ports.Policy{}, err
	}
	if !isAdmin {
		return ports.Policy{}, domainerrors.ErrNotAdmin
	}
	if err := feesplit.ValidateLines(cmd.Lines); err != nil {
		return ports.Policy{}, domainerrors.ErrWrongRates
	}

	policy := ports.Policy{
		Lines:             append([]feesplit.Line(nil), cmd.Lines...),
		ResidualRecipient: strings.TrimSpace(cmd.ResidualRecipient),
		UpdatedAt:         s.now(),
	}
	if err := s.Policies.SavePolicy(ctx, policy); err != nil {
		return ports.Policy{}, err
	}

	resolveLogger(s.Logger).Info("distribution policy configured",
		"event", "fee_policy_configured",
		"module", "finance-core/fee-distribution-engine",
		"layer", "application",
		"line_count", len(policy.Lines),
		"residual_recipient", policy.ResidualRecipient,
	)
	return policy, nil
}

func (s Service) GetPolicy(ctx context.Context) (ports.Policy, error) {
	policy, found, err := s.Policies.GetPolicy(ctx)
	if err != nil {
		return ports.Policy{}, err
	}
	if !found {
		return ports.Policy{}, domainerrors.ErrNotFound
	}
	return policy, nil
}

type RegisterShareCommand struct {
	Caller        string
	AttachedMutez uint64
	Address       string
	RatePermille  uint64
}

// RegisterShare records a revenue-share participant. Re-registering an
// address overwrites its rate.
func (s Service) RegisterShare(ctx context.Context, cmd RegisterShareCommand) (ports.Share, error) {
	if cmd.AttachedMutez != 0 {
		return ports.Share{}, domainerrors.ErrTezTransfer
	}
	if strings.TrimSpace(cmd.Caller) == "" || strings.TrimSpace(cmd.Address) == "" {
		return ports.Share{}, domainerrors.ErrInvalidInput
	}
	if cmd.RatePermille > feesplit.RateScale {
		return ports.Share{}, domainerrors.ErrWrongRates
	}
	isAdmin, err := s.Admin.IsAdministrator(ctx, cmd.Caller)
	if err != nil {
		return ports.Share{}, err
	}
	if !isAdmin {
		return ports.Share{}, domainerrors.ErrNotAdmin
	}

	share := ports.Share{
		Address:      strings.TrimSpace(cmd.Address),
		RatePermille: cmd.RatePermille,
		RegisteredAt: s.now(),
	}
	if err := s.Shares.SaveShare(ctx, share); err != nil {
		return ports.Share{}, err
	}

	resolveLogger(s.Logger).Info("revenue share registered",
		"event", "fee_share_registered",
		"module", "finance-core/fee-distribution-engine",
		"layer", "application",
		"address", share.Address,
		"rate_permille", share.RatePermille,
	)
	return share, nil
}

func (s Service) GetShare(ctx context.Context, address string) (ports.Share, error) {
	if strings.TrimSpace(address) == "" {
		return ports.Share{}, domainerrors.ErrInvalidInput
	}
	return s.Shares.GetShare(ctx, strings.TrimSpace(address))
}

func (s Service) ListShares(ctx context.Context) ([]ports.Share, error) {
	shares, err := s.Shares.ListShares(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(shares, func(i, j int) bool {
		return shares[i].Address < shares[j].Address
	})
	return shares, nil
}

// RevenueLines flattens the registered shares into split lines in stable
// address order, for callers draining a pooled balance across the registry.
func (s Service) RevenueLines(ctx context.Context) ([]feesplit.Line, error) {
	shares, err := s.ListShares(ctx)
	if err != nil {
		return nil, err
	}
	lines := make([]feesplit.Line, 0, len(shares))
	for _, share := range shares {
		if share.RatePermille == 0 {
			continue
		}
		lines = append(lines, feesplit.Line{
			Recipient:    share.Address,
			RatePermille: share.RatePermille,
		})
	}
	return lines, nil
}

type DistributeInput struct {
	AmountMutez   uint64
	SourceEventID string
}

// Distribute splits one incoming amount per the current policy and persists
// the result. Every payout is floored; the remainder goes to the residual
// recipient so value is conserved to the mutez.
func (s Service) Distribute(
	ctx context.Context,
	idempotencyKey string,
	input DistributeInput,
) (ports.Distribution, bool, error) {
	if strings.TrimSpace(idempotencyKey) == "" {
		return ports.Distribution{}, false, domainerrors.ErrIdempotencyKeyMissing
	}
	if input.AmountMutez == 0 {
		return ports.Distribution{}, false, domainerrors.ErrInvalidInput
	}

	policy, found, err := s.Policies.GetPolicy(ctx)
	if err != nil {
		return ports.Distribution{}, false, err
	}
	if !found {
		return ports.Distribution{}, false, domainerrors.ErrNotFound
	}

	now := s.now()
	requestHash := hashPayload(map[string]any{
		"amount_mutez":    input.AmountMutez,
		"source_event_id": strings.TrimSpace(input.SourceEventID),
	})

	record, replay, err := s.Idempotency.GetRecord(ctx, strings.TrimSpace(idempotencyKey), now)
	if err != nil {
		return ports.Distribution{}, false, err
	}
	if replay {
		if record.RequestHash != requestHash {
			return ports.Distribution{}, false, domainerrors.ErrIdempotencyConflict
		}
		var replayed ports.Distribution
		if err := json.Unmarshal(record.ResponsePayload, &replayed); err != nil {
			return ports.Distribution{}, false, err
		}
		return replayed, true, nil
	}

	payouts, residual, err := feesplit.Distribute(input.AmountMutez, policy.Lines)
	if err != nil {
		return ports.Distribution{}, false, err
	}

	distributionID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return ports.Distribution{}, false, err
	}
	distribution := ports.Distribution{
		DistributionID: strings.TrimSpace(distributionID),
		AmountMutez:    input.AmountMutez,
		Payouts:        payouts,
		ResidualMutez:  residual,
		ResidualTo:     policy.ResidualRecipient,
		DistributedAt:  now,
		SourceEventID:  strings.TrimSpace(input.SourceEventID),
	}
	if err := s.Distributions.CreateDistribution(ctx, distribution); err != nil {
		return ports.Distribution{}, false, err
	}
	if err := s.appendDistributedOutbox(ctx, distribution); err != nil {
		return ports.Distribution{}, false, err
	}

	payload, err := json.Marshal(distribution)
	if err != nil {
		return ports.Distribution{}, false, err
	}
	if err := s.Idempotency.PutRecord(ctx, ports.IdempotencyRecord{
		Key:             strings.TrimSpace(idempotencyKey),
		RequestHash:     requestHash,
		ResponsePayload: payload,
		ExpiresAt:       now.Add(s.idempotencyTTL()),
	}); err != nil {
		return ports.Distribution{}, false, err
	}

	resolveLogger(s.Logger).Info("fee distribution recorded",
		"event", "fee_distributed",
		"module", "finance-core/fee-distribution-engine",
		"layer", "application",
		"distribution_id", distribution.DistributionID,
		"amount_mutez", distribution.AmountMutez,
		"payout_count", len(distribution.Payouts),
		"residual_mutez", distribution.ResidualMutez,
	)
	return distribution, false, nil
}

// PreviewDistribution computes the split without persisting anything.
func (s Service) PreviewDistribution(ctx context.Context, amountMutez uint64) (ports.Distribution, error) {
	if amountMutez == 0 {
		return ports.Distribution{}, domainerrors.ErrInvalidInput
	}
	policy, found, err := s.Policies.GetPolicy(ctx)
	if err != nil {
		return ports.Distribution{}, err
	}
	if !found {
		return ports.Distribution{}, domainerrors.ErrNotFound
	}
	payouts, residual, err := feesplit.Distribute(amountMutez, policy.Lines)
	if err != nil {
		return ports.Distribution{}, err
	}
	return ports.Distribution{
		AmountMutez:   amountMutez,
		Payouts:       payouts,
		ResidualMutez: residual,
		ResidualTo:    policy.ResidualRecipient,
		DistributedAt: s.now(),
	}, nil
}

func (s Service) ListHistory(ctx context.Context, limit int, offset int) ([]ports.Distribution, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.Distributions.ListDistributions(ctx, limit, offset)
}

func (s Service) appendDistributedOutbox(ctx context.Context, distribution ports.Distribution) error {
	if s.Outbox == nil {
		return nil
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	payouts := make([]map[string]any, 0, len(distribution.Payouts))
	for _, payout := range distribution.Payouts {
		payouts = append(payouts, map[string]any{
			"recipient":    payout.Recipient,
			"amount_mutez": payout.AmountMutez,
		})
	}
	data, err := json.Marshal(map[string]any{
		"distribution_id": distribution.DistributionID,
		"amount_mutez":    distribution.AmountMutez,
		"payouts":         payouts,
		"residual_mutez":  distribution.ResidualMutez,
		"residual_to":     distribution.ResidualTo,
		"distributed_at":  distribution.DistributedAt.UTC().Format(time.RFC3339),
		"source_event_id": distribution.SourceEventID,
	})
	if err != nil {
		return err
	}
	return s.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          strings.TrimSpace(eventID),
		EventType:        distributedEventType,
		OccurredAt:       distribution.DistributedAt.UTC(),
		SourceService:    "fee-distribution-engine",
		TraceID:          strings.TrimSpace(eventID),
		SchemaVersion:    1,
		PartitionKeyPath: "distribution_id",
		PartitionKey:     distribution.DistributionID,
		Data:             data,
	})
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) idempotencyTTL() time.Duration {
	if s.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.IdempotencyTTL
}

func hashPayload(payload map[string]any) string {
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
