package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	domainerrors "fatcow/contexts/finance-core/fee-distribution-engine/domain/errors"
	"fatcow/contexts/finance-core/fee-distribution-engine/ports"
	"fatcow/internal/shared/feesplit"
	"fatcow/internal/shared/outbox"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message ports.EventEnvelope
	payload []byte
	seq     uint64
}

type Store struct {
	mu sync.RWMutex

	policy    ports.Policy
	hasPolicy bool

	shares        map[string]ports.Share
	distributions map[string]ports.Distribution
	order         []string
	idempotency   map[string]ports.IdempotencyRecord
	outbox        map[string]outboxRecord
	outboxSeq     uint64
}

func NewStore() *Store {
	return &Store{
		shares:        make(map[string]ports.Share),
		distributions: make(map[string]ports.Distribution),
		idempotency:   make(map[string]ports.IdempotencyRecord),
		outbox:        make(map[string]outboxRecord),
	}
}

func (s *Store) GetPolicy(_ context.Context) (ports.Policy, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasPolicy {
		return ports.Policy{}, false, nil
	}
	policy := s.policy
	policy.Lines = append([]feesplit.Line(nil), s.policy.Lines...)
	return policy, true, nil
}

func (s *Store) SavePolicy(_ context.Context, policy ports.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	policy.Lines = append([]feesplit.Line(nil), policy.Lines...)
	s.policy = policy
	s.hasPolicy = true
	return nil
}

func (s *Store) SaveShare(_ context.Context, share ports.Share) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shares[strings.TrimSpace(share.Address)] = share
	return nil
}

func (s *Store) GetShare(_ context.Context, address string) (ports.Share, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	share, ok := s.shares[strings.TrimSpace(address)]
	if !ok {
		return ports.Share{}, domainerrors.ErrShareNotFound
	}
	return share, nil
}

func (s *Store) ListShares(_ context.Context) ([]ports.Share, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.Share, 0, len(s.shares))
	for _, share := range s.shares {
		items = append(items, share)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Address < items[j].Address
	})
	return items, nil
}

func (s *Store) CreateDistribution(_ context.Context, distribution ports.Distribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(distribution.DistributionID)
	if _, exists := s.distributions[id]; exists {
		return domainerrors.ErrIdempotencyConflict
	}
	s.distributions[id] = distribution
	s.order = append(s.order, id)
	return nil
}

func (s *Store) GetDistribution(_ context.Context, distributionID string) (ports.Distribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	distribution, ok := s.distributions[strings.TrimSpace(distributionID)]
	if !ok {
		return ports.Distribution{}, domainerrors.ErrNotFound
	}
	return distribution, nil
}

func (s *Store) ListDistributions(_ context.Context, limit int, offset int) ([]ports.Distribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.order) {
		return []ports.Distribution{}, nil
	}
	ids := s.order[offset:]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	items := make([]ports.Distribution, 0, len(ids))
	for _, id := range ids {
		items = append(items, s.distributions[id])
	}
	return items, nil
}

func (s *Store) GetRecord(
	_ context.Context,
	key string,
	now time.Time,
) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.idempotency[strings.TrimSpace(key)]
	if !ok {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.IsZero() && now.UTC().After(record.ExpiresAt.UTC()) {
		delete(s.idempotency, strings.TrimSpace(key))
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) PutRecord(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(record.Key)
	if existing, ok := s.idempotency[key]; ok {
		if existing.RequestHash != record.RequestHash {
			return domainerrors.ErrIdempotencyConflict
		}
		return nil
	}
	s.idempotency[key] = record
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.payload, payload) {
			return domainerrors.ErrIdempotencyConflict
		}
		return nil
	}
	s.outboxSeq++
	s.outbox[outboxID] = outboxRecord{
		message: envelope,
		payload: payload,
		seq:     s.outboxSeq,
	}
	return nil
}

// PendingOutbox exposes queued envelopes for tests and inspection.
func (s *Store) PendingOutbox() []outbox.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]outboxRecord, 0, len(s.outbox))
	for _, row := range s.outbox {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].seq < rows[j].seq
	})
	items := make([]outbox.Message, 0, len(rows))
	for _, row := range rows {
		items = append(items, outbox.Message{
			OutboxID:     row.message.EventID,
			EventType:    row.message.EventType,
			PartitionKey: row.message.PartitionKey,
			Payload:      row.payload,
			Status:       outbox.StatusPending,
			CreatedAt:    row.message.OccurredAt.UTC(),
		})
	}
	return items
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
