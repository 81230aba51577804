package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"fatcow/contexts/token-core/ledger-service/domain/entities"
	domainerrors "fatcow/contexts/token-core/ledger-service/domain/errors"
	"fatcow/contexts/token-core/ledger-service/ports"
	"fatcow/internal/shared/outbox"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message ports.OutboxMessage
	seq     uint64
	sent    bool
}

type dedupRecord struct {
	payloadHash string
	expiresAt   time.Time
}

// Store keeps the whole ledger in process memory. It implements every port of
// the module, so tests and local runs wire it in place of postgres.
type Store struct {
	mu sync.RWMutex

	nextTokenID uint64
	tokens      map[uint64]entities.Token
	operators   map[entities.OperatorKey]struct{}
	outbox      map[string]outboxRecord
	outboxSeq   uint64
	eventDedup  map[string]dedupRecord
}

func NewStore() *Store {
	return &Store{
		tokens:     make(map[uint64]entities.Token),
		operators:  make(map[entities.OperatorKey]struct{}),
		outbox:     make(map[string]outboxRecord),
		eventDedup: make(map[string]dedupRecord),
	}
}

func (s *Store) NextTokenID(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextTokenID, nil
}

func (s *Store) GetToken(_ context.Context, tokenID uint64) (entities.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[tokenID]
	if !ok {
		return entities.Token{}, domainerrors.ErrTokenUndefined
	}
	return token, nil
}

func (s *Store) ListTokens(_ context.Context, limit int, offset int) ([]entities.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	items := make([]entities.Token, 0, len(s.tokens))
	for _, token := range s.tokens {
		items = append(items, token)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].TokenID < items[j].TokenID
	})
	if offset >= len(items) {
		return []entities.Token{}, nil
	}
	items = items[offset:]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) CreateTokenWithOutbox(
	_ context.Context,
	token entities.Token,
	envelope ports.EventEnvelope,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The use case reads the counter before building the token, so a stale id
	// means a concurrent mint won the race.
	if token.TokenID != s.nextTokenID {
		return domainerrors.ErrConflict
	}
	if _, exists := s.tokens[token.TokenID]; exists {
		return domainerrors.ErrConflict
	}
	if err := s.appendOutboxLocked(envelope); err != nil {
		return err
	}
	s.tokens[token.TokenID] = token
	s.nextTokenID++
	return nil
}

func (s *Store) ApplyOwnerChangesWithOutbox(
	_ context.Context,
	changes []ports.OwnerChange,
	envelope ports.EventEnvelope,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, change := range changes {
		if _, ok := s.tokens[change.TokenID]; !ok {
			return domainerrors.ErrTokenUndefined
		}
	}
	if err := s.appendOutboxLocked(envelope); err != nil {
		return err
	}
	for _, change := range changes {
		token := s.tokens[change.TokenID]
		token.Owner = change.NewOwner
		s.tokens[change.TokenID] = token
	}
	return nil
}

func (s *Store) HasOperator(_ context.Context, key entities.OperatorKey) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.operators[key]
	return ok, nil
}

func (s *Store) ApplyOperatorUpdates(_ context.Context, updates []entities.OperatorUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, update := range updates {
		switch update.Kind {
		case entities.OperatorAdd:
			s.operators[update.Key] = struct{}{}
		case entities.OperatorRemove:
			delete(s.operators, update.Key)
		default:
			return domainerrors.ErrInvalidInput
		}
	}
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendOutboxLocked(envelope)
}

func (s *Store) appendOutboxLocked(envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outboxSeq++
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			Status:       outbox.StatusPending,
			CreatedAt:    createdAt,
		},
		seq: s.outboxSeq,
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows := make([]outboxRecord, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.sent {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].seq < rows[j].seq
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.message)
	}
	return items, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	sentAtUTC := sentAt.UTC()
	row.sent = true
	row.message.Status = outbox.StatusSent
	row.message.SentAt = &sentAtUTC
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) ReserveEvent(
	_ context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(eventID)
	existing, ok := s.eventDedup[key]
	if ok {
		if !existing.expiresAt.IsZero() && time.Now().UTC().After(existing.expiresAt.UTC()) {
			delete(s.eventDedup, key)
		} else {
			if existing.payloadHash != strings.TrimSpace(payloadHash) {
				return false, domainerrors.ErrConflict
			}
			return true, nil
		}
	}

	s.eventDedup[key] = dedupRecord{
		payloadHash: strings.TrimSpace(payloadHash),
		expiresAt:   expiresAt.UTC(),
	}
	return false, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
