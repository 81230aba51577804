package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"fatcow/contexts/market-core/marketplace-service/domain/entities"
	domainerrors "fatcow/contexts/market-core/marketplace-service/domain/errors"
	"fatcow/contexts/market-core/marketplace-service/ports"
	"fatcow/internal/shared/outbox"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message ports.OutboxMessage
	seq     uint64
	sent    bool
}

// Store keeps the whole marketplace in process memory. It implements every
// repository port of the module, so tests and local runs wire it in place of
// postgres.
type Store struct {
	mu sync.RWMutex

	nextListingID uint64
	listings      map[uint64]entities.Listing
	settings      entities.Settings
	outbox        map[string]outboxRecord
	outboxSeq     uint64
	idempotency   map[string]ports.IdempotencyRecord
}

func NewStore() *Store {
	return &Store{
		listings:    make(map[uint64]entities.Listing),
		outbox:      make(map[string]outboxRecord),
		idempotency: make(map[string]ports.IdempotencyRecord),
	}
}

func (s *Store) NextListingID(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextListingID, nil
}

func (s *Store) GetListing(_ context.Context, listingID uint64) (entities.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	listing, ok := s.listings[listingID]
	if !ok {
		return entities.Listing{}, domainerrors.ErrListingNotFound
	}
	return listing, nil
}

func (s *Store) ListUserListings(
	_ context.Context,
	user string,
	limit int,
	offset int,
) ([]entities.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	items := make([]entities.Listing, 0, len(s.listings))
	for _, listing := range s.listings {
		if listing.Seller != user && listing.Buyer != user {
			continue
		}
		items = append(items, listing)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ListingID > items[j].ListingID
	})
	if offset >= len(items) {
		return []entities.Listing{}, nil
	}
	items = items[offset:]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) CreateListingWithOutbox(
	_ context.Context,
	listing entities.Listing,
	envelopes []ports.EventEnvelope,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The use case reads the counter before building the listing, so a stale
	// id means a concurrent create won the race.
	if listing.ListingID != s.nextListingID {
		return domainerrors.ErrConflict
	}
	if _, exists := s.listings[listing.ListingID]; exists {
		return domainerrors.ErrConflict
	}
	for _, envelope := range envelopes {
		if err := s.appendOutboxLocked(envelope); err != nil {
			return err
		}
	}
	s.listings[listing.ListingID] = listing
	s.nextListingID++
	return nil
}

func (s *Store) UpdateListingWithOutbox(
	_ context.Context,
	listing entities.Listing,
	envelopes []ports.EventEnvelope,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[listing.ListingID]; !ok {
		return domainerrors.ErrListingNotFound
	}
	for _, envelope := range envelopes {
		if err := s.appendOutboxLocked(envelope); err != nil {
			return err
		}
	}
	s.listings[listing.ListingID] = listing
	return nil
}

// GetSettings returns the current fee configuration. Before the administrator
// configures anything the zero value applies: no listing fee, no fee lines.
func (s *Store) GetSettings(_ context.Context) (entities.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

func (s *Store) SaveSettings(_ context.Context, settings entities.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
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
	s.idempotency[strings.TrimSpace(record.Key)] = record
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var (
	_ ports.ListingRepository  = (*Store)(nil)
	_ ports.SettingsRepository = (*Store)(nil)
	_ ports.OutboxWriter       = (*Store)(nil)
	_ ports.OutboxRepository   = (*Store)(nil)
	_ ports.IdempotencyStore   = (*Store)(nil)
	_ ports.Clock              = (*Store)(nil)
	_ ports.IDGenerator        = (*Store)(nil)
)
