// Package cache provides an expiring in-process idempotency store backed by
// go-cache. Purchase replays only need to survive the retry window, so the
// records live in memory with a TTL instead of a database table.
package cache

import (
	"context"
	"strings"
	"time"

	"fatcow/contexts/market-core/marketplace-service/ports"

	gocache "github.com/patrickmn/go-cache"
)

type IdempotencyStore struct {
	cache *gocache.Cache
}

// NewIdempotencyStore builds a store whose records default to ttl when the
// caller does not set ExpiresAt. Expired entries are swept every ttl/2.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{
		cache: gocache.New(ttl, ttl/2),
	}
}

func (s *IdempotencyStore) GetRecord(
	_ context.Context,
	key string,
	now time.Time,
) (ports.IdempotencyRecord, bool, error) {
	value, found := s.cache.Get(strings.TrimSpace(key))
	if !found {
		return ports.IdempotencyRecord{}, false, nil
	}
	record, ok := value.(ports.IdempotencyRecord)
	if !ok {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.IsZero() && now.UTC().After(record.ExpiresAt.UTC()) {
		s.cache.Delete(strings.TrimSpace(key))
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *IdempotencyStore) PutRecord(_ context.Context, record ports.IdempotencyRecord) error {
	ttl := gocache.DefaultExpiration
	if !record.ExpiresAt.IsZero() {
		remaining := time.Until(record.ExpiresAt.UTC())
		if remaining > 0 {
			ttl = remaining
		}
	}
	s.cache.Set(strings.TrimSpace(record.Key), record, ttl)
	return nil
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)
