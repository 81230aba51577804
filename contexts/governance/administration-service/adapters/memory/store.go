package memory

import (
	"context"
	"sync"
	"time"

	"fatcow/contexts/governance/administration-service/domain/entities"
	domainerrors "fatcow/contexts/governance/administration-service/domain/errors"
)

type Store struct {
	mu     sync.RWMutex
	record entities.Administration
	seeded bool
}

// NewStore seeds the governance record with the initial administrator.
func NewStore(administrator string) *Store {
	record, err := entities.NewAdministration(administrator, time.Now().UTC())
	if err != nil {
		return &Store{}
	}
	return &Store{
		record: record,
		seeded: true,
	}
}

func (s *Store) GetAdministration(_ context.Context) (entities.Administration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.seeded {
		return entities.Administration{}, domainerrors.ErrInvalidInput
	}
	return s.record, nil
}

func (s *Store) SaveAdministration(_ context.Context, record entities.Administration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.Administrator == "" {
		return domainerrors.ErrInvalidInput
	}
	s.record = record
	s.seeded = true
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}
