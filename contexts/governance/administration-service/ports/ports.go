package ports

import (
	"context"
	"time"

	"fatcow/contexts/governance/administration-service/domain/entities"
)

// AdministrationRepository persists the single governance record.
type AdministrationRepository interface {
	GetAdministration(ctx context.Context) (entities.Administration, error)
	SaveAdministration(ctx context.Context, record entities.Administration) error
}

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}
