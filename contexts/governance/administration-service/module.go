package administrationservice

import (
	"log/slog"

	httpadapter "fatcow/contexts/governance/administration-service/adapters/http"
	"fatcow/contexts/governance/administration-service/adapters/memory"
	"fatcow/contexts/governance/administration-service/application"
	"fatcow/contexts/governance/administration-service/ports"
)

// Module is the composition surface for governance within FatCow.
// Service doubles as the AdminGuard implementation consumed by the ledger and
// marketplace modules; Store is exposed for tests/inspection.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.AdministrationRepository
	Clock      ports.Clock
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:   deps.Repository,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

// NewInMemoryModule seeds the governance record with the given administrator.
func NewInMemoryModule(logger *slog.Logger, administrator string) Module {
	store := memory.NewStore(administrator)
	module := NewModule(Dependencies{
		Repository: store,
		Clock:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
