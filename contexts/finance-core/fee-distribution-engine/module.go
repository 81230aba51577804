package feedistributionengine

import (
	"log/slog"
	"time"

	httpadapter "fatcow/contexts/finance-core/fee-distribution-engine/adapters/http"
	"fatcow/contexts/finance-core/fee-distribution-engine/adapters/memory"
	"fatcow/contexts/finance-core/fee-distribution-engine/application"
	"fatcow/contexts/finance-core/fee-distribution-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Policies       ports.PolicyRepository
	Shares         ports.ShareRegistry
	Distributions  ports.DistributionRepository
	Admin          ports.AdminGuard
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxWriter
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Policies:       deps.Policies,
		Shares:         deps.Shares,
		Distributions:  deps.Distributions,
		Admin:          deps.Admin,
		Idempotency:    deps.Idempotency,
		Outbox:         deps.Outbox,
		Clock:          deps.Clock,
		IDGen:          deps.IDGenerator,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

func NewInMemoryModule(logger *slog.Logger, admin ports.AdminGuard) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Policies:       store,
		Shares:         store,
		Distributions:  store,
		Admin:          admin,
		Idempotency:    store,
		Outbox:         store,
		Clock:          store,
		IDGenerator:    store,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
