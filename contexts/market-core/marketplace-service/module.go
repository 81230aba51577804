package marketplaceservice

import (
	"log/slog"
	"time"

	httpadapter "fatcow/contexts/market-core/marketplace-service/adapters/http"
	"fatcow/contexts/market-core/marketplace-service/adapters/memory"
	"fatcow/contexts/market-core/marketplace-service/application/commands"
	"fatcow/contexts/market-core/marketplace-service/application/queries"
	"fatcow/contexts/market-core/marketplace-service/application/workers"
	"fatcow/contexts/market-core/marketplace-service/ports"
)

type Module struct {
	Handler     httpadapter.Handler
	OutboxRelay workers.OutboxRelay
	Store       *memory.Store
}

type Dependencies struct {
	Listings       ports.ListingRepository
	Settings       ports.SettingsRepository
	Outbox         ports.OutboxWriter
	OutboxLog      ports.OutboxRepository
	Idempotency    ports.IdempotencyStore
	Admin          ports.AdminGuard
	Shares         ports.RevenueShareProvider
	Publisher      ports.EventPublisher
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	EscrowAddress  string
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Create: commands.CreateListingUseCase{
				Listings:      deps.Listings,
				Settings:      deps.Settings,
				Clock:         deps.Clock,
				IDGen:         deps.IDGen,
				EscrowAddress: deps.EscrowAddress,
				Logger:        deps.Logger,
			},
			Cancel: commands.CancelListingUseCase{
				Listings:      deps.Listings,
				Clock:         deps.Clock,
				IDGen:         deps.IDGen,
				EscrowAddress: deps.EscrowAddress,
				Logger:        deps.Logger,
			},
			Purchase: commands.PurchaseListingUseCase{
				Listings:       deps.Listings,
				Settings:       deps.Settings,
				Admin:          deps.Admin,
				Idempotency:    deps.Idempotency,
				Clock:          deps.Clock,
				IDGen:          deps.IDGen,
				IdempotencyTTL: deps.IdempotencyTTL,
				EscrowAddress:  deps.EscrowAddress,
				Logger:         deps.Logger,
			},
			Checkout: commands.CheckoutUseCase{
				Settings: deps.Settings,
				Shares:   deps.Shares,
				Admin:    deps.Admin,
				Outbox:   deps.Outbox,
				Clock:    deps.Clock,
				IDGen:    deps.IDGen,
				Logger:   deps.Logger,
			},
			Settings: commands.SettingsUseCase{
				Settings: deps.Settings,
				Admin:    deps.Admin,
				Clock:    deps.Clock,
				Logger:   deps.Logger,
			},
			GetListing: queries.GetListingUseCase{
				Listings: deps.Listings,
				Logger:   deps.Logger,
			},
			ListUserListings: queries.ListUserListingsUseCase{
				Listings: deps.Listings,
				Logger:   deps.Logger,
			},
			Logger: deps.Logger,
		},
		OutboxRelay: workers.OutboxRelay{
			Outbox:    deps.OutboxLog,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the in-process store. The admin
// guard is the governance module's service; the publisher may be nil when the
// caller does not run workers.
func NewInMemoryModule(
	logger *slog.Logger,
	admin ports.AdminGuard,
	publisher ports.EventPublisher,
	escrowAddress string,
) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Listings:      store,
		Settings:      store,
		Outbox:        store,
		OutboxLog:     store,
		Idempotency:   store,
		Admin:         admin,
		Publisher:     publisher,
		Clock:         store,
		IDGen:         store,
		EscrowAddress: escrowAddress,
		Logger:        logger,
	})
	module.Store = store
	return module
}
