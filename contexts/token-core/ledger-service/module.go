package ledgerservice

import (
	"log/slog"

	httpadapter "fatcow/contexts/token-core/ledger-service/adapters/http"
	"fatcow/contexts/token-core/ledger-service/adapters/memory"
	"fatcow/contexts/token-core/ledger-service/application/commands"
	"fatcow/contexts/token-core/ledger-service/application/queries"
	"fatcow/contexts/token-core/ledger-service/application/workers"
	"fatcow/contexts/token-core/ledger-service/ports"
)

type Module struct {
	Handler          httpadapter.Handler
	OutboxRelay      workers.OutboxRelay
	TransferConsumer workers.TransferRequestConsumer
	Store            *memory.Store
}

type Dependencies struct {
	Ledger     ports.LedgerRepository
	Operators  ports.OperatorRegistry
	Outbox     ports.OutboxWriter
	OutboxLog  ports.OutboxRepository
	Dedup      ports.EventDedupStore
	Admin      ports.AdminGuard
	Publisher  ports.EventPublisher
	Subscriber ports.EventSubscriber
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	mintUseCase := commands.MintUseCase{
		Ledger: deps.Ledger,
		Admin:  deps.Admin,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	transferUseCase := commands.TransferUseCase{
		Ledger:    deps.Ledger,
		Operators: deps.Operators,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	balanceOfUseCase := commands.BalanceOfUseCase{
		Ledger: deps.Ledger,
		Outbox: deps.Outbox,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	operatorsUseCase := commands.UpdateOperatorsUseCase{
		Operators: deps.Operators,
		Logger:    deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			Mint:      mintUseCase,
			Transfer:  transferUseCase,
			BalanceOf: balanceOfUseCase,
			Operators: operatorsUseCase,
			GetToken: queries.GetTokenUseCase{
				Ledger: deps.Ledger,
				Logger: deps.Logger,
			},
			ListTokens: queries.ListTokensUseCase{
				Ledger: deps.Ledger,
				Logger: deps.Logger,
			},
			IsOperator: queries.IsOperatorUseCase{
				Operators: deps.Operators,
				Logger:    deps.Logger,
			},
			GetBalance: queries.GetBalanceUseCase{
				Ledger: deps.Ledger,
				Logger: deps.Logger,
			},
			Logger: deps.Logger,
		},
		OutboxRelay: workers.OutboxRelay{
			Outbox:    deps.OutboxLog,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
		TransferConsumer: workers.TransferRequestConsumer{
			Subscriber: deps.Subscriber,
			Dedup:      deps.Dedup,
			Transfer:   transferUseCase,
			Clock:      deps.Clock,
			Logger:     deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the in-process store. The admin
// guard is the governance module's service; publisher and subscriber may be
// nil when the caller does not run workers.
func NewInMemoryModule(
	logger *slog.Logger,
	admin ports.AdminGuard,
	publisher ports.EventPublisher,
	subscriber ports.EventSubscriber,
) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Ledger:     store,
		Operators:  store,
		Outbox:     store,
		OutboxLog:  store,
		Dedup:      store,
		Admin:      admin,
		Publisher:  publisher,
		Subscriber: subscriber,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
