package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	feedistributionengine "fatcow/contexts/finance-core/fee-distribution-engine"
	administrationservice "fatcow/contexts/governance/administration-service"
	governancepostgres "fatcow/contexts/governance/administration-service/adapters/postgres"
	marketplaceservice "fatcow/contexts/market-core/marketplace-service"
	marketcache "fatcow/contexts/market-core/marketplace-service/adapters/cache"
	marketpostgres "fatcow/contexts/market-core/marketplace-service/adapters/postgres"
	marketworkers "fatcow/contexts/market-core/marketplace-service/application/workers"
	ledgerservice "fatcow/contexts/token-core/ledger-service"
	ledgerpostgres "fatcow/contexts/token-core/ledger-service/adapters/postgres"
	ledgerworkers "fatcow/contexts/token-core/ledger-service/application/workers"
	"fatcow/internal/platform/config"
	"fatcow/internal/platform/db"
	"fatcow/internal/platform/httpserver"
	"fatcow/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres         *db.Postgres
	ledgerRelay      ledgerworkers.OutboxRelay
	marketRelay      marketworkers.OutboxRelay
	transferConsumer ledgerworkers.TransferRequestConsumer
	cfg              config.Config
	pollInterval     time.Duration
	logger           *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	governanceRepo := governancepostgres.NewRepository(pg.DB, logger)
	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	marketRepo := marketpostgres.NewRepository(pg.DB, logger)
	if err := migrateAndSeed(ctx, cfg, governanceRepo, ledgerRepo, marketRepo); err != nil {
		_ = pg.Close()
		return nil, err
	}

	governanceModule := administrationservice.NewModule(administrationservice.Dependencies{
		Repository: governanceRepo,
		Clock:      governancepostgres.SystemClock{},
		Logger:     logger,
	})

	ledgerModule := ledgerservice.NewModule(ledgerservice.Dependencies{
		Ledger:    ledgerRepo,
		Operators: ledgerRepo,
		Outbox:    ledgerRepo,
		OutboxLog: ledgerRepo,
		Dedup:     ledgerRepo,
		Admin:     governanceModule.Service,
		Clock:     ledgerpostgres.SystemClock{},
		IDGen:     ledgerpostgres.UUIDGenerator{},
		Logger:    logger,
	})

	feesModule := feedistributionengine.NewInMemoryModule(logger, governanceModule.Service)

	marketModule := marketplaceservice.NewModule(marketplaceservice.Dependencies{
		Listings:       marketRepo,
		Settings:       marketRepo,
		Outbox:         marketRepo,
		OutboxLog:      marketRepo,
		Idempotency:    marketcache.NewIdempotencyStore(24 * time.Hour),
		Admin:          governanceModule.Service,
		Shares:         feesModule.Service,
		Clock:          marketpostgres.SystemClock{},
		IDGen:          marketpostgres.UUIDGenerator{},
		EscrowAddress:  cfg.EscrowAddress,
		IdempotencyTTL: 24 * time.Hour,
		Logger:         logger,
	})

	server := httpserver.New(
		ledgerModule,
		marketModule,
		governanceModule,
		feesModule,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	governanceRepo := governancepostgres.NewRepository(pg.DB, logger)
	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	marketRepo := marketpostgres.NewRepository(pg.DB, logger)
	if err := migrateAndSeed(ctx, cfg, governanceRepo, ledgerRepo, marketRepo); err != nil {
		_ = pg.Close()
		return nil, err
	}

	ledgerModule := ledgerservice.NewModule(ledgerservice.Dependencies{
		Ledger:     ledgerRepo,
		Operators:  ledgerRepo,
		Outbox:     ledgerRepo,
		OutboxLog:  ledgerRepo,
		Dedup:      ledgerRepo,
		Publisher:  kafka,
		Subscriber: kafka,
		Clock:      ledgerpostgres.SystemClock{},
		IDGen:      ledgerpostgres.UUIDGenerator{},
		Logger:     logger,
	})

	return &WorkerApp{
		postgres:         pg,
		ledgerRelay:      ledgerModule.OutboxRelay,
		transferConsumer: ledgerModule.TransferConsumer,
		marketRelay: marketworkers.OutboxRelay{
			Outbox:    marketRepo,
			Publisher: kafka,
			Clock:     marketpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		cfg:          cfg,
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func migrateAndSeed(
	ctx context.Context,
	cfg config.Config,
	governanceRepo *governancepostgres.Repository,
	ledgerRepo *ledgerpostgres.Repository,
	marketRepo *marketpostgres.Repository,
) error {
	if err := governanceRepo.Migrate(ctx); err != nil {
		return err
	}
	if err := governanceRepo.Seed(ctx, cfg.Administrator, time.Now().UTC()); err != nil {
		return err
	}
	if err := ledgerRepo.Migrate(ctx); err != nil {
		return err
	}
	if err := ledgerRepo.Seed(ctx); err != nil {
		return err
	}
	if err := marketRepo.Migrate(ctx); err != nil {
		return err
	}
	return marketRepo.Seed(ctx)
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if w.cfg.EnableLedgerTransferConsumer {
		if err := w.transferConsumer.Start(ctx); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if w.cfg.EnableLedgerOutboxRelay {
			if err := w.ledgerRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		if w.cfg.EnableMarketOutboxRelay {
			if err := w.marketRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
