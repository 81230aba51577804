package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string   `env:"SERVICE_NAME" envDefault:"fatcow"`
	HTTPPort     string   `env:"HTTP_PORT" envDefault:"8080"`
	PostgresDSN  string   `env:"POSTGRES_DSN"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`

	// Administrator is the address seeded as the initial administrator.
	Administrator string `env:"ADMINISTRATOR_ADDRESS" envDefault:"tz1Administrator"`
	// EscrowAddress is the marketplace's own address; listed tokens are held
	// there until sold or cancelled.
	EscrowAddress string `env:"ESCROW_ADDRESS" envDefault:"KT1MarketplaceEscrow"`

	EnableLedgerTransferConsumer bool `env:"ENABLE_LEDGER_TRANSFER_CONSUMER" envDefault:"true"`
	EnableLedgerOutboxRelay      bool `env:"ENABLE_LEDGER_OUTBOX_RELAY" envDefault:"true"`
	EnableMarketOutboxRelay      bool `env:"ENABLE_MARKET_OUTBOX_RELAY" envDefault:"true"`
}

func Load() (Config, error) {
	// A local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
