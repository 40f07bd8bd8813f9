package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/app"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/config"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/kafka"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/repository"
)

func main() {
	cfg := config.LoadConfig()
	app.SetupLogging(cfg)
	log.Info().Msg("Starting Outbox Relay...")

	if cfg.StoreBackend != config.StorePostgres {
		log.Fatal().Str("store", cfg.StoreBackend).Msg("The outbox relay requires STORE_BACKEND=postgres")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := app.OpenDatabase(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := repository.NewPostgresStore(db).Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate schema")
	}

	publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaChangesTopic, cfg.KafkaCommandsTopic)
	defer publisher.Close()

	relay, err := kafka.NewOutboxRelay(repository.NewOutboxRepository(db), publisher, kafka.RelayConfig{
		LockKey:      cfg.OutboxLockKey,
		BatchSize:    cfg.OutboxBatchSize,
		PollInterval: cfg.OutboxPollInterval,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create outbox relay")
	}

	relay.Run(ctx)
	log.Info().Msg("Outbox Relay stopped")
}
