package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/api"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/app"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/config"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/kafka"
)

// startHTTPServer starts the HTTP server
func startHTTPServer(cfg *config.Config, assistant *app.App) *http.Server {
	router := api.NewRouter(api.RouterConfig{
		ServiceName: cfg.ServiceName,
		Commands:    api.NewCommandHandler(assistant.Interpreter),
		Inventory:   api.NewInventoryHandler(assistant.Store),
	})

	server := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("address", server.Addr).Msg("Assistant HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	return server
}

// startCacheInvalidator consumes inventory changes and evicts cached items.
// It runs only when both Kafka and Redis are enabled.
func startCacheInvalidator(ctx context.Context, cfg *config.Config, assistant *app.App) *kafka.Consumer {
	if assistant.Cache == nil || !cfg.KafkaEnabled {
		return nil
	}

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, cfg.KafkaChangesTopic)
	go func() {
		log.Info().Str("topic", cfg.KafkaChangesTopic).Msg("Cache invalidator started")
		if err := consumer.ConsumeChanges(ctx, assistant.Cache); err != nil {
			log.Error().Err(err).Msg("Cache invalidator stopped")
		}
	}()
	return consumer
}

// gracefulShutdown handles graceful shutdown of the service
func gracefulShutdown(server *http.Server, stopConsumers context.CancelFunc) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down Assistant...")
	stopConsumers()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
}

func main() {
	cfg := config.LoadConfig()
	app.SetupLogging(cfg)
	log.Info().Str("environment", cfg.Environment).Msg("Starting Assistant...")

	assistant, err := app.Build(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build assistant")
	}

	consumerCtx, stopConsumers := context.WithCancel(context.Background())
	consumer := startCacheInvalidator(consumerCtx, cfg, assistant)

	server := startHTTPServer(cfg, assistant)
	gracefulShutdown(server, stopConsumers)

	if consumer != nil {
		if err := consumer.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close change consumer")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := assistant.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to release resources")
	}
	log.Info().Msg("Assistant stopped")
}
