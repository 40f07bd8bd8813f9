// Package app assembles the assistant's components from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/classifier"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/config"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/interfaces"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/kafka"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/notify"
	redisCache "github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/redis"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/repository"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/service"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/telemetry"
)

// Version is reported in telemetry resources
const Version = "1.0.0"

// App holds the assembled components and what must be closed on exit
type App struct {
	Config      *config.Config
	Store       interfaces.InventoryStore
	Interpreter *service.CommandInterpreter
	Cache       *redisCache.CacheClient // nil unless REDIS_ENABLED
	Publisher   *kafka.Publisher        // nil unless KAFKA_ENABLED

	telemetry *telemetry.Providers
	closers   []func() error
}

// SetupLogging configures the global zerolog logger
func SetupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// Build wires every component selected by cfg
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{Config: cfg}
	if err := a.build(ctx); err != nil {
		if closeErr := a.Close(ctx); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to close partially built app")
		}
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config

	if cfg.OTelEnabled {
		providers, err := telemetry.Setup(ctx, telemetry.Config{
			ServiceName:    cfg.ServiceName,
			ServiceVersion: Version,
			Endpoint:       cfg.OTelEndpoint,
		})
		if err != nil {
			return err
		}
		a.telemetry = providers
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	if cfg.RedisEnabled {
		cache, err := OpenCache(ctx, cfg)
		if err != nil {
			return err
		}
		a.Cache = cache
		a.closers = append(a.closers, cache.Close)
		store = repository.NewCachedStore(store, cache)
	}
	a.Store = store

	if cfg.SeedDemoData {
		if err := repository.Seed(ctx, store, repository.DemoCatalogue()); err != nil {
			return err
		}
	}

	var publisher interfaces.MessagePublisher
	if cfg.KafkaEnabled {
		log.Info().Strs("kafka_brokers", cfg.KafkaBrokers).Msg("Initializing Kafka publisher")
		a.Publisher = kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaChangesTopic, cfg.KafkaCommandsTopic)
		a.closers = append(a.closers, a.Publisher.Close)
		publisher = a.Publisher
	}

	notifier, err := newNotifier(cfg)
	if err != nil {
		return err
	}

	interpreter, err := service.NewCommandInterpreter(store, newClassifier(cfg), newReporter(cfg), notifier, publisher,
		service.InterpreterConfig{
			ClassifyTimeout:   cfg.ClassifyTimeout,
			ReportTimeout:     cfg.ReportTimeout,
			SideEffectTimeout: cfg.SideEffectTimeout,
		})
	if err != nil {
		return err
	}
	a.Interpreter = interpreter

	log.Info().
		Str("store", cfg.StoreBackend).
		Str("classifier", cfg.ClassifierBackend).
		Str("reporter", cfg.ReportBackend).
		Str("notifier", cfg.NotifyBackend).
		Bool("redis", cfg.RedisEnabled).
		Bool("kafka", cfg.KafkaEnabled).
		Msg("Assistant components ready")
	return nil
}

func (a *App) openStore(ctx context.Context) (interfaces.InventoryStore, error) {
	cfg := a.Config

	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := OpenDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)

		store := repository.NewPostgresStore(db)
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case config.StoreFirestore:
		client, err := repository.NewFirestoreClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentials)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return repository.NewFirestoreStore(client, cfg.FirestoreCollection), nil
	default:
		return repository.NewMemoryStore(), nil
	}
}

// Close waits for background side effects, then releases every resource
func (a *App) Close(ctx context.Context) error {
	if a.Interpreter != nil {
		a.Interpreter.Wait()
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// OpenDatabase connects to PostgreSQL with the configured pool limits
func OpenDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(cfg.DatabaseMaxConns)
	db.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)

	log.Info().Int("max_conns", cfg.DatabaseMaxConns).Msg("Database connection established")
	return db, nil
}

// OpenCache connects to Redis and checks it answers
func OpenCache(ctx context.Context, cfg *config.Config) (*redisCache.CacheClient, error) {
	cache := redisCache.NewCacheClient(redisCache.Options{
		Addrs:       cfg.RedisAddrs,
		Password:    cfg.RedisPassword,
		ClusterMode: cfg.RedisClusterMode,
		TTL:         cfg.RedisTTL,
		KeyPrefix:   cfg.RedisKeyPrefix,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx); err != nil {
		cache.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info().Bool("cluster_mode", cfg.RedisClusterMode).Msg("Redis connection established")
	return cache, nil
}

func newClassifier(cfg *config.Config) interfaces.Classifier {
	if cfg.ClassifierBackend == config.ClassifierLLM {
		return classifier.NewLLMClassifier(classifier.LLMConfig{
			Endpoint: cfg.LLMEndpoint,
			APIKey:   cfg.LLMAPIKey,
			Model:    cfg.LLMModel,
			Timeout:  cfg.ClassifyTimeout,
		})
	}
	return classifier.NewRuleClassifier()
}

func newReporter(cfg *config.Config) interfaces.SalesReporter {
	if cfg.ReportBackend == config.ReporterLLM {
		return service.NewLLMReporter(cfg.LLMEndpoint, cfg.LLMAPIKey, cfg.LLMModel, cfg.ReportTimeout)
	}
	return service.NewHeuristicReporter()
}

func newNotifier(cfg *config.Config) (interfaces.StockNotifier, error) {
	switch cfg.NotifyBackend {
	case config.NotifierSendGrid:
		notifier, err := notify.NewSendGridNotifier(notify.SendGridConfig{
			APIKey: cfg.SendGridAPIKey,
			From:   cfg.AlertFromEmail,
			To:     cfg.AlertToEmail,
		})
		if err != nil {
			return nil, err
		}
		return notifier, nil
	case config.NotifierNone:
		return nil, nil
	default:
		return notify.LogNotifier{}, nil
	}
}
