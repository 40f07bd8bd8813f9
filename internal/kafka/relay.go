package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/interfaces"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/repository"
)

// RelayConfig configures the outbox relay loop
type RelayConfig struct {
	LockKey      int64
	BatchSize    int
	PollInterval time.Duration
}

// Validate checks the relay settings
func (c RelayConfig) Validate() error {
	if c.BatchSize <= 0 {
		return errors.New("outbox batch size must be positive")
	}
	if c.PollInterval <= 0 {
		return errors.New("outbox poll interval must be positive")
	}
	return nil
}

// OutboxRelay moves committed changes from the outbox to the changes topic.
// Only the holder of the advisory lock publishes, so several relays may run.
type OutboxRelay struct {
	outbox    *repository.OutboxRepository
	publisher interfaces.MessagePublisher
	config    RelayConfig
}

// NewOutboxRelay creates a relay over the given outbox and publisher
func NewOutboxRelay(outbox *repository.OutboxRepository, publisher interfaces.MessagePublisher, config RelayConfig) (*OutboxRelay, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid relay config: %w", err)
	}
	return &OutboxRelay{outbox: outbox, publisher: publisher, config: config}, nil
}

// Run polls the outbox until ctx is done
func (r *OutboxRelay) Run(ctx context.Context) {
	log.Info().
		Int64("lock_key", r.config.LockKey).
		Int("batch_size", r.config.BatchSize).
		Dur("poll_interval", r.config.PollInterval).
		Msg("Starting outbox relay")

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Stopping outbox relay")
			return
		case <-ticker.C:
			if _, err := r.ProcessBatch(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to process outbox batch")
			}
		}
	}
}

// ProcessBatch publishes one batch and returns how many events were published.
// It stops at the first failure so later changes never overtake earlier ones.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	lock, err := r.outbox.TryAcquireLock(ctx, r.config.LockKey)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if lock == nil {
		return 0, nil
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			log.Error().Err(err).Msg("Failed to release outbox lock")
		}
	}()

	events, err := r.outbox.FetchBatch(ctx, r.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch outbox batch: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	var published []int64
	var publishErr error
	for _, event := range events {
		change, err := event.Change()
		if err != nil {
			// an undecodable payload can never succeed; retire it so the batch moves on
			log.Error().Err(err).Int64("outbox_id", event.ID).Msg("Retiring undecodable outbox event")
			if recordErr := r.outbox.RecordFailure(ctx, event.ID, err.Error()); recordErr != nil {
				log.Error().Err(recordErr).Int64("outbox_id", event.ID).Msg("Failed to record publish failure")
			}
			published = append(published, event.ID)
			continue
		}
		if err := r.publisher.PublishChange(ctx, change); err != nil {
			log.Error().Err(err).
				Int64("outbox_id", event.ID).
				Str("event_type", event.EventType).
				Str("key", event.Key).
				Msg("Failed to publish outbox event")
			if recordErr := r.outbox.RecordFailure(ctx, event.ID, err.Error()); recordErr != nil {
				log.Error().Err(recordErr).Int64("outbox_id", event.ID).Msg("Failed to record publish failure")
			}
			publishErr = err
			break
		}
		published = append(published, event.ID)
	}

	if err := r.outbox.MarkPublished(ctx, published); err != nil {
		return 0, err
	}
	if publishErr != nil {
		return len(published), fmt.Errorf("outbox batch stopped early: %w", publishErr)
	}
	return len(published), nil
}
