package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/interfaces"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

const maxHandleRetries = 3

// messageReader is the subset of *kafka.Reader the consumer needs
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads committed changes from the changes topic
type Consumer struct {
	reader  messageReader
	backoff time.Duration
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(brokers []string, consumerGroup, changesTopic string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          changesTopic,
		GroupID:        consumerGroup,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
		MaxWait:        time.Second,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error().Msgf("Kafka changes reader error: "+msg, args...)
		}),
	})

	return newConsumerWith(reader, 100*time.Millisecond)
}

func newConsumerWith(reader messageReader, backoff time.Duration) *Consumer {
	return &Consumer{reader: reader, backoff: backoff}
}

// ConsumeChanges hands every change to handler until ctx is done.
// A message is committed only after the handler succeeds or the error is permanent.
func (c *Consumer) ConsumeChanges(ctx context.Context, handler interfaces.ChangeHandler) error {
	log.Info().Msg("Starting to consume inventory changes")

	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("Stopping change consumption")
				return nil
			}
			log.Error().Err(err).Msg("Failed to fetch change message")
			if !sleep(ctx, time.Second) {
				return nil
			}
			continue
		}

		var change models.InventoryChange
		if err := json.Unmarshal(message.Value, &change); err != nil {
			log.Error().Err(err).
				Str("topic", message.Topic).
				Int("partition", message.Partition).
				Int64("offset", message.Offset).
				Msg("Failed to unmarshal change, skipping")
			c.commit(ctx, message)
			continue
		}

		if err := c.handleWithRetry(ctx, handler, &change); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if !isPermanent(err) {
				// leave uncommitted so the group redelivers it
				log.Error().Err(err).Str("event_id", change.EventID).Msg("Failed to handle change after retries")
				continue
			}
			log.Warn().Err(err).Str("event_id", change.EventID).Msg("Permanent error, skipping change")
		}

		c.commit(ctx, message)
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, handler interfaces.ChangeHandler, change *models.InventoryChange) error {
	var err error
	for attempt := 0; attempt <= maxHandleRetries; attempt++ {
		if err = handler.HandleChange(ctx, change); err == nil || isPermanent(err) {
			return err
		}
		if attempt < maxHandleRetries {
			backoff := c.backoff * time.Duration(1<<attempt)
			log.Warn().Err(err).
				Str("event_id", change.EventID).
				Int("attempt", attempt+1).
				Dur("backoff", backoff).
				Msg("Change handling failed, retrying after backoff")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("change handling failed after %d attempts: %w", maxHandleRetries+1, err)
}

func (c *Consumer) commit(ctx context.Context, message kafka.Message) {
	if err := c.reader.CommitMessages(ctx, message); err != nil {
		log.Error().Err(err).Int64("offset", message.Offset).Msg("Failed to commit change message")
	}
}

// Close closes the Kafka reader
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("failed to close changes reader: %w", err)
	}
	return nil
}

// isPermanent reports errors that retrying cannot fix
func isPermanent(err error) bool {
	return models.IsValidationError(err) || models.IsNotFoundError(err)
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
