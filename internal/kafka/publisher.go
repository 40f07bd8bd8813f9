package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

// messageWriter is the subset of *kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher handles publishing messages to Kafka
type Publisher struct {
	changesWriter  messageWriter
	commandsWriter messageWriter
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string, changesTopic, commandsTopic string) *Publisher {
	return newPublisherWith(newWriter(brokers, changesTopic), newWriter(brokers, commandsTopic))
}

func newPublisherWith(changes, commands messageWriter) *Publisher {
	return &Publisher{
		changesWriter:  changes,
		commandsWriter: commands,
	}
}

// newWriter uses a hash balancer so messages with the same key land on the
// same partition and keep their order.
func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Async:                  false,
		AllowAutoTopicCreation: true,

		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    1,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
	}
}

// PublishChange publishes a committed store mutation keyed by item id
func (p *Publisher) PublishChange(ctx context.Context, change *models.InventoryChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(change.ItemID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(change.EventType)},
			{Key: "event-id", Value: []byte(change.EventID)},
		},
	}

	if err := p.changesWriter.WriteMessages(ctx, message); err != nil {
		log.Error().Err(err).
			Str("event_type", change.EventType).
			Str("item_id", change.ItemID).
			Str("event_id", change.EventID).
			Msg("Failed to publish change")
		return fmt.Errorf("failed to publish change: %w", err)
	}

	log.Info().
		Str("event_type", change.EventType).
		Str("item_id", change.ItemID).
		Str("event_id", change.EventID).
		Msg("Published change")
	return nil
}

// PublishCommand publishes the audit record of an interpreted command
func (p *Publisher) PublishCommand(ctx context.Context, event *models.CommandEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal command event: %w", err)
	}

	key := event.RequestID
	if key == "" {
		key = event.EventID
	}

	message := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "event-id", Value: []byte(event.EventID)},
		},
	}

	if err := p.commandsWriter.WriteMessages(ctx, message); err != nil {
		log.Error().Err(err).
			Str("action", string(event.Action)).
			Str("event_id", event.EventID).
			Msg("Failed to publish command event")
		return fmt.Errorf("failed to publish command event: %w", err)
	}

	log.Debug().
		Str("action", string(event.Action)).
		Bool("success", event.Success).
		Str("event_id", event.EventID).
		Msg("Published command event")
	return nil
}

// Close closes the Kafka writers
func (p *Publisher) Close() error {
	var errs []error

	if err := p.changesWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close changes writer: %w", err))
	}
	if err := p.commandsWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close commands writer: %w", err))
	}

	return errors.Join(errs...)
}
