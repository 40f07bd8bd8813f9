package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

// OutboxEvent represents a pending change in the outbox table
type OutboxEvent struct {
	ID              int64     `db:"id" json:"id"`
	EventType       string    `db:"event_type" json:"event_type"`
	Key             string    `db:"key" json:"key"`
	Payload         string    `db:"payload" json:"payload"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	Published       bool      `db:"published" json:"published"`
	PublishAttempts int       `db:"publish_attempts" json:"publish_attempts"`
	LastError       *string   `db:"last_error" json:"last_error,omitempty"`
}

// Change decodes the payload into an inventory change
func (e OutboxEvent) Change() (*models.InventoryChange, error) {
	var change models.InventoryChange
	if err := json.Unmarshal([]byte(e.Payload), &change); err != nil {
		return nil, fmt.Errorf("failed to decode outbox payload %d: %w", e.ID, err)
	}
	return &change, nil
}

// OutboxLock is a session-level advisory lock pinned to one pooled connection
type OutboxLock struct {
	conn *sqlx.Conn
	key  int64
}

// Release unlocks and returns the connection to the pool
func (l *OutboxLock) Release(ctx context.Context) error {
	defer l.conn.Close()

	var released bool
	if err := l.conn.QueryRowxContext(ctx, "SELECT pg_advisory_unlock($1)", l.key).Scan(&released); err != nil {
		log.Error().Err(err).Int64("lock_key", l.key).Msg("Failed to release advisory lock")
		return fmt.Errorf("failed to release advisory lock: %w", err)
	}

	if !released {
		log.Warn().Int64("lock_key", l.key).Msg("Advisory lock was not held when trying to release")
	}
	return nil
}

// OutboxRepository handles outbox operations with advisory locking
type OutboxRepository struct {
	db *sqlx.DB
}

// NewOutboxRepository creates a new outbox repository
func NewOutboxRepository(db *sqlx.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// TryAcquireLock attempts to take the relay advisory lock.
// Returns nil without error when another relay holds it.
func (r *OutboxRepository) TryAcquireLock(ctx context.Context, lockKey int64) (*OutboxLock, error) {
	conn, err := r.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRowxContext(ctx, "SELECT pg_try_advisory_lock($1)", lockKey).Scan(&acquired); err != nil {
		conn.Close()
		log.Error().Err(err).Int64("lock_key", lockKey).Msg("Failed to acquire advisory lock")
		return nil, fmt.Errorf("failed to acquire advisory lock: %w", err)
	}

	if !acquired {
		conn.Close()
		log.Debug().Int64("lock_key", lockKey).Msg("Advisory lock already held by another relay")
		return nil, nil
	}

	log.Debug().Int64("lock_key", lockKey).Msg("Acquired outbox advisory lock")
	return &OutboxLock{conn: conn, key: lockKey}, nil
}

// FetchBatch fetches unpublished events in insertion order
func (r *OutboxRepository) FetchBatch(ctx context.Context, limit int) ([]OutboxEvent, error) {
	events := []OutboxEvent{}
	query := `
		SELECT id, event_type, key, payload, created_at, published, publish_attempts, last_error
		FROM outbox
		WHERE published = false
		ORDER BY id ASC
		LIMIT $1
	`

	if err := r.db.SelectContext(ctx, &events, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query outbox events: %w", err)
	}

	log.Debug().Int("count", len(events)).Msg("Fetched outbox events for processing")
	return events, nil
}

// MarkPublished marks events as successfully published
func (r *OutboxRepository) MarkPublished(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := `UPDATE outbox SET published = true, published_at = NOW() WHERE id = ANY($1)`

	result, err := r.db.ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		log.Error().Err(err).Interface("ids", ids).Msg("Failed to mark outbox events as published")
		return fmt.Errorf("failed to mark outbox events as published: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	log.Info().Int("count", len(ids)).Int64("rows_affected", rowsAffected).Msg("Marked outbox events as published")
	return nil
}

// RecordFailure increments the attempt counter and stores the last error
func (r *OutboxRepository) RecordFailure(ctx context.Context, id int64, lastError string) error {
	query := `
		UPDATE outbox
		SET publish_attempts = publish_attempts + 1, last_error = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, lastError)
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("Failed to record publish failure")
		return fmt.Errorf("failed to record publish failure: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		log.Warn().Int64("id", id).Msg("No outbox event found to record failure")
	}
	return nil
}

// InsertChange writes a change event inside the caller's transaction
func (r *OutboxRepository) InsertChange(ctx context.Context, tx *sqlx.Tx, change *models.InventoryChange) error {
	if tx == nil {
		return errors.New("outbox insert requires a transaction")
	}

	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	query := `INSERT INTO outbox (event_type, key, payload, created_at) VALUES ($1, $2, $3, NOW())`

	if _, err := tx.ExecContext(ctx, query, change.EventType, change.ItemID, string(payload)); err != nil {
		log.Error().Err(err).Str("event_type", change.EventType).Str("item_id", change.ItemID).Msg("Failed to insert outbox event")
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}
