package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

// Schema creates the tables used by PostgresStore and OutboxRepository
const Schema = `
CREATE TABLE IF NOT EXISTS inventory_item (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	name_key      TEXT NOT NULL UNIQUE,
	stock         INTEGER NOT NULL DEFAULT 0,
	reorder_level INTEGER NOT NULL DEFAULT 0 CHECK (reorder_level >= 0),
	price         NUMERIC(12, 2) NOT NULL DEFAULT 0 CHECK (price >= 0),
	category      TEXT NOT NULL DEFAULT '',
	supplier      TEXT NOT NULL DEFAULT '',
	image_url     TEXT NOT NULL DEFAULT '',
	version       BIGINT NOT NULL DEFAULT 1,
	last_updated  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS outbox (
	id               BIGSERIAL PRIMARY KEY,
	event_type       TEXT NOT NULL,
	key              TEXT NOT NULL,
	payload          TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ,
	published        BOOLEAN NOT NULL DEFAULT FALSE,
	published_at     TIMESTAMPTZ,
	publish_attempts INTEGER NOT NULL DEFAULT 0,
	last_error       TEXT
);

CREATE INDEX IF NOT EXISTS outbox_unpublished_idx ON outbox (id) WHERE published = FALSE;
`

const itemColumns = "id, name, stock, reorder_level, price, category, supplier, image_url, version, last_updated"

// touchedAt keeps last_updated strictly increasing even within one transaction timestamp
const touchedAt = "GREATEST(NOW(), last_updated + INTERVAL '1 microsecond')"

const uniqueViolation = "23505"

// PostgresStore persists items in PostgreSQL. Every mutation writes a change
// event to the outbox in the same transaction.
type PostgresStore struct {
	db     *sqlx.DB
	outbox *OutboxRepository
}

// NewPostgresStore creates a new PostgreSQL-backed store
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{
		db:     db,
		outbox: NewOutboxRepository(db),
	}
}

// Migrate creates the schema when it does not exist
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// List retrieves all items ordered by name
func (s *PostgresStore) List(ctx context.Context) ([]models.InventoryItem, error) {
	items := []models.InventoryItem{}
	query := `SELECT ` + itemColumns + ` FROM inventory_item ORDER BY name_key ASC`

	if err := s.db.SelectContext(ctx, &items, query); err != nil {
		log.Error().Err(err).Msg("Failed to list items")
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// Get retrieves an item by id
func (s *PostgresStore) Get(ctx context.Context, id string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	query := `SELECT ` + itemColumns + ` FROM inventory_item WHERE id = $1`

	err := s.db.GetContext(ctx, &item, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NewNotFoundError("item", id)
		}
		log.Error().Err(err).Str("item_id", id).Msg("Failed to get item")
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

// FindByName retrieves an item by case-insensitive name
func (s *PostgresStore) FindByName(ctx context.Context, name string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	query := `SELECT ` + itemColumns + ` FROM inventory_item WHERE name_key = $1`

	err := s.db.GetContext(ctx, &item, query, models.FoldName(name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		log.Error().Err(err).Str("name", name).Msg("Failed to find item by name")
		return nil, fmt.Errorf("failed to find item by name: %w", err)
	}
	return &item, nil
}

// Create inserts a new item with a generated id
func (s *PostgresStore) Create(ctx context.Context, fields models.NewItem) (*models.InventoryItem, error) {
	var created *models.InventoryItem
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var item models.InventoryItem
		query := `INSERT INTO inventory_item (id, name, name_key, stock, reorder_level, price, category, supplier, image_url, version, last_updated)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, NOW())
			RETURNING ` + itemColumns

		err := tx.GetContext(ctx, &item, query,
			uuid.New().String(), fields.Name, models.FoldName(fields.Name), fields.Stock, fields.ReorderLevel,
			fields.Price, fields.Category, fields.Supplier, fields.ImageURL)
		if err != nil {
			if isUniqueViolation(err) {
				return models.NewConflictError("item", fmt.Sprintf("an item named %q already exists", fields.Name))
			}
			log.Error().Err(err).Str("name", fields.Name).Msg("Failed to create item")
			return fmt.Errorf("failed to create item: %w", err)
		}

		created = &item
		return s.outbox.InsertChange(ctx, tx, newChange(models.EventTypeItemCreated, &item, 0))
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies a partial update guarded by the row version
func (s *PostgresStore) Update(ctx context.Context, id string, patch models.ItemPatch) (*models.InventoryItem, error) {
	var updated *models.InventoryItem
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		current, err := s.getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return models.NewNotFoundError("item", id)
		}

		next := *current
		patch.Apply(&next)

		var item models.InventoryItem
		query := `UPDATE inventory_item
			SET name = $2, name_key = $3, stock = $4, reorder_level = $5, price = $6,
			    category = $7, supplier = $8, image_url = $9,
			    version = version + 1, last_updated = ` + touchedAt + `
			WHERE id = $1 AND version = $10
			RETURNING ` + itemColumns

		err = tx.GetContext(ctx, &item, query,
			id, next.Name, models.FoldName(next.Name), next.Stock, next.ReorderLevel, next.Price,
			next.Category, next.Supplier, next.ImageURL, current.Version)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.NewConflictError("item", "item version mismatch")
			}
			if isUniqueViolation(err) {
				return models.NewConflictError("item", fmt.Sprintf("an item named %q already exists", next.Name))
			}
			log.Error().Err(err).Str("item_id", id).Msg("Failed to update item")
			return fmt.Errorf("failed to update item: %w", err)
		}

		updated = &item
		return s.outbox.InsertChange(ctx, tx, newChange(models.EventTypeItemUpdated, &item, 0))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AdjustStock adds delta to the stock in a single row update
func (s *PostgresStore) AdjustStock(ctx context.Context, id string, delta int) (*models.InventoryItem, error) {
	var adjusted *models.InventoryItem
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var item models.InventoryItem
		query := `UPDATE inventory_item
			SET stock = stock + $2, version = version + 1, last_updated = ` + touchedAt + `
			WHERE id = $1
			RETURNING ` + itemColumns

		err := tx.GetContext(ctx, &item, query, id, delta)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.NewNotFoundError("item", id)
			}
			log.Error().Err(err).Str("item_id", id).Int("delta", delta).Msg("Failed to adjust stock")
			return fmt.Errorf("failed to adjust stock: %w", err)
		}

		adjusted = &item
		return s.outbox.InsertChange(ctx, tx, newChange(models.EventTypeStockAdjusted, &item, delta))
	})
	if err != nil {
		return nil, err
	}
	return adjusted, nil
}

// Delete removes an item
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		var item models.InventoryItem
		query := `DELETE FROM inventory_item WHERE id = $1 RETURNING ` + itemColumns

		err := tx.GetContext(ctx, &item, query, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.NewNotFoundError("item", id)
			}
			log.Error().Err(err).Str("item_id", id).Msg("Failed to delete item")
			return fmt.Errorf("failed to delete item: %w", err)
		}

		return s.outbox.InsertChange(ctx, tx, newChange(models.EventTypeItemDeleted, &item, 0))
	})
}

// getForUpdate retrieves an item with a row lock; nil when absent
func (s *PostgresStore) getForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	query := `SELECT ` + itemColumns + ` FROM inventory_item WHERE id = $1 FOR UPDATE`

	err := tx.GetContext(ctx, &item, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		log.Error().Err(err).Str("item_id", id).Msg("Failed to get item for update")
		return nil, fmt.Errorf("failed to get item for update: %w", err)
	}
	return &item, nil
}

func (s *PostgresStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Error().Err(err).Msg("Failed to rollback transaction")
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func newChange(eventType string, item *models.InventoryItem, delta int) *models.InventoryChange {
	return &models.InventoryChange{
		EventID:      uuid.New().String(),
		EventType:    eventType,
		ItemID:       item.ID,
		ItemName:     item.Name,
		Stock:        item.Stock,
		ReorderLevel: item.ReorderLevel,
		Delta:        delta,
		Version:      item.Version,
		Timestamp:    time.Now().UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
