package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

var itemColumnNames = []string{
	"id", "name", "stock", "reorder_level", "price", "category", "supplier", "image_url", "version", "last_updated",
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return sqlx.NewDb(db, "postgres"), mock
}

func colaRow(stock int, version int64) *sqlmock.Rows {
	return sqlmock.NewRows(itemColumnNames).
		AddRow("ITEM-001", "Classic Cola", stock, 5, "40.00", "Beverages", "Fizz Bottling", "", version,
			time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
}

func TestPostgresStore_FindByName(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostgresStore(db)

	mock.ExpectQuery(`SELECT (.+) FROM inventory_item WHERE name_key = $1`).
		WithArgs("classic cola").
		WillReturnRows(colaRow(12, 1))

	item, err := store.FindByName(context.Background(), "Classic COLA")

	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Classic Cola", item.Name)
	assert.Equal(t, 12, item.Stock)
	assert.Equal(t, "40", item.Price.String())
}

func TestPostgresStore_FindByNameNoMatch(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostgresStore(db)

	mock.ExpectQuery(`SELECT (.+) FROM inventory_item WHERE name_key = $1`).
		WithArgs("saffron").
		WillReturnRows(sqlmock.NewRows(itemColumnNames))

	item, err := store.FindByName(context.Background(), "Saffron")

	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestPostgresStore_GetMissing(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostgresStore(db)

	mock.ExpectQuery(`SELECT (.+) FROM inventory_item WHERE id = $1`).
		WithArgs("ITEM-404").
		WillReturnRows(sqlmock.NewRows(itemColumnNames))

	_, err := store.Get(context.Background(), "ITEM-404")

	assert.True(t, models.IsNotFoundError(err))
}

func TestPostgresStore_AdjustStockWritesOutbox(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostgresStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE inventory_item SET stock = stock \+ $2`).
		WithArgs("ITEM-001", -3).
		WillReturnRows(colaRow(9, 2))
	mock.ExpectExec(`INSERT INTO outbox`).
		WithArgs(models.EventTypeStockAdjusted, "ITEM-001", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	item, err := store.AdjustStock(context.Background(), "ITEM-001", -3)

	require.NoError(t, err)
	assert.Equal(t, 9, item.Stock)
	assert.Equal(t, int64(2), item.Version)
}

func TestPostgresStore_AdjustStockMissingRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostgresStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE inventory_item SET stock = stock \+ $2`).
		WithArgs("ITEM-404", 1).
		WillReturnRows(sqlmock.NewRows(itemColumnNames))
	mock.ExpectRollback()

	_, err := store.AdjustStock(context.Background(), "ITEM-404", 1)

	assert.True(t, models.IsNotFoundError(err))
}

func TestPostgresStore_CreateDuplicateName(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostgresStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO inventory_item`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	_, err := store.Create(context.Background(), models.NewItem{Name: "Classic Cola"})

	assert.True(t, models.IsConflictError(err))
}

func TestPostgresStore_UpdateVersionMismatch(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostgresStore(db)
	stock := 30

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM inventory_item WHERE id = $1 FOR UPDATE`).
		WithArgs("ITEM-001").
		WillReturnRows(colaRow(12, 3))
	mock.ExpectQuery(`UPDATE inventory_item SET name = $2`).
		WillReturnRows(sqlmock.NewRows(itemColumnNames))
	mock.ExpectRollback()

	_, err := store.Update(context.Background(), "ITEM-001", models.ItemPatch{Stock: &stock})

	assert.True(t, models.IsConflictError(err))
}

func TestPostgresStore_UpdateAppliesPatch(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostgresStore(db)
	stock := 30

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM inventory_item WHERE id = $1 FOR UPDATE`).
		WithArgs("ITEM-001").
		WillReturnRows(colaRow(12, 3))
	mock.ExpectQuery(`UPDATE inventory_item SET name = $2`).
		WithArgs("ITEM-001", "Classic Cola", "classic cola", 30, 5, sqlmock.AnyArg(),
			"Beverages", "Fizz Bottling", "", int64(3)).
		WillReturnRows(colaRow(30, 4))
	mock.ExpectExec(`INSERT INTO outbox`).
		WithArgs(models.EventTypeItemUpdated, "ITEM-001", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	item, err := store.Update(context.Background(), "ITEM-001", models.ItemPatch{Stock: &stock})

	require.NoError(t, err)
	assert.Equal(t, 30, item.Stock)
}

func TestPostgresStore_DeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostgresStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`DELETE FROM inventory_item WHERE id = $1`).
		WithArgs("ITEM-404").
		WillReturnRows(sqlmock.NewRows(itemColumnNames))
	mock.ExpectRollback()

	err := store.Delete(context.Background(), "ITEM-404")

	assert.True(t, models.IsNotFoundError(err))
}

func TestOutboxRepository_LockIsReleasedOnSameConnection(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOutboxRepository(db)

	mock.ExpectQuery(`SELECT pg_try_advisory_lock\($1\)`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))
	mock.ExpectQuery(`SELECT pg_advisory_unlock\($1\)`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"pg_advisory_unlock"}).AddRow(true))

	lock, err := repo.TryAcquireLock(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, lock)

	assert.NoError(t, lock.Release(context.Background()))
}

func TestOutboxRepository_LockHeldElsewhere(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOutboxRepository(db)

	mock.ExpectQuery(`SELECT pg_try_advisory_lock\($1\)`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(false))

	lock, err := repo.TryAcquireLock(context.Background(), 42)

	require.NoError(t, err)
	assert.Nil(t, lock)
}

func TestOutboxRepository_FetchAndMark(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOutboxRepository(db)
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM outbox WHERE published = false ORDER BY id ASC LIMIT $1`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_type", "key", "payload", "created_at", "published", "publish_attempts", "last_error"}).
			AddRow(int64(7), models.EventTypeStockAdjusted, "ITEM-001", `{"item_id":"ITEM-001","stock":9,"delta":-3}`, created, false, 0, nil))
	mock.ExpectExec(`UPDATE outbox SET published = true`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	events, err := repo.FetchBatch(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	change, err := events[0].Change()
	require.NoError(t, err)
	assert.Equal(t, -3, change.Delta)
	assert.Equal(t, 9, change.Stock)

	assert.NoError(t, repo.MarkPublished(context.Background(), []int64{events[0].ID}))
}

func TestOutboxRepository_InsertRequiresTransaction(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewOutboxRepository(db)

	err := repo.InsertChange(context.Background(), nil, &models.InventoryChange{ItemID: "ITEM-001"})

	assert.Error(t, err)
}
