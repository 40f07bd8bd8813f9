package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/redis"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetItem(ctx context.Context, id string) (*models.InventoryItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*models.InventoryItem)
	return item, args.Error(1)
}

func (m *mockCache) GetItemIDByName(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *mockCache) SetItem(ctx context.Context, item *models.InventoryItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockCache) DeleteItem(ctx context.Context, id, name string) error {
	return m.Called(ctx, id, name).Error(0)
}

func (m *mockCache) Close() error {
	return m.Called().Error(0)
}

func newRedisBackedStore(t *testing.T) (*CachedStore, *MemoryStore, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	cache := redis.NewCacheClientWith(goredis.NewClient(&goredis.Options{Addr: server.Addr()}), time.Minute, "vsi:")
	t.Cleanup(func() { cache.Close() })

	inner := NewMemoryStore()
	return NewCachedStore(inner, cache), inner, server
}

func TestCachedStore_ReadPopulatesCache(t *testing.T) {
	store, inner, server := newRedisBackedStore(t)
	ctx := context.Background()
	created, err := inner.Create(ctx, models.NewItem{Name: "Classic Cola", Stock: 12})
	require.NoError(t, err)

	item, err := store.FindByName(ctx, "classic cola")

	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, created.ID, item.ID)
	assert.True(t, server.Exists("vsi:item:"+created.ID))
	assert.True(t, server.Exists("vsi:name:classic cola"))
}

func TestCachedStore_AdjustStockInvalidates(t *testing.T) {
	store, inner, _ := newRedisBackedStore(t)
	ctx := context.Background()
	created, err := inner.Create(ctx, models.NewItem{Name: "Classic Cola", Stock: 12})
	require.NoError(t, err)
	_, err = store.Get(ctx, created.ID)
	require.NoError(t, err)

	_, err = store.AdjustStock(ctx, created.ID, -3)
	require.NoError(t, err)

	item, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, item.Stock)
}

func TestCachedStore_RenameDropsOldName(t *testing.T) {
	store, inner, _ := newRedisBackedStore(t)
	ctx := context.Background()
	created, err := inner.Create(ctx, models.NewItem{Name: "Classic Cola", Stock: 12})
	require.NoError(t, err)
	_, err = store.FindByName(ctx, "Classic Cola")
	require.NoError(t, err)

	name := "Cherry Cola"
	_, err = store.Update(ctx, created.ID, models.ItemPatch{Name: &name})
	require.NoError(t, err)

	old, err := store.FindByName(ctx, "Classic Cola")
	require.NoError(t, err)
	assert.Nil(t, old)

	renamed, err := store.FindByName(ctx, "cherry cola")
	require.NoError(t, err)
	require.NotNil(t, renamed)
	assert.Equal(t, created.ID, renamed.ID)
}

func TestCachedStore_FallsBackWhenCacheFails(t *testing.T) {
	// Arrange
	inner := NewMemoryStore()
	ctx := context.Background()
	created, err := inner.Create(ctx, models.NewItem{Name: "Whole Milk", Stock: 8})
	require.NoError(t, err)

	cache := &mockCache{}
	cache.On("GetItemIDByName", mock.Anything, "Whole Milk").Return("", errors.New("connection refused"))
	cache.On("SetItem", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	store := NewCachedStore(inner, cache)

	// Act
	item, err := store.FindByName(ctx, "Whole Milk")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, created.ID, item.ID)
	cache.AssertExpectations(t)
}

func TestCachedStore_ErrorsFromStorePropagate(t *testing.T) {
	cache := &mockCache{}
	cache.On("GetItem", mock.Anything, "ITEM-404").Return(nil, nil)
	store := NewCachedStore(NewMemoryStore(), cache)

	_, err := store.Get(context.Background(), "ITEM-404")

	assert.True(t, models.IsNotFoundError(err))
	cache.AssertNotCalled(t, "SetItem", mock.Anything, mock.Anything)
}
