package repository

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/interfaces"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

// CachedStore puts a read-through cache in front of another store.
// Mutations invalidate the touched entries; cache failures fall back to the store.
type CachedStore struct {
	store interfaces.InventoryStore
	cache interfaces.ItemCache
}

// NewCachedStore wraps store with cache
func NewCachedStore(store interfaces.InventoryStore, cache interfaces.ItemCache) *CachedStore {
	return &CachedStore{store: store, cache: cache}
}

// List always reads from the store
func (s *CachedStore) List(ctx context.Context) ([]models.InventoryItem, error) {
	return s.store.List(ctx)
}

// Get reads through the cache
func (s *CachedStore) Get(ctx context.Context, id string) (*models.InventoryItem, error) {
	if item := s.cached(ctx, id); item != nil {
		return item, nil
	}

	item, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, item)
	return item, nil
}

// FindByName resolves through the name index, ignoring entries left by a rename
func (s *CachedStore) FindByName(ctx context.Context, name string) (*models.InventoryItem, error) {
	id, err := s.cache.GetItemIDByName(ctx, name)
	if err != nil {
		log.Warn().Err(err).Str("name", name).Msg("Cache name lookup failed, falling back to store")
	}
	if id != "" {
		if item := s.cached(ctx, id); item != nil && models.FoldName(item.Name) == models.FoldName(name) {
			return item, nil
		}
	}

	item, err := s.store.FindByName(ctx, name)
	if err != nil || item == nil {
		return item, err
	}
	s.remember(ctx, item)
	return item, nil
}

// Create writes to the store; the new item is cached on first read
func (s *CachedStore) Create(ctx context.Context, fields models.NewItem) (*models.InventoryItem, error) {
	return s.store.Create(ctx, fields)
}

// Update writes to the store and invalidates the old and new entries
func (s *CachedStore) Update(ctx context.Context, id string, patch models.ItemPatch) (*models.InventoryItem, error) {
	previous := s.cached(ctx, id)

	item, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	if previous != nil && models.FoldName(previous.Name) != models.FoldName(item.Name) {
		s.forget(ctx, id, previous.Name)
	}
	s.forget(ctx, id, item.Name)
	return item, nil
}

// AdjustStock writes to the store and invalidates the entry
func (s *CachedStore) AdjustStock(ctx context.Context, id string, delta int) (*models.InventoryItem, error) {
	item, err := s.store.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	s.forget(ctx, id, item.Name)
	return item, nil
}

// Delete removes from the store and the cache
func (s *CachedStore) Delete(ctx context.Context, id string) error {
	previous := s.cached(ctx, id)

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	name := ""
	if previous != nil {
		name = previous.Name
	}
	s.forget(ctx, id, name)
	return nil
}

func (s *CachedStore) cached(ctx context.Context, id string) *models.InventoryItem {
	item, err := s.cache.GetItem(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("item_id", id).Msg("Cache read failed, falling back to store")
		return nil
	}
	return item
}

func (s *CachedStore) remember(ctx context.Context, item *models.InventoryItem) {
	if err := s.cache.SetItem(ctx, item); err != nil {
		log.Warn().Err(err).Str("item_id", item.ID).Msg("Failed to populate cache")
	}
}

func (s *CachedStore) forget(ctx context.Context, id, name string) {
	if err := s.cache.DeleteItem(ctx, id, name); err != nil {
		log.Warn().Err(err).Str("item_id", id).Msg("Failed to invalidate cache")
	}
}
