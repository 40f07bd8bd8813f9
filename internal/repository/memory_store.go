package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

// MemoryStore keeps the inventory in process memory. All mutations are
// serialized by one lock, so concurrent stock adjustments never lose updates.
type MemoryStore struct {
	mu    sync.RWMutex
	items []*models.InventoryItem // newest first
	seq   int
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// NewMemoryStoreWithClock creates an empty store that reads time from now
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{now: now}
}

// List returns copies of all items, newest first
func (s *MemoryStore) List(ctx context.Context) ([]models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.InventoryItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, *item)
	}
	return out, nil
}

// Get returns a copy of the item with the given id
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item := s.byID(id)
	if item == nil {
		return nil, models.NewNotFoundError("item", id)
	}
	cp := *item
	return &cp, nil
}

// FindByName returns a copy of the item whose name equals name ignoring case
func (s *MemoryStore) FindByName(ctx context.Context, name string) (*models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item := s.byName(name)
	if item == nil {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

// Create adds a new item with the next ITEM-nnn identifier
func (s *MemoryStore) Create(ctx context.Context, fields models.NewItem) (*models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.byName(fields.Name) != nil {
		return nil, models.NewConflictError("item", fmt.Sprintf("an item named %q already exists", fields.Name))
	}

	s.seq++
	item := &models.InventoryItem{
		ID:           fmt.Sprintf("ITEM-%03d", s.seq),
		Name:         fields.Name,
		Stock:        fields.Stock,
		ReorderLevel: fields.ReorderLevel,
		Price:        fields.Price,
		Category:     fields.Category,
		Supplier:     fields.Supplier,
		ImageURL:     fields.ImageURL,
		Version:      1,
		LastUpdated:  s.now(),
	}
	s.items = append([]*models.InventoryItem{item}, s.items...)

	log.Debug().Str("item_id", item.ID).Str("name", item.Name).Msg("Created item")
	cp := *item
	return &cp, nil
}

// Update applies a partial update to the item with the given id
func (s *MemoryStore) Update(ctx context.Context, id string, patch models.ItemPatch) (*models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.byID(id)
	if item == nil {
		return nil, models.NewNotFoundError("item", id)
	}
	if patch.Name != nil {
		if other := s.byName(*patch.Name); other != nil && other.ID != id {
			return nil, models.NewConflictError("item", fmt.Sprintf("an item named %q already exists", *patch.Name))
		}
	}

	patch.Apply(item)
	s.touch(item)

	cp := *item
	return &cp, nil
}

// AdjustStock adds delta to the stock of the item with the given id
func (s *MemoryStore) AdjustStock(ctx context.Context, id string, delta int) (*models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.byID(id)
	if item == nil {
		return nil, models.NewNotFoundError("item", id)
	}
	item.Stock += delta
	s.touch(item)

	cp := *item
	return &cp, nil
}

// Delete removes the item with the given id
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			log.Debug().Str("item_id", id).Msg("Deleted item")
			return nil
		}
	}
	return models.NewNotFoundError("item", id)
}

// touch bumps the version and sets LastUpdated strictly after its previous value
func (s *MemoryStore) touch(item *models.InventoryItem) {
	now := s.now()
	if !now.After(item.LastUpdated) {
		now = item.LastUpdated.Add(time.Nanosecond)
	}
	item.LastUpdated = now
	item.Version++
}

func (s *MemoryStore) byID(id string) *models.InventoryItem {
	for _, item := range s.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

func (s *MemoryStore) byName(name string) *models.InventoryItem {
	key := models.FoldName(name)
	if key == "" {
		return nil
	}
	for _, item := range s.items {
		if models.FoldName(item.Name) == key {
			return item
		}
	}
	return nil
}
