package interfaces

import (
	"context"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

// InventoryStore defines the contract for inventory persistence.
// FindByName matches case-insensitively on the whole name and returns
// (nil, nil) when no item matches.
type InventoryStore interface {
	List(ctx context.Context) ([]models.InventoryItem, error)
	Get(ctx context.Context, id string) (*models.InventoryItem, error)
	FindByName(ctx context.Context, name string) (*models.InventoryItem, error)
	Create(ctx context.Context, item models.NewItem) (*models.InventoryItem, error)
	Update(ctx context.Context, id string, patch models.ItemPatch) (*models.InventoryItem, error)
	// AdjustStock adds delta to the stock as one atomic step per item
	AdjustStock(ctx context.Context, id string, delta int) (*models.InventoryItem, error)
	Delete(ctx context.Context, id string) error
}

// ItemCache defines the contract for caching items by id and by folded name
type ItemCache interface {
	GetItem(ctx context.Context, id string) (*models.InventoryItem, error)
	GetItemIDByName(ctx context.Context, name string) (string, error)
	SetItem(ctx context.Context, item *models.InventoryItem) error
	DeleteItem(ctx context.Context, id, name string) error
	Close() error
}
