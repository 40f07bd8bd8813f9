package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is a single stocked product
type InventoryItem struct {
	ID           string          `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Stock        int             `db:"stock" json:"stock"`
	ReorderLevel int             `db:"reorder_level" json:"reorderLevel"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Category     string          `db:"category" json:"category"`
	Supplier     string          `db:"supplier" json:"supplier"`
	ImageURL     string          `db:"image_url" json:"imageUrl"`
	Version      int64           `db:"version" json:"-"`
	LastUpdated  time.Time       `db:"last_updated" json:"lastUpdated"`
}

// IsLowStock reports whether the item is at or below its reorder level
func (i *InventoryItem) IsLowStock() bool {
	return i.Stock <= i.ReorderLevel
}

// Snapshot returns the name/stock pair handed to classifiers
func (i *InventoryItem) Snapshot() ItemSnapshot {
	return ItemSnapshot{Name: i.Name, Stock: i.Stock}
}

// ItemSnapshot is the reduced view of an item a classifier may see
type ItemSnapshot struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// Snapshots reduces a list of items to classifier snapshots
func Snapshots(items []InventoryItem) []ItemSnapshot {
	out := make([]ItemSnapshot, 0, len(items))
	for i := range items {
		out = append(out, items[i].Snapshot())
	}
	return out
}

// NewItem carries the fields of an item to create
type NewItem struct {
	Name         string          `json:"name" validate:"required,max=120"`
	Stock        int             `json:"stock" validate:"min=0"`
	ReorderLevel int             `json:"reorderLevel" validate:"min=0"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category" validate:"max=80"`
	Supplier     string          `json:"supplier" validate:"max=120"`
	ImageURL     string          `json:"imageUrl" validate:"omitempty,url"`
}

// ItemPatch is a partial update; nil fields are left untouched
type ItemPatch struct {
	Name         *string          `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Stock        *int             `json:"stock,omitempty" validate:"omitempty,min=0"`
	ReorderLevel *int             `json:"reorderLevel,omitempty" validate:"omitempty,min=0"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	Category     *string          `json:"category,omitempty"`
	Supplier     *string          `json:"supplier,omitempty"`
	ImageURL     *string          `json:"imageUrl,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p ItemPatch) IsEmpty() bool {
	return p.Name == nil && p.Stock == nil && p.ReorderLevel == nil && p.Price == nil &&
		p.Category == nil && p.Supplier == nil && p.ImageURL == nil
}

// Apply copies every set field of the patch onto item
func (p ItemPatch) Apply(item *InventoryItem) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Stock != nil {
		item.Stock = *p.Stock
	}
	if p.ReorderLevel != nil {
		item.ReorderLevel = *p.ReorderLevel
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Supplier != nil {
		item.Supplier = *p.Supplier
	}
	if p.ImageURL != nil {
		item.ImageURL = *p.ImageURL
	}
}

// ValidatePrice rejects negative prices, which struct tags cannot express for decimals
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return NewValidationError("price", "price must not be negative", price.String())
	}
	return nil
}

// FoldName is the canonical key used for case-insensitive name matching
func FoldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func init() {
	// Prices travel as JSON numbers, matching the dashboard's price field.
	decimal.MarshalJSONWithoutQuotes = true
}
