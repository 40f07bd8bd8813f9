package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/interfaces"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

// DemoCatalogue is the sample inventory the dashboard ships with
func DemoCatalogue() []models.NewItem {
	return []models.NewItem{
		{Name: "Basmati Rice", Stock: 40, ReorderLevel: 10, Price: decimal.RequireFromString("120.00"), Category: "Grains", Supplier: "Golden Fields"},
		{Name: "Whole Milk", Stock: 8, ReorderLevel: 10, Price: decimal.RequireFromString("58.00"), Category: "Dairy", Supplier: "Happy Cow Dairy"},
		{Name: "Brown Bread", Stock: 15, ReorderLevel: 6, Price: decimal.RequireFromString("45.00"), Category: "Bakery", Supplier: "Morning Bakes"},
		{Name: "Green Tea", Stock: 25, ReorderLevel: 5, Price: decimal.RequireFromString("210.50"), Category: "Beverages", Supplier: "Hill Leaf Co"},
		{Name: "Orange Juice", Stock: 4, ReorderLevel: 8, Price: decimal.RequireFromString("99.00"), Category: "Beverages", Supplier: "Citrus Farms"},
		{Name: "Cheddar Cheese", Stock: 18, ReorderLevel: 5, Price: decimal.RequireFromString("310.00"), Category: "Dairy", Supplier: "Happy Cow Dairy"},
		{Name: "Classic Cola", Stock: 12, ReorderLevel: 5, Price: decimal.RequireFromString("40.00"), Category: "Beverages", Supplier: "Fizz Bottling"},
	}
}

// Seed creates every catalogue item that does not exist yet
func Seed(ctx context.Context, store interfaces.InventoryStore, items []models.NewItem) error {
	for _, fields := range items {
		existing, err := store.FindByName(ctx, fields.Name)
		if err != nil {
			return fmt.Errorf("failed to look up seed item %q: %w", fields.Name, err)
		}
		if existing != nil {
			continue
		}
		if _, err := store.Create(ctx, fields); err != nil {
			return fmt.Errorf("failed to create seed item %q: %w", fields.Name, err)
		}
	}
	log.Info().Int("count", len(items)).Msg("Seeded demo inventory")
	return nil
}
