package interfaces

import (
	"context"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

// Classifier maps a command to exactly one Action. Implementations return
// models.Unknown for input they cannot interpret; an error is reserved for
// failures of the classifier itself (unreachable service, timeout).
type Classifier interface {
	Classify(ctx context.Context, command string, inventory []models.ItemSnapshot) (models.Action, error)
}

// SalesContext is what a reporter may base its answer on
type SalesContext struct {
	ReportType string
	Command    string
	Inventory  []models.InventoryItem
}

// SalesReporter names the most demanded product
type SalesReporter interface {
	MostDemandedProduct(ctx context.Context, sales SalesContext) (string, error)
}

// StockNotifier is told about items at or below their reorder level
type StockNotifier interface {
	NotifyLowStock(ctx context.Context, item models.InventoryItem) error
}

// CommandInterpreter turns text or an already classified action into one response
type CommandInterpreter interface {
	Interpret(ctx context.Context, command string) models.CommandResponse
	Execute(ctx context.Context, action models.Action) models.CommandResponse
}
