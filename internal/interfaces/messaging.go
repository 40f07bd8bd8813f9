package interfaces

import (
	"context"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

// MessagePublisher defines the contract for publishing events
type MessagePublisher interface {
	PublishChange(ctx context.Context, change *models.InventoryChange) error
	PublishCommand(ctx context.Context, event *models.CommandEvent) error
	Close() error
}

// ChangeHandler reacts to committed inventory changes
type ChangeHandler interface {
	HandleChange(ctx context.Context, change *models.InventoryChange) error
}
