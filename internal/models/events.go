package models

import "time"

// Change event types written to the outbox and the changes topic
const (
	EventTypeItemCreated   = "item_created"
	EventTypeItemUpdated   = "item_updated"
	EventTypeStockAdjusted = "stock_adjusted"
	EventTypeItemDeleted   = "item_deleted"
)

// InventoryChange describes one committed store mutation
type InventoryChange struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	ItemID       string    `json:"item_id"`
	ItemName     string    `json:"item_name"`
	Stock        int       `json:"stock"`
	ReorderLevel int       `json:"reorder_level"`
	Delta        int       `json:"delta,omitempty"`
	Version      int64     `json:"version"`
	Timestamp    time.Time `json:"timestamp"`
}

// CommandEvent audits one interpreted command
type CommandEvent struct {
	EventID   string        `json:"event_id"`
	RequestID string        `json:"request_id,omitempty"`
	Command   string        `json:"command"`
	Action    ActionKind    `json:"action"`
	Success   bool          `json:"success"`
	Directive DirectiveName `json:"directive,omitempty"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"duration_ns"`
	Timestamp time.Time     `json:"timestamp"`
}
