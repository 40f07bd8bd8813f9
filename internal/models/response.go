package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// DirectiveName is the wire name of a UI directive
type DirectiveName string

const (
	DirectiveRefreshDashboard DirectiveName = "REFRESH_DASHBOARD"
	DirectiveRefreshInventory DirectiveName = "REFRESH_INVENTORY"
	DirectiveOpenAddItem      DirectiveName = "OPEN_ADD_ITEM_DIALOG"
	DirectiveOpenEdit         DirectiveName = "OPEN_EDIT_DIALOG"
	DirectiveOpenView         DirectiveName = "OPEN_VIEW_DIALOG"
	DirectiveOpenDelete       DirectiveName = "OPEN_DELETE_DIALOG"
)

// Directive tells the UI what to do after a command. Each implementation
// carries only the payload its directive needs.
type Directive interface {
	Name() DirectiveName
	// payload returns the dialog prefill data, nil for refresh directives
	payload() any
}

// RefreshInventory asks the UI to re-fetch the inventory list
type RefreshInventory struct{}

// RefreshDashboard asks the UI to re-fetch the dashboard aggregates
type RefreshDashboard struct{}

// OpenAddItemDialog opens the add form prefilled with whatever was extracted
type OpenAddItemDialog struct {
	ItemName     *string          `json:"itemName,omitempty"`
	Quantity     *int             `json:"quantity,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	ReorderLevel *int             `json:"reorderLevel,omitempty"`
}

// OpenEditDialog opens the edit form of an item
type OpenEditDialog struct {
	ItemName string `json:"itemName"`
}

// OpenViewDialog opens the details view of an item
type OpenViewDialog struct {
	ItemName string `json:"itemName"`
}

// OpenDeleteDialog opens the delete confirmation of an item
type OpenDeleteDialog struct {
	ItemName string `json:"itemName"`
}

func (RefreshInventory) Name() DirectiveName  { return DirectiveRefreshInventory }
func (RefreshDashboard) Name() DirectiveName  { return DirectiveRefreshDashboard }
func (OpenAddItemDialog) Name() DirectiveName { return DirectiveOpenAddItem }
func (OpenEditDialog) Name() DirectiveName    { return DirectiveOpenEdit }
func (OpenViewDialog) Name() DirectiveName    { return DirectiveOpenView }
func (OpenDeleteDialog) Name() DirectiveName  { return DirectiveOpenDelete }

func (RefreshInventory) payload() any    { return nil }
func (RefreshDashboard) payload() any    { return nil }
func (d OpenAddItemDialog) payload() any { return d }
func (d OpenEditDialog) payload() any    { return d }
func (d OpenViewDialog) payload() any    { return d }
func (d OpenDeleteDialog) payload() any  { return d }

// SalesReport is the result of a report request
type SalesReport struct {
	MostDemandedProduct string `json:"mostDemandedProduct"`
}

// CommandResponse is the single uniform result of interpreting one command
type CommandResponse struct {
	Success   bool
	Message   string
	Directive Directive
	Report    *SalesReport
}

// Failed builds an unsuccessful response carrying only a message
func Failed(message string) CommandResponse {
	return CommandResponse{Success: false, Message: message}
}

// Succeeded builds a successful response with an optional directive
func Succeeded(message string, directive Directive) CommandResponse {
	return CommandResponse{Success: true, Message: message, Directive: directive}
}

// DirectiveName returns the directive wire name, empty when there is none
func (r CommandResponse) DirectiveName() DirectiveName {
	if r.Directive == nil {
		return ""
	}
	return r.Directive.Name()
}

type commandResponseJSON struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Action  DirectiveName `json:"action,omitempty"`
	Data    any           `json:"data,omitempty"`
}

// MarshalJSON renders {success, message, action?, data?}. Refresh directives
// never carry data; a report is only attached to a response without a directive.
func (r CommandResponse) MarshalJSON() ([]byte, error) {
	out := commandResponseJSON{Success: r.Success, Message: r.Message}
	if r.Directive != nil {
		out.Action = r.Directive.Name()
		if p := r.Directive.payload(); p != nil {
			out.Data = p
		}
	}
	if r.Report != nil && r.Directive == nil {
		out.Data = r.Report
	}
	return json.Marshal(out)
}
