package models

import "github.com/shopspring/decimal"

// ActionKind is the discriminator of a classified command
type ActionKind string

const (
	ActionAddStock            ActionKind = "ADD_STOCK"
	ActionRemoveStock         ActionKind = "REMOVE_STOCK"
	ActionCheckStock          ActionKind = "CHECK_STOCK"
	ActionSetReorderAlert     ActionKind = "SET_REORDER_ALERT"
	ActionGenerateSalesReport ActionKind = "GENERATE_SALES_REPORT"
	ActionAddNewItem          ActionKind = "ADD_NEW_ITEM"
	ActionEditItem            ActionKind = "EDIT_ITEM"
	ActionViewItemDetails     ActionKind = "VIEW_ITEM_DETAILS"
	ActionDeleteItem          ActionKind = "DELETE_ITEM"
	ActionUnknown             ActionKind = "UNKNOWN_COMMAND"
)

// Action is one classified intent. Exactly one concrete type is produced per
// classification; the set of implementations is closed to this package.
type Action interface {
	Kind() ActionKind
	isAction()
}

// AddStock increases the stock of an existing item
type AddStock struct {
	ItemName string
	Quantity int
}

// RemoveStock decreases the stock of an existing item
type RemoveStock struct {
	ItemName string
	Quantity int
}

// CheckStock asks for the current stock of an item
type CheckStock struct {
	ItemName string
}

// SetReorderAlert sets the reorder level of an item
type SetReorderAlert struct {
	ItemName  string
	Threshold int
}

// GenerateSalesReport asks for the most demanded product
type GenerateSalesReport struct {
	ReportType string
}

// AddNewItem asks to open the add form, optionally prefilled
type AddNewItem struct {
	ItemName     *string
	Quantity     *int
	Price        *decimal.Decimal
	ReorderLevel *int
}

// EditItem applies field updates to an item, or opens the edit form when none were spoken
type EditItem struct {
	ItemName string
	Updates  ItemPatch
}

// ViewItemDetails asks to open the details view of an item
type ViewItemDetails struct {
	ItemName string
}

// DeleteItem asks to open the delete confirmation of an item
type DeleteItem struct {
	ItemName string
}

// Unknown is returned when no intent could be determined
type Unknown struct {
	Explanation string
}

func (AddStock) Kind() ActionKind            { return ActionAddStock }
func (RemoveStock) Kind() ActionKind         { return ActionRemoveStock }
func (CheckStock) Kind() ActionKind          { return ActionCheckStock }
func (SetReorderAlert) Kind() ActionKind     { return ActionSetReorderAlert }
func (GenerateSalesReport) Kind() ActionKind { return ActionGenerateSalesReport }
func (AddNewItem) Kind() ActionKind          { return ActionAddNewItem }
func (EditItem) Kind() ActionKind            { return ActionEditItem }
func (ViewItemDetails) Kind() ActionKind     { return ActionViewItemDetails }
func (DeleteItem) Kind() ActionKind          { return ActionDeleteItem }
func (Unknown) Kind() ActionKind             { return ActionUnknown }

func (AddStock) isAction()            {}
func (RemoveStock) isAction()         {}
func (CheckStock) isAction()          {}
func (SetReorderAlert) isAction()     {}
func (GenerateSalesReport) isAction() {}
func (AddNewItem) isAction()          {}
func (EditItem) isAction()            {}
func (ViewItemDetails) isAction()     {}
func (DeleteItem) isAction()          {}
func (Unknown) isAction()             {}

// MissingFields is the Unknown returned when a command lacks required entities
func MissingFields(fields string) Unknown {
	return Unknown{Explanation: "Sorry, I didn't catch the " + fields + "."}
}
