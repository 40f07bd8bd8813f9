package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// wireAction is the flat JSON shape exchanged with inference services:
// {"action":"ADD_STOCK","itemName":"Classic Cola","quantity":3}
type wireAction struct {
	Action       ActionKind       `json:"action"`
	ItemName     *string          `json:"itemName,omitempty"`
	Quantity     *int             `json:"quantity,omitempty"`
	Threshold    *int             `json:"threshold,omitempty"`
	ReportType   *string          `json:"reportType,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	ReorderLevel *int             `json:"reorderLevel,omitempty"`
	Updates      *ItemPatch       `json:"updates,omitempty"`
	Message      *string          `json:"message,omitempty"`
}

// DecodeAction turns wire JSON into exactly one Action. It never fails: input
// that cannot be decoded, or that lacks a required field for its case,
// becomes Unknown with an explanation.
func DecodeAction(data []byte) Action {
	var w wireAction
	if err := json.Unmarshal(data, &w); err != nil {
		return Unknown{Explanation: fmt.Sprintf("Sorry, I couldn't read the interpreted command: %v", err)}
	}
	return w.toAction()
}

func (w wireAction) toAction() Action {
	name := ""
	if w.ItemName != nil {
		name = strings.TrimSpace(*w.ItemName)
	}

	switch w.Action {
	case ActionAddStock, ActionRemoveStock:
		if name == "" || w.Quantity == nil {
			return MissingFields("item name or quantity")
		}
		if w.Action == ActionAddStock {
			return AddStock{ItemName: name, Quantity: *w.Quantity}
		}
		return RemoveStock{ItemName: name, Quantity: *w.Quantity}
	case ActionCheckStock:
		if name == "" {
			return MissingFields("item name")
		}
		return CheckStock{ItemName: name}
	case ActionSetReorderAlert:
		if name == "" || w.Threshold == nil {
			return MissingFields("item name or threshold")
		}
		return SetReorderAlert{ItemName: name, Threshold: *w.Threshold}
	case ActionGenerateSalesReport:
		report := GenerateSalesReport{}
		if w.ReportType != nil {
			report.ReportType = *w.ReportType
		}
		return report
	case ActionAddNewItem:
		add := AddNewItem{Quantity: w.Quantity, Price: w.Price, ReorderLevel: w.ReorderLevel}
		if name != "" {
			add.ItemName = &name
		}
		return add
	case ActionEditItem:
		if name == "" {
			return MissingFields("item name")
		}
		edit := EditItem{ItemName: name}
		if w.Updates != nil {
			edit.Updates = *w.Updates
		}
		return edit
	case ActionViewItemDetails:
		if name == "" {
			return MissingFields("item name")
		}
		return ViewItemDetails{ItemName: name}
	case ActionDeleteItem:
		if name == "" {
			return MissingFields("item name")
		}
		return DeleteItem{ItemName: name}
	case ActionUnknown:
		if w.Message != nil {
			return Unknown{Explanation: *w.Message}
		}
		return Unknown{}
	default:
		return Unknown{Explanation: fmt.Sprintf("Sorry, %q is not an action I can perform.", w.Action)}
	}
}

// EncodeAction renders an Action in the wire shape accepted by DecodeAction
func EncodeAction(action Action) ([]byte, error) {
	w := wireAction{Action: action.Kind()}
	switch a := action.(type) {
	case AddStock:
		w.ItemName, w.Quantity = &a.ItemName, &a.Quantity
	case RemoveStock:
		w.ItemName, w.Quantity = &a.ItemName, &a.Quantity
	case CheckStock:
		w.ItemName = &a.ItemName
	case SetReorderAlert:
		w.ItemName, w.Threshold = &a.ItemName, &a.Threshold
	case GenerateSalesReport:
		if a.ReportType != "" {
			w.ReportType = &a.ReportType
		}
	case AddNewItem:
		w.ItemName, w.Quantity, w.Price, w.ReorderLevel = a.ItemName, a.Quantity, a.Price, a.ReorderLevel
	case EditItem:
		w.ItemName = &a.ItemName
		if !a.Updates.IsEmpty() {
			w.Updates = &a.Updates
		}
	case ViewItemDetails:
		w.ItemName = &a.ItemName
	case DeleteItem:
		w.ItemName = &a.ItemName
	case Unknown:
		w.Message = &a.Explanation
	default:
		return nil, fmt.Errorf("unsupported action type %T", action)
	}
	return json.Marshal(w)
}
