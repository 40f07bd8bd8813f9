package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/interfaces"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

const (
	msgNotUnderstood    = "Sorry, I didn't understand that command."
	msgCouldNotProcess  = "Sorry, I couldn't process that command."
	msgTimedOut         = "Sorry, that took too long. Please try again."
	msgReportFailed     = "Sorry, I couldn't generate the report."
	msgAlertFailed      = "Sorry, I couldn't set the reorder alert."
	msgMissingNameOrQty = "Sorry, I didn't catch the item name or quantity."
	msgMissingName      = "Sorry, I didn't catch the item name."
	msgMissingThreshold = "Sorry, I didn't catch the item name or threshold."
	msgNegativeQuantity = "Sorry, the quantity can't be negative."
	msgOpenAddItem      = "Opening form to add a new item."
)

func (s *CommandInterpreter) addStock(ctx context.Context, a models.AddStock) models.CommandResponse {
	if strings.TrimSpace(a.ItemName) == "" {
		return models.Failed(msgMissingNameOrQty)
	}
	if a.Quantity < 0 {
		return models.Failed(msgNegativeQuantity)
	}

	item, failure := s.resolve(ctx, a.ItemName)
	if failure != nil {
		return *failure
	}

	updated, err := s.store.AdjustStock(ctx, item.ID, a.Quantity)
	if err != nil {
		return s.storeFailure(err, a.ItemName, "Failed to add stock")
	}
	s.notifyIfLow(ctx, *updated)

	return models.Succeeded(
		fmt.Sprintf("Added %d units to %s. New stock is %d.", a.Quantity, updated.Name, updated.Stock),
		models.RefreshInventory{},
	)
}

func (s *CommandInterpreter) removeStock(ctx context.Context, a models.RemoveStock) models.CommandResponse {
	if strings.TrimSpace(a.ItemName) == "" {
		return models.Failed(msgMissingNameOrQty)
	}
	if a.Quantity < 0 {
		return models.Failed(msgNegativeQuantity)
	}

	item, failure := s.resolve(ctx, a.ItemName)
	if failure != nil {
		return *failure
	}

	updated, err := s.store.AdjustStock(ctx, item.ID, -a.Quantity)
	if err != nil {
		return s.storeFailure(err, a.ItemName, "Failed to remove stock")
	}
	if updated.Stock < 0 {
		// Over-removal is allowed; the stock is left negative.
		log.Warn().
			Str("item_id", updated.ID).
			Str("name", updated.Name).
			Int("quantity", a.Quantity).
			Int("stock", updated.Stock).
			Msg("Stock went negative after removal")
	}
	s.notifyIfLow(ctx, *updated)

	return models.Succeeded(
		fmt.Sprintf("Removed %d units from %s. New stock is %d.", a.Quantity, updated.Name, updated.Stock),
		models.RefreshInventory{},
	)
}

func (s *CommandInterpreter) checkStock(ctx context.Context, a models.CheckStock) models.CommandResponse {
	if strings.TrimSpace(a.ItemName) == "" {
		return models.Failed(msgMissingName)
	}

	item, failure := s.resolve(ctx, a.ItemName)
	if failure != nil {
		return *failure
	}

	return models.Succeeded(fmt.Sprintf("You have %d units of %s in stock.", item.Stock, item.Name), nil)
}

func (s *CommandInterpreter) setReorderAlert(ctx context.Context, a models.SetReorderAlert) models.CommandResponse {
	if strings.TrimSpace(a.ItemName) == "" {
		return models.Failed(msgMissingThreshold)
	}
	if a.Threshold < 0 {
		return models.Failed(msgAlertFailed)
	}

	item, failure := s.resolve(ctx, a.ItemName)
	if failure != nil {
		return *failure
	}

	threshold := a.Threshold
	updated, err := s.store.Update(ctx, item.ID, models.ItemPatch{ReorderLevel: &threshold})
	if err != nil {
		if models.IsNotFoundError(err) {
			return notFound(a.ItemName)
		}
		log.Error().Err(err).Str("item_id", item.ID).Msg("Failed to set reorder level")
		return models.Failed(msgAlertFailed)
	}
	s.notifyIfLow(ctx, *updated)

	return models.Succeeded(
		fmt.Sprintf("Reorder alert for %s set at %d units.", updated.Name, updated.ReorderLevel),
		models.RefreshInventory{},
	)
}

func (s *CommandInterpreter) generateSalesReport(ctx context.Context, a models.GenerateSalesReport) models.CommandResponse {
	items, err := s.store.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list inventory for sales report")
		return models.Failed(msgReportFailed)
	}

	sales := interfaces.SalesContext{
		ReportType: a.ReportType,
		Command:    commandFrom(ctx),
		Inventory:  items,
	}
	product, err := callWithTimeout(ctx, s.config.ReportTimeout, func(ctx context.Context) (string, error) {
		return s.reporter.MostDemandedProduct(ctx, sales)
	})
	if err != nil {
		log.Error().Err(err).Str("report_type", a.ReportType).Msg("Sales reporter failed")
		return models.Failed(delegateFailureMessage(err, msgReportFailed))
	}
	product = strings.TrimSpace(product)
	if product == "" {
		return models.Failed(msgReportFailed)
	}

	resp := models.Succeeded(fmt.Sprintf("This month's most demanded product is: %s.", product), nil)
	resp.Report = &models.SalesReport{MostDemandedProduct: product}
	return resp
}

func (s *CommandInterpreter) addNewItem(a models.AddNewItem) models.CommandResponse {
	return models.Succeeded(msgOpenAddItem, models.OpenAddItemDialog{
		ItemName:     a.ItemName,
		Quantity:     a.Quantity,
		Price:        a.Price,
		ReorderLevel: a.ReorderLevel,
	})
}

func (s *CommandInterpreter) editItem(ctx context.Context, a models.EditItem) models.CommandResponse {
	if strings.TrimSpace(a.ItemName) == "" {
		return models.Failed(msgMissingName)
	}

	item, failure := s.resolve(ctx, a.ItemName)
	if failure != nil {
		return *failure
	}

	if a.Updates.IsEmpty() {
		return models.Succeeded(fmt.Sprintf("Opening edit form for %s.", item.Name), models.OpenEditDialog{ItemName: item.Name})
	}
	if msg := invalidPatch(a.Updates); msg != "" {
		return models.Failed(msg)
	}

	updated, err := s.store.Update(ctx, item.ID, a.Updates)
	if err != nil {
		var conflict *models.ConflictError
		if errors.As(err, &conflict) {
			return models.Failed(fmt.Sprintf("Sorry, I couldn't update %s: %s.", item.Name, conflict.Reason))
		}
		return s.storeFailure(err, a.ItemName, "Failed to edit item")
	}
	s.notifyIfLow(ctx, *updated)

	return models.Succeeded(
		fmt.Sprintf("Updated %s: %s.", item.Name, describePatch(a.Updates)),
		models.RefreshInventory{},
	)
}

func (s *CommandInterpreter) viewItemDetails(ctx context.Context, a models.ViewItemDetails) models.CommandResponse {
	if strings.TrimSpace(a.ItemName) == "" {
		return models.Failed(msgMissingName)
	}

	item, failure := s.resolve(ctx, a.ItemName)
	if failure != nil {
		return *failure
	}

	return models.Succeeded(fmt.Sprintf("Showing details for %s.", item.Name), models.OpenViewDialog{ItemName: item.Name})
}

func (s *CommandInterpreter) deleteItem(ctx context.Context, a models.DeleteItem) models.CommandResponse {
	if strings.TrimSpace(a.ItemName) == "" {
		return models.Failed(msgMissingName)
	}

	item, failure := s.resolve(ctx, a.ItemName)
	if failure != nil {
		return *failure
	}

	// Deletion itself happens after the user confirms in the dialog.
	return models.Succeeded(fmt.Sprintf("Please confirm deletion of %s.", item.Name), models.OpenDeleteDialog{ItemName: item.Name})
}

// resolve finds the item named name, ignoring case. A nil item comes with the failure to return.
func (s *CommandInterpreter) resolve(ctx context.Context, name string) (*models.InventoryItem, *models.CommandResponse) {
	name = strings.TrimSpace(name)
	item, err := s.store.FindByName(ctx, name)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("Failed to look up item by name")
		failed := models.Failed(msgCouldNotProcess)
		return nil, &failed
	}
	if item == nil {
		failed := notFound(name)
		return nil, &failed
	}
	return item, nil
}

func (s *CommandInterpreter) storeFailure(err error, name, logMsg string) models.CommandResponse {
	if models.IsNotFoundError(err) {
		return notFound(name)
	}
	log.Error().Err(err).Str("name", name).Msg(logMsg)
	return models.Failed(msgCouldNotProcess)
}

func notFound(name string) models.CommandResponse {
	return models.Failed(fmt.Sprintf("Could not find item %q.", strings.TrimSpace(name)))
}

// invalidPatch returns the failure message for a patch the store must not accept
func invalidPatch(p models.ItemPatch) string {
	switch {
	case p.Name != nil && strings.TrimSpace(*p.Name) == "":
		return "Sorry, the item name can't be empty."
	case p.Stock != nil && *p.Stock < 0:
		return "Sorry, the stock can't be negative."
	case p.ReorderLevel != nil && *p.ReorderLevel < 0:
		return "Sorry, the reorder level can't be negative."
	case p.Price != nil && p.Price.IsNegative():
		return "Sorry, the price can't be negative."
	}
	return ""
}

// describePatch lists the applied fields in a fixed order: "set price to 45.00, set stock to 30"
func describePatch(p models.ItemPatch) string {
	var parts []string
	set := func(field, value string) {
		parts = append(parts, fmt.Sprintf("set %s to %s", field, value))
	}
	if p.Name != nil {
		set("name", *p.Name)
	}
	if p.Stock != nil {
		set("stock", fmt.Sprint(*p.Stock))
	}
	if p.ReorderLevel != nil {
		set("reorder level", fmt.Sprint(*p.ReorderLevel))
	}
	if p.Price != nil {
		set("price", p.Price.StringFixed(2))
	}
	if p.Category != nil {
		set("category", *p.Category)
	}
	if p.Supplier != nil {
		set("supplier", *p.Supplier)
	}
	if p.ImageURL != nil {
		set("image", *p.ImageURL)
	}
	return strings.Join(parts, ", ")
}
