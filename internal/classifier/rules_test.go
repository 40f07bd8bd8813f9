package classifier

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

func shelf() []models.ItemSnapshot {
	return []models.ItemSnapshot{
		{Name: "Classic Cola", Stock: 12},
		{Name: "Whole Milk", Stock: 8},
		{Name: "Basmati Rice", Stock: 40},
	}
}

func classify(t *testing.T, command string, inventory []models.ItemSnapshot) models.Action {
	t.Helper()
	action, err := NewRuleClassifier().Classify(context.Background(), command, inventory)
	require.NoError(t, err)
	require.NotNil(t, action)
	return action
}

func TestRuleClassifier_StockIntents(t *testing.T) {
	tests := []struct {
		command string
		want    models.Action
	}{
		{"remove 3 cola", models.RemoveStock{ItemName: "Classic Cola", Quantity: 3}},
		{"add 5 units of Whole Milk", models.AddStock{ItemName: "Whole Milk", Quantity: 5}},
		{"Add twenty five units of milk.", models.AddStock{ItemName: "Whole Milk", Quantity: 25}},
		{"increase basmati rice by 10", models.AddStock{ItemName: "Basmati Rice", Quantity: 10}},
		{"sell 2 bottles of classic cola", models.RemoveStock{ItemName: "Classic Cola", Quantity: 2}},
		{"remove all of whole milk", models.RemoveStock{ItemName: "Whole Milk", Quantity: 8}},
		{"check stock of nonexistent item", models.CheckStock{ItemName: "nonexistent item"}},
		{"how many units of Basmati Rice do we have", models.CheckStock{ItemName: "Basmati Rice"}},
		{"CHECK STOCK OF WHOLE MILK", models.CheckStock{ItemName: "Whole Milk"}},
		{"check stock of wole milk", models.CheckStock{ItemName: "Whole Milk"}},
		{"set reorder alert for milk at 5", models.SetReorderAlert{ItemName: "Whole Milk", Threshold: 5}},
		{"alert me when cola drops below 4", models.SetReorderAlert{ItemName: "Classic Cola", Threshold: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(t, tt.command, shelf()))
		})
	}
}

func TestRuleClassifier_DialogIntents(t *testing.T) {
	tests := []struct {
		command string
		want    models.Action
	}{
		{"show details of milk", models.ViewItemDetails{ItemName: "Whole Milk"}},
		{"view classic cola details", models.ViewItemDetails{ItemName: "Classic Cola"}},
		{"delete item basmati rice", models.DeleteItem{ItemName: "Basmati Rice"}},
		{"remove item whole milk", models.DeleteItem{ItemName: "Whole Milk"}},
		{"edit Classic Cola", models.EditItem{ItemName: "Classic Cola"}},
		{"generate sales report", models.GenerateSalesReport{ReportType: "sales"}},
		{"what is the most demanded product", models.GenerateSalesReport{ReportType: "most demanded"}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(t, tt.command, shelf()))
		})
	}
}

func TestRuleClassifier_AddNewItemWithAttributes(t *testing.T) {
	action := classify(t, "add a new item called Yogurt with price 50", shelf())

	add, ok := action.(models.AddNewItem)
	require.True(t, ok, "expected AddNewItem, got %T", action)
	require.NotNil(t, add.ItemName)
	assert.Equal(t, "Yogurt", *add.ItemName)
	require.NotNil(t, add.Price)
	assert.True(t, decimal.NewFromInt(50).Equal(*add.Price))
	assert.Nil(t, add.Quantity)
	assert.Nil(t, add.ReorderLevel)
}

func TestRuleClassifier_AddNewItemWithoutDetails(t *testing.T) {
	assert.Equal(t, models.AddNewItem{}, classify(t, "add a new item", shelf()))
}

func TestRuleClassifier_EditWithUpdates(t *testing.T) {
	t.Run("field before item", func(t *testing.T) {
		action := classify(t, "change the price of cola to 45.50", shelf())

		edit, ok := action.(models.EditItem)
		require.True(t, ok, "expected EditItem, got %T", action)
		assert.Equal(t, "Classic Cola", edit.ItemName)
		require.NotNil(t, edit.Updates.Price)
		assert.True(t, decimal.RequireFromString("45.50").Equal(*edit.Updates.Price))
		assert.Nil(t, edit.Updates.Stock)
	})

	t.Run("several fields after item", func(t *testing.T) {
		action := classify(t, "update Whole Milk stock to 30 and price to 60", shelf())

		edit, ok := action.(models.EditItem)
		require.True(t, ok, "expected EditItem, got %T", action)
		assert.Equal(t, "Whole Milk", edit.ItemName)
		require.NotNil(t, edit.Updates.Stock)
		assert.Equal(t, 30, *edit.Updates.Stock)
		require.NotNil(t, edit.Updates.Price)
		assert.True(t, decimal.NewFromInt(60).Equal(*edit.Updates.Price))
	})
}

func TestRuleClassifier_EditValueContainingAnd(t *testing.T) {
	action := classify(t, "set supplier of Classic Cola to Smith and Sons", shelf())

	edit, ok := action.(models.EditItem)
	require.True(t, ok, "expected EditItem, got %T", action)
	assert.Equal(t, "Classic Cola", edit.ItemName)
	require.NotNil(t, edit.Updates.Supplier)
	assert.Equal(t, "Smith and Sons", *edit.Updates.Supplier)
	assert.Nil(t, edit.Updates.Stock)
}

func TestRuleClassifier_EditSpelledValue(t *testing.T) {
	action := classify(t, "update Whole Milk stock to thirty and supplier to Happy Cow", shelf())

	edit, ok := action.(models.EditItem)
	require.True(t, ok, "expected EditItem, got %T", action)
	require.NotNil(t, edit.Updates.Stock)
	assert.Equal(t, 30, *edit.Updates.Stock)
	require.NotNil(t, edit.Updates.Supplier)
	assert.Equal(t, "Happy Cow", *edit.Updates.Supplier)
}

func TestRuleClassifier_NumberWordsInItemName(t *testing.T) {
	inventory := append(shelf(), models.ItemSnapshot{Name: "Seven Up", Stock: 6})
	tests := []struct {
		command string
		want    models.Action
	}{
		{"how many Seven Up do we have", models.CheckStock{ItemName: "Seven Up"}},
		{"remove 2 Seven Up", models.RemoveStock{ItemName: "Seven Up", Quantity: 2}},
		{"add five seven up", models.AddStock{ItemName: "Seven Up", Quantity: 5}},
		{"remove all of seven up", models.RemoveStock{ItemName: "Seven Up", Quantity: 6}},
		{"set reorder alert for Seven Up at three", models.SetReorderAlert{ItemName: "Seven Up", Threshold: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(t, tt.command, inventory))
		})
	}
}

func TestRuleClassifier_NearMissWordDoesNotPickOtherItem(t *testing.T) {
	assert.Equal(t, models.AddStock{ItemName: "silk", Quantity: 5}, classify(t, "add 5 silk", shelf()))
	assert.Equal(t, models.CheckStock{ItemName: "cold"}, classify(t, "check stock of cold", shelf()))
}

func TestRuleClassifier_Unknown(t *testing.T) {
	tests := []struct {
		name        string
		command     string
		explanation string
	}{
		{"unrelated command", "sing me a song", "Sorry, I didn't understand that command."},
		{"empty command", "   ", "Sorry, I didn't understand that command."},
		{"missing quantity", "add milk", "Sorry, I didn't catch the item name or quantity."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, models.Unknown{Explanation: tt.explanation}, classify(t, tt.command, shelf()))
		})
	}
}

func TestRuleClassifier_AmbiguousNameListsCandidates(t *testing.T) {
	inventory := append(shelf(), models.ItemSnapshot{Name: "Diet Cola", Stock: 4})

	action := classify(t, "check cola", inventory)

	unknown, ok := action.(models.Unknown)
	require.True(t, ok, "expected Unknown, got %T", action)
	assert.Contains(t, unknown.Explanation, "Classic Cola, Diet Cola")
}

func TestRuleClassifier_UnresolvedNamePassesThrough(t *testing.T) {
	assert.Equal(t, models.AddStock{ItemName: "dragon fruit", Quantity: 2}, classify(t, "add 2 dragon fruit", shelf()))
	assert.Equal(t, models.AddStock{ItemName: "dragon fruit", Quantity: 2}, classify(t, "add 2 dragon fruit", nil))
}

func TestRuleClassifier_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	action, err := NewRuleClassifier().Classify(ctx, "remove 3 cola", shelf())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, action)
}
