package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/interfaces"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

func TestHeuristicReporter_PicksHighestRestockPressure(t *testing.T) {
	reporter := NewHeuristicReporter()
	sales := interfaces.SalesContext{Inventory: []models.InventoryItem{
		{Name: "Basmati Rice", Stock: 40, ReorderLevel: 10},
		{Name: "Whole Milk", Stock: 6, ReorderLevel: 10},
		{Name: "Brown Bread", Stock: 3, ReorderLevel: 5},
		{Name: "Apple Jam", Stock: 3, ReorderLevel: 5},
	}}

	product, err := reporter.MostDemandedProduct(context.Background(), sales)

	require.NoError(t, err)
	assert.Equal(t, "Apple Jam", product, "ties are broken by name")
}

func TestHeuristicReporter_EmptyInventory(t *testing.T) {
	_, err := NewHeuristicReporter().MostDemandedProduct(context.Background(), interfaces.SalesContext{})

	assert.ErrorIs(t, err, errNoItems)
}

func TestLLMReporter(t *testing.T) {
	var seen reportRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&seen))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"mostDemandedProduct":"Classic Cola"}`))
	}))
	defer server.Close()
	reporter := NewLLMReporter(server.URL, "", "test-model", time.Second)

	product, err := reporter.MostDemandedProduct(context.Background(), interfaces.SalesContext{
		ReportType: "daily",
		Command:    "generate daily sales report",
		Inventory:  []models.InventoryItem{{Name: "Classic Cola", Stock: 12, ReorderLevel: 5}},
	})

	require.NoError(t, err)
	assert.Equal(t, "Classic Cola", product)
	assert.Equal(t, "generate daily sales report", seen.VoiceCommand)
	assert.Equal(t, "daily", seen.ReportType)
	require.Len(t, seen.Inventory, 1)
	assert.Equal(t, 5, seen.Inventory[0].ReorderLevel)
}

func TestLLMReporter_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()
	reporter := NewLLMReporter(server.URL, "", "", time.Second)

	_, err := reporter.MostDemandedProduct(context.Background(), interfaces.SalesContext{})

	require.Error(t, err)
	assert.Equal(t, models.ErrorCodeReportError, models.GetErrorCode(err))
}
