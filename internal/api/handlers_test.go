package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockInterpreter struct {
	mock.Mock
}

func (m *mockInterpreter) Interpret(ctx context.Context, command string) models.CommandResponse {
	return m.Called(ctx, command).Get(0).(models.CommandResponse)
}

func (m *mockInterpreter) Execute(ctx context.Context, action models.Action) models.CommandResponse {
	return m.Called(ctx, action).Get(0).(models.CommandResponse)
}

func newTestRouter(t *testing.T, interpreter *mockInterpreter) (*gin.Engine, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	require.NoError(t, repository.Seed(context.Background(), store, repository.DemoCatalogue()))

	router := NewRouter(RouterConfig{
		ServiceName: "test",
		Commands:    NewCommandHandler(interpreter),
		Inventory:   NewInventoryHandler(store),
	})
	return router, store
}

func doJSON(router http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCommandHandler_InterpretsText(t *testing.T) {
	// Arrange
	interpreter := &mockInterpreter{}
	router, _ := newTestRouter(t, interpreter)
	interpreter.On("Interpret", mock.Anything, "check milk").
		Return(models.Succeeded("You have 8 units of Whole Milk in stock.", nil))

	// Act
	w := doJSON(router, http.MethodPost, "/api/v1/commands", `{"command":"  check milk "}`)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"You have 8 units of Whole Milk in stock."}`, w.Body.String())
	interpreter.AssertExpectations(t)
}

func TestCommandHandler_PropagatesRequestID(t *testing.T) {
	interpreter := &mockInterpreter{}
	router, _ := newTestRouter(t, interpreter)
	interpreter.On("Interpret", mock.Anything, "check milk").Return(models.Failed("x"))

	w := doJSON(router, http.MethodPost, "/api/v1/commands", `{"command":"check milk"}`, "X-Request-ID", "req-7")

	assert.Equal(t, "req-7", w.Header().Get("X-Request-ID"))
}

func TestCommandHandler_ExecutesAction(t *testing.T) {
	interpreter := &mockInterpreter{}
	router, _ := newTestRouter(t, interpreter)
	interpreter.On("Execute", mock.Anything, models.AddStock{ItemName: "Classic Cola", Quantity: 5}).
		Return(models.Succeeded("Added 5 units to Classic Cola. New stock is 17.", models.RefreshInventory{}))

	w := doJSON(router, http.MethodPost, "/api/v1/commands",
		`{"action":{"action":"ADD_STOCK","itemName":"Classic Cola","quantity":5}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"action":"REFRESH_INVENTORY"`)
	interpreter.AssertExpectations(t)
}

func TestCommandHandler_RejectsEmptyCommand(t *testing.T) {
	interpreter := &mockInterpreter{}
	router, _ := newTestRouter(t, interpreter)

	w := doJSON(router, http.MethodPost, "/api/v1/commands", `{"command":"   "}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	interpreter.AssertNotCalled(t, "Interpret", mock.Anything, mock.Anything)
}

func TestCommandHandler_RejectsMalformedJSON(t *testing.T) {
	router, _ := newTestRouter(t, &mockInterpreter{})

	w := doJSON(router, http.MethodPost, "/api/v1/commands", `{"command":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInventoryHandler_ListAndLowStock(t *testing.T) {
	router, _ := newTestRouter(t, &mockInterpreter{})

	w := doJSON(router, http.MethodGet, "/api/v1/inventory", "")
	require.Equal(t, http.StatusOK, w.Code)
	var items []models.InventoryItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.Len(t, items, len(repository.DemoCatalogue()))

	w = doJSON(router, http.MethodGet, "/api/v1/inventory/low-stock", "")
	require.Equal(t, http.StatusOK, w.Code)
	var low []models.InventoryItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &low))
	names := []string{}
	for _, item := range low {
		names = append(names, item.Name)
	}
	assert.ElementsMatch(t, []string{"Whole Milk", "Orange Juice"}, names)
}

func TestInventoryHandler_CreateValidatesBody(t *testing.T) {
	router, _ := newTestRouter(t, &mockInterpreter{})

	w := doJSON(router, http.MethodPost, "/api/v1/inventory", `{"name":"","stock":-1}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var problem models.ProblemDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeValidationError, problem.Type)
	assert.Contains(t, w.Body.String(), `"field":"name"`)
	assert.Contains(t, w.Body.String(), `"field":"stock"`)
}

func TestInventoryHandler_CreateRejectsNegativePrice(t *testing.T) {
	router, _ := newTestRouter(t, &mockInterpreter{})

	w := doJSON(router, http.MethodPost, "/api/v1/inventory", `{"name":"Saffron","price":-2}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"price"`)
}

func TestInventoryHandler_CreateAndConflict(t *testing.T) {
	router, store := newTestRouter(t, &mockInterpreter{})

	w := doJSON(router, http.MethodPost, "/api/v1/inventory", `{"name":"Saffron","stock":3,"reorderLevel":1,"price":450.5}`)
	require.Equal(t, http.StatusCreated, w.Code)

	created, err := store.FindByName(context.Background(), "saffron")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.True(t, decimal.RequireFromString("450.5").Equal(created.Price))
	assert.Equal(t, "/api/v1/inventory/"+created.ID, w.Header().Get("Location"))

	w = doJSON(router, http.MethodPost, "/api/v1/inventory", `{"name":"SAFFRON"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), string(models.ErrorCodeDuplicateItem))
}

func TestInventoryHandler_UpdateAndDelete(t *testing.T) {
	router, store := newTestRouter(t, &mockInterpreter{})
	milk, err := store.FindByName(context.Background(), "Whole Milk")
	require.NoError(t, err)

	w := doJSON(router, http.MethodPatch, "/api/v1/inventory/"+milk.ID, `{"stock":30}`)
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.InventoryItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, 30, updated.Stock)

	w = doJSON(router, http.MethodPatch, "/api/v1/inventory/"+milk.ID, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/v1/inventory/"+milk.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/inventory/"+milk.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_HealthAndCORS(t *testing.T) {
	router, _ := newTestRouter(t, &mockInterpreter{})

	w := doJSON(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w = doJSON(router, http.MethodOptions, "/api/v1/inventory", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
