package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/interfaces"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Classify(ctx context.Context, command string, inventory []models.ItemSnapshot) (models.Action, error) {
	args := m.Called(ctx, command, inventory)
	action, _ := args.Get(0).(models.Action)
	return action, args.Error(1)
}

type mockReporter struct {
	mock.Mock
}

func (m *mockReporter) MostDemandedProduct(ctx context.Context, sales interfaces.SalesContext) (string, error) {
	args := m.Called(ctx, sales)
	return args.String(0), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyLowStock(ctx context.Context, item models.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishChange(ctx context.Context, change *models.InventoryChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

func (m *mockPublisher) PublishCommand(ctx context.Context, event *models.CommandEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

// classifierFunc adapts a function to interfaces.Classifier
type classifierFunc func(ctx context.Context, command string, inventory []models.ItemSnapshot) (models.Action, error)

func (f classifierFunc) Classify(ctx context.Context, command string, inventory []models.ItemSnapshot) (models.Action, error) {
	return f(ctx, command, inventory)
}

// reporterFunc adapts a function to interfaces.SalesReporter
type reporterFunc func(ctx context.Context, sales interfaces.SalesContext) (string, error)

func (f reporterFunc) MostDemandedProduct(ctx context.Context, sales interfaces.SalesContext) (string, error) {
	return f(ctx, sales)
}
