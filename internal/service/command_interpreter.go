package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/interfaces"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/telemetry"
)

var errDelegatePanic = errors.New("delegate panicked")

// InterpreterConfig holds interpreter configuration
type InterpreterConfig struct {
	ClassifyTimeout   time.Duration // Upper bound for one classifier call
	ReportTimeout     time.Duration // Upper bound for one sales reporter call
	SideEffectTimeout time.Duration // Budget for notifications and audit events
}

// Validate validates the interpreter configuration
func (c InterpreterConfig) Validate() error {
	if c.ClassifyTimeout <= 0 {
		return fmt.Errorf("classify timeout must be positive, got %v", c.ClassifyTimeout)
	}
	if c.ReportTimeout <= 0 {
		return fmt.Errorf("report timeout must be positive, got %v", c.ReportTimeout)
	}
	if c.SideEffectTimeout <= 0 {
		return fmt.Errorf("side effect timeout must be positive, got %v", c.SideEffectTimeout)
	}
	return nil
}

// DefaultInterpreterConfig returns the timeouts used when nothing is configured
func DefaultInterpreterConfig() InterpreterConfig {
	return InterpreterConfig{
		ClassifyTimeout:   10 * time.Second,
		ReportTimeout:     15 * time.Second,
		SideEffectTimeout: 5 * time.Second,
	}
}

// CommandInterpreter turns a command into exactly one CommandResponse. It is
// stateless between calls; the store owns all item state.
type CommandInterpreter struct {
	store      interfaces.InventoryStore
	classifier interfaces.Classifier
	reporter   interfaces.SalesReporter
	notifier   interfaces.StockNotifier    // optional
	publisher  interfaces.MessagePublisher // optional
	config     InterpreterConfig
	metrics    *telemetry.InterpreterMetrics
	tracer     trace.Tracer
	background sync.WaitGroup
}

// NewCommandInterpreter creates a new interpreter with dependency injection and validation.
// notifier and publisher may be nil.
func NewCommandInterpreter(
	store interfaces.InventoryStore,
	classifier interfaces.Classifier,
	reporter interfaces.SalesReporter,
	notifier interfaces.StockNotifier,
	publisher interfaces.MessagePublisher,
	config InterpreterConfig,
) (*CommandInterpreter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid interpreter configuration: %w", err)
	}
	if store == nil || classifier == nil || reporter == nil {
		return nil, fmt.Errorf("store, classifier and reporter are required")
	}

	metrics, err := telemetry.NewInterpreterMetrics(otel.Meter(telemetry.InstrumentationName))
	if err != nil {
		return nil, fmt.Errorf("failed to create interpreter metrics: %w", err)
	}

	return &CommandInterpreter{
		store:      store,
		classifier: classifier,
		reporter:   reporter,
		notifier:   notifier,
		publisher:  publisher,
		config:     config,
		metrics:    metrics,
		tracer:     otel.Tracer(telemetry.InstrumentationName),
	}, nil
}

// Interpret classifies command against the current inventory and executes
// the resulting action. It never fails; every problem becomes a failed response.
func (s *CommandInterpreter) Interpret(ctx context.Context, command string) models.CommandResponse {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "CommandInterpreter.Interpret")
	defer span.End()

	ctx = withCommand(ctx, command)
	action, failure := s.classify(ctx, command)

	var resp models.CommandResponse
	kind := models.ActionUnknown
	if failure != nil {
		resp = *failure
	} else {
		kind = action.Kind()
		resp = s.dispatch(ctx, action)
	}

	s.finish(ctx, span, command, kind, resp, time.Since(start))
	return resp
}

// Execute runs an already classified action
func (s *CommandInterpreter) Execute(ctx context.Context, action models.Action) models.CommandResponse {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "CommandInterpreter.Execute")
	defer span.End()

	kind := models.ActionUnknown
	if action != nil {
		kind = action.Kind()
	}
	resp := s.dispatch(ctx, action)

	s.finish(ctx, span, "", kind, resp, time.Since(start))
	return resp
}

// Wait blocks until queued notifications and audit events are done
func (s *CommandInterpreter) Wait() {
	s.background.Wait()
}

// classify lists the inventory snapshot and asks the classifier for one action
func (s *CommandInterpreter) classify(ctx context.Context, command string) (models.Action, *models.CommandResponse) {
	items, err := s.store.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list inventory for classification")
		failed := models.Failed(msgCouldNotProcess)
		return nil, &failed
	}
	snapshot := models.Snapshots(items)

	action, err := callWithTimeout(ctx, s.config.ClassifyTimeout, func(ctx context.Context) (models.Action, error) {
		return s.classifier.Classify(ctx, command, snapshot)
	})
	if err != nil {
		log.Error().Err(err).Str("command", command).Msg("Classifier failed")
		failed := models.Failed(delegateFailureMessage(err, msgCouldNotProcess))
		return nil, &failed
	}
	if action == nil {
		action = models.Unknown{}
	}
	return action, nil
}

// dispatch runs the handler for action, turning a handler panic into a failure
func (s *CommandInterpreter) dispatch(ctx context.Context, action models.Action) (resp models.CommandResponse) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic while executing action")
			resp = models.Failed(msgCouldNotProcess)
		}
	}()

	switch a := action.(type) {
	case models.AddStock:
		return s.addStock(ctx, a)
	case models.RemoveStock:
		return s.removeStock(ctx, a)
	case models.CheckStock:
		return s.checkStock(ctx, a)
	case models.SetReorderAlert:
		return s.setReorderAlert(ctx, a)
	case models.GenerateSalesReport:
		return s.generateSalesReport(ctx, a)
	case models.AddNewItem:
		return s.addNewItem(a)
	case models.EditItem:
		return s.editItem(ctx, a)
	case models.ViewItemDetails:
		return s.viewItemDetails(ctx, a)
	case models.DeleteItem:
		return s.deleteItem(ctx, a)
	case models.Unknown:
		if a.Explanation != "" {
			return models.Failed(a.Explanation)
		}
		return models.Failed(msgNotUnderstood)
	default:
		return models.Failed(msgNotUnderstood)
	}
}

// finish logs, measures and audits one handled command
func (s *CommandInterpreter) finish(ctx context.Context, span trace.Span, command string, kind models.ActionKind, resp models.CommandResponse, elapsed time.Duration) {
	span.SetAttributes(
		attribute.String("command.action", string(kind)),
		attribute.Bool("command.success", resp.Success),
	)
	if !resp.Success {
		span.SetStatus(codes.Error, resp.Message)
	}

	log.Info().
		Str("action", string(kind)).
		Bool("success", resp.Success).
		Str("directive", string(resp.DirectiveName())).
		Dur("duration", elapsed).
		Msg("Command handled")

	s.metrics.RecordCommand(ctx, string(kind), resp.Success, elapsed)

	if s.publisher == nil {
		return
	}
	event := &models.CommandEvent{
		EventID:   uuid.New().String(),
		RequestID: requestIDFrom(ctx),
		Command:   command,
		Action:    kind,
		Success:   resp.Success,
		Directive: resp.DirectiveName(),
		Message:   resp.Message,
		Duration:  elapsed,
		Timestamp: time.Now().UTC(),
	}
	s.goBackground(ctx, func(ctx context.Context) {
		if err := s.publisher.PublishCommand(ctx, event); err != nil {
			log.Warn().Err(err).Str("event_id", event.EventID).Msg("Failed to publish command event")
		}
	})
}

// notifyIfLow tells the notifier about an item at or below its reorder level.
// It never changes the response.
func (s *CommandInterpreter) notifyIfLow(ctx context.Context, item models.InventoryItem) {
	if s.notifier == nil || !item.IsLowStock() {
		return
	}
	s.metrics.RecordLowStock(ctx, item.Name)
	s.goBackground(ctx, func(ctx context.Context) {
		if err := s.notifier.NotifyLowStock(ctx, item); err != nil {
			log.Warn().Err(err).Str("item_id", item.ID).Msg("Failed to send low stock notification")
		}
	})
}

// goBackground runs fn detached from the caller's cancellation, bounded by the side effect timeout
func (s *CommandInterpreter) goBackground(ctx context.Context, fn func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.SideEffectTimeout)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("Recovered from panic in background task")
			}
		}()
		fn(ctx)
	}()
}

type delegateResult[T any] struct {
	value T
	err   error
}

// callWithTimeout runs call with a deadline and returns when either finishes,
// so a delegate that ignores its context cannot hang the interpreter
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, call func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan delegateResult[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- delegateResult[T]{err: fmt.Errorf("%w: %v", errDelegatePanic, r)}
			}
		}()
		value, err := call(ctx)
		done <- delegateResult[T]{value: value, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func delegateFailureMessage(err error, fallback string) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return msgTimedOut
	}
	return fallback
}
