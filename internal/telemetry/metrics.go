package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InterpreterMetrics are the instruments recorded per interpreted command
type InterpreterMetrics struct {
	commands metric.Int64Counter
	duration metric.Float64Histogram
	lowStock metric.Int64Counter
}

// NewInterpreterMetrics registers the interpreter instruments on meter
func NewInterpreterMetrics(meter metric.Meter) (*InterpreterMetrics, error) {
	commands, err := meter.Int64Counter("assistant.commands",
		metric.WithDescription("Commands interpreted, by action and outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create commands counter: %w", err)
	}
	duration, err := meter.Float64Histogram("assistant.command.duration",
		metric.WithDescription("Time to interpret one command"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}
	lowStock, err := meter.Int64Counter("assistant.low_stock_alerts",
		metric.WithDescription("Low-stock notifications raised"))
	if err != nil {
		return nil, fmt.Errorf("failed to create low stock counter: %w", err)
	}
	return &InterpreterMetrics{commands: commands, duration: duration, lowStock: lowStock}, nil
}

// RecordCommand counts one command and its latency
func (m *InterpreterMetrics) RecordCommand(ctx context.Context, action string, success bool, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("action", action),
		attribute.Bool("success", success),
	)
	m.commands.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
}

// RecordLowStock counts one low-stock notification
func (m *InterpreterMetrics) RecordLowStock(ctx context.Context, item string) {
	m.lowStock.Add(ctx, 1, metric.WithAttributes(attribute.String("item", item)))
}
