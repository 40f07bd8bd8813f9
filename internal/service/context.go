package service

import "context"

type contextKey int

const (
	requestIDKey contextKey = iota
	commandKey
)

// WithRequestID attaches the caller's request id to ctx for audit events
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func withCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, commandKey, command)
}

func commandFrom(ctx context.Context) string {
	command, _ := ctx.Value(commandKey).(string)
	return command
}
