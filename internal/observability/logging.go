// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
)

var logger = slog.Default()

// SetLogger routes observability output through l. The server installs the
// context-aware request logger here at startup.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// LoggingConfig defines which types of automated logging are enabled.
type LoggingConfig struct {
	EnableRepoLogging    bool
	EnableServiceLogging bool
}

// Config holds the current logging configuration.
var Config = LoggingConfig{
	EnableRepoLogging:    true,
	EnableServiceLogging: true,
}

func toAttrs(base []any, fields map[string]any) []any {
	for k, v := range fields {
		base = append(base, slog.Any(k, v))
	}
	return base
}

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	tableName string
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(tableName string) *RepoLogger {
	return &RepoLogger{tableName: tableName}
}

func (l *RepoLogger) log(ctx context.Context, operation string, fields map[string]any) {
	if !Config.EnableRepoLogging {
		return
	}
	logger.DebugContext(ctx, "repository "+operation, toAttrs([]any{
		slog.String("table", l.tableName),
		slog.String("operation", operation),
	}, fields)...)
}

// LogCreate logs a repository create operation.
func (l *RepoLogger) LogCreate(ctx context.Context, fields map[string]any) {
	l.log(ctx, "create", fields)
}

// LogUpdate logs a repository update operation.
func (l *RepoLogger) LogUpdate(ctx context.Context, fields map[string]any) {
	l.log(ctx, "update", fields)
}

// LogDelete logs a repository delete operation.
func (l *RepoLogger) LogDelete(ctx context.Context, fields map[string]any) {
	l.log(ctx, "delete", fields)
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	if !Config.EnableRepoLogging {
		return
	}
	logger.ErrorContext(ctx, "repository error",
		slog.String("table", l.tableName),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// ServiceLogger logs business events for one service.
type ServiceLogger struct {
	service string
}

// NewServiceLogger creates a ServiceLogger for the named service.
func NewServiceLogger(service string) *ServiceLogger {
	return &ServiceLogger{service: service}
}

// Info logs a notable service event.
func (l *ServiceLogger) Info(ctx context.Context, msg string, fields map[string]any) {
	if !Config.EnableServiceLogging {
		return
	}
	logger.InfoContext(ctx, msg, toAttrs([]any{slog.String("service", l.service)}, fields)...)
}

// Warn logs a recoverable problem, such as a degraded external call.
func (l *ServiceLogger) Warn(ctx context.Context, msg string, err error, fields map[string]any) {
	attrs := []any{slog.String("service", l.service)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	logger.WarnContext(ctx, msg, toAttrs(attrs, fields)...)
}

// Error logs a failure, including the raw upstream error that is never sent to clients.
func (l *ServiceLogger) Error(ctx context.Context, msg string, err error, fields map[string]any) {
	attrs := []any{slog.String("service", l.service)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	logger.ErrorContext(ctx, msg, toAttrs(attrs, fields)...)
}
