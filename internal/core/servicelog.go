package core

import (
	"context"
	"log/slog"
)

// PermissionEvent describes one decision made by a policy, for audit.
type PermissionEvent struct {
	Permission string
	UserID     string
	Role       Role
	Allowed    bool
	Reason     Reason
	Extra      map[string]any
}

// AuditRecorder receives permission events. Implementations own their
// transport; the kernel never waits on them for correctness.
type AuditRecorder interface {
	Record(ctx context.Context, event PermissionEvent)
}

// ServiceLogger is the fixed logging contract the kernel emits through. It
// scopes a slog.Logger to one entity service and optionally fans permission
// events out to an audit recorder.
type ServiceLogger struct {
	entity string
	logger *slog.Logger
	audit  AuditRecorder
}

// NewServiceLogger builds a ServiceLogger for the named entity service.
func NewServiceLogger(entity string, logger *slog.Logger, audit AuditRecorder) *ServiceLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &ServiceLogger{entity: entity, logger: logger.With(slog.String("service", entity)), audit: audit}
}

// Entity names the service this logger is scoped to.
func (l *ServiceLogger) Entity() string {
	if l == nil {
		return ""
	}
	return l.entity
}

// Info logs an informational event.
func (l *ServiceLogger) Info(message string, args ...any) {
	if l == nil {
		return
	}
	l.logger.Info(message, args...)
}

// Warn logs a warning.
func (l *ServiceLogger) Warn(message string, args ...any) {
	if l == nil {
		return
	}
	l.logger.Warn(message, args...)
}

// Error logs a failure.
func (l *ServiceLogger) Error(message string, args ...any) {
	if l == nil {
		return
	}
	l.logger.Error(message, args...)
}

// Permission logs a permission decision and forwards it to the audit
// recorder when one is configured.
func (l *ServiceLogger) Permission(ctx context.Context, event PermissionEvent) {
	if l == nil {
		return
	}
	level := slog.LevelInfo
	if !event.Allowed {
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, "permission decision",
		slog.String("permission", event.Permission),
		slog.String("user_id", event.UserID),
		slog.String("role", string(event.Role)),
		slog.Bool("allowed", event.Allowed),
		slog.String("reason", string(event.Reason)),
	)
	if l.audit != nil {
		l.audit.Record(ctx, event)
	}
}
