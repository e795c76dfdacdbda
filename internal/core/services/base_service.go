package services

import (
	"context"
	"log/slog"

	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
	"github.com/SscSPs/practice_ledger_app/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	ReportCache portsrepo.ReportCache
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// InvalidateReports drops cached reports after a write. A cache failure is
// logged and otherwise ignored; the write has already committed.
func (s *BaseService) InvalidateReports(ctx context.Context) {
	if s.ReportCache == nil {
		return
	}
	if err := s.ReportCache.Invalidate(ctx); err != nil {
		s.LogError(ctx, err, "Failed to invalidate report cache")
	}
}
