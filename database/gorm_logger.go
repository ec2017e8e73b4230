package database

import (
	"context"
	"time"

	"gorm.io/gorm/logger"
)

// queryMetricsLogger wraps a gorm logger and counts SQLite busy/locked errors.
type queryMetricsLogger struct {
	inner logger.Interface
}

func (l queryMetricsLogger) LogMode(level logger.LogLevel) logger.Interface {
	return queryMetricsLogger{inner: l.inner.LogMode(level)}
}

func (l queryMetricsLogger) Info(ctx context.Context, s string, args ...interface{}) {
	l.inner.Info(ctx, s, args...)
}

func (l queryMetricsLogger) Warn(ctx context.Context, s string, args ...interface{}) {
	l.inner.Warn(ctx, s, args...)
}

func (l queryMetricsLogger) Error(ctx context.Context, s string, args ...interface{}) {
	l.inner.Error(ctx, s, args...)
}

func (l queryMetricsLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if err != nil {
		recordSQLiteError(err)
	}
	l.inner.Trace(ctx, begin, fc, err)
}
