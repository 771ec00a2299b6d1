package database

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/speakerkit/logger"
)

// maxLoggedSQL truncates statements; embedding inserts carry large blobs.
const maxLoggedSQL = 512

func parseLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// queryLogger routes gorm output through the service logger with the
// request's trace fields attached.
type queryLogger struct {
	log   *logger.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

var _ gormlogger.Interface = (*queryLogger)(nil)

func newQueryLogger(log *logger.Logger, slow time.Duration, level string) *queryLogger {
	return &queryLogger{log: log.WithComponent("sql"), level: parseLogLevel(level), slow: slow}
}

func (q *queryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *q
	c.level = level
	return &c
}

func (q *queryLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if q.level >= gormlogger.Info {
		q.log.WithContext(ctx).Info(fmt.Sprintf(msg, args...))
	}
}

func (q *queryLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if q.level >= gormlogger.Warn {
		q.log.WithContext(ctx).Warn(fmt.Sprintf(msg, args...))
	}
}

func (q *queryLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if q.level >= gormlogger.Error {
		q.log.WithContext(ctx).Error(fmt.Sprintf(msg, args...))
	}
}

func (q *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if q.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound)
	slow := q.slow > 0 && elapsed > q.slow
	if !failed && !slow && q.level < gormlogger.Info {
		return
	}

	sql, rows := fc()
	fields := map[string]interface{}{
		"sql":         truncateSQL(sql),
		"duration_ms": elapsed.Milliseconds(),
		"rows":        rows,
	}
	log := q.log.WithContext(ctx)
	switch {
	case failed && q.level >= gormlogger.Error:
		fields["error"] = err.Error()
		log.Error("query failed", fields)
	case slow && q.level >= gormlogger.Warn:
		log.Warn("slow query", fields)
	case q.level >= gormlogger.Info:
		log.Debug("query", fields)
	}
}

func truncateSQL(sql string) string {
	if len(sql) <= maxLoggedSQL {
		return sql
	}
	return sql[:maxLoggedSQL] + fmt.Sprintf("... (%d bytes)", len(sql))
}
