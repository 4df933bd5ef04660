package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 500 * time.Millisecond

// gormLogger forwards GORM's query tracing to the service logger. Only slow
// statements and failures are reported; not-found lookups are expected.
type gormLogger struct {
	logg  *logger.Logger
	slow  time.Duration
	level gormlogger.LogLevel
}

func newGormLogger(logg *logger.Logger, slow time.Duration) gormlogger.Interface {
	if slow <= 0 {
		slow = defaultSlowQuery
	}
	level := gormlogger.Warn
	if logg == nil {
		level = gormlogger.Silent
	}
	return &gormLogger{logg: logg, slow: slow, level: level}
}

func (g *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *gormLogger) Info(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Info {
		g.logg.Info(ctx, fmt.Sprintf(msg, args...))
	}
}

func (g *gormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Warn {
		g.logg.Warn(ctx, fmt.Sprintf(msg, args...))
	}
}

func (g *gormLogger) Error(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Error {
		g.logg.Error(ctx, "db.error", fmt.Errorf(msg, args...))
	}
}

func (g *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := elapsed > g.slow

	if !(failed && g.level >= gormlogger.Error) && !(slow && g.level >= gormlogger.Warn) {
		return
	}

	sql, rows := fc()
	ctx = g.logg.WithFields(ctx, map[string]any{
		"sql":        sql,
		"rows":       rows,
		"elapsed_ms": elapsed.Milliseconds(),
	})
	if failed {
		g.logg.Warn(ctx, "db.query.failed: "+err.Error())
		return
	}
	g.logg.Warn(ctx, "db.query.slow")
}
