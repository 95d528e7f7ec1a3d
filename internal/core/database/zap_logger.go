package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// ZapLogger routes GORM logging into zap. Record-not-found is never logged as an error.
type ZapLogger struct {
	l     *zap.Logger
	level logger.LogLevel
	slow  time.Duration
}

func NewZapLogger(l *zap.Logger, level logger.LogLevel) *ZapLogger {
	return &ZapLogger{l: l.Named("gorm"), level: level, slow: slowQueryThreshold}
}

func (z *ZapLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *z
	cp.level = level
	return &cp
}

func (z *ZapLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if z.level >= logger.Info {
		z.l.Info(fmt.Sprintf(msg, data...))
	}
}

func (z *ZapLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if z.level >= logger.Warn {
		z.l.Warn(fmt.Sprintf(msg, data...))
	}
}

func (z *ZapLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if z.level >= logger.Error {
		z.l.Error(fmt.Sprintf(msg, data...))
	}
}

func (z *ZapLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if z.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && z.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		z.l.Error("query error", zap.String("sql", sql), zap.Int64("rows", rows),
			zap.Duration("elapsed", elapsed), zap.Error(err))
	case elapsed > z.slow && z.level >= logger.Warn:
		sql, rows := fc()
		z.l.Warn("slow query", zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	case z.level >= logger.Info:
		sql, rows := fc()
		z.l.Debug("query", zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	}
}
