package utils

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm/logger"
)

// QuietGormLogger is a GORM logger that suppresses queries matching known
// patterns. The reminder worker polls the scheduled_event table once a minute
// and would otherwise flood the SQL log with an identical SELECT.
type QuietGormLogger struct {
	logger.Interface
	ignoredQueryPatterns []string
}

// NewQuietGormLogger creates a new logger with the given ignored query patterns
func NewQuietGormLogger(l logger.Interface, ignoredPatterns ...string) *QuietGormLogger {
	return &QuietGormLogger{
		Interface:            l,
		ignoredQueryPatterns: ignoredPatterns,
	}
}

// LogMode implements logger.Interface
func (l *QuietGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &QuietGormLogger{
		Interface:            l.Interface.LogMode(level),
		ignoredQueryPatterns: l.ignoredQueryPatterns,
	}
}

// Trace implements logger.Interface
func (l *QuietGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	sql, _ := fc()
	for _, pattern := range l.ignoredQueryPatterns {
		if strings.Contains(sql, pattern) {
			return
		}
	}
	l.Interface.Trace(ctx, begin, fc, err)
}
