// Package logging provides the process-wide structured logger, following
// the pattern used by RoseWrightdev-Video-Conferencing's internal/v1/logging:
// a package-level *zap.Logger built once behind sync.Once, with helpers that
// attach connection/session/room fields.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	once   sync.Once
)

// Initialize builds the global logger. development selects a human-readable
// console encoder; otherwise a production JSON encoder is used.
func Initialize(development bool) error {
	var err error
	once.Do(func() {
		var cfg zap.Config
		if development {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			cfg = zap.NewProductionConfig()
			cfg.EncoderConfig.TimeKey = "timestamp"
			cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		}
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		logger, err = cfg.Build(zap.AddCallerSkip(1))
	})
	return err
}

// L returns the global logger, falling back to a development logger if
// Initialize was never called (e.g. in tests).
func L() *zap.Logger {
	if logger == nil {
		l, _ := zap.NewDevelopment()
		return l
	}
	return logger
}

// Conn returns a child logger scoped to one connection.
func Conn(peerAddr, sid string) *zap.Logger {
	return L().With(zap.String("peer_addr", peerAddr), zap.String("sid", sid))
}

// WithUser returns a child logger scoped to one user.
func WithUser(l *zap.Logger, username string) *zap.Logger {
	return l.With(zap.String("username", username))
}

// WithRoom returns a child logger scoped to one room.
func WithRoom(l *zap.Logger, roomID string) *zap.Logger {
	return l.With(zap.String("room_id", roomID))
}

// Sync flushes any buffered log entries. Call on shutdown.
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
