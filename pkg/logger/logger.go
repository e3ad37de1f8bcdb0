// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

// Package logger provides the process-wide structured logger for authrelay.
//
// The package exposes leveled functions with "w" variants that accept
// key-value pairs, backed by a zap SugaredLogger. Call Initialize once in
// main before any other package logs; callers that skip it still get a
// usable production-config logger.
package logger

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// singleton is the package-level logger. Accessed atomically so it is safe
// to replace (Initialize, tests) while other goroutines are logging.
var singleton atomic.Pointer[zap.SugaredLogger]

func init() {
	l, _ := zap.NewProduction()
	singleton.Store(l.Sugar())
}

// Initialize configures the process logger. When debug is true the logger
// uses a human-readable development encoder at debug level, otherwise JSON
// at info level.
func Initialize(debug bool) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
	}
	// Timestamps in RFC3339 keep log lines greppable across encoders.
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// Fall back to the init() logger rather than failing startup.
		get().Errorw("failed to build logger", "error", err)
		return
	}
	singleton.Store(l.Sugar())
}

// Set replaces the singleton logger. Intended for tests that capture output.
func Set(l *zap.SugaredLogger) {
	singleton.Store(l)
}

func get() *zap.SugaredLogger {
	return singleton.Load()
}

// Sync flushes buffered log entries. Call on process shutdown.
func Sync() {
	_ = get().Sync()
}

// Debug logs a message at debug level.
func Debug(msg string) { get().Debug(msg) }

// Debugw logs a message at debug level with additional key-value pairs.
func Debugw(msg string, keysAndValues ...any) { get().Debugw(msg, keysAndValues...) }

// Info logs a message at info level.
func Info(msg string) { get().Info(msg) }

// Infow logs a message at info level with additional key-value pairs.
func Infow(msg string, keysAndValues ...any) { get().Infow(msg, keysAndValues...) }

// Warn logs a message at warn level.
func Warn(msg string) { get().Warn(msg) }

// Warnw logs a message at warn level with additional key-value pairs.
func Warnw(msg string, keysAndValues ...any) { get().Warnw(msg, keysAndValues...) }

// Error logs a message at error level.
func Error(msg string) { get().Error(msg) }

// Errorw logs a message at error level with additional key-value pairs.
func Errorw(msg string, keysAndValues ...any) { get().Errorw(msg, keysAndValues...) }
