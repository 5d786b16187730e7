// Package log provides a simple, leveled logging interface for collabwalk.
//
// # Log Levels
//
// The package supports five log levels, in order of increasing severity:
//
//   - LogLevelDebug: per step walk tracing and catalog requests
//   - LogLevelInfo: walk start and completion, server lifecycle
//   - LogLevelWarn: retried catalog calls, store failures that do not abort a walk
//   - LogLevelError: failed walks and requests
//   - LogLevelNone: disables all logging output
//
// ParseLevel accepts the names used by the LOG_LEVEL environment variable.
//
// # Example Usage
//
//	logger := log.NewDefaultLogger(log.LogLevelInfo)
//	logger.Info("walk started from %s", seed)
//	logger.Debug("step %d: %d releases", i, n)
//
// # Backends
//
// DefaultLogger writes through the standard library logger with a
// "[collabwalk] " prefix. GologLogger forwards to github.com/kataras/golog:
//
//	glogger := golog.New()
//	logger := log.NewGologLogger(glogger)
//	logger.SetLevel(log.LogLevelDebug)
//
// New selects a backend by name ("std" or "golog"), which is how the
// LOG_BACKEND setting is applied.
//
// # Package Logger
//
// SetDefaultLogger replaces the package-level logger used by Debug, Info,
// Warn and Error. Components that accept a Logger option fall back to it.
package log
