// Package logging provides structured logging configuration for httpintercept.
//
// This package wraps log/slog so the interceptor, the bundle loader and the
// CLI log the same way. It supports configurable log levels and output
// formats, fan-out to several handlers, and routing records into a test's
// log output.
//
// # Usage
//
// Create a logger with desired configuration:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelDebug,
//	    Format: logging.FormatText,
//	})
//
//	opts := intercept.NewOptions(intercept.WithLogger(logger))
//
// Pass extra handlers to fan records out, for example to a JSON log file:
//
//	file := logging.NewHandler(logging.Config{Format: logging.FormatJSON, Output: f})
//	logger := logging.New(logging.Config{Level: logging.LevelWarn}, file)
//
// Inside tests, send interceptor logs to t.Log:
//
//	opts := intercept.NewOptions(intercept.WithLogger(logging.NewTB(t, logging.LevelDebug)))
//
// # Log Levels
//
// Four log levels are supported:
//   - Debug: every match and miss decided by the interceptor
//   - Info: bundle loading and CLI progress
//   - Warn: requests failed because no registration matched
//   - Error: failures in callbacks or response construction
//
// # Integration
//
// Components accept a *slog.Logger through an option or setter.
// If no logger is provided they use logging.Nop().
package logging
