// Package logger provides a structured logging interface for colortrawl.
//
// It wraps zerolog behind a small Logger interface:
//   - Levels: Debug, Info, Warn, Error
//   - Structured fields via WithField, WithFields and the *WithFields methods
//   - Console output on stderr, optionally mirrored to a file
//   - A global logger for the command layer
//
// Basic usage:
//
//	err := logger.Initialize(&config.LoggingConfig{Level: "info"})
//
//	logger.Info("trawl started")
//	logger.WithField("screen_name", "everycolorbot").Info("fetching timeline")
//
// Packages that do real work take a Logger in their constructor instead of
// reaching for the global one. Tests pass NewTestLogger or NewNopLogger.
package logger
