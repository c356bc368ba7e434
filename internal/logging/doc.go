// Package logging assembles structured slog loggers and formatting helpers used
// across cdlconvert.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so converter code tags log lines
// with the run id and input path. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
package logging
