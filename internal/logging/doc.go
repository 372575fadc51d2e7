// Package logging assembles structured slog loggers and formatting helpers used
// across cancomp.
//
// It owns the console and JSON handlers, level parsing, and context helpers
// that tag log lines with the run correlation ID and release group under
// lookup. Warnings go through WarnWithContext so every one of them carries an
// event type, a hint, and the user-facing impact.
package logging
