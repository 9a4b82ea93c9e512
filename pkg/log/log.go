// Package log configures process logging and provides the per-invocation
// log collector handed to action handlers.
package log

import (
	"log/slog"
	"os"
)

// Setup installs the default process logger. Logs go to stderr: stdout
// is reserved for the port announcement line the host parses at startup.
func Setup(logLevel string) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(logLevel),
	})))
}

// ParseLevel maps the LOG_LEVEL wording the host uses (and LogEntry
// levels use on the wire) onto slog levels. Unknown values fall back to
// info.
func ParseLevel(logLevel string) slog.Level {
	switch logLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithModule scopes the default logger to one part of the plugin
// process.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
