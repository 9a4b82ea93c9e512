package log

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/georgi-georgiev/testmesh-plugin-sdk/pkg/models"
)

// Collector is a slog.Handler that buffers records as models.LogEntry in
// emission order. One collector is created per execute request; its
// entries are serialized into the response and then discarded. Handlers
// receive it wrapped in a *slog.Logger, so action code logs the same way
// the rest of the process does.
type Collector struct {
	buf    *entryBuffer
	prefix string
	// attrs added via Logger().With(...), formatted with the prefix
	// that was in effect when they were added.
	attrs []string
}

type entryBuffer struct {
	mu      sync.Mutex
	entries []models.LogEntry
}

func NewCollector() *Collector {
	return &Collector{buf: &entryBuffer{}}
}

// Logger returns a *slog.Logger writing into the collector.
func (c *Collector) Logger() *slog.Logger {
	return slog.New(c)
}

// Entries returns a snapshot of everything captured so far.
func (c *Collector) Entries() []models.LogEntry {
	c.buf.mu.Lock()
	defer c.buf.mu.Unlock()

	entries := make([]models.LogEntry, len(c.buf.entries))
	copy(entries, c.buf.entries)

	return entries
}

func (c *Collector) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (c *Collector) Handle(_ context.Context, record slog.Record) error {
	message := record.Message

	for _, attr := range c.attrs {
		message += " " + attr
	}

	record.Attrs(func(attr slog.Attr) bool {
		message += " " + formatAttr(c.prefix, attr)

		return true
	})

	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	c.buf.mu.Lock()
	defer c.buf.mu.Unlock()

	c.buf.entries = append(c.buf.entries, models.LogEntry{
		Level:     levelOf(record.Level),
		Message:   message,
		Timestamp: timestamp,
	})

	return nil
}

func (c *Collector) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]string, 0, len(c.attrs)+len(attrs))
	merged = append(merged, c.attrs...)

	for _, attr := range attrs {
		merged = append(merged, formatAttr(c.prefix, attr))
	}

	return &Collector{buf: c.buf, prefix: c.prefix, attrs: merged}
}

func (c *Collector) WithGroup(name string) slog.Handler {
	if name == "" {
		return c
	}

	return &Collector{buf: c.buf, prefix: c.prefix + name + ".", attrs: c.attrs}
}

func levelOf(level slog.Level) models.LogLevel {
	switch {
	case level < slog.LevelInfo:
		return models.LogLevelDebug
	case level < slog.LevelWarn:
		return models.LogLevelInfo
	case level < slog.LevelError:
		return models.LogLevelWarn
	default:
		return models.LogLevelError
	}
}

func formatAttr(prefix string, attr slog.Attr) string {
	return fmt.Sprintf("%s%s=%v", prefix, attr.Key, attr.Value.Resolve().Any())
}
