package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// CapturedRecord is one log line held by a LogCapture.
type CapturedRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogCapture records every slog line routed through it so tests can assert
// on messages and attributes. Safe for concurrent use.
type LogCapture struct {
	state *captureState
	attrs []slog.Attr
}

type captureState struct {
	mu      sync.Mutex
	records []CapturedRecord
}

// NewLogCapture creates an empty capture.
func NewLogCapture() *LogCapture {
	return &LogCapture{state: &captureState{}}
}

// Logger returns a logger writing into the capture at all levels.
func (c *LogCapture) Logger() *slog.Logger {
	return slog.New(c)
}

// Enabled implements slog.Handler; captures never filter by level.
func (c *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (c *LogCapture) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(c.attrs))
	for _, a := range c.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	c.state.records = append(c.state.records, CapturedRecord{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	return nil
}

// WithAttrs implements slog.Handler; derived handlers share the record list.
func (c *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(c.attrs)+len(attrs))
	merged = append(merged, c.attrs...)
	merged = append(merged, attrs...)
	return &LogCapture{state: c.state, attrs: merged}
}

// WithGroup implements slog.Handler. Groups are flattened; the tests here
// assert on top-level keys only.
func (c *LogCapture) WithGroup(string) slog.Handler { return c }

// Records returns a copy of everything captured so far.
func (c *LogCapture) Records() []CapturedRecord {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	out := make([]CapturedRecord, len(c.state.records))
	copy(out, c.state.records)
	return out
}

// Has reports whether any record at the given level contains the substring.
func (c *LogCapture) Has(level slog.Level, substring string) bool {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	for _, r := range c.state.records {
		if r.Level == level && strings.Contains(r.Message, substring) {
			return true
		}
	}
	return false
}

// Attr returns the named attribute from the first record whose message
// contains the substring.
func (c *LogCapture) Attr(messageSubstring, key string) (any, bool) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	for _, r := range c.state.records {
		if strings.Contains(r.Message, messageSubstring) {
			v, ok := r.Attrs[key]
			return v, ok
		}
	}
	return nil, false
}
