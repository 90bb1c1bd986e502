package pkg

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// TraceLevel logs every decoded box
const TraceLevel = slog.Level(-8)

var _ slog.Handler = (*MultiLogHandler)(nil)

func ParseLevel(level string) slog.Level {
	var lv slog.LevelVar
	if level == "trace" {
		lv.Set(TraceLevel)
	} else {
		lv.UnmarshalText([]byte(level))
	}
	return lv.Level()
}

func NewMultiLogHandler(level slog.Level, handlers ...slog.Handler) *MultiLogHandler {
	m := &MultiLogHandler{parentLevel: &level}
	for _, h := range handlers {
		m.Add(h)
	}
	return m
}

// MultiLogHandler fans records out to several handlers. Loggers derived with With keep
// receiving handlers added to their parent later.
type MultiLogHandler struct {
	mu           sync.RWMutex
	handlers     []slog.Handler
	attrChildren map[*MultiLogHandler][]slog.Attr
	parentLevel  *slog.Level
	level        *slog.Level
}

func (m *MultiLogHandler) Add(h slog.Handler) {
	m.mu.Lock()
	m.handlers = append(m.handlers, h)
	children := make(map[*MultiLogHandler][]slog.Attr, len(m.attrChildren))
	for child, attrs := range m.attrChildren {
		children[child] = attrs
	}
	m.mu.Unlock()
	for child, attrs := range children {
		child.Add(h.WithAttrs(attrs))
	}
}

func (m *MultiLogHandler) Remove(h slog.Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := slices.Index(m.handlers, h); i != -1 {
		m.handlers = slices.Delete(m.handlers, i, i+1)
	}
}

func (m *MultiLogHandler) SetLevel(level slog.Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.level == nil {
		m.level = &level
	} else {
		*m.level = level
	}
}

// Enabled implements slog.Handler.
func (m *MultiLogHandler) Enabled(_ context.Context, l slog.Level) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.level != nil {
		return l >= *m.level
	}
	return l >= *m.parentLevel
}

// Handle implements slog.Handler.
func (m *MultiLogHandler) Handle(ctx context.Context, rec slog.Record) error {
	m.mu.RLock()
	handlers := m.handlers
	m.mu.RUnlock()
	for _, h := range handlers {
		if err := h.Handle(ctx, rec.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiLogHandler) derive(f func(slog.Handler) slog.Handler) *MultiLogHandler {
	result := &MultiLogHandler{
		handlers:    make([]slog.Handler, len(m.handlers)),
		parentLevel: m.parentLevel,
	}
	if m.level != nil {
		result.parentLevel = m.level
	}
	for i, h := range m.handlers {
		result.handlers[i] = f(h)
	}
	return result
}

// WithAttrs implements slog.Handler.
func (m *MultiLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := m.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
	if m.attrChildren == nil {
		m.attrChildren = make(map[*MultiLogHandler][]slog.Attr)
	}
	m.attrChildren[result] = attrs
	return result
}

// WithGroup implements slog.Handler.
func (m *MultiLogHandler) WithGroup(name string) slog.Handler {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}
