package ordering

import (
	"context"
	"slices"
	"sync"

	"github.com/0suu/SwitchBotController/internal/store"
)

// Logger is the logging interface used by List.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// List is one persisted order, together with a Buffer for staging changes.
type List struct {
	Buffer

	store  store.Store
	key    string
	logger Logger

	mu     sync.RWMutex
	order  []string
	loaded bool
}

// NewList creates a List persisted under key.
func NewList(st store.Store, key string, logger Logger) *List {
	if logger == nil {
		logger = noopLogger{}
	}
	return &List{store: st, key: key, logger: logger}
}

// Load reads the stored order. Non-string entries are dropped; a missing
// or unreadable value yields an empty order. The list counts as loaded
// either way.
func (l *List) Load(ctx context.Context) []string {
	var raw []any
	found, err := store.GetJSON(ctx, l.store, l.key, &raw)
	if err != nil {
		l.logger.Warn("ignoring stored order", "key", l.key, "error", err)
	}

	order := make([]string, 0, len(raw))
	if found && err == nil {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				order = append(order, s)
			}
		}
	}

	l.mu.Lock()
	l.order = order
	l.loaded = true
	l.mu.Unlock()
	return slices.Clone(order)
}

// Order returns the current order.
func (l *List) Order() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.order)
}

// Loaded reports whether Load or Set has run.
func (l *List) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Set replaces the order and persists it. A failed write is logged and
// the in-memory order is kept.
func (l *List) Set(ctx context.Context, ids []string) {
	if ids == nil {
		ids = []string{}
	}
	l.mu.Lock()
	l.order = slices.Clone(ids)
	l.loaded = true
	l.mu.Unlock()

	if err := store.SetJSON(ctx, l.store, l.key, ids); err != nil {
		l.logger.Warn("persisting order failed", "key", l.key, "error", err)
	}
}

// Commit finishes the staged reorder against current and saves it.
func (l *List) Commit(ctx context.Context, current []string) ([]string, error) {
	merged, err := l.Finish(current)
	if err != nil {
		return nil, err
	}
	l.Set(ctx, merged)
	return merged, nil
}
