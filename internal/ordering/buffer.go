package ordering

import (
	"errors"
	"slices"
	"sync"
)

// ErrNotReordering is returned by Buffer operations that need Start first.
var ErrNotReordering = errors.New("ordering: no reorder in progress")

// Buffer holds a reorder in progress.
type Buffer struct {
	mu     sync.Mutex
	active bool
	ids    []string
}

// Start begins a reorder from ids, discarding any previous one.
func (b *Buffer) Start(ids []string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = true
	b.ids = slices.Clone(ids)
	return slices.Clone(b.ids)
}

// Move applies MoveID to the staged list.
func (b *Buffer) Move(from, to string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return nil, ErrNotReordering
	}
	b.ids = MoveID(b.ids, from, to)
	return slices.Clone(b.ids), nil
}

// Finish ends the reorder and returns the staged list merged with current.
func (b *Buffer) Finish(current []string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return nil, ErrNotReordering
	}
	merged := Merge(b.ids, current)
	b.active = false
	b.ids = nil
	return merged, nil
}

// Cancel drops the reorder without producing an order.
func (b *Buffer) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = false
	b.ids = nil
}

// Staged reports whether a reorder is in progress and its current list.
func (b *Buffer) Staged() ([]string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.ids), b.active
}
