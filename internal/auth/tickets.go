package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// DefaultTicketTTL is how long a WebSocket ticket stays valid.
const DefaultTicketTTL = 60 * time.Second

// Tickets holds pending WebSocket tickets. Each ticket is single-use.
type Tickets struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	tickets map[string]time.Time
}

// NewTickets creates an empty ticket store. A non-positive ttl selects
// DefaultTicketTTL.
func NewTickets(ttl time.Duration) *Tickets {
	if ttl <= 0 {
		ttl = DefaultTicketTTL
	}
	return &Tickets{
		ttl:     ttl,
		now:     time.Now,
		tickets: make(map[string]time.Time),
	}
}

// TTL returns the lifetime of issued tickets.
func (t *Tickets) TTL() time.Duration { return t.ttl }

// Issue creates a new 256-bit ticket.
func (t *Tickets) Issue() (string, error) {
	b := make([]byte, 32) //nolint:mnd // 256-bit ticket
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating ticket: %w", err)
	}
	ticket := hex.EncodeToString(b)

	t.mu.Lock()
	t.tickets[ticket] = t.now().Add(t.ttl)
	t.mu.Unlock()
	return ticket, nil
}

// Consume reports whether ticket is valid and removes it.
func (t *Tickets) Consume(ticket string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	expiresAt, ok := t.tickets[ticket]
	if !ok {
		return false
	}
	delete(t.tickets, ticket)
	return t.now().Before(expiresAt)
}

// Clean drops tickets that expired before now.
func (t *Tickets) Clean(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for ticket, expiresAt := range t.tickets {
		if now.After(expiresAt) {
			delete(t.tickets, ticket)
		}
	}
}

// Len returns the number of pending tickets.
func (t *Tickets) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tickets)
}

// Run cleans expired tickets every TTL until ctx is cancelled.
func (t *Tickets) Run(ctx context.Context) {
	ticker := time.NewTicker(t.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.Clean(now)
		}
	}
}
