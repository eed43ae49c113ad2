// Package session owns the live quoting sessions. Each session holds one
// ledger plus its render settings; a session belongs to exactly one operator
// interaction and access to it is serialized through its embedded mutex.
// Sessions live in process memory only — a quote that should outlive the
// session is persisted explicitly through the save endpoint.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"merchquote/internal/pricing"
)

// LineOverride is a sparse per-template override of one committed line.
// Applied read-through when render/export data is assembled; the canonical
// ledger entry is never mutated to satisfy a template-specific view.
type LineOverride struct {
	Name      *string
	Quantity  *int
	UnitPrice *int64
}

// Quote is one live quoting session.
type Quote struct {
	sync.Mutex

	ID          string
	Ledger      *pricing.Ledger
	VATIncluded bool
	Letterhead  string // letterhead key, see model.Letterhead
	Customer    string
	Overrides   map[int64]LineOverride

	lastAccess time.Time
}

// Touch refreshes the idle timer. Callers hold the session lock.
func (q *Quote) Touch() { q.lastAccess = time.Now() }

// ApplyOverrides returns a copy of items with the overlay applied. Quantity
// and unit-price overrides are clamped the same way the ledger clamps.
func ApplyOverrides(items []pricing.LineItem, overrides map[int64]LineOverride) []pricing.LineItem {
	out := make([]pricing.LineItem, len(items))
	copy(out, items)
	for i := range out {
		ov, ok := overrides[out[i].ID]
		if !ok {
			continue
		}
		if ov.Name != nil {
			out[i].Name = *ov.Name
		}
		if ov.Quantity != nil {
			q := *ov.Quantity
			if q < 0 {
				q = 0
			}
			out[i].Quantity = q
		}
		if ov.UnitPrice != nil {
			p := *ov.UnitPrice
			if p < 0 {
				p = 0
			}
			out[i].UnitPrice = p
		}
	}
	return out
}

// Registry maps session ids to live quotes. The registry lock only guards
// the map; per-quote state is guarded by the quote's own mutex.
type Registry struct {
	mu     sync.RWMutex
	quotes map[string]*Quote
	ttl    time.Duration
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		quotes: make(map[string]*Quote),
		ttl:    ttl,
	}
}

// Create opens a new session with an empty ledger and default settings
// (VAT-inclusive, primary letterhead).
func (r *Registry) Create() *Quote {
	q := &Quote{
		ID:          uuid.NewString(),
		Ledger:      pricing.NewLedger(),
		VATIncluded: true,
		Letterhead:  "primary",
		Overrides:   make(map[int64]LineOverride),
		lastAccess:  time.Now(),
	}
	r.mu.Lock()
	r.quotes[q.ID] = q
	r.mu.Unlock()
	return q
}

func (r *Registry) Get(id string) (*Quote, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.quotes[id]
	return q, ok
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.quotes, id)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.quotes)
}

// StartSweeper evicts sessions idle past the TTL. Respects ctx for shutdown.
func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.sweep()
			}
		}
	}()
}

func (r *Registry) sweep() {
	cutoff := time.Now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, q := range r.quotes {
		q.Lock()
		idle := q.lastAccess.Before(cutoff)
		q.Unlock()
		if idle {
			delete(r.quotes, id)
			evicted++
		}
	}
	if evicted > 0 {
		log.Debug().Int("evicted", evicted).Int("remaining", len(r.quotes)).Msg("session sweep")
	}
}
