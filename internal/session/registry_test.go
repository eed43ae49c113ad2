package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merchquote/internal/pricing"
)

func TestRegistryCreateDefaults(t *testing.T) {
	r := NewRegistry(time.Hour)
	q := r.Create()

	require.NotEmpty(t, q.ID)
	assert.True(t, q.VATIncluded)
	assert.Equal(t, "primary", q.Letterhead)
	assert.Equal(t, 0, q.Ledger.Len())
	assert.NotNil(t, q.Overrides)
}

func TestRegistryGetAndDelete(t *testing.T) {
	r := NewRegistry(time.Hour)
	q := r.Create()

	got, ok := r.Get(q.ID)
	require.True(t, ok)
	assert.Same(t, q, got)

	r.Delete(q.ID)
	_, ok = r.Get(q.ID)
	assert.False(t, ok)

	// Deleting twice is harmless
	r.Delete(q.ID)
	assert.Equal(t, 0, r.Len())
}

func TestRegistrySweepEvictsIdleSessions(t *testing.T) {
	r := NewRegistry(10 * time.Millisecond)
	stale := r.Create()
	fresh := r.Create()

	stale.Lock()
	stale.lastAccess = time.Now().Add(-time.Minute)
	stale.Unlock()

	r.sweep()

	_, ok := r.Get(stale.ID)
	assert.False(t, ok)
	_, ok = r.Get(fresh.ID)
	assert.True(t, ok)
}

func TestApplyOverridesIsSparse(t *testing.T) {
	items := []pricing.LineItem{
		{ID: 1, Name: "Mug", Quantity: 2, UnitPrice: 10000},
		{ID: 2, Name: "Keyring", Quantity: 1, UnitPrice: 3000},
	}
	name := "Mug (display)"
	qty := 5
	overrides := map[int64]LineOverride{
		1: {Name: &name, Quantity: &qty},
	}

	got := ApplyOverrides(items, overrides)

	assert.Equal(t, "Mug (display)", got[0].Name)
	assert.Equal(t, 5, got[0].Quantity)
	// Fields without an override keep their ledger value
	assert.Equal(t, int64(10000), got[0].UnitPrice)
	assert.Equal(t, items[1], got[1])

	// The source slice is untouched
	assert.Equal(t, "Mug", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestApplyOverridesClamps(t *testing.T) {
	items := []pricing.LineItem{{ID: 1, Quantity: 2, UnitPrice: 1000}}
	badQty := -3
	badPrice := int64(-500)
	got := ApplyOverrides(items, map[int64]LineOverride{
		1: {Quantity: &badQty, UnitPrice: &badPrice},
	})

	assert.Equal(t, 0, got[0].Quantity)
	assert.Equal(t, int64(0), got[0].UnitPrice)
}
