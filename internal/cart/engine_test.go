package cart

import (
	"context"
	"testing"

	"storefront/internal/models"
	"storefront/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	whey     = models.Product{ID: 1, Name: "Whey Protein Isolate", Price: 8990, Image: "/uploads/whey.png"}
	creatine = models.Product{ID: 2, Name: "Creatina Monohidratada", Price: 4990}
	sample   = models.Product{ID: 3, Name: "Amostra Grátis", Price: 0}
)

func newTestEngine() (*Engine, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	return NewEngine("sid-1", store), store
}

func TestAddIncrementsExistingLine(t *testing.T) {
	eng, _ := newTestEngine()
	ctx := context.Background()

	eng.Add(ctx, whey)
	eng.Add(ctx, whey)

	lines := eng.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, whey.ID, lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 2, eng.Count())
}

func TestDecrementClampsAtFloor(t *testing.T) {
	eng, _ := newTestEngine()
	ctx := context.Background()

	eng.Add(ctx, whey)
	eng.AdjustQuantity(ctx, whey.ID, -1)

	lines := eng.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity, "decrement at quantity 1 must be a no-op")
}

func TestOnlyRemoveDeletesLine(t *testing.T) {
	eng, _ := newTestEngine()
	ctx := context.Background()

	eng.Add(ctx, whey)
	eng.AdjustQuantity(ctx, whey.ID, -1)
	eng.AdjustQuantity(ctx, whey.ID, -1)
	require.Len(t, eng.Lines(), 1)

	eng.Remove(ctx, whey.ID)
	assert.Empty(t, eng.Lines())
}

func TestAdjustQuantityIgnoresUnknownProductAndBadDelta(t *testing.T) {
	eng, _ := newTestEngine()
	ctx := context.Background()

	eng.Add(ctx, whey)
	eng.AdjustQuantity(ctx, 999, 1)
	eng.AdjustQuantity(ctx, whey.ID, 5)

	lines := eng.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestTotalSumsPriceTimesQuantity(t *testing.T) {
	eng, _ := newTestEngine()
	ctx := context.Background()

	eng.Add(ctx, whey)
	eng.Add(ctx, whey)
	eng.Add(ctx, creatine)
	eng.Add(ctx, sample)

	expected := int64(2*8990 + 1*4990)
	assert.Equal(t, expected, eng.Total(), "zero-price line contributes nothing")
	assert.Equal(t, 4, eng.Count())
}

func TestPersistenceRoundTrip(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	eng := NewEngine("sid-rt", store)
	eng.Add(ctx, whey)
	eng.Add(ctx, creatine)
	eng.AdjustQuantity(ctx, creatine.ID, 1)

	restored := NewEngine("sid-rt", store)
	restored.Restore(ctx)

	assert.Equal(t, eng.Lines(), restored.Lines(), "lines, quantities and order survive the round trip")
	assert.Equal(t, eng.Total(), restored.Total())
}

func TestRestoreDiscardsMalformedData(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, storage.CartKey("sid-bad"), "{not json"))

	eng := NewEngine("sid-bad", store)
	eng.Restore(ctx)

	assert.Empty(t, eng.Lines())
	_, err := store.Get(ctx, storage.CartKey("sid-bad"))
	assert.ErrorIs(t, err, storage.ErrNotFound, "corrupt key is cleared, not retried")
}

func TestAddEmitsLineAddedEvent(t *testing.T) {
	eng, _ := newTestEngine()
	ctx := context.Background()

	var events []Event
	eng.Subscribe(func(ev Event) { events = append(events, ev) })

	eng.Add(ctx, whey)
	eng.Add(ctx, whey)

	require.Len(t, events, 2)
	assert.Equal(t, models.EventTypeCartLineAdded, events[0].Type)
	assert.True(t, events[0].NewLine)
	assert.False(t, events[1].NewLine)
	assert.Equal(t, 2, events[1].Line.Quantity)
}

func TestClearEmptiesCartAndPersists(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	eng := NewEngine("sid-clear", store)
	eng.Add(ctx, whey)
	eng.Clear(ctx)

	assert.Zero(t, eng.Count())

	restored := NewEngine("sid-clear", store)
	restored.Restore(ctx)
	assert.Empty(t, restored.Lines())
}

func TestManagerSharesEngineAcrossContexts(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewManager(store)
	ctx := context.Background()

	a := m.Get(ctx, "sid-shared")
	b := m.Get(ctx, "sid-shared")

	assert.Same(t, a, b, "two tabs with one cookie share one cart copy")
}
