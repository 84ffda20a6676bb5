package cache

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/networth-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClock advances only when the test says so.
type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time { return c.now }

func (c *stubClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func snapshotFetchedAt(at time.Time) domain.FinancialSnapshot {
	return domain.FinancialSnapshot{FetchedAt: at}
}

func TestMemoryStoreRetrieveWithinTTL(t *testing.T) {
	t.Parallel()

	clock := &stubClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	memory := NewMemory(clock)

	stored := snapshotFetchedAt(clock.now)
	require.NoError(t, memory.Store(context.Background(), "snapshot/sess-1", stored, 15*time.Minute))

	clock.advance(14 * time.Minute)

	got, ok, err := memory.Retrieve(context.Background(), "snapshot/sess-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, stored.FetchedAt, got.FetchedAt)
}

func TestMemoryRetrieveExpiredEntryIsMiss(t *testing.T) {
	t.Parallel()

	clock := &stubClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	memory := NewMemory(clock)

	require.NoError(t, memory.Store(context.Background(), "snapshot/sess-1", snapshotFetchedAt(clock.now), 15*time.Minute))

	clock.advance(15 * time.Minute)

	_, ok, err := memory.Retrieve(context.Background(), "snapshot/sess-1")
	require.NoError(t, err)
	assert.False(t, ok)

	// The expired entry is gone, not just hidden.
	memory.mu.RLock()
	_, still := memory.items["snapshot/sess-1"]
	memory.mu.RUnlock()
	assert.False(t, still)
}

func TestMemoryRetrieveUnknownKeyIsMiss(t *testing.T) {
	t.Parallel()

	memory := NewMemory(nil)

	_, ok, err := memory.Retrieve(context.Background(), "snapshot/unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreZeroTTLDisablesCaching(t *testing.T) {
	t.Parallel()

	clock := &stubClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	memory := NewMemory(clock)

	require.NoError(t, memory.Store(context.Background(), "snapshot/sess-1", snapshotFetchedAt(clock.now), 0))

	_, ok, err := memory.Retrieve(context.Background(), "snapshot/sess-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreReplacesExistingEntry(t *testing.T) {
	t.Parallel()

	clock := &stubClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	memory := NewMemory(clock)

	first := snapshotFetchedAt(clock.now)
	require.NoError(t, memory.Store(context.Background(), "snapshot/sess-1", first, 15*time.Minute))

	clock.advance(5 * time.Minute)
	second := snapshotFetchedAt(clock.now)
	require.NoError(t, memory.Store(context.Background(), "snapshot/sess-1", second, 15*time.Minute))

	got, ok, err := memory.Retrieve(context.Background(), "snapshot/sess-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second.FetchedAt, got.FetchedAt)
}

func TestMemoryRetrieveCanceledContextReturnsContextError(t *testing.T) {
	t.Parallel()

	memory := NewMemory(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := memory.Retrieve(ctx, "snapshot/sess-1")
	require.ErrorIs(t, err, context.Canceled)
}
