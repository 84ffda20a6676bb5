package cache

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/networth-cli/internal/domain"
	"github.com/bnema/networth-cli/internal/ports"
)

// entry holds one cached snapshot with its expiry.
type entry struct {
	expiresAt time.Time
	snapshot  domain.FinancialSnapshot
}

// Memory is an in-process snapshot cache with per-entry TTL. Expired
// entries are evicted lazily on lookup.
type Memory struct {
	clock ports.Clock

	mu    sync.RWMutex
	items map[string]entry
}

var _ ports.SnapshotCache = (*Memory)(nil)

func NewMemory(clock ports.Clock) *Memory {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Memory{clock: clock, items: make(map[string]entry)}
}

func (c *Memory) Store(ctx context.Context, key string, snapshot domain.FinancialSnapshot, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry{expiresAt: c.clock.Now().Add(ttl), snapshot: snapshot}
	return nil
}

func (c *Memory) Retrieve(ctx context.Context, key string) (domain.FinancialSnapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.FinancialSnapshot{}, false, err
	}

	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return domain.FinancialSnapshot{}, false, nil
	}

	if !c.clock.Now().Before(item.expiresAt) {
		c.mu.Lock()
		// Recheck under the write lock in case a fresh entry replaced it.
		if current, still := c.items[key]; still && !c.clock.Now().Before(current.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return domain.FinancialSnapshot{}, false, nil
	}

	return item.snapshot, true, nil
}
