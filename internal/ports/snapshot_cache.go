package ports

import (
	"context"
	"time"

	"github.com/bnema/networth-cli/internal/domain"
)

// SnapshotCache is the TTL-based store consulted around snapshot fetches.
// Retrieve reports a miss (expired or never stored) through its second
// return value rather than an error.
//
//go:generate mockgen -package=mocks -destination=mocks/snapshot_cache.go -source=snapshot_cache.go SnapshotCache
type SnapshotCache interface {
	Store(ctx context.Context, key string, snapshot domain.FinancialSnapshot, ttl time.Duration) error
	Retrieve(ctx context.Context, key string) (domain.FinancialSnapshot, bool, error)
}
