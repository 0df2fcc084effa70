package repository

import (
	"context"
	"time"

	"coinctl/internal/domain/entity"
)

// CacheRepository defines the interface for caching chain registry data.
type CacheRepository interface {
	// GetChains retrieves the cached list of all chains.
	GetChains(ctx context.Context) ([]entity.Chain, bool, error)

	// SetChains stores the list of all chains in the cache with a specified TTL.
	SetChains(ctx context.Context, chains []entity.Chain, ttl time.Duration) error

	// GetChain retrieves a single cached chain by ID.
	GetChain(ctx context.Context, chainID int64) (entity.Chain, bool, error)

	// SetChain stores a single chain by ID with a specified TTL.
	SetChain(ctx context.Context, chain entity.Chain, ttl time.Duration) error
}
