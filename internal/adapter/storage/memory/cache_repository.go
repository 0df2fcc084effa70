package memory

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"coinctl/internal/config"
	"coinctl/internal/domain/entity"
	domainRepo "coinctl/internal/domain/repository"
)

// Compile-time check
var _ domainRepo.CacheRepository = (*CacheRepository)(nil)

// Cache keys
const (
	allChainsKey   = "all_chains"
	chainKeyPrefix = "chain_"
)

// CacheRepository implements domainRepo.CacheRepository using the go-cache in-memory library.
type CacheRepository struct {
	cache      *cache.Cache
	defaultTTL time.Duration
	logger     *zap.Logger
}

// NewCacheRepository creates a new in-memory cache repository instance.
func NewCacheRepository(cfg config.CacheConfig, logger *zap.Logger) domainRepo.CacheRepository {
	defaultExpiration := cfg.GetDefaultExpiration()
	cleanupInterval := cfg.GetCleanupInterval()

	logger = logger.Named("MemoryCacheStorage")
	logger.Debug("Initialized go-cache for memory storage",
		zap.Duration("defaultExpiration", defaultExpiration),
		zap.Duration("cleanupInterval", cleanupInterval),
	)

	return &CacheRepository{
		cache:      cache.New(defaultExpiration, cleanupInterval),
		defaultTTL: defaultExpiration,
		logger:     logger,
	}
}

// GetChains retrieves the cached full list of chains, returning found status.
func (r *CacheRepository) GetChains(_ context.Context) ([]entity.Chain, bool, error) {
	if x, found := r.cache.Get(allChainsKey); found {
		if chains, ok := x.([]entity.Chain); ok {
			r.logger.Debug("Memory cache hit", zap.String("key", allChainsKey))
			return chains, true, nil
		}
		r.logger.Warn("Memory cache data type mismatch for key",
			zap.String("key", allChainsKey), zap.String("type", fmt.Sprintf("%T", x)),
		)
	}
	r.logger.Debug("Memory cache miss", zap.String("key", allChainsKey))
	return nil, false, nil
}

// SetChains caches the full list of chains. A non-positive ttl uses the configured default.
func (r *CacheRepository) SetChains(_ context.Context, chains []entity.Chain, ttl time.Duration) error {
	ttl = r.ttl(ttl)
	r.cache.Set(allChainsKey, chains, ttl)
	r.logger.Debug("Memory cache set", zap.String("key", allChainsKey), zap.Duration("ttl", ttl))
	return nil
}

// GetChain retrieves a single cached chain, returning found status.
func (r *CacheRepository) GetChain(_ context.Context, chainID int64) (entity.Chain, bool, error) {
	key := chainKey(chainID)
	if x, found := r.cache.Get(key); found {
		if chain, ok := x.(entity.Chain); ok {
			r.logger.Debug("Memory cache hit", zap.String("key", key))
			return chain, true, nil
		}
		r.logger.Warn("Memory cache data type mismatch for key",
			zap.String("key", key), zap.String("type", fmt.Sprintf("%T", x)),
		)
	}
	r.logger.Debug("Memory cache miss", zap.String("key", key))
	return entity.Chain{}, false, nil
}

// SetChain caches a single chain under its id.
func (r *CacheRepository) SetChain(_ context.Context, chain entity.Chain, ttl time.Duration) error {
	key := chainKey(chain.ChainID)
	ttl = r.ttl(ttl)
	r.cache.Set(key, chain, ttl)
	r.logger.Debug("Memory cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *CacheRepository) ttl(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return r.defaultTTL
	}
	return ttl
}

func chainKey(chainID int64) string {
	return chainKeyPrefix + strconv.FormatInt(chainID, 10)
}
