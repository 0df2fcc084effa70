package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"coinctl/internal/application/port"
	"coinctl/internal/config"
	"coinctl/internal/domain"
	"coinctl/internal/domain/entity"
	domainRepo "coinctl/internal/domain/repository"
	domainService "coinctl/internal/domain/service"
	"coinctl/internal/pkg/apperrors"
)

// Compile-time check
var _ port.ChainService = (*chainService)(nil)

// chainService implements port.ChainService over the chain registry, its cache and the RPC checker.
type chainService struct {
	chainRepo  domainRepo.ChainRepository
	cacheRepo  domainRepo.CacheRepository
	rpcChecker domainService.RPCChecker
	logger     *zap.Logger
	cfg        config.Config
}

// NewChainService creates a new instance of the chain service.
func NewChainService(
	chainRepo domainRepo.ChainRepository,
	cacheRepo domainRepo.CacheRepository,
	rpcChecker domainService.RPCChecker,
	logger *zap.Logger,
	cfg config.Config,
) port.ChainService {
	return &chainService{
		chainRepo:  chainRepo,
		cacheRepo:  cacheRepo,
		rpcChecker: rpcChecker,
		logger:     logger.Named("ChainService"),
		cfg:        cfg,
	}
}

// DescribeChain looks chainID up in the cache first, then in the full registry listing.
func (s *chainService) DescribeChain(ctx context.Context, chainID int64) (entity.Chain, error) {
	chain, found, err := s.cacheRepo.GetChain(ctx, chainID)
	if err != nil {
		s.logger.Warn("Cache error when getting chain", zap.Int64("chainId", chainID), zap.Error(err))
	}
	if found {
		return chain, nil
	}

	chains, err := s.allChains(ctx)
	if err != nil {
		return entity.Chain{}, err
	}

	for _, c := range chains {
		if c.ChainID != chainID {
			continue
		}
		if cacheErr := s.cacheRepo.SetChain(ctx, c, s.cfg.Cache.GetDefaultExpiration()); cacheErr != nil {
			s.logger.Warn("Failed to cache chain", zap.Int64("chainId", chainID), zap.Error(cacheErr))
		}
		return c, nil
	}

	return entity.Chain{}, fmt.Errorf("%w: chain with ID %d not found in registry", domain.ErrChainNotFound, chainID)
}

func (s *chainService) allChains(ctx context.Context) ([]entity.Chain, error) {
	cached, found, err := s.cacheRepo.GetChains(ctx)
	if err != nil {
		s.logger.Warn("Cache error when getting all chains", zap.Error(err))
	}
	if found {
		return cached, nil
	}

	chains, err := s.chainRepo.GetAllChains(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chains from registry: %w", err)
	}
	if cacheErr := s.cacheRepo.SetChains(ctx, chains, s.cfg.Cache.GetDefaultExpiration()); cacheErr != nil {
		s.logger.Warn("Failed to cache chains", zap.Error(cacheErr))
	}
	return chains, nil
}

// CheckEndpoint probes rpcURL within the checker timeout.
// A non-positive expectedChainID skips the chain comparison.
func (s *chainService) CheckEndpoint(
	ctx context.Context,
	rpcURL entity.RPCURL,
	expectedChainID int64,
) (entity.RPCDetail, error) {
	if timeout := s.cfg.Checker.GetTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	detail, err := s.rpcChecker.CheckRPC(ctx, rpcURL)
	if err != nil {
		return detail, err
	}

	s.logger.Debug("RPC endpoint responded",
		zap.String("protocol", string(detail.Protocol)),
		zap.Int64("chainId", detail.ChainID),
		zap.Int64("latencyMs", detail.LatencyMs),
	)

	if expectedChainID > 0 && detail.ChainID != expectedChainID {
		return detail, fmt.Errorf("%w: expected chain %d, endpoint reports %d",
			domain.ErrChainMismatch, expectedChainID, detail.ChainID,
		)
	}
	return detail, nil
}

// ExplorerTxURL returns the explorer link for hash on chainID.
func (s *chainService) ExplorerTxURL(ctx context.Context, chainID int64, hash string) (string, error) {
	chain, err := s.DescribeChain(ctx, chainID)
	if err != nil {
		return "", err
	}

	link := chain.TxURL(hash)
	if link == "" {
		return "", fmt.Errorf("%w: chain %d lists no EIP-3091 explorer", apperrors.ErrNotFound, chainID)
	}
	return link, nil
}
