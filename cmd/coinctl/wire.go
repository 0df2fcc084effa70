package main

import (
	"context"

	"go.uber.org/zap"

	"coinctl/internal/adapter/indexer"
	"coinctl/internal/adapter/metadata"
	"coinctl/internal/adapter/rpc"
	"coinctl/internal/adapter/storage/chainlist"
	"coinctl/internal/adapter/storage/memory"
	"coinctl/internal/adapter/wallet"
	"coinctl/internal/adapter/zora"
	"coinctl/internal/application"
	"coinctl/internal/application/port"
	domainService "coinctl/internal/domain/service"
)

// services is the dependency graph for one command invocation.
type services struct {
	clients *wallet.Clients
	coins   port.CoinService
	chains  port.ChainService
}

func (s *services) close() {
	s.clients.Close()
}

// build wires adapters into the application services. No network I/O happens here.
func (a *app) build() (*services, error) {
	a.logger.Debug("Initializing dependencies...")

	clients, err := wallet.Initialize(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}

	metadataValidator := metadata.NewValidator(a.cfg.Metadata, a.logger)
	var deployValidator domainService.MetadataValidator
	if a.cfg.Metadata.ValidateOnCreate {
		deployValidator = metadataValidator
	}

	deployer := zora.NewDeployer(a.cfg.Chain, a.cfg.Tx, clients.Public, clients.Wallet, deployValidator, a.logger)
	coinIndexer := indexer.NewClient(a.cfg.Indexer, a.logger)

	chainRepo := chainlist.NewRepository(a.cfg.Chainlist, a.logger)
	cacheRepo := memory.NewCacheRepository(a.cfg.Cache, a.logger)
	rpcChecker := rpc.NewChecker(a.cfg.Checker, a.logger)

	return &services{
		clients: clients,
		coins:   application.NewCoinService(deployer, coinIndexer, metadataValidator, a.logger),
		chains:  application.NewChainService(chainRepo, cacheRepo, rpcChecker, a.logger, *a.cfg),
	}, nil
}

// describeChain logs the configured chain. Registry failures only warn.
func (a *app) describeChain(ctx context.Context, chains port.ChainService) {
	chain, err := chains.DescribeChain(ctx, a.cfg.Chain.ID)
	if err != nil {
		a.logger.Warn("Could not describe chain", zap.Int64("chainId", a.cfg.Chain.ID), zap.Error(err))
		return
	}
	a.logger.Info("Chain",
		zap.String("name", chain.Name),
		zap.Int64("chainId", chain.ChainID),
		zap.String("currency", chain.Currency.Symbol),
		zap.String("network", string(chain.Network)),
	)
}
