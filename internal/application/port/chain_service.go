package port

import (
	"context"

	"coinctl/internal/domain/entity"
)

// ChainService answers questions about the target chain and its endpoints.
type ChainService interface {
	// DescribeChain returns the registry entry for chainID.
	DescribeChain(ctx context.Context, chainID int64) (entity.Chain, error)
	// CheckEndpoint probes rpcURL and fails when it serves a chain other than expectedChainID.
	CheckEndpoint(ctx context.Context, rpcURL entity.RPCURL, expectedChainID int64) (entity.RPCDetail, error)
	// ExplorerTxURL builds a block explorer link for a transaction hash.
	ExplorerTxURL(ctx context.Context, chainID int64, hash string) (string, error)
}
