package service

import (
	"context"

	"coinctl/internal/domain/entity"
)

// RPCChecker defines the interface for probing an RPC endpoint.
type RPCChecker interface {
	CheckRPC(ctx context.Context, rpcURL entity.RPCURL) (entity.RPCDetail, error)
}
