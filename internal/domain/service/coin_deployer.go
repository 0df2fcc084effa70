package service

import (
	"context"

	"coinctl/internal/domain/entity"
)

// CoinDeployer mints a coin on chain and waits for the deployment to be mined.
type CoinDeployer interface {
	Deploy(ctx context.Context, params entity.CoinParams) (*entity.CreateCoinResult, error)
}
