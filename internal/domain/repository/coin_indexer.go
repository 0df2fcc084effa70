package repository

import (
	"context"

	"coinctl/internal/domain/entity"
)

// CoinIndexer is the read-only indexing service holding aggregated coin data.
type CoinIndexer interface {
	// GetCoin queries a single coin by contract address and chain ID.
	GetCoin(ctx context.Context, address string, chainID int64) (*entity.CoinResponse, error)
}
