package port

import (
	"context"

	"coinctl/internal/domain/entity"
)

// CoinService is the set of coin operations exposed to the command line.
type CoinService interface {
	CreateCoin(ctx context.Context, params entity.CoinParams) (*entity.CreateCoinResult, error)
	FetchCoin(ctx context.Context, address string, chainID int64) (*entity.CoinResponse, error)
	ValidateMetadataURI(ctx context.Context, uri string) (*entity.MetadataValidation, error)
}
