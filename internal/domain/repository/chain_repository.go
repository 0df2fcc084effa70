package repository

import (
	"context"

	"coinctl/internal/domain/entity"
)

// ChainRepository defines the interface for accessing chain registry data.
type ChainRepository interface {
	// GetAllChains retrieves the list of all chains from the underlying data source.
	GetAllChains(ctx context.Context) ([]entity.Chain, error)
}
