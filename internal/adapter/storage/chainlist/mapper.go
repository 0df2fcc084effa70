package chainlist

import (
	"strings"

	"go.uber.org/zap"

	dto "coinctl/internal/adapter/storage/chainlist/dto"
	"coinctl/internal/domain/entity"
)

// mapNetworkType converts a raw network type, falling back to the chain name when the field is absent.
func mapNetworkType(rawType dto.NetworkTypeRaw, name string) entity.NetworkType {
	switch rawType {
	case dto.NetworkMainnetRaw:
		return entity.NetworkMainnet
	case dto.NetworkTestnetRaw:
		return entity.NetworkTestnet
	case "":
		lower := strings.ToLower(name)
		if strings.Contains(lower, "testnet") || strings.Contains(lower, "sepolia") {
			return entity.NetworkTestnet
		}
		return entity.NetworkMainnet
	default:
		return entity.NetworkType(rawType)
	}
}

// toDomainChains maps raw records to domain chains, dropping records without a positive chain id.
func toDomainChains(rawChains []dto.ChainRaw, logger *zap.Logger) []entity.Chain {
	if rawChains == nil {
		return nil
	}
	domainChains := make([]entity.Chain, 0, len(rawChains))
	for _, raw := range rawChains {
		if raw.ChainID <= 0 {
			if logger != nil {
				logger.Warn("Skipping chain without a valid id", zap.String("name", raw.Name))
			}
			continue
		}

		var explorers []entity.Explorer
		if raw.Explorers != nil {
			explorers = make([]entity.Explorer, len(raw.Explorers))
			for j, eRaw := range raw.Explorers {
				explorers[j] = entity.Explorer{
					Name:     eRaw.Name,
					URL:      eRaw.URL,
					Standard: eRaw.Standard,
				}
			}
		}

		domainChains = append(domainChains, entity.Chain{
			Name:      raw.Name,
			ShortName: raw.ShortName,
			ChainID:   raw.ChainID,
			Currency: entity.Currency{
				Name:     raw.Currency.Name,
				Symbol:   raw.Currency.Symbol,
				Decimals: raw.Currency.Decimals,
			},
			Explorers: explorers,
			InfoURL:   raw.InfoURL,
			Network:   mapNetworkType(raw.Network, raw.Name),
		})
	}
	return domainChains
}
