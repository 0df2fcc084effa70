package application

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"coinctl/internal/application/port"
	"coinctl/internal/domain/entity"
	domainRepo "coinctl/internal/domain/repository"
	domainService "coinctl/internal/domain/service"
	"coinctl/internal/pkg/apperrors"
)

// Compile-time check
var _ port.CoinService = (*coinService)(nil)

// coinService implements port.CoinService on top of the deployer, the indexer and the metadata validator.
// It never retries: every failure is logged at most once and handed back unchanged.
type coinService struct {
	deployer  domainService.CoinDeployer
	indexer   domainRepo.CoinIndexer
	validator domainService.MetadataValidator
	logger    *zap.Logger
}

// NewCoinService creates a new instance of the coin service.
func NewCoinService(
	deployer domainService.CoinDeployer,
	indexer domainRepo.CoinIndexer,
	validator domainService.MetadataValidator,
	logger *zap.Logger,
) port.CoinService {
	return &coinService{
		deployer:  deployer,
		indexer:   indexer,
		validator: validator,
		logger:    logger.Named("CoinService"),
	}
}

// CreateCoin mints a coin and logs the transaction hash, coin address and deployment.
func (s *coinService) CreateCoin(ctx context.Context, params entity.CoinParams) (*entity.CreateCoinResult, error) {
	result, err := s.createCoin(ctx, params)
	if err != nil {
		s.logger.Error("Error creating coin", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Transaction hash", zap.String("hash", result.Hash))
	s.logger.Info("Coin address", zap.String("address", result.Address))
	s.logger.Info("Deployment details", zap.Any("deployment", result.Deployment))

	return result, nil
}

func (s *coinService) createCoin(ctx context.Context, params entity.CoinParams) (*entity.CreateCoinResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.deployer.Deploy(ctx, params)
}

// FetchCoin queries the indexer. Errors pass through without logging.
// The response is returned as is, whether or not it holds a token.
func (s *coinService) FetchCoin(ctx context.Context, address string, chainID int64) (*entity.CoinResponse, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %q is not a valid coin address", apperrors.ErrInvalidInput, address)
	}

	response, err := s.indexer.GetCoin(ctx, address, chainID)
	if err != nil {
		return nil, err
	}

	if response != nil && response.Data.Zora20Token != nil {
		coin := response.Data.Zora20Token
		s.logger.Info("Coin Details",
			zap.String("name", coin.Name),
			zap.String("symbol", coin.Symbol),
			zap.String("description", coin.Description),
			zap.String("totalSupply", coin.TotalSupply),
			zap.String("marketCap", coin.MarketCap),
			zap.String("volume24h", coin.Volume24h),
			zap.String("creator", coin.CreatorAddress),
			zap.String("createdAt", coin.CreatedAt),
			zap.Int64("uniqueHolders", coin.UniqueHolders),
		)
		s.logger.Debug("Coin object", zap.Any("coin", coin))
	}

	return response, nil
}

// ValidateMetadataURI checks the URI scheme locally, then validates the content behind it.
// A scheme failure returns before any request is made.
func (s *coinService) ValidateMetadataURI(ctx context.Context, uri string) (*entity.MetadataValidation, error) {
	metadataURI, err := entity.NewMetadataURI(uri)
	if err != nil {
		return nil, err
	}

	result, err := s.validator.ValidateContent(ctx, metadataURI)
	if err != nil {
		s.logger.Error("Error validating URI", zap.String("uri", uri), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Validation result", zap.Any("result", result))
	return result, nil
}
