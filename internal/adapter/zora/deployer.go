package zora

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"coinctl/internal/config"
	"coinctl/internal/domain"
	"coinctl/internal/domain/entity"
	domainService "coinctl/internal/domain/service"
	"coinctl/internal/pkg/apperrors"
)

// Compile-time check
var _ domainService.CoinDeployer = (*Deployer)(nil)

// ChainReader is the read side of the chain the deployer needs.
type ChainReader interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// TransactionSender signs and submits transactions for a single account.
type TransactionSender interface {
	Address() common.Address
	ChainID() *big.Int
	PendingNonce(ctx context.Context) (uint64, error)
	SendTransaction(ctx context.Context, txdata types.TxData) (*types.Transaction, error)
}

// Deployer mints coins through the coin factory contract.
type Deployer struct {
	reader    ChainReader
	sender    TransactionSender
	validator domainService.MetadataValidator
	chain     config.ChainConfig
	tx        config.TxConfig
	logger    *zap.Logger
}

// NewDeployer creates a coin deployer. A nil validator skips metadata content checks.
func NewDeployer(
	chainCfg config.ChainConfig,
	txCfg config.TxConfig,
	reader ChainReader,
	sender TransactionSender,
	validator domainService.MetadataValidator,
	logger *zap.Logger,
) domainService.CoinDeployer {
	return &Deployer{
		reader:    reader,
		sender:    sender,
		validator: validator,
		chain:     chainCfg,
		tx:        txCfg,
		logger:    logger.Named("ZoraDeployer"),
	}
}

// Deploy simulates, signs and submits the factory deploy call, then waits for it to be mined.
func (d *Deployer) Deploy(ctx context.Context, params entity.CoinParams) (*entity.CreateCoinResult, error) {
	uri, err := entity.NewMetadataURI(params.URI)
	if err != nil {
		return nil, err
	}
	if d.validator != nil {
		if _, err := d.validator.ValidateContent(ctx, uri); err != nil {
			return nil, err
		}
	}

	calldata, err := d.buildCalldata(params)
	if err != nil {
		return nil, err
	}

	factory := common.HexToAddress(d.chain.FactoryAddress)
	from := d.sender.Address()
	msg := ethereum.CallMsg{
		From:  from,
		To:    &factory,
		Value: new(big.Int),
		Data:  calldata,
	}

	output, err := d.reader.CallContract(ctx, msg, nil)
	if err != nil {
		d.logger.Debug("Deploy simulation failed", zap.String("factory", factory.Hex()), zap.Error(err))
		return nil, fmt.Errorf("simulate deploy: %w", err)
	}
	if predicted, uErr := unpackPredictedCoin(output); uErr == nil {
		d.logger.Debug("Deploy simulation succeeded", zap.String("predictedCoin", predicted.Hex()))
	}

	txdata, err := d.buildTx(ctx, msg)
	if err != nil {
		return nil, err
	}

	signed, err := d.sender.SendTransaction(ctx, txdata)
	if err != nil {
		return nil, fmt.Errorf("send deploy transaction: %w", err)
	}
	d.logger.Debug("Deploy transaction submitted",
		zap.String("hash", signed.Hash().Hex()),
		zap.Uint64("nonce", signed.Nonce()),
		zap.Uint64("gas", signed.Gas()),
	)

	receipt, err := d.waitReceipt(ctx, signed.Hash())
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s", domain.ErrTransactionReverted, signed.Hash().Hex())
	}

	event, err := findCoinCreated(receipt.Logs, factory)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExternalServiceFailure, err)
	}
	if event == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCoinNotCreated, signed.Hash().Hex())
	}

	return &entity.CreateCoinResult{
		Hash:    signed.Hash().Hex(),
		Address: event.Coin.Hex(),
		Deployment: &entity.Deployment{
			Caller:           event.Caller.Hex(),
			PayoutRecipient:  event.PayoutRecipient.Hex(),
			PlatformReferrer: event.PlatformReferrer.Hex(),
			Currency:         event.Currency.Hex(),
			URI:              event.Uri,
			Name:             event.Name,
			Symbol:           event.Symbol,
			Coin:             event.Coin.Hex(),
			Pool:             event.Pool.Hex(),
			Version:          event.Version,
			BlockNumber:      blockNumber(receipt),
			GasUsed:          receipt.GasUsed,
		},
	}, nil
}

func (d *Deployer) buildCalldata(params entity.CoinParams) ([]byte, error) {
	poolConfig, err := encodePoolConfig(common.HexToAddress(d.chain.Currency), d.chain.TickLower)
	if err != nil {
		return nil, fmt.Errorf("%w: encode pool config: %v", apperrors.ErrInternal, err)
	}

	payout := common.HexToAddress(params.PayoutRecipient)
	owners := []common.Address{payout}
	if len(params.Owners) > 0 {
		owners = make([]common.Address, 0, len(params.Owners))
		for _, o := range params.Owners {
			owners = append(owners, common.HexToAddress(o))
		}
	}

	referrer := params.PlatformReferrer
	if referrer == "" {
		referrer = d.chain.PlatformReferrer
	}

	data, err := packDeploy(deployArgs{
		PayoutRecipient:  payout,
		Owners:           owners,
		URI:              params.URI,
		Name:             params.Name,
		Symbol:           params.Symbol,
		PoolConfig:       poolConfig,
		PlatformReferrer: common.HexToAddress(referrer),
		OrderSize:        new(big.Int),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: pack deploy call: %v", apperrors.ErrInternal, err)
	}
	return data, nil
}

// buildTx prices and nonces an EIP-1559 transaction for msg.
func (d *Deployer) buildTx(ctx context.Context, msg ethereum.CallMsg) (*types.DynamicFeeTx, error) {
	gas, err := d.reader.EstimateGas(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("estimate gas: %w", err)
	}
	gas += gas * d.tx.GasBufferPercent / 100

	tip, err := d.reader.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas tip: %w", err)
	}
	head, err := d.reader.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch latest header: %w", err)
	}
	baseFee := new(big.Int)
	if head.BaseFee != nil {
		baseFee.Set(head.BaseFee)
	}
	feeCap := new(big.Int).Add(new(big.Int).Mul(baseFee, big.NewInt(2)), tip)

	nonce, err := d.sender.PendingNonce(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch pending nonce: %w", err)
	}

	d.logger.Debug("Deploy transaction priced",
		zap.Uint64("gas", gas),
		zap.String("tipCap", tip.String()),
		zap.String("feeCap", feeCap.String()),
		zap.Uint64("nonce", nonce),
	)

	return &types.DynamicFeeTx{
		ChainID:   d.sender.ChainID(),
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        msg.To,
		Value:     new(big.Int),
		Data:      msg.Data,
	}, nil
}

// waitReceipt polls until the transaction is mined, the receipt timeout passes or ctx is done.
func (d *Deployer) waitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if timeout := d.tx.GetReceiptTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(d.tx.GetPollInterval())
	defer ticker.Stop()

	for {
		receipt, err := d.reader.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) && ctx.Err() == nil {
			return nil, fmt.Errorf("fetch receipt %s: %w", hash.Hex(), err)
		}

		d.logger.Debug("Waiting for receipt", zap.String("hash", hash.Hex()))

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: receipt for %s not available after %v",
					apperrors.ErrTimeout, hash.Hex(), d.tx.GetReceiptTimeout(),
				)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func blockNumber(receipt *types.Receipt) uint64 {
	if receipt.BlockNumber == nil {
		return 0
	}
	return receipt.BlockNumber.Uint64()
}
