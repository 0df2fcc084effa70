package zora

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coinctl/internal/config"
	"coinctl/internal/domain"
	"coinctl/internal/domain/entity"
	"coinctl/internal/pkg/apperrors"
)

var (
	testFactory  = common.HexToAddress("0x777777751622c0d3258f214F9DF38E35BF45baF3")
	testCurrency = common.HexToAddress("0x4200000000000000000000000000000000000006")
	testSender   = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	testCoin     = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testPool     = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

type fakeReader struct {
	callErr       error
	calls         []ethereum.CallMsg
	gas           uint64
	tip           *big.Int
	baseFee       *big.Int
	receipt       *types.Receipt
	pendingPolls  int
	receiptPolls  int
	alwaysPending bool
}

func (f *fakeReader) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls = append(f.calls, msg)
	if f.callErr != nil {
		return nil, f.callErr
	}
	return factoryABI.Methods[methodDeploy].Outputs.Pack(testCoin, big.NewInt(0))
}

func (f *fakeReader) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return f.gas, nil
}

func (f *fakeReader) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return f.tip, nil
}

func (f *fakeReader) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{BaseFee: f.baseFee}, nil
}

func (f *fakeReader) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	f.receiptPolls++
	if f.alwaysPending || f.receiptPolls <= f.pendingPolls {
		return nil, ethereum.NotFound
	}
	return f.receipt, nil
}

type fakeSender struct {
	sent []*types.Transaction
	err  error
}

func (f *fakeSender) Address() common.Address { return testSender }
func (f *fakeSender) ChainID() *big.Int       { return big.NewInt(entity.ChainBase) }

func (f *fakeSender) PendingNonce(context.Context) (uint64, error) { return 7, nil }

func (f *fakeSender) SendTransaction(_ context.Context, txdata types.TxData) (*types.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	tx := types.NewTx(txdata)
	f.sent = append(f.sent, tx)
	return tx, nil
}

type fakeValidator struct {
	calls int
	err   error
}

func (f *fakeValidator) ValidateContent(_ context.Context, uri entity.MetadataURI) (*entity.MetadataValidation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &entity.MetadataValidation{URI: uri, Valid: true}, nil
}

func coinCreatedLog(t *testing.T, params entity.CoinParams) *types.Log {
	t.Helper()
	event := factoryABI.Events[eventCoinCreated]
	data, err := event.Inputs.NonIndexed().Pack(
		testCurrency, params.URI, params.Name, params.Symbol, testCoin, testPool, "v4",
	)
	require.NoError(t, err)
	return &types.Log{
		Address: testFactory,
		Topics: []common.Hash{
			event.ID,
			common.BytesToHash(testSender.Bytes()),
			common.BytesToHash(common.HexToAddress(params.PayoutRecipient).Bytes()),
			{},
		},
		Data: data,
	}
}

func tigerParams() entity.CoinParams {
	return entity.CoinParams{
		Name:            "Tiger",
		Symbol:          "TGR",
		URI:             "ipfs://bafybeigoxzqzbnxsn35vq7lls3ljxdcwjafxvbvkivprsodzrptpiguysy",
		PayoutRecipient: testSender.Hex(),
	}
}

func testConfigs() (config.ChainConfig, config.TxConfig) {
	return config.ChainConfig{
			ID:               entity.ChainBase,
			FactoryAddress:   testFactory.Hex(),
			Currency:         testCurrency.Hex(),
			PlatformReferrer: common.Address{}.Hex(),
			TickLower:        -199200,
		}, config.TxConfig{
			ReceiptTimeout:   time.Second,
			PollInterval:     time.Millisecond,
			GasBufferPercent: 20,
		}
}

func newTestDeployer(reader *fakeReader, sender *fakeSender, validator *fakeValidator) *Deployer {
	chainCfg, txCfg := testConfigs()
	d := NewDeployer(chainCfg, txCfg, reader, sender, nil, zap.NewNop()).(*Deployer)
	if validator != nil {
		d.validator = validator
	}
	return d
}

func successfulReader(t *testing.T, params entity.CoinParams) *fakeReader {
	return &fakeReader{
		gas:     100_000,
		tip:     big.NewInt(1_000_000),
		baseFee: big.NewInt(10_000_000),
		receipt: &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(123),
			GasUsed:     95_000,
			Logs:        []*types.Log{coinCreatedLog(t, params)},
		},
	}
}

func TestDeployer_Deploy_Success(t *testing.T) {
	params := tigerParams()
	reader := successfulReader(t, params)
	reader.pendingPolls = 2
	sender := &fakeSender{}
	validator := &fakeValidator{}

	result, err := newTestDeployer(reader, sender, validator).Deploy(context.Background(), params)
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	tx := sender.sent[0]
	assert.Equal(t, 1, validator.calls)
	assert.Equal(t, 3, reader.receiptPolls)
	assert.Equal(t, tx.Hash().Hex(), result.Hash)
	assert.Equal(t, testCoin.Hex(), result.Address)

	require.NotNil(t, result.Deployment)
	assert.Equal(t, "Tiger", result.Deployment.Name)
	assert.Equal(t, "TGR", result.Deployment.Symbol)
	assert.Equal(t, params.URI, result.Deployment.URI)
	assert.Equal(t, testPool.Hex(), result.Deployment.Pool)
	assert.Equal(t, testSender.Hex(), result.Deployment.Caller)
	assert.Equal(t, testCurrency.Hex(), result.Deployment.Currency)
	assert.Equal(t, "v4", result.Deployment.Version)
	assert.Equal(t, uint64(123), result.Deployment.BlockNumber)
	assert.Equal(t, uint64(95_000), result.Deployment.GasUsed)

	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(120_000), tx.Gas())
	assert.Equal(t, int64(1_000_000), tx.GasTipCap().Int64())
	assert.Equal(t, int64(21_000_000), tx.GasFeeCap().Int64())
	assert.Equal(t, testFactory, *tx.To())
	assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
}

func TestDeployer_Calldata(t *testing.T) {
	params := tigerParams()
	reader := successfulReader(t, params)

	_, err := newTestDeployer(reader, &fakeSender{}, nil).Deploy(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, reader.calls, 1)

	call := reader.calls[0]
	assert.Equal(t, testSender, call.From)
	method := factoryABI.Methods[methodDeploy]
	require.Equal(t, method.ID, call.Data[:4])

	values, err := method.Inputs.Unpack(call.Data[4:])
	require.NoError(t, err)
	require.Len(t, values, 8)

	assert.Equal(t, testSender, values[0])
	assert.Equal(t, []common.Address{testSender}, values[1])
	assert.Equal(t, params.URI, values[2])
	assert.Equal(t, "Tiger", values[3])
	assert.Equal(t, "TGR", values[4])
	assert.Equal(t, common.Address{}, values[6])
	assert.Equal(t, 0, values[7].(*big.Int).Sign())

	poolConfig := values[5].([]byte)
	require.Len(t, poolConfig, 96)
	assert.Equal(t, byte(1), poolConfig[31])
	assert.Equal(t, testCurrency, common.BytesToAddress(poolConfig[32:64]))
	tick := new(big.Int).SetBytes(poolConfig[64:96])
	tick.Sub(tick, new(big.Int).Lsh(big.NewInt(1), 256))
	assert.Equal(t, int64(-199200), tick.Int64())
}

func TestDeployer_SimulationFailureSendsNothing(t *testing.T) {
	params := tigerParams()
	reader := successfulReader(t, params)
	reader.callErr = errors.New("execution reverted")
	sender := &fakeSender{}

	_, err := newTestDeployer(reader, sender, nil).Deploy(context.Background(), params)
	require.Error(t, err)
	assert.ErrorIs(t, err, reader.callErr)
	assert.Empty(t, sender.sent)
}

func TestDeployer_ValidatorFailureStopsBeforeChain(t *testing.T) {
	params := tigerParams()
	reader := successfulReader(t, params)
	validator := &fakeValidator{err: domain.ErrInvalidMetadata}

	_, err := newTestDeployer(reader, &fakeSender{}, validator).Deploy(context.Background(), params)
	require.ErrorIs(t, err, domain.ErrInvalidMetadata)
	assert.Empty(t, reader.calls)
}

func TestDeployer_RejectsURIScheme(t *testing.T) {
	params := tigerParams()
	params.URI = "ftp://example.com"
	reader := successfulReader(t, params)

	_, err := newTestDeployer(reader, &fakeSender{}, nil).Deploy(context.Background(), params)
	require.ErrorIs(t, err, domain.ErrInvalidMetadataURIFormat)
	assert.Empty(t, reader.calls)
}

func TestDeployer_Reverted(t *testing.T) {
	params := tigerParams()
	reader := successfulReader(t, params)
	reader.receipt.Status = types.ReceiptStatusFailed

	_, err := newTestDeployer(reader, &fakeSender{}, nil).Deploy(context.Background(), params)
	require.ErrorIs(t, err, domain.ErrTransactionReverted)
}

func TestDeployer_MissingEvent(t *testing.T) {
	params := tigerParams()
	reader := successfulReader(t, params)
	reader.receipt.Logs[0].Address = common.HexToAddress("0x3333333333333333333333333333333333333333")

	_, err := newTestDeployer(reader, &fakeSender{}, nil).Deploy(context.Background(), params)
	require.ErrorIs(t, err, domain.ErrCoinNotCreated)
}

func TestDeployer_ReceiptTimeout(t *testing.T) {
	params := tigerParams()
	reader := successfulReader(t, params)
	reader.alwaysPending = true

	d := newTestDeployer(reader, &fakeSender{}, nil)
	d.tx.ReceiptTimeout = 20 * time.Millisecond
	d.tx.PollInterval = 5 * time.Millisecond

	_, err := d.Deploy(context.Background(), params)
	require.ErrorIs(t, err, apperrors.ErrTimeout)
	assert.Greater(t, reader.receiptPolls, 1)
}

func TestDeployer_SendErrorIsWrapped(t *testing.T) {
	params := tigerParams()
	sendErr := errors.New("connection refused")

	_, err := newTestDeployer(successfulReader(t, params), &fakeSender{err: sendErr}, nil).
		Deploy(context.Background(), params)
	require.ErrorIs(t, err, sendErr)
}
