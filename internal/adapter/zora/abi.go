package zora

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// factoryABIJSON covers the subset of the coin factory used here.
const factoryABIJSON = `[
  {
    "type": "function",
    "name": "deploy",
    "stateMutability": "payable",
    "inputs": [
      {"name": "payoutRecipient", "type": "address"},
      {"name": "owners", "type": "address[]"},
      {"name": "uri", "type": "string"},
      {"name": "name", "type": "string"},
      {"name": "symbol", "type": "string"},
      {"name": "poolConfig", "type": "bytes"},
      {"name": "platformReferrer", "type": "address"},
      {"name": "orderSize", "type": "uint256"}
    ],
    "outputs": [
      {"name": "coin", "type": "address"},
      {"name": "coinsPurchased", "type": "uint256"}
    ]
  },
  {
    "type": "event",
    "name": "CoinCreated",
    "anonymous": false,
    "inputs": [
      {"name": "caller", "type": "address", "indexed": true},
      {"name": "payoutRecipient", "type": "address", "indexed": true},
      {"name": "platformReferrer", "type": "address", "indexed": true},
      {"name": "currency", "type": "address", "indexed": false},
      {"name": "uri", "type": "string", "indexed": false},
      {"name": "name", "type": "string", "indexed": false},
      {"name": "symbol", "type": "string", "indexed": false},
      {"name": "coin", "type": "address", "indexed": false},
      {"name": "pool", "type": "address", "indexed": false},
      {"name": "version", "type": "string", "indexed": false}
    ]
  }
]`

const (
	methodDeploy     = "deploy"
	eventCoinCreated = "CoinCreated"

	poolConfigVersion uint8 = 1
)

var factoryABI = mustParseABI(factoryABIJSON)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("zora: invalid factory abi: %v", err))
	}
	return parsed
}

// deployArgs are the factory call arguments in ABI order.
type deployArgs struct {
	PayoutRecipient  common.Address
	Owners           []common.Address
	URI              string
	Name             string
	Symbol           string
	PoolConfig       []byte
	PlatformReferrer common.Address
	OrderSize        *big.Int
}

// encodePoolConfig packs (uint8 version, address currency, int24 tickLower).
func encodePoolConfig(currency common.Address, tickLower int64) ([]byte, error) {
	uint8Type, err := abi.NewType("uint8", "", nil)
	if err != nil {
		return nil, err
	}
	addressType, err := abi.NewType("address", "", nil)
	if err != nil {
		return nil, err
	}
	int24Type, err := abi.NewType("int24", "", nil)
	if err != nil {
		return nil, err
	}

	args := abi.Arguments{{Type: uint8Type}, {Type: addressType}, {Type: int24Type}}
	return args.Pack(poolConfigVersion, currency, big.NewInt(tickLower))
}

func packDeploy(a deployArgs) ([]byte, error) {
	return factoryABI.Pack(methodDeploy,
		a.PayoutRecipient,
		a.Owners,
		a.URI,
		a.Name,
		a.Symbol,
		a.PoolConfig,
		a.PlatformReferrer,
		a.OrderSize,
	)
}

// unpackPredictedCoin reads the coin address from a simulated deploy call.
func unpackPredictedCoin(output []byte) (common.Address, error) {
	values, err := factoryABI.Unpack(methodDeploy, output)
	if err != nil {
		return common.Address{}, err
	}
	if len(values) == 0 {
		return common.Address{}, fmt.Errorf("empty deploy output")
	}
	coin, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected deploy output type %T", values[0])
	}
	return coin, nil
}

// coinCreatedData holds the non-indexed CoinCreated fields.
type coinCreatedData struct {
	Currency common.Address
	Uri      string
	Name     string
	Symbol   string
	Coin     common.Address
	Pool     common.Address
	Version  string
}

// coinCreatedEvent is a fully decoded CoinCreated log.
type coinCreatedEvent struct {
	Caller           common.Address
	PayoutRecipient  common.Address
	PlatformReferrer common.Address
	coinCreatedData
}

// findCoinCreated returns the first CoinCreated log emitted by factory, if any.
func findCoinCreated(logs []*types.Log, factory common.Address) (*coinCreatedEvent, error) {
	event := factoryABI.Events[eventCoinCreated]
	for _, l := range logs {
		if l == nil || l.Address != factory || len(l.Topics) != 4 || l.Topics[0] != event.ID {
			continue
		}

		var data coinCreatedData
		if err := factoryABI.UnpackIntoInterface(&data, eventCoinCreated, l.Data); err != nil {
			return nil, fmt.Errorf("decode %s log: %w", eventCoinCreated, err)
		}
		return &coinCreatedEvent{
			Caller:           common.BytesToAddress(l.Topics[1].Bytes()),
			PayoutRecipient:  common.BytesToAddress(l.Topics[2].Bytes()),
			PlatformReferrer: common.BytesToAddress(l.Topics[3].Bytes()),
			coinCreatedData:  data,
		}, nil
	}
	return nil, nil
}
