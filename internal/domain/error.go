package domain

import "errors"

var (
	// ErrInvalidMetadataURIFormat means a metadata URI does not start with an allowed scheme prefix.
	ErrInvalidMetadataURIFormat = errors.New("invalid metadata URI format")

	// ErrInvalidMetadata means the content behind a metadata URI is not acceptable coin metadata.
	ErrInvalidMetadata = errors.New("invalid coin metadata")

	// ErrChainNotFound means the requested chain was not found in the chain registry.
	ErrChainNotFound = errors.New("chain not found")

	// ErrChainMismatch means an RPC endpoint serves a different chain than the configured one.
	ErrChainMismatch = errors.New("rpc endpoint serves a different chain")

	// ErrTransactionReverted means the coin deployment transaction was mined with a failed status.
	ErrTransactionReverted = errors.New("transaction reverted")

	// ErrCoinNotCreated means the deployment receipt carries no CoinCreated event.
	ErrCoinNotCreated = errors.New("coin creation event not found in receipt")
)
