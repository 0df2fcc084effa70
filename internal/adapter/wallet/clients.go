package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"coinctl/internal/config"
	"coinctl/internal/domain/entity"
	"coinctl/internal/pkg/apperrors"
)

// PublicClient is the read-only chain handle.
type PublicClient struct {
	*ethclient.Client
	chainID *big.Int
}

// ChainID returns the chain the handle is bound to.
func (c *PublicClient) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// WalletClient is the transaction-signing handle.
type WalletClient struct {
	client  *ethclient.Client
	account *Account
	chainID *big.Int
	signer  types.Signer
}

// Address returns the signing account's address.
func (w *WalletClient) Address() common.Address {
	return w.account.Address()
}

// ChainID returns the chain the handle signs for.
func (w *WalletClient) ChainID() *big.Int {
	return new(big.Int).Set(w.chainID)
}

// PendingNonce returns the next nonce for the signing account.
func (w *WalletClient) PendingNonce(ctx context.Context) (uint64, error) {
	return w.client.PendingNonceAt(ctx, w.account.Address())
}

// SendTransaction signs txdata with the account key and submits it.
func (w *WalletClient) SendTransaction(ctx context.Context, txdata types.TxData) (*types.Transaction, error) {
	tx, err := types.SignNewTx(w.account.key, w.signer, txdata)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	if err := w.client.SendTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// NewPublicClient builds a read-only handle. No request is made until the first call.
func NewPublicClient(rpcURL entity.RPCURL, chainID int64) (*PublicClient, error) {
	client, err := dialHTTP(rpcURL)
	if err != nil {
		return nil, err
	}
	return &PublicClient{Client: client, chainID: big.NewInt(chainID)}, nil
}

// NewWalletClient builds a signing handle for account. No request is made until the first call.
func NewWalletClient(account *Account, rpcURL entity.RPCURL, chainID int64) (*WalletClient, error) {
	client, err := dialHTTP(rpcURL)
	if err != nil {
		return nil, err
	}
	id := big.NewInt(chainID)
	return &WalletClient{
		client:  client,
		account: account,
		chainID: id,
		signer:  types.LatestSignerForChainID(id),
	}, nil
}

// dialHTTP only accepts HTTP(S) so that construction stays free of network I/O.
func dialHTTP(rpcURL entity.RPCURL) (*ethclient.Client, error) {
	if !rpcURL.IsHTTP() {
		return nil, fmt.Errorf("%w: rpc url must use http or https", apperrors.ErrConfiguration)
	}
	rpcClient, err := rpc.DialOptions(context.Background(), rpcURL.String())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create rpc client: %v", apperrors.ErrConfiguration, err)
	}
	return ethclient.NewClient(rpcClient), nil
}

// Clients bundles the account with both chain handles.
type Clients struct {
	Account *Account
	Public  *PublicClient
	Wallet  *WalletClient
}

// Close releases the underlying RPC connections.
func (c *Clients) Close() {
	c.Public.Close()
	c.Wallet.client.Close()
}

// Initialize derives the account from cfg and binds both handles to the configured chain.
func Initialize(cfg *config.Config, logger *zap.Logger) (*Clients, error) {
	account, err := NewAccount(cfg.Credentials.PrivateKey.Reveal())
	if err != nil {
		return nil, err
	}
	logger.Info("Account address", zap.String("address", account.Address().Hex()))

	public, err := NewPublicClient(cfg.Credentials.RPCURL, cfg.Chain.ID)
	if err != nil {
		return nil, err
	}
	walletClient, err := NewWalletClient(account, cfg.Credentials.RPCURL, cfg.Chain.ID)
	if err != nil {
		public.Close()
		return nil, err
	}

	logger.Debug("Chain clients initialized", zap.Int64("chainId", cfg.Chain.ID))
	return &Clients{Account: account, Public: public, Wallet: walletClient}, nil
}
