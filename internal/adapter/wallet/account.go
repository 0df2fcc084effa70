package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"coinctl/internal/pkg/apperrors"
)

// Account is a signing identity derived from a secp256k1 private key.
type Account struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewAccount derives the account for a hex private key, with or without 0x prefix.
// The same key always yields the same address.
func NewAccount(privateKey string) (*Account, error) {
	hexKey := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(privateKey), "0x"), "0X")
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		// the key itself must not end up in the message
		return nil, fmt.Errorf("%w: private key is not a valid secp256k1 hex key", apperrors.ErrConfiguration)
	}

	return &Account{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address returns the account's public address.
func (a *Account) Address() common.Address {
	return a.address
}
