package entity

import "strings"

// Chain IDs coinctl ships defaults for. Any other id works as long as the factory is deployed there.
const (
	ChainBase        int64 = 8453
	ChainBaseSepolia int64 = 84532
)

// NetworkType defines the type for network classifications (e.g., mainnet, testnet).
type NetworkType string

// Constants for known network types.
const (
	NetworkMainnet NetworkType = "mainnet"
	NetworkTestnet NetworkType = "testnet"
)

// Chain is the registry view of a network: enough to name it and build explorer links.
type Chain struct {
	Name      string
	ShortName string
	ChainID   int64
	Currency  Currency
	Explorers []Explorer
	InfoURL   string
	Network   NetworkType
}

// Currency defines the native currency details of a chain.
type Currency struct {
	Name     string
	Symbol   string
	Decimals int
}

// Explorer defines details about a block explorer for a chain.
type Explorer struct {
	Name     string
	URL      string
	Standard string
}

// TxURL returns a link to the transaction on the chain's first EIP-3091 explorer, or "" when none is known.
func (c Chain) TxURL(hash string) string {
	for _, e := range c.Explorers {
		if e.Standard == "EIP3091" && e.URL != "" {
			return strings.TrimRight(e.URL, "/") + "/tx/" + hash
		}
	}
	return ""
}

