package chainlist_dto

// NetworkTypeRaw is the network classification as published in chains.json.
type NetworkTypeRaw string

const (
	NetworkMainnetRaw NetworkTypeRaw = "mainnet"
	NetworkTestnetRaw NetworkTypeRaw = "testnet"
)

// ChainRaw is the subset of a chains.json record coinctl reads.
type ChainRaw struct {
	Name      string         `json:"name"`
	ShortName string         `json:"shortName"`
	ChainID   int64          `json:"chainId"`
	Currency  CurrencyRaw    `json:"nativeCurrency"`
	InfoURL   string         `json:"infoURL"`
	Explorers []ExplorerRaw  `json:"explorers,omitempty"`
	Network   NetworkTypeRaw `json:"network,omitempty"`
}

// CurrencyRaw is a chain's native currency.
type CurrencyRaw struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// ExplorerRaw is a block explorer entry.
type ExplorerRaw struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Standard string `json:"standard"`
}
