package entity

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"coinctl/internal/pkg/apperrors"
)

// CoinParams is the request to mint a new coin.
type CoinParams struct {
	Name             string   `yaml:"name" json:"name"`
	Symbol           string   `yaml:"symbol" json:"symbol"`
	URI              string   `yaml:"uri" json:"uri"`
	PayoutRecipient  string   `yaml:"payoutRecipient" json:"payoutRecipient"`
	Owners           []string `yaml:"owners,omitempty" json:"owners,omitempty"`
	PlatformReferrer string   `yaml:"platformReferrer,omitempty" json:"platformReferrer,omitempty"`
}

// Validate checks that every required field is present and well formed.
func (p CoinParams) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"name", p.Name},
		{"symbol", p.Symbol},
		{"uri", p.URI},
		{"payoutRecipient", p.PayoutRecipient},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: coin %s is required", apperrors.ErrInvalidInput, r.field)
		}
	}

	if _, err := NewMetadataURI(p.URI); err != nil {
		return err
	}

	if !common.IsHexAddress(p.PayoutRecipient) {
		return fmt.Errorf("%w: payout recipient %q is not a valid address", apperrors.ErrInvalidInput, p.PayoutRecipient)
	}
	for _, owner := range p.Owners {
		if !common.IsHexAddress(owner) {
			return fmt.Errorf("%w: owner %q is not a valid address", apperrors.ErrInvalidInput, owner)
		}
	}
	if p.PlatformReferrer != "" && !common.IsHexAddress(p.PlatformReferrer) {
		return fmt.Errorf("%w: platform referrer %q is not a valid address", apperrors.ErrInvalidInput, p.PlatformReferrer)
	}

	return nil
}

// CreateCoinResult is the outcome of a mined coin deployment.
type CreateCoinResult struct {
	Hash       string      `json:"hash"`
	Address    string      `json:"address"`
	Deployment *Deployment `json:"deployment"`
}

// Deployment is the decoded CoinCreated event plus receipt facts.
type Deployment struct {
	Caller           string `json:"caller"`
	PayoutRecipient  string `json:"payoutRecipient"`
	PlatformReferrer string `json:"platformReferrer"`
	Currency         string `json:"currency"`
	URI              string `json:"uri"`
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
	Coin             string `json:"coin"`
	Pool             string `json:"pool"`
	Version          string `json:"version"`
	BlockNumber      uint64 `json:"blockNumber"`
	GasUsed          uint64 `json:"gasUsed"`
}

// CoinResponse is the indexer's answer to a single-coin query.
type CoinResponse struct {
	Data CoinResponseData `json:"data"`
}

// CoinResponseData holds the optional token record.
type CoinResponseData struct {
	Zora20Token *Coin `json:"zora20Token"`
}

// Coin is the indexer's descriptive and market view of a deployed coin.
type Coin struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	Address           string        `json:"address"`
	Symbol            string        `json:"symbol"`
	TotalSupply       string        `json:"totalSupply"`
	TotalVolume       string        `json:"totalVolume"`
	Volume24h         string        `json:"volume24h"`
	CreatedAt         string        `json:"createdAt"`
	CreatorAddress    string        `json:"creatorAddress"`
	MarketCap         string        `json:"marketCap"`
	MarketCapDelta24h string        `json:"marketCapDelta24h"`
	ChainID           int64         `json:"chainId"`
	UniqueHolders     int64         `json:"uniqueHolders"`
	MediaContent      *MediaContent `json:"mediaContent,omitempty"`
}

// MediaContent describes a coin's media as indexed.
type MediaContent struct {
	MimeType    string `json:"mimeType"`
	OriginalURI string `json:"originalUri"`
}
