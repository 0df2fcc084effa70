package entity

import (
	"fmt"
	"strings"

	"coinctl/internal/domain"
)

// allowedMetadataURIPrefixes is the closed set of schemes a coin metadata URI may use.
var allowedMetadataURIPrefixes = []string{"ipfs://", "ar://", "data:", "https://"}

// MetadataURI is a metadata pointer that has passed the scheme gate.
type MetadataURI string

// NewMetadataURI accepts raw only when it starts with one of ipfs://, ar://, data: or https://.
func NewMetadataURI(raw string) (MetadataURI, error) {
	if !IsValidMetadataURI(raw) {
		return "", fmt.Errorf("%w: must start with %s", domain.ErrInvalidMetadataURIFormat, AllowedMetadataURIPrefixes())
	}
	return MetadataURI(raw), nil
}

// IsValidMetadataURI reports whether raw carries an allowed scheme prefix. Matching is case-sensitive.
func IsValidMetadataURI(raw string) bool {
	for _, prefix := range allowedMetadataURIPrefixes {
		if strings.HasPrefix(raw, prefix) {
			return true
		}
	}
	return false
}

// AllowedMetadataURIPrefixes renders the allow-list for error messages.
func AllowedMetadataURIPrefixes() string {
	return "ipfs://, ar://, data:, or https://"
}

// Scheme returns the allow-listed prefix the URI starts with.
func (m MetadataURI) Scheme() string {
	for _, prefix := range allowedMetadataURIPrefixes {
		if strings.HasPrefix(string(m), prefix) {
			return prefix
		}
	}
	return ""
}

// String returns the string representation of the MetadataURI.
func (m MetadataURI) String() string {
	return string(m)
}

// CoinMetadata is the JSON document a coin's metadata URI points to.
type CoinMetadata struct {
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Image        string               `json:"image"`
	AnimationURL string               `json:"animation_url,omitempty"`
	Content      *CoinMetadataContent `json:"content,omitempty"`
	Properties   map[string]string    `json:"properties,omitempty"`
}

// CoinMetadataContent describes the primary media of a coin.
type CoinMetadataContent struct {
	Mime string `json:"mime"`
	URI  string `json:"uri"`
}

// MetadataValidation is the outcome of fetching and inspecting a metadata URI.
type MetadataValidation struct {
	URI         MetadataURI   `json:"uri"`
	ResolvedURL string        `json:"resolvedUrl"`
	ContentType string        `json:"contentType"`
	Metadata    *CoinMetadata `json:"metadata"`
	Valid       bool          `json:"valid"`
}
