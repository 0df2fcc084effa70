package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinctl/internal/domain"
)

func TestNewMetadataURI(t *testing.T) {
	tests := []struct {
		raw        string
		wantScheme string
		wantErr    bool
	}{
		{raw: "ipfs://bafkreicevxuczb6bgtqsnq7p7qydpvsgmg2pp3llwgxipzzeby5cs2quke", wantScheme: "ipfs://"},
		{raw: "ar://abc", wantScheme: "ar://"},
		{raw: "data:application/json;base64,e30=", wantScheme: "data:"},
		{raw: "https://example.com/meta.json", wantScheme: "https://"},
		{raw: "", wantErr: true},
		{raw: "http://example.com", wantErr: true},
		{raw: "ftp://example.com", wantErr: true},
		{raw: "HTTPS://example.com", wantErr: true},
		{raw: "ipfs:/bafy", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			uri, err := NewMetadataURI(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidMetadataURIFormat)
				assert.Contains(t, err.Error(), "invalid metadata URI format")
				assert.Contains(t, err.Error(), "ipfs://, ar://, data:, or https://")
				assert.False(t, IsValidMetadataURI(tt.raw))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.raw, uri.String())
			assert.Equal(t, tt.wantScheme, uri.Scheme())
		})
	}
}
