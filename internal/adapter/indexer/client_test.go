package indexer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coinctl/internal/config"
	"coinctl/internal/pkg/apperrors"
)

const coinAddress = "0x445e9c0a296068dc4257767b5ed354b77cf513de"

func newTestClient(t *testing.T, handler http.HandlerFunc, apiKey string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.IndexerConfig{URL: srv.URL + "/", APIKey: config.Secret(apiKey), Timeout: 5 * time.Second}
	return NewClient(cfg, zap.NewNop()).(*Client)
}

func TestClient_GetCoin(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coin", r.URL.Path)
		assert.Equal(t, coinAddress, r.URL.Query().Get("address"))
		assert.Equal(t, "8453", r.URL.Query().Get("chain"))
		assert.Equal(t, "secret-key", r.Header.Get("api-key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"zora20Token":{
			"name":"Tiger","symbol":"TGR","description":"A tiger","totalSupply":"1000000000",
			"marketCap":"12345.6","volume24h":"42","creatorAddress":"0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266",
			"createdAt":"2025-04-01T12:00:00Z","uniqueHolders":17,"chainId":8453,
			"mediaContent":{"mimeType":"image/png","originalUri":"ipfs://bafy"}}}`))
	}, "secret-key")

	resp, err := client.GetCoin(context.Background(), coinAddress, 8453)
	require.NoError(t, err)
	require.NotNil(t, resp.Data.Zora20Token)

	coin := resp.Data.Zora20Token
	assert.Equal(t, "Tiger", coin.Name)
	assert.Equal(t, "TGR", coin.Symbol)
	assert.Equal(t, "12345.6", coin.MarketCap)
	assert.Equal(t, int64(17), coin.UniqueHolders)
	require.NotNil(t, coin.MediaContent)
	assert.Equal(t, "image/png", coin.MediaContent.MimeType)
}

func TestClient_GetCoin_NoToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("api-key"))
		_, _ = w.Write([]byte(`{}`))
	}, "")

	resp, err := client.GetCoin(context.Background(), coinAddress, 8453)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Nil(t, resp.Data.Zora20Token)
}

func TestClient_GetCoin_Statuses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "not found", status: http.StatusNotFound, wantErr: apperrors.ErrNotFound},
		{name: "server error", status: http.StatusBadGateway, wantErr: apperrors.ErrExternalServiceFailure},
		{name: "bad json", status: http.StatusOK, body: `{"zora20Token":`, wantErr: apperrors.ErrExternalServiceFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, "")

			resp, err := client.GetCoin(context.Background(), coinAddress, 8453)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, resp)
		})
	}
}

func TestClient_GetCoin_Cancelled(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, "")
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	resp, err := client.GetCoin(ctx, coinAddress, 8453)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, resp)
	assert.Less(t, time.Since(start), 2*time.Second)
}
