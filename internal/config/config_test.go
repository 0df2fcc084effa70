package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinctl/internal/domain/entity"
	"coinctl/internal/pkg/apperrors"
)

const testKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestLoad_MissingSecrets(t *testing.T) {
	tests := []struct {
		name       string
		privateKey string
		rpcURL     string
		wantVar    string
	}{
		{name: "both missing", wantVar: EnvPrivateKey},
		{name: "private key missing", rpcURL: "https://mainnet.base.org", wantVar: EnvPrivateKey},
		{name: "rpc url missing", privateKey: testKey, wantVar: EnvRPCURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvPrivateKey, tt.privateKey)
			t.Setenv(EnvRPCURL, tt.rpcURL)

			cfg, err := Load(t.TempDir())
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.True(t, errors.Is(err, apperrors.ErrConfiguration))
			assert.Contains(t, err.Error(), tt.wantVar+" is not set")
		})
	}
}

func TestLoad_RejectsNonHTTPRPCURL(t *testing.T) {
	t.Setenv(EnvPrivateKey, testKey)
	t.Setenv(EnvRPCURL, "wss://base.example.org")

	_, err := Load(t.TempDir())
	require.ErrorIs(t, err, apperrors.ErrConfiguration)
	assert.Contains(t, err.Error(), "http or https")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvPrivateKey, testKey)
	t.Setenv(EnvRPCURL, "https://mainnet.base.org")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, testKey, cfg.Credentials.PrivateKey.Reveal())
	assert.Equal(t, entity.RPCURL("https://mainnet.base.org"), cfg.Credentials.RPCURL)
	assert.Equal(t, entity.ChainBase, cfg.Chain.ID)
	assert.Equal(t, "0x777777751622c0d3258f214F9DF38E35BF45baF3", cfg.Chain.FactoryAddress)
	assert.Equal(t, int64(-199200), cfg.Chain.TickLower)
	assert.Equal(t, 2*time.Minute, cfg.Tx.GetReceiptTimeout())
	assert.Equal(t, uint64(20), cfg.Tx.GasBufferPercent)
	assert.Equal(t, 15*time.Second, cfg.Indexer.Timeout)
	assert.True(t, cfg.Metadata.ValidateOnCreate)
	assert.Equal(t, 1<<20, cfg.Metadata.MaxBytes)
	assert.Equal(t, "console", cfg.Logger.Encoding)
}

func TestLoad_ConfigFileAndPrefixedEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "chain:\n  id: 84532\ncoin:\n  name: Tiger\n  symbol: TGR\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	t.Setenv(EnvPrivateKey, testKey)
	t.Setenv(EnvRPCURL, "https://sepolia.base.org")
	t.Setenv("COINCTL_LOGGER_LEVEL", "debug")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, entity.ChainBaseSepolia, cfg.Chain.ID)
	assert.Equal(t, "Tiger", cfg.Coin.Name)
	assert.Equal(t, "TGR", cfg.Coin.Symbol)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestSecret_NeverPrinted(t *testing.T) {
	cfg := Config{Credentials: CredentialsConfig{PrivateKey: Secret(testKey)}}

	out, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(out), testKey[2:])
	assert.NotContains(t, fmt.Sprintf("%v %s", cfg.Credentials.PrivateKey, cfg.Credentials.PrivateKey), testKey[2:])
}
