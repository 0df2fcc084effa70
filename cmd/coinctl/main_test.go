package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinctl/internal/config"
	"coinctl/internal/domain"
	"coinctl/internal/pkg/apperrors"
)

const (
	devKey     = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestRun_MissingSecretsFailsFast(t *testing.T) {
	t.Setenv(config.EnvPrivateKey, "")
	t.Setenv(config.EnvRPCURL, "https://mainnet.base.org")

	err := run(context.Background(), []string{"account", "--config", t.TempDir()})
	require.ErrorIs(t, err, apperrors.ErrConfiguration)
	assert.Contains(t, err.Error(), "PRIVATE_KEY is not set")
}

func TestRun_ValidateURIRejectsSchemeWithoutNetwork(t *testing.T) {
	t.Setenv(config.EnvPrivateKey, devKey)
	// nothing listens here; any request would fail with a connection error
	t.Setenv(config.EnvRPCURL, "http://127.0.0.1:1")

	err := run(context.Background(), []string{"validate-uri", "ftp://example.com", "--config", t.TempDir()})
	require.ErrorIs(t, err, domain.ErrInvalidMetadataURIFormat)
}

func TestRun_RejectsNonPositiveChainID(t *testing.T) {
	t.Setenv(config.EnvPrivateKey, devKey)
	t.Setenv(config.EnvRPCURL, "http://127.0.0.1:1")

	err := run(context.Background(), []string{"account", "--chain-id", "0", "--config", t.TempDir()})
	require.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestResolveCoinParams_Layering(t *testing.T) {
	dir := t.TempDir()
	paramsPath := filepath.Join(dir, "coin.yaml")
	yamlDoc := "name: Tiger\nsymbol: TGR\nowners:\n  - " + devAddress + "\n"
	require.NoError(t, os.WriteFile(paramsPath, []byte(yamlDoc), 0o600))

	cmd := newCreateCommand(&app{})
	require.NoError(t, cmd.Flags().Parse([]string{
		"--params", paramsPath,
		"--symbol", "TIGR",
	}))

	f := createFlags{paramsFile: paramsPath, symbol: "TIGR"}
	defaults := config.CoinConfig{Name: "Default", Symbol: "DEF", URI: "ipfs://bafydefault"}

	params, err := resolveCoinParams(defaults, f, cmd)
	require.NoError(t, err)

	assert.Equal(t, "Tiger", params.Name)
	assert.Equal(t, "TIGR", params.Symbol)
	assert.Equal(t, "ipfs://bafydefault", params.URI)
	assert.Equal(t, []string{devAddress}, params.Owners)
	assert.Empty(t, params.PayoutRecipient)
}

func TestReadParamsFile_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Tiger\nticker: TGR\n"), 0o600))

	_, err := readParamsFile(path)
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
