package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"coinctl/internal/domain/entity"
	"coinctl/internal/pkg/apperrors"
)

// Names of the two required secrets. They are read verbatim, without the COINCTL_ prefix.
const (
	EnvPrivateKey = "PRIVATE_KEY"
	EnvRPCURL     = "RPC_URL"
)

const redacted = "[REDACTED]"

// Secret is a string that never prints its value.
type Secret string

// String implements fmt.Stringer.
func (s Secret) String() string { return redacted }

// MarshalJSON keeps secrets out of structured log output.
func (s Secret) MarshalJSON() ([]byte, error) { return []byte(`"` + redacted + `"`), nil }

// Reveal returns the underlying value.
func (s Secret) Reveal() string { return string(s) }

// Config holds all configuration for the application.
type Config struct {
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	Chain       ChainConfig       `mapstructure:"chain"`
	Tx          TxConfig          `mapstructure:"tx"`
	Indexer     IndexerConfig     `mapstructure:"indexer"`
	Metadata    MetadataConfig    `mapstructure:"metadata"`
	Checker     CheckerConfig     `mapstructure:"checker"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Chainlist   ChainlistConfig   `mapstructure:"chainlist"`
	Coin        CoinConfig        `mapstructure:"coin"`
}

// CredentialsConfig holds the signing key and the RPC endpoint.
type CredentialsConfig struct {
	PrivateKey Secret        `mapstructure:"private_key"`
	RPCURL     entity.RPCURL `mapstructure:"rpc_url"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// ChainConfig selects the target chain and the coin factory deployed on it.
type ChainConfig struct {
	ID               int64  `mapstructure:"id"`
	FactoryAddress   string `mapstructure:"factory_address"`
	Currency         string `mapstructure:"currency"`
	PlatformReferrer string `mapstructure:"platform_referrer"`
	TickLower        int64  `mapstructure:"tick_lower"`
}

// TxConfig controls transaction submission and receipt polling.
type TxConfig struct {
	ReceiptTimeout   time.Duration `mapstructure:"receipt_timeout"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	GasBufferPercent uint64        `mapstructure:"gas_buffer_percent"`
}

// IndexerConfig holds settings for the coin indexer API.
type IndexerConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  Secret        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MetadataConfig holds settings for fetching metadata content.
type MetadataConfig struct {
	IPFSGateway      string        `mapstructure:"ipfs_gateway"`
	ArweaveGateway   string        `mapstructure:"arweave_gateway"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxBytes         int           `mapstructure:"max_bytes"`
	ValidateOnCreate bool          `mapstructure:"validate_on_create"`
}

// CheckerConfig holds settings related to the RPC checking process.
type CheckerConfig struct {
	CheckTimeout time.Duration `mapstructure:"check_timeout"`
	Preflight    bool          `mapstructure:"preflight"`
}

// CacheConfig holds settings for the caching layer.
type CacheConfig struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

// ChainlistConfig holds configuration for the Chainlist data source.
type ChainlistConfig struct {
	URL string `mapstructure:"url"`
}

// CoinConfig holds default coin parameters used when the command line leaves them out.
type CoinConfig struct {
	Name   string `mapstructure:"name"`
	Symbol string `mapstructure:"symbol"`
	URI    string `mapstructure:"uri"`
}

// Load reads configuration from .env, an optional config file and environment variables.
// It fails when PRIVATE_KEY or RPC_URL is missing, before anything talks to the network.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: failed to read .env file: %v", apperrors.ErrConfiguration, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("%w: failed to read config file: %v", apperrors.ErrConfiguration, err)
		}
	}

	v.SetEnvPrefix("COINCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("credentials.private_key", EnvPrivateKey)
	_ = v.BindEnv("credentials.rpc_url", EnvRPCURL)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal config: %v", apperrors.ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("chain.id", entity.ChainBase)
	v.SetDefault("chain.factory_address", "0x777777751622c0d3258f214F9DF38E35BF45baF3")
	v.SetDefault("chain.currency", "0x4200000000000000000000000000000000000006")
	v.SetDefault("chain.platform_referrer", "0x0000000000000000000000000000000000000000")
	v.SetDefault("chain.tick_lower", -199200)
	v.SetDefault("tx.receipt_timeout", "2m")
	v.SetDefault("tx.poll_interval", "2s")
	v.SetDefault("tx.gas_buffer_percent", 20)
	v.SetDefault("indexer.url", "https://api-sdk.zora.engineering")
	v.SetDefault("indexer.api_key", "")
	v.SetDefault("indexer.timeout", "15s")
	v.SetDefault("metadata.ipfs_gateway", "https://magic.decentralized-content.com/ipfs/")
	v.SetDefault("metadata.arweave_gateway", "https://arweave.net/")
	v.SetDefault("metadata.timeout", "15s")
	v.SetDefault("metadata.max_bytes", 1<<20)
	v.SetDefault("metadata.validate_on_create", true)
	v.SetDefault("checker.check_timeout", "5s")
	v.SetDefault("checker.preflight", false)
	v.SetDefault("cache.default_expiration", "30m")
	v.SetDefault("cache.cleanup_interval", "1h")
	v.SetDefault("chainlist.url", "https://chainid.network/chains.json")
	v.SetDefault("coin.name", "")
	v.SetDefault("coin.symbol", "")
	v.SetDefault("coin.uri", "")
}

// Validate enforces the startup contract: both secrets present, RPC URL usable by an HTTP transport.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Credentials.PrivateKey.Reveal()) == "" {
		return fmt.Errorf("%w: %s is not set", apperrors.ErrConfiguration, EnvPrivateKey)
	}
	if strings.TrimSpace(c.Credentials.RPCURL.String()) == "" {
		return fmt.Errorf("%w: %s is not set", apperrors.ErrConfiguration, EnvRPCURL)
	}

	rpcURL, err := entity.NewRPCURL(c.Credentials.RPCURL.String())
	if err != nil {
		return fmt.Errorf("%w: %s: %v", apperrors.ErrConfiguration, EnvRPCURL, err)
	}
	if !rpcURL.IsHTTP() {
		return fmt.Errorf("%w: %s must use http or https", apperrors.ErrConfiguration, EnvRPCURL)
	}

	if c.Chain.ID <= 0 {
		return fmt.Errorf("%w: chain.id must be positive, got %d", apperrors.ErrConfiguration, c.Chain.ID)
	}

	return nil
}

func (c TxConfig) GetReceiptTimeout() time.Duration {
	return c.ReceiptTimeout
}

func (c TxConfig) GetPollInterval() time.Duration {
	if c.PollInterval <= 0 {
		return 2 * time.Second
	}
	return c.PollInterval
}

func (c CheckerConfig) GetTimeout() time.Duration {
	return c.CheckTimeout
}

func (c CacheConfig) GetDefaultExpiration() time.Duration {
	return c.DefaultExpiration
}

func (c CacheConfig) GetCleanupInterval() time.Duration {
	return c.CleanupInterval
}
