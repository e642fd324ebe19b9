// Package config loads the YAML configuration of the construction service.
package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mark3labs/assetkit-go"
	"github.com/mark3labs/assetkit-go/keypair"
	"github.com/mark3labs/assetkit-go/metadata"
	"github.com/mark3labs/assetkit-go/signers/coinbase"
	"gopkg.in/yaml.v3"
)

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn or error
	Format string `yaml:"format"` // text or json
}

// MetadataConfig tunes the NFT metadata fetcher.
type MetadataConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	CacheEntries int           `yaml:"cache_entries"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// KeyConfig is one signer held by the service. Exactly one source is set.
// PrivateKeyEnv and MnemonicEnv name environment variables so secrets stay
// out of the file. CDPAccount names a Coinbase managed account and needs the
// cdp section.
type KeyConfig struct {
	File          string `yaml:"file"`
	PrivateKeyEnv string `yaml:"private_key_env"`
	MnemonicEnv   string `yaml:"mnemonic_env"`
	Passphrase    string `yaml:"passphrase"`
	CDPAccount    string `yaml:"cdp_account"`
}

// CDPConfig holds the environment variable names of the Coinbase Developer
// Platform credentials.
type CDPConfig struct {
	KeyNameEnv      string `yaml:"key_name_env"`
	KeySecretEnv    string `yaml:"key_secret_env"`
	WalletSecretEnv string `yaml:"wallet_secret_env"`
	BaseURL         string `yaml:"base_url"`
}

// Config is the service configuration.
type Config struct {
	Network            string         `yaml:"network"`
	RPCURL             string         `yaml:"rpc_url"`
	Commitment         string         `yaml:"commitment"`
	Listen             string         `yaml:"listen"`
	MCPListen          string         `yaml:"mcp_listen"`
	MaxTransactionSize int            `yaml:"max_transaction_size"`
	Metadata           MetadataConfig `yaml:"metadata"`
	Log                LogConfig      `yaml:"log"`
	Keys               []KeyConfig    `yaml:"keys"`
	CDP                CDPConfig      `yaml:"cdp"`
}

// Default returns the configuration used for omitted fields.
func Default() Config {
	return Config{
		Network:            assetkit.Devnet.Name,
		Commitment:         string(rpc.CommitmentConfirmed),
		Listen:             ":8080",
		MaxTransactionSize: assetkit.MaxTransactionSize,
		Metadata: MetadataConfig{
			Timeout:      10 * time.Second,
			CacheEntries: 512,
			CacheTTL:     10 * time.Minute,
		},
		Log: LogConfig{Level: "info", Format: "text"},
		CDP: CDPConfig{
			KeyNameEnv:      "CDP_API_KEY_NAME",
			KeySecretEnv:    "CDP_API_KEY_SECRET",
			WalletSecretEnv: "CDP_WALLET_SECRET",
		},
	}
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads and validates YAML from r. Omitted fields keep their defaults.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field values and fills RPCURL from the network preset.
func (c *Config) Validate() error {
	network, err := assetkit.LookupNetwork(c.Network)
	if err != nil {
		return err
	}
	if c.RPCURL == "" {
		c.RPCURL = network.RPCURL
	}
	switch rpc.CommitmentType(c.Commitment) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return fmt.Errorf("unsupported commitment %q", c.Commitment)
	}
	if c.MaxTransactionSize <= 0 {
		return fmt.Errorf("max_transaction_size must be positive, got %d", c.MaxTransactionSize)
	}
	if c.Metadata.Timeout <= 0 {
		return fmt.Errorf("metadata.timeout must be positive, got %s", c.Metadata.Timeout)
	}
	if c.Metadata.CacheEntries < 0 || c.Metadata.CacheTTL < 0 {
		return fmt.Errorf("metadata cache settings cannot be negative")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.Log.Format)
	}
	for i, k := range c.Keys {
		sources := 0
		for _, v := range []string{k.File, k.PrivateKeyEnv, k.MnemonicEnv, k.CDPAccount} {
			if v != "" {
				sources++
			}
		}
		if sources != 1 {
			return fmt.Errorf("keys[%d]: exactly one of file, private_key_env, mnemonic_env or cdp_account must be set", i)
		}
		if k.CDPAccount != "" && (c.CDP.KeyNameEnv == "" || c.CDP.KeySecretEnv == "") {
			return fmt.Errorf("keys[%d]: cdp_account requires cdp.key_name_env and cdp.key_secret_env", i)
		}
	}
	return nil
}

// Logger builds the slog logger described by Log, writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Fetcher builds the metadata fetcher described by Metadata.
func (c *Config) Fetcher(logger *slog.Logger) (*metadata.HTTPFetcher, error) {
	return metadata.NewHTTPFetcher(
		metadata.WithTimeout(c.Metadata.Timeout),
		metadata.WithCache(c.Metadata.CacheEntries, c.Metadata.CacheTTL),
		metadata.WithLogger(logger),
	)
}

// Keyring loads every configured signer. Environment variables are read
// through getenv. CDP accounts are resolved over the network, created on
// first use.
func (c *Config) Keyring(ctx context.Context, getenv func(string) string, logger *slog.Logger) (*keypair.Keyring, error) {
	ring := keypair.NewKeyring()
	var cdp *coinbase.Client
	for i, k := range c.Keys {
		if k.CDPAccount != "" {
			if cdp == nil {
				var err error
				if cdp, err = c.cdpClient(getenv, logger); err != nil {
					return nil, fmt.Errorf("keys[%d]: %w", i, err)
				}
			}
			signer, err := coinbase.NewSigner(ctx, cdp, k.CDPAccount)
			if err != nil {
				return nil, fmt.Errorf("keys[%d]: %w", i, err)
			}
			ring.Add(signer)
			continue
		}

		var opt keypair.Option
		switch {
		case k.File != "":
			opt = keypair.WithKeygenFile(k.File)
		case k.PrivateKeyEnv != "":
			opt = keypair.WithPrivateKey(getenv(k.PrivateKeyEnv))
		default:
			opt = keypair.WithMnemonic(getenv(k.MnemonicEnv), k.Passphrase)
		}
		kp, err := keypair.New(opt)
		if err != nil {
			return nil, fmt.Errorf("keys[%d]: %w", i, err)
		}
		ring.Add(kp)
	}
	return ring, nil
}

func (c *Config) cdpClient(getenv func(string) string, logger *slog.Logger) (*coinbase.Client, error) {
	creds, err := coinbase.NewCredentials(
		getenv(c.CDP.KeyNameEnv),
		getenv(c.CDP.KeySecretEnv),
		getenv(c.CDP.WalletSecretEnv),
	)
	if err != nil {
		return nil, err
	}
	opts := []coinbase.ClientOption{coinbase.WithLogger(logger)}
	if c.CDP.BaseURL != "" {
		opts = append(opts, coinbase.WithBaseURL(c.CDP.BaseURL))
	}
	return coinbase.NewClient(creds, opts...)
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported log level %q", level)
	}
}
