// Package config provides configuration management for tether.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/tether/internal/fileutil"
	"github.com/mrz1836/tether/internal/networks"
	"github.com/mrz1836/tether/internal/provider"
	tethererr "github.com/mrz1836/tether/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Version   int             `yaml:"version"`
	Home      string          `yaml:"home"`
	Providers ProvidersConfig `yaml:"providers"`
	Session   SessionConfig   `yaml:"session"`
	RPC       RPCConfig       `yaml:"rpc"`
	Networks  []NetworkConfig `yaml:"networks,omitempty"`
	Peer      PeerConfig      `yaml:"peer"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ProvidersConfig holds one endpoint per provider kind.
type ProvidersConfig struct {
	Injected       ProviderConfig `yaml:"injected"`
	CoinbaseWallet ProviderConfig `yaml:"coinbase_wallet"`
	WalletConnect  ProviderConfig `yaml:"wallet_connect"`
}

// ProviderConfig defines how to reach one wallet provider.
type ProviderConfig struct {
	// Endpoint is an http(s) or ws(s) JSON-RPC URL. For WalletConnect it is the bridge.
	Endpoint string `yaml:"endpoint"`
}

// SessionConfig defines where the last provider is remembered.
type SessionConfig struct {
	Store string `yaml:"store"` // file or keyring
	File  string `yaml:"file"`
}

// RPCConfig defines wallet request limits.
type RPCConfig struct {
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RateLimit      float64 `yaml:"rate_limit"`
	Burst          int     `yaml:"burst"`
}

// NetworkConfig adds or overrides a selectable network.
type NetworkConfig struct {
	ChainID           uint64   `yaml:"chain_id"`
	Name              string   `yaml:"name"`
	ChainName         string   `yaml:"chain_name,omitempty"`
	CurrencyName      string   `yaml:"currency_name"`
	CurrencySymbol    string   `yaml:"currency_symbol"`
	CurrencyDecimals  int      `yaml:"currency_decimals"`
	RPCURLs           []string `yaml:"rpc_urls"`
	BlockExplorerURLs []string `yaml:"block_explorer_urls,omitempty"`
	IconURLs          []string `yaml:"icon_urls,omitempty"`
}

// PeerConfig configures the development wallet peer.
type PeerConfig struct {
	Listen      string   `yaml:"listen"`
	Mnemonic    string   `yaml:"mnemonic,omitempty"`
	ChainID     uint64   `yaml:"chain_id"`
	KnownChains []uint64 `yaml:"known_chains"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads configuration from the specified file. Values missing from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, tethererr.WithCause(tethererr.ErrConfigInvalid, err)
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(path, data, 0o600)
}

// Path returns the config file path under home.
func Path(home string) string {
	return filepath.Join(ExpandPath(home), "config.yaml")
}

// DefaultHome returns the default tether home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tether"
	}
	return filepath.Join(home, ".tether")
}

// ExpandPath replaces a leading ~/ with the user's home directory.
func ExpandPath(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// SessionFile returns the session slot file path. A relative path is taken
// relative to home.
func (c *Config) SessionFile() string {
	p := ExpandPath(c.Session.File)
	if p == "" {
		p = "session.json"
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(ExpandPath(c.Home), p)
	}
	return p
}

// Endpoints returns the configured endpoint of every provider kind.
func (c *Config) Endpoints() map[provider.Kind]string {
	return map[provider.Kind]string{
		provider.Injected:       c.Providers.Injected.Endpoint,
		provider.CoinbaseWallet: c.Providers.CoinbaseWallet.Endpoint,
		provider.WalletConnect:  c.Providers.WalletConnect.Endpoint,
	}
}

// ExtraNetworks converts the configured networks to registry entries.
func (c *Config) ExtraNetworks() []networks.Network {
	out := make([]networks.Network, 0, len(c.Networks))
	for _, n := range c.Networks {
		out = append(out, networks.Network{
			ID:   n.ChainID,
			Name: n.Name,
			Descriptor: networks.Descriptor{
				ChainName: n.ChainName,
				NativeCurrency: networks.NativeCurrency{
					Name:     n.CurrencyName,
					Symbol:   n.CurrencySymbol,
					Decimals: n.CurrencyDecimals,
				},
				RPCURLs:           n.RPCURLs,
				BlockExplorerURLs: n.BlockExplorerURLs,
				IconURLs:          n.IconURLs,
			},
		})
	}
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Session.Store) {
	case "file", "keyring":
	default:
		return invalid("session.store", c.Session.Store, "file or keyring")
	}

	endpoints := c.Endpoints()
	for _, kind := range provider.Kinds() {
		endpoint := endpoints[kind]
		if err := ValidateEndpoint(endpoint); err != nil {
			return tethererr.WithDetails(tethererr.WithCause(tethererr.ErrConfigInvalid, err), map[string]string{
				"key":   "providers." + kind.String(),
				"value": endpoint,
			})
		}
	}

	if c.RPC.TimeoutSeconds < 0 {
		return invalid("rpc.timeout_seconds", fmt.Sprint(c.RPC.TimeoutSeconds), "zero or positive")
	}
	if c.RPC.RateLimit < 0 {
		return invalid("rpc.rate_limit", fmt.Sprint(c.RPC.RateLimit), "zero or positive")
	}
	// A zero burst bucket never admits a call.
	if c.RPC.RateLimit > 0 && c.RPC.Burst < 1 {
		return invalid("rpc.burst", strconv.Itoa(c.RPC.Burst), "at least 1 while rpc.rate_limit is set")
	}

	for i, n := range c.Networks {
		key := fmt.Sprintf("networks[%d]", i)
		if n.ChainID == 0 {
			return invalid(key+".chain_id", "0", "a non-zero chain id")
		}
		if n.Name == "" {
			return invalid(key+".name", "", "a display name")
		}
		if len(n.RPCURLs) == 0 {
			return invalid(key+".rpc_urls", "", "at least one URL")
		}
	}
	return nil
}

func invalid(key, value, valid string) error {
	return tethererr.WithDetails(tethererr.ErrConfigInvalid, map[string]string{
		"key":   key,
		"value": value,
		"valid": valid,
	})
}

// GetHome returns the tether home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}
