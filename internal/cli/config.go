package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tether/internal/config"
	"github.com/mrz1836/tether/internal/networks"
	"github.com/mrz1836/tether/internal/output"
	tethererr "github.com/mrz1836/tether/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Manage configuration",
	Long:    `View and modify tether configuration settings.`,
	GroupID: groupConfig,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.tether/config.yaml.

If a configuration file already exists, this command will not overwrite it
unless --force is specified.`,
	Example: `  tether config init
  tether config init --force`,
	RunE: runConfigInit,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after file, environment and flag overrides.`,
	Example: `  tether config show
  tether config show -o json`,
	RunE: runConfigShow,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configPathCmd = &cobra.Command{
	Use:     "path",
	Short:   "Print the configuration file path",
	Long:    `Print the path of the configuration file for the active home directory.`,
	Example: `  tether config path`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		outln(cmd.OutOrStdout(), config.Path(cfg.Home))
		return nil
	},
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value by its path.

The path uses dot notation to navigate the configuration tree.`,
	Example: `  tether config get providers.injected.endpoint
  tether config get session.store
  tether config get logging.level`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: configPaths(),
	RunE:      runConfigGet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value by its path.

The path uses dot notation to navigate the configuration tree.
The value is validated and the configuration file is updated immediately.`,
	Example: `  tether config set providers.wallet_connect.endpoint wss://bridge.example.org
  tether config set session.store keyring
  tether config set rpc.timeout_seconds 300`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	configPath := config.Path(cfg.Home)

	if _, err := os.Stat(configPath); err == nil && !configForce {
		return tethererr.WithSuggestion(
			tethererr.ErrGeneral,
			fmt.Sprintf("configuration already exists at %s. Use --force to overwrite.", configPath),
		)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultCfg := config.Defaults()
	defaultCfg.Home = cfg.Home

	if err := config.Save(defaultCfg, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	w := cmd.OutOrStdout()
	out(w, "Configuration initialized at %s\n", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - providers.<kind>.endpoint: Wallet JSON-RPC endpoint per provider")
	outln(w, "  - session.store: Where the last provider is remembered (file/keyring)")
	outln(w, "  - networks: Extra networks to offer for switching")
	outln(w, "  - logging.level: Log level (off/error/debug)")

	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return displayConfigJSON(w, cfg)
	}
	return displayConfigText(w, cfg)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	path := args[0]

	value, err := getConfigValue(cfg, path)
	if err != nil {
		return tethererr.WithSuggestion(
			tethererr.ErrNotFound,
			fmt.Sprintf("configuration path '%s' not found", path),
		)
	}

	outln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path := args[0]
	value := args[1]

	if _, err := getConfigValue(cfg, path); err != nil {
		return tethererr.WithSuggestion(
			tethererr.ErrNotFound,
			fmt.Sprintf("configuration path '%s' not found", path),
		)
	}

	configPath := config.Path(cfg.Home)
	currentCfg, err := config.Load(configPath)
	if err != nil {
		// If file doesn't exist, start with defaults
		currentCfg = config.Defaults()
		currentCfg.Home = cfg.Home
	}

	if err := setConfigValue(currentCfg, path, value); err != nil {
		return err
	}
	if err := currentCfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(currentCfg, configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	out(cmd.OutOrStdout(), "Set %s = %s\n", path, value)
	return nil
}

// configKey reads and writes one scalar setting.
type configKey struct {
	get func(c *config.Config) string
	set func(c *config.Config, value string) error
}

func configKeys() map[string]configKey {
	return map[string]configKey{
		"home": {
			get: func(c *config.Config) string { return c.Home },
			set: func(c *config.Config, v string) error { c.Home = v; return nil },
		},
		"providers.injected.endpoint":        endpointKey(func(c *config.Config) *string { return &c.Providers.Injected.Endpoint }),
		"providers.coinbase_wallet.endpoint": endpointKey(func(c *config.Config) *string { return &c.Providers.CoinbaseWallet.Endpoint }),
		"providers.wallet_connect.endpoint":  endpointKey(func(c *config.Config) *string { return &c.Providers.WalletConnect.Endpoint }),
		"session.store": {
			get: func(c *config.Config) string { return c.Session.Store },
			set: func(c *config.Config, v string) error {
				return setChoice(&c.Session.Store, "session", "store", v, "file", "keyring")
			},
		},
		"session.file": {
			get: func(c *config.Config) string { return c.Session.File },
			set: func(c *config.Config, v string) error { c.Session.File = v; return nil },
		},
		"rpc.timeout_seconds": {
			get: func(c *config.Config) string { return strconv.Itoa(c.RPC.TimeoutSeconds) },
			set: func(c *config.Config, v string) error { return setInt(&c.RPC.TimeoutSeconds, v) },
		},
		"rpc.rate_limit": {
			get: func(c *config.Config) string { return strconv.FormatFloat(c.RPC.RateLimit, 'f', -1, 64) },
			set: func(c *config.Config, v string) error {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil || f < 0 {
					return invalidValue(v, "a non-negative number")
				}
				c.RPC.RateLimit = f
				return nil
			},
		},
		"rpc.burst": {
			get: func(c *config.Config) string { return strconv.Itoa(c.RPC.Burst) },
			set: func(c *config.Config, v string) error { return setInt(&c.RPC.Burst, v) },
		},
		"peer.listen": {
			get: func(c *config.Config) string { return c.Peer.Listen },
			set: func(c *config.Config, v string) error { c.Peer.Listen = v; return nil },
		},
		"peer.chain_id": {
			get: func(c *config.Config) string { return strconv.FormatUint(c.Peer.ChainID, 10) },
			set: func(c *config.Config, v string) error {
				id, err := networks.ParseChainID(v)
				if err != nil {
					return tethererr.WithCause(tethererr.ErrInvalidInput, err)
				}
				c.Peer.ChainID = id
				return nil
			},
		},
		"output.default_format": {
			get: func(c *config.Config) string { return c.Output.DefaultFormat },
			set: func(c *config.Config, v string) error {
				return setChoice(&c.Output.DefaultFormat, "output", "default_format", v, "text", "json", "auto")
			},
		},
		"output.color": {
			get: func(c *config.Config) string { return c.Output.Color },
			set: func(c *config.Config, v string) error {
				return setChoice(&c.Output.Color, "output", "color", v, "auto", "always", "never")
			},
		},
		"output.verbose": {
			get: func(c *config.Config) string { return strconv.FormatBool(c.Output.Verbose) },
			set: func(c *config.Config, v string) error { c.Output.Verbose = v == "true"; return nil },
		},
		"logging.level": {
			get: func(c *config.Config) string { return c.Logging.Level },
			set: func(c *config.Config, v string) error {
				return setChoice(&c.Logging.Level, "logging", "level", v, "off", "error", "debug")
			},
		},
		"logging.file": {
			get: func(c *config.Config) string { return c.Logging.File },
			set: func(c *config.Config, v string) error { c.Logging.File = v; return nil },
		},
	}
}

// configPaths lists every settable path for shell completion.
func configPaths() []string {
	keys := configKeys()
	paths := make([]string, 0, len(keys))
	for k := range keys {
		paths = append(paths, k)
	}
	return paths
}

func endpointKey(field func(c *config.Config) *string) configKey {
	return configKey{
		get: func(c *config.Config) string { return *field(c) },
		set: func(c *config.Config, v string) error {
			v = config.SanitizeURL(v)
			if err := config.ValidateEndpoint(v); err != nil {
				return tethererr.WithDetails(
					tethererr.WithCause(tethererr.ErrInvalidInput, err),
					map[string]string{"value": v, "valid": "https or wss URL, or http/ws on loopback"},
				)
			}
			*field(c) = v
			return nil
		},
	}
}

// getConfigValue retrieves a value from the config using dot notation.
func getConfigValue(c *config.Config, path string) (string, error) {
	key, ok := configKeys()[path]
	if !ok {
		return "", unknownKey(path)
	}
	return key.get(c), nil
}

// setConfigValue sets a value in the config using dot notation.
func setConfigValue(c *config.Config, path, value string) error {
	key, ok := configKeys()[path]
	if !ok {
		return unknownKey(path)
	}
	return key.set(c, value)
}

func unknownKey(path string) error {
	details := map[string]string{"path": path}
	if section, key, ok := strings.Cut(path, "."); ok {
		details = map[string]string{"section": section, "key": key}
	}
	return tethererr.WithDetails(tethererr.ErrUnknownConfigKey, details)
}

func setChoice(field *string, section, key, value string, valid ...string) error {
	for _, v := range valid {
		if value == v {
			*field = value
			return nil
		}
	}
	return tethererr.WithDetails(
		tethererr.ErrInvalidInput,
		map[string]string{"key": section + "." + key, "value": value, "valid": strings.Join(valid, ", ")},
	)
}

func setInt(field *int, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return invalidValue(value, "a non-negative integer")
	}
	*field = n
	return nil
}

func invalidValue(value, valid string) error {
	return tethererr.WithDetails(tethererr.ErrInvalidInput, map[string]string{"value": value, "valid": valid})
}

func notConfigured(s string) string {
	if s == "" {
		return "(not configured)"
	}
	return s
}

// displayConfigText shows the config in text format.
func displayConfigText(w io.Writer, c *config.Config) error {
	outln(w, "Configuration:")
	outln(w)
	out(w, "  Home: %s\n", c.Home)
	outln(w)
	outln(w, "  Providers:")
	out(w, "    injected: %s\n", notConfigured(c.Providers.Injected.Endpoint))
	out(w, "    coinbase_wallet: %s\n", notConfigured(c.Providers.CoinbaseWallet.Endpoint))
	out(w, "    wallet_connect: %s\n", notConfigured(c.Providers.WalletConnect.Endpoint))
	outln(w)
	outln(w, "  Session:")
	out(w, "    store: %s\n", c.Session.Store)
	out(w, "    file: %s\n", c.SessionFile())
	outln(w)
	outln(w, "  RPC:")
	out(w, "    timeout_seconds: %d\n", c.RPC.TimeoutSeconds)
	out(w, "    rate_limit: %g\n", c.RPC.RateLimit)
	out(w, "    burst: %d\n", c.RPC.Burst)
	outln(w)
	outln(w, "  Output:")
	out(w, "    default_format: %s\n", c.Output.DefaultFormat)
	out(w, "    verbose: %t\n", c.Output.Verbose)
	out(w, "    color: %s\n", c.Output.Color)
	outln(w)
	outln(w, "  Logging:")
	out(w, "    level: %s\n", c.Logging.Level)
	out(w, "    file: %s\n", c.Logging.File)

	if len(c.Networks) > 0 {
		outln(w)
		outln(w, "  Networks:")
		for _, n := range c.Networks {
			out(w, "    %d: %s (%s)\n", n.ChainID, n.Name, strings.Join(n.RPCURLs, ", "))
		}
	}

	return nil
}

// displayConfigJSON shows the config in JSON format. The peer mnemonic is
// masked.
func displayConfigJSON(w io.Writer, c *config.Config) error {
	type providerJSON struct {
		Endpoint string `json:"endpoint"`
	}
	type networkJSON struct {
		ChainID uint64   `json:"chain_id"`
		Name    string   `json:"name"`
		Symbol  string   `json:"currency_symbol"`
		RPCURLs []string `json:"rpc_urls"`
	}
	type configJSON struct {
		Version   int                     `json:"version"`
		Home      string                  `json:"home"`
		Providers map[string]providerJSON `json:"providers"`
		Session   struct {
			Store string `json:"store"`
			File  string `json:"file"`
		} `json:"session"`
		RPC struct {
			TimeoutSeconds int     `json:"timeout_seconds"`
			RateLimit      float64 `json:"rate_limit"`
			Burst          int     `json:"burst"`
		} `json:"rpc"`
		Networks []networkJSON `json:"networks"`
		Peer     struct {
			Listen   string `json:"listen"`
			ChainID  uint64 `json:"chain_id"`
			Mnemonic string `json:"mnemonic"`
		} `json:"peer"`
		Output struct {
			DefaultFormat string `json:"default_format"`
			Color         string `json:"color"`
			Verbose       bool   `json:"verbose"`
		} `json:"output"`
		Logging struct {
			Level string `json:"level"`
			File  string `json:"file"`
		} `json:"logging"`
	}

	outCfg := configJSON{
		Version: c.Version,
		Home:    c.Home,
		Providers: map[string]providerJSON{
			"injected":        {Endpoint: c.Providers.Injected.Endpoint},
			"coinbase_wallet": {Endpoint: c.Providers.CoinbaseWallet.Endpoint},
			"wallet_connect":  {Endpoint: c.Providers.WalletConnect.Endpoint},
		},
		Networks: make([]networkJSON, 0, len(c.Networks)),
	}
	for _, n := range c.Networks {
		outCfg.Networks = append(outCfg.Networks, networkJSON{
			ChainID: n.ChainID,
			Name:    n.Name,
			Symbol:  n.CurrencySymbol,
			RPCURLs: n.RPCURLs,
		})
	}
	outCfg.Output.DefaultFormat = c.Output.DefaultFormat
	outCfg.Output.Color = c.Output.Color
	outCfg.Output.Verbose = c.Output.Verbose
	outCfg.Logging.Level = c.Logging.Level
	outCfg.Logging.File = c.Logging.File
	outCfg.Session.Store = c.Session.Store
	outCfg.Session.File = c.SessionFile()
	outCfg.RPC.TimeoutSeconds = c.RPC.TimeoutSeconds
	outCfg.RPC.RateLimit = c.RPC.RateLimit
	outCfg.RPC.Burst = c.RPC.Burst
	outCfg.Peer.Listen = c.Peer.Listen
	outCfg.Peer.ChainID = c.Peer.ChainID
	outCfg.Peer.Mnemonic = "(not configured)"
	if c.Peer.Mnemonic != "" {
		outCfg.Peer.Mnemonic = "***"
	}

	return output.WriteJSON(w, outCfg)
}
