package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/mrz1836/go-sanitize"
)

// Endpoint validation errors.
var (
	ErrInvalidEndpoint  = errors.New("invalid endpoint")
	ErrInsecureEndpoint = errors.New("cleartext endpoint must be loopback")
)

// Environment variable names.
const (
	EnvHome                = "TETHER_HOME"
	EnvInjectedRPC         = "TETHER_INJECTED_RPC"
	EnvCoinbaseRPC         = "TETHER_COINBASE_RPC"
	EnvWalletConnectBridge = "TETHER_WALLETCONNECT_BRIDGE"
	EnvSessionStore        = "TETHER_SESSION_STORE"
	EnvRPCTimeout          = "TETHER_RPC_TIMEOUT"
	EnvOutputFormat        = "TETHER_OUTPUT_FORMAT"
	EnvVerbose             = "TETHER_VERBOSE"
	EnvLogLevel            = "TETHER_LOG_LEVEL"
	EnvNoColor             = "NO_COLOR"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
//
//nolint:gocognit,gocyclo // Environment variable overrides require sequential checks
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvInjectedRPC); v != "" {
		cfg.Providers.Injected.Endpoint = SanitizeURL(v)
	}

	if v := os.Getenv(EnvCoinbaseRPC); v != "" {
		cfg.Providers.CoinbaseWallet.Endpoint = SanitizeURL(v)
	}

	if v := os.Getenv(EnvWalletConnectBridge); v != "" {
		cfg.Providers.WalletConnect.Endpoint = SanitizeURL(v)
	}

	if v := os.Getenv(EnvSessionStore); v != "" {
		cfg.Session.Store = strings.ToLower(strings.TrimSpace(v))
	}

	// TETHER_RPC_TIMEOUT is in seconds
	if v := os.Getenv(EnvRPCTimeout); v != "" {
		if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
			cfg.RPC.TimeoutSeconds = secs
		}
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeURL cleans a URL string by removing invalid characters and trimming whitespace.
// Endpoints pasted from wallet dashboards often carry stray quotes or spaces.
func SanitizeURL(url string) string {
	return sanitize.URL(strings.TrimSpace(url))
}

// SanitizeEndpoints cleans every provider endpoint in place.
func SanitizeEndpoints(cfg *Config) {
	cfg.Providers.Injected.Endpoint = SanitizeURL(cfg.Providers.Injected.Endpoint)
	cfg.Providers.CoinbaseWallet.Endpoint = SanitizeURL(cfg.Providers.CoinbaseWallet.Endpoint)
	cfg.Providers.WalletConnect.Endpoint = SanitizeURL(cfg.Providers.WalletConnect.Endpoint)
}

// ValidateEndpoint checks a provider endpoint. Only http, https, ws and wss are
// accepted, and the cleartext schemes only for loopback hosts. An empty
// endpoint is valid and means "not configured".
func ValidateEndpoint(endpoint string) error {
	if endpoint == "" {
		return nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %q has no host", ErrInvalidEndpoint, endpoint)
	}

	switch strings.ToLower(u.Scheme) {
	case "https", "wss":
		return nil
	case "http", "ws":
		if isLoopback(u.Hostname()) {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrInsecureEndpoint, endpoint)
	default:
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidEndpoint, u.Scheme)
	}
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
