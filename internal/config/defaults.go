package config

import (
	"github.com/mrz1836/tether/internal/networks"
)

// DefaultPeerListen is where `tether peer serve` listens by default. The default
// provider endpoints point at it, so a fresh install works against the
// development peer out of the box.
const DefaultPeerListen = "127.0.0.1:8545"

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.tether",
		Providers: ProvidersConfig{
			Injected:       ProviderConfig{Endpoint: "http://" + DefaultPeerListen},
			CoinbaseWallet: ProviderConfig{Endpoint: "ws://" + DefaultPeerListen},
			WalletConnect:  ProviderConfig{Endpoint: "ws://" + DefaultPeerListen},
		},
		Session: SessionConfig{
			Store: "file",
			File:  "session.json",
		},
		RPC: RPCConfig{
			TimeoutSeconds: 120, // wallet prompts wait on a human
			RateLimit:      5,
			Burst:          10,
		},
		Peer: PeerConfig{
			Listen:      DefaultPeerListen,
			ChainID:     networks.Goerli,
			KnownChains: []uint64{1, networks.Ropsten, networks.Rinkeby, networks.Goerli, networks.Kovan},
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.tether/tether.log",
		},
	}
}
