// Package networks holds the static table of chains a wallet can be asked to switch to,
// along with the EIP-3085 descriptors sent when the wallet does not know a chain yet.
package networks

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	tethererr "github.com/mrz1836/tether/pkg/errors"
)

// Built-in chain ids.
const (
	Ropsten uint64 = 3
	Rinkeby uint64 = 4
	Goerli  uint64 = 5
	Kovan   uint64 = 42
	Harmony uint64 = 1666600000
	Celo    uint64 = 42220
)

// NativeCurrency describes the gas token of a chain.
type NativeCurrency struct {
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals int    `json:"decimals" yaml:"decimals"`
}

// Descriptor is the wallet_addEthereumChain parameter object for one chain.
type Descriptor struct {
	ChainID           string         `json:"chainId"`
	ChainName         string         `json:"chainName"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls,omitempty"`
	IconURLs          []string       `json:"iconUrls,omitempty"`
}

// Network is one entry of the registry.
type Network struct {
	ID         uint64
	Name       string
	Descriptor Descriptor
}

// ToHex encodes a chain id the way wallet RPCs expect: 0x-prefixed lowercase hex
// without leading zeros.
func ToHex(chainID uint64) string {
	return hexutil.EncodeUint64(chainID)
}

// ParseChainID accepts a decimal or 0x-prefixed hex chain id.
func ParseChainID(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		id, err := hexutil.DecodeUint64(strings.ToLower(s))
		if err != nil {
			return 0, tethererr.WithDetails(tethererr.ErrInvalidInput, map[string]string{"chain_id": s})
		}
		return id, nil
	}

	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, tethererr.WithDetails(tethererr.ErrInvalidInput, map[string]string{"chain_id": s})
	}
	return id, nil
}

// Registry is the set of networks a user may select.
type Registry struct {
	networks map[uint64]Network
}

// NewRegistry returns a registry seeded with the built-in networks plus any extras.
// Extras with the id of a built-in network replace it.
func NewRegistry(extra ...Network) *Registry {
	r := &Registry{networks: make(map[uint64]Network, len(builtin)+len(extra))}
	for _, n := range builtin {
		r.networks[n.ID] = n
	}
	for _, n := range extra {
		n.Descriptor.ChainID = ToHex(n.ID)
		if n.Descriptor.ChainName == "" {
			n.Descriptor.ChainName = n.Name
		}
		r.networks[n.ID] = n
	}
	return r
}

// Lookup returns the network for a chain id.
func (r *Registry) Lookup(chainID uint64) (Network, error) {
	n, ok := r.networks[chainID]
	if !ok {
		return Network{}, tethererr.WithDetails(tethererr.ErrUnknownChain, map[string]string{
			"chain_id": strconv.FormatUint(chainID, 10),
		})
	}
	return n, nil
}

// Name returns the display name of a chain, or a generic label for unknown ids.
func (r *Registry) Name(chainID uint64) string {
	if n, ok := r.networks[chainID]; ok {
		return n.Name
	}
	return fmt.Sprintf("Chain %d", chainID)
}

// List returns all networks ordered by chain id.
func (r *Registry) List() []Network {
	out := make([]Network, 0, len(r.networks))
	for _, n := range r.networks {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func ethTestnet(id uint64, name, rpc, explorer string) Network {
	return Network{
		ID:   id,
		Name: name,
		Descriptor: Descriptor{
			ChainID:           ToHex(id),
			ChainName:         name,
			NativeCurrency:    NativeCurrency{Name: name + " Ether", Symbol: "ETH", Decimals: 18},
			RPCURLs:           []string{rpc},
			BlockExplorerURLs: []string{explorer},
		},
	}
}

//nolint:gochecknoglobals // Static chain table
var builtin = []Network{
	ethTestnet(Ropsten, "Ropsten", "https://rpc.ankr.com/eth_ropsten", "https://ropsten.etherscan.io"),
	ethTestnet(Rinkeby, "Rinkeby", "https://rpc.ankr.com/eth_rinkeby", "https://rinkeby.etherscan.io"),
	ethTestnet(Goerli, "Goerli", "https://rpc.ankr.com/eth_goerli", "https://goerli.etherscan.io"),
	ethTestnet(Kovan, "Kovan", "https://kovan.poa.network", "https://kovan.etherscan.io"),
	{
		ID:   Harmony,
		Name: "Harmony",
		Descriptor: Descriptor{
			ChainID:           ToHex(Harmony),
			ChainName:         "Harmony Mainnet",
			NativeCurrency:    NativeCurrency{Name: "ONE", Symbol: "ONE", Decimals: 18},
			RPCURLs:           []string{"https://api.harmony.one"},
			BlockExplorerURLs: []string{"https://explorer.harmony.one"},
			IconURLs:          []string{"https://harmonynews.one/wp-content/uploads/2019/11/slfdjs.png"},
		},
	},
	{
		ID:   Celo,
		Name: "Celo",
		Descriptor: Descriptor{
			ChainID:           ToHex(Celo),
			ChainName:         "Celo Mainnet",
			NativeCurrency:    NativeCurrency{Name: "CELO", Symbol: "CELO", Decimals: 18},
			RPCURLs:           []string{"https://forno.celo.org"},
			BlockExplorerURLs: []string{"https://explorer.celo.org"},
			IconURLs:          []string{"https://celo.org/images/marketplace-icons/icon-celo-CELO-color-f.svg"},
		},
	},
}
