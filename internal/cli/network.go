package cli

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tether/internal/dapp"
	"github.com/mrz1836/tether/internal/network"
	"github.com/mrz1836/tether/internal/networks"
	"github.com/mrz1836/tether/internal/output"
	tethererr "github.com/mrz1836/tether/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var networkCmd = &cobra.Command{
	Use:     "network",
	Short:   "List and switch networks",
	Long:    `List the networks tether can switch the wallet to and request a switch.`,
	GroupID: groupWallet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List selectable networks",
	Long: `List the built-in networks and any configured under networks in config.yaml,
ordered by chain id.`,
	Example: `  tether network list
  tether network list -o json`,
	Args: cobra.NoArgs,
	RunE: runNetworkList,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var networkSwitchCmd = &cobra.Command{
	Use:   "switch <chain-id>",
	Short: "Ask the wallet to switch networks",
	Long: `Ask the connected wallet to switch to a chain. The chain id may be decimal or
0x-prefixed hex.

If the wallet does not know the chain, tether registers it with the wallet
instead. The wallet stays on its current chain; run the switch again to move.`,
	Example: `  tether network switch 42
  tether network switch 0xa4ec`,
	Args: cobra.ExactArgs(1),
	RunE: runNetworkSwitch,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(networkCmd)
	networkCmd.AddCommand(networkListCmd)
	networkCmd.AddCommand(networkSwitchCmd)
}

type networkRow struct {
	ChainID  uint64   `json:"chain_id"`
	ChainHex string   `json:"chain_id_hex"`
	Name     string   `json:"name"`
	Symbol   string   `json:"currency_symbol"`
	RPCURLs  []string `json:"rpc_urls"`
}

func runNetworkList(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	list := networks.NewRegistry(cc.Cfg.ExtraNetworks()...).List()

	rows := make([]networkRow, 0, len(list))
	for _, n := range list {
		rows = append(rows, networkRow{
			ChainID:  n.ID,
			ChainHex: networks.ToHex(n.ID),
			Name:     n.Name,
			Symbol:   n.Descriptor.NativeCurrency.Symbol,
			RPCURLs:  n.Descriptor.RPCURLs,
		})
	}

	return cc.Fmt.Render(rows, func(w io.Writer) error {
		t := output.NewTable("CHAIN", "HEX", "NAME", "CURRENCY", "RPC")
		for _, r := range rows {
			t.AddRow(strconv.FormatUint(r.ChainID, 10), r.ChainHex, r.Name, r.Symbol, strings.Join(r.RPCURLs, ", "))
		}
		return t.Render(w)
	})
}

type switchResult struct {
	Outcome string     `json:"outcome"`
	ChainID uint64     `json:"chain_id"`
	Network string     `json:"network"`
	State   dapp.State `json:"state"`
}

func runNetworkSwitch(cmd *cobra.Command, args []string) error {
	chainID, err := networks.ParseChainID(args[0])
	if err != nil {
		return tethererr.WithDetails(tethererr.WithCause(tethererr.ErrInvalidInput, err),
			map[string]string{"chain_id": args[0]})
	}

	return withClient(cmd, true, func(ctx context.Context, c *dapp.Client) error {
		if err := requireSession(c); err != nil {
			return err
		}

		outcome, err := c.SwitchToChain(ctx, chainID)
		if err != nil {
			return err
		}

		st := c.State()
		res := switchResult{
			Outcome: outcome.String(),
			ChainID: chainID,
			Network: networkName(c, chainID),
			State:   st,
		}
		return GetCmdContext(cmd).Fmt.Render(res, func(w io.Writer) error {
			switch outcome {
			case network.ChainAdded:
				out(w, "Registered %s (%d) with the wallet. Run the switch again to move to it.\n", res.Network, chainID)
			case network.Switched:
				out(w, "Switched to %s (%d)\n", res.Network, st.ChainID)
			}
			return nil
		})
	})
}

func networkName(c *dapp.Client, chainID uint64) string {
	for _, n := range c.Networks() {
		if n.ID == chainID {
			return n.Name
		}
	}
	return networks.NewRegistry().Name(chainID)
}
