package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tether/internal/devpeer"
	"github.com/mrz1836/tether/internal/networks"
	tethererr "github.com/mrz1836/tether/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var peerCmd = &cobra.Command{
	Use:   "peer",
	Short: "Development wallet",
	Long: `Run a local wallet that answers the same JSON-RPC methods a browser wallet
does. It signs with a key derived from a BIP39 mnemonic and needs no approval.`,
	GroupID: groupConfig,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var peerServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the development wallet",
	Long: `Serve the development wallet over HTTP and WebSocket until interrupted.

The default provider endpoints point at the default listen address, so
'tether connect injected' works against it without configuration. The
--reject flags make the wallet decline like a user pressing cancel.`,
	Example: `  tether peer serve
  tether peer serve --listen 127.0.0.1:9545 --chain 42
  tether peer serve --reject-add`,
	Args: cobra.NoArgs,
	RunE: runPeerServe,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	peerListen     string
	peerMnemonic   string
	peerChain      string
	peerRejectAdd  bool
	peerRejectSign bool
)

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(peerCmd)
	peerCmd.AddCommand(peerServeCmd)

	peerServeCmd.Flags().StringVar(&peerListen, "listen", "", "address to listen on (default: peer.listen from config)")
	peerServeCmd.Flags().StringVar(&peerMnemonic, "mnemonic", "", "BIP39 mnemonic for the signing key")
	peerServeCmd.Flags().StringVar(&peerChain, "chain", "", "starting chain id, decimal or 0x hex")
	peerServeCmd.Flags().BoolVar(&peerRejectAdd, "reject-add", false, "decline every chain registration")
	peerServeCmd.Flags().BoolVar(&peerRejectSign, "reject-sign", false, "decline every signature request")
}

func runPeerServe(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	peerCfg, listen, err := peerConfig(cc)
	if err != nil {
		return err
	}

	peer, err := devpeer.New(peerCfg)
	if err != nil {
		return err
	}
	defer peer.Close()

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", listen, err)
	}

	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	ctx, stop := signal.NotifyContext(base, os.Interrupt, syscall.SIGTERM)
	defer stop()

	printPeerBanner(cmd.ErrOrStderr(), peer, ln.Addr().String())
	cc.Log.Debug("peer serving %s on %s", peer.Address().Hex(), ln.Addr())

	return peer.Serve(ctx, ln)
}

// peerConfig merges flags over the peer section of the configuration.
func peerConfig(cc *CommandContext) (devpeer.Config, string, error) {
	c := devpeer.Config{
		Mnemonic:    cc.Cfg.Peer.Mnemonic,
		ChainID:     cc.Cfg.Peer.ChainID,
		KnownChains: cc.Cfg.Peer.KnownChains,
		RejectAdd:   peerRejectAdd,
		RejectSign:  peerRejectSign,
		Logger:      cc.Log,
	}
	if peerMnemonic != "" {
		c.Mnemonic = peerMnemonic
	}
	if peerChain != "" {
		id, err := networks.ParseChainID(peerChain)
		if err != nil {
			return devpeer.Config{}, "", tethererr.WithCause(tethererr.ErrInvalidInput, err)
		}
		c.ChainID = id
	}

	listen := cc.Cfg.Peer.Listen
	if peerListen != "" {
		listen = peerListen
	}
	return c, listen, nil
}

func printPeerBanner(w io.Writer, peer *devpeer.Peer, addr string) {
	out(w, "Development wallet %s\n", peer.Address().Hex())
	out(w, "Chain:    %d\n", peer.ChainID())
	out(w, "HTTP:     http://%s\n", addr)
	out(w, "WS:       ws://%s\n", addr)
	outln(w, "Press Ctrl+C to stop.")
}
