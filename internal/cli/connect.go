package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tether/internal/dapp"
	"github.com/mrz1836/tether/internal/output"
	"github.com/mrz1836/tether/internal/provider"
	"github.com/mrz1836/tether/internal/session"
	tethererr "github.com/mrz1836/tether/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var connectCmd = &cobra.Command{
	Use:   "connect <provider>",
	Short: "Connect a wallet provider",
	Long: `Activate a wallet provider and remember it for later commands.

Providers are coinbaseWallet, walletConnect and injected. Any session that is
already active is ended first. WalletConnect prints a pairing URI and QR code
on stderr before it dials the bridge.`,
	Example: `  tether connect injected
  tether connect walletConnect
  tether connect coinbaseWallet -o json`,
	GroupID:   groupSession,
	Args:      cobra.ExactArgs(1),
	ValidArgs: kindNames(),
	RunE:      runConnect,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "End the session and forget the provider",
	Long: `Deactivate the current provider and clear the remembered provider, so later
commands start without a session.`,
	Example: `  tether disconnect`,
	GroupID: groupSession,
	Args:    cobra.NoArgs,
	RunE:    runDisconnect,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Long: `Reconnect the remembered provider and show the account, chain and network.

A remembered provider that can no longer be reached is shown as not connected.`,
	Example: `  tether status
  tether status -o json`,
	GroupID: groupSession,
	Args:    cobra.NoArgs,
	RunE:    runStatus,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List wallet providers",
	Long:  `List the provider kinds with their configured endpoints and mark the remembered one.`,
	Example: `  tether providers
  tether providers -o json`,
	GroupID: groupSession,
	Args:    cobra.NoArgs,
	RunE:    runProviders,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(disconnectCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(providersCmd)
}

func kindNames() []string {
	kinds := provider.Kinds()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.String())
	}
	return names
}

func noSessionErr() error {
	return tethererr.WithSuggestion(tethererr.ErrNoActiveSession,
		"connect a wallet first: tether connect <"+strings.Join(kindNames(), "|")+">")
}

func runConnect(cmd *cobra.Command, args []string) error {
	return withClient(cmd, false, func(ctx context.Context, c *dapp.Client) error {
		if err := c.Connect(ctx, args[0]); err != nil {
			return err
		}
		return displayState(GetCmdContext(cmd).Fmt, c.State())
	})
}

func runDisconnect(cmd *cobra.Command, _ []string) error {
	return withClient(cmd, false, func(_ context.Context, c *dapp.Client) error {
		if err := c.Disconnect(); err != nil {
			return err
		}
		return GetCmdContext(cmd).Fmt.Render(c.State(), func(w io.Writer) error {
			outln(w, "Disconnected")
			return nil
		})
	})
}

func runStatus(cmd *cobra.Command, _ []string) error {
	return withClient(cmd, true, func(_ context.Context, c *dapp.Client) error {
		return displayState(GetCmdContext(cmd).Fmt, c.State())
	})
}

// displayState renders the session part of a client snapshot.
func displayState(f *output.Formatter, st dapp.State) error {
	return f.Render(st, func(w io.Writer) error {
		if !st.Active {
			outln(w, "Not connected")
			return nil
		}
		out(w, "Provider: %s\n", st.Provider)
		out(w, "Account:  %s\n", st.Account)
		out(w, "Chain:    %d (%s)\n", st.ChainID, st.ChainHex)
		out(w, "Network:  %s\n", st.Network)
		if st.Selected != 0 && st.Selected != st.ChainID {
			out(w, "Selected: %d\n", st.Selected)
		}
		return nil
	})
}

type providerRow struct {
	Kind       string `json:"kind"`
	Endpoint   string `json:"endpoint"`
	Remembered bool   `json:"remembered"`
}

func runProviders(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	store, _, err := session.NewStore(cc.Cfg.Session.Store, cc.Cfg.SessionFile(), nil)
	if err != nil {
		return err
	}
	remembered, _, err := store.Load()
	if err != nil {
		cc.Log.Debug("reading remembered provider: %v", err)
	}

	endpoints := cc.Cfg.Endpoints()
	rows := make([]providerRow, 0, len(endpoints))
	for _, k := range provider.Kinds() {
		rows = append(rows, providerRow{
			Kind:       k.String(),
			Endpoint:   endpoints[k],
			Remembered: k == remembered,
		})
	}

	return cc.Fmt.Render(rows, func(w io.Writer) error {
		t := output.NewTable("", "PROVIDER", "ENDPOINT")
		for _, r := range rows {
			mark := ""
			if r.Remembered {
				mark = "*"
			}
			t.AddRow(mark, r.Kind, notConfigured(r.Endpoint))
		}
		if err := t.Render(w); err != nil {
			return fmt.Errorf("rendering providers: %w", err)
		}
		return nil
	})
}
