package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tether/internal/dapp"
	"github.com/mrz1836/tether/internal/networks"
	"github.com/mrz1836/tether/internal/walletrpc"
	tethererr "github.com/mrz1836/tether/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive wallet session",
	Long: `Start an interactive session that keeps one wallet connection open.

The remembered provider is reconnected on start. Failed actions are printed
and kept as the last error until a newer failure replaces it or 'clear' is
entered. Type 'help' for the list of commands.`,
	Example: `  tether shell
  printf 'connect injected\nmessage hi\nsign\nverify\n' | tether shell`,
	GroupID: groupSession,
	Args:    cobra.NoArgs,
	RunE:    runShell,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(shellCmd)
}

const shellHelp = `Commands:
  connect <provider>   connect coinbaseWallet, walletConnect or injected
  disconnect           end the session and forget the provider
  status               show the session and signing state
  networks             list selectable networks
  select <chain-id>    choose the network to switch to
  switch [chain-id]    switch to the selected (or given) network
  message <text>       set the message to sign
  sign                 sign the message
  verify               recover the signer and compare
  error                show the last error
  clear                clear the last error
  help                 show this help
  quit                 leave the shell`

// shell is one interactive session.
type shell struct {
	client  *dapp.Client
	out     io.Writer
	timeout time.Duration
}

func runShell(cmd *cobra.Command, _ []string) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	timeout := rpcTimeout(GetCmdContext(cmd))
	if timeout == 0 {
		timeout = walletrpc.DefaultTimeout
	}
	sh := &shell{client: c, out: cmd.OutOrStdout(), timeout: timeout}

	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}

	ctx, cancel := context.WithTimeout(base, timeout)
	c.Restore(ctx)
	cancel()
	sh.printStatus()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		out(sh.out, "tether> ")
		if !scanner.Scan() {
			outln(sh.out)
			return scanner.Err()
		}
		if done := sh.exec(base, scanner.Text()); done {
			return nil
		}
	}
}

// exec runs one input line. It reports whether the shell should exit.
//
//nolint:gocyclo // command dispatch
func (s *shell) exec(base context.Context, line string) bool {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	ctx, cancel := context.WithTimeout(base, s.timeout)
	defer cancel()

	var err error
	switch strings.ToLower(name) {
	case "":
	case "quit", "exit":
		return true
	case "help", "?":
		outln(s.out, shellHelp)
	case "connect":
		if err = s.client.Connect(ctx, arg); err == nil {
			s.printStatus()
		}
	case "disconnect":
		if err = s.client.Disconnect(); err == nil {
			outln(s.out, "Disconnected")
		}
	case "status":
		s.printStatus()
	case "networks":
		for _, n := range s.client.Networks() {
			out(s.out, "  %-8d %s\n", n.ID, n.Name)
		}
	case "select":
		err = s.selectNetwork(arg)
	case "switch":
		err = s.switchNetwork(ctx, arg)
	case "message":
		if err = s.client.SetMessage(arg); err == nil {
			out(s.out, "Message set (%d/20)\n", len([]rune(arg)))
		}
	case "sign":
		if r, signErr := s.client.Sign(ctx); signErr != nil {
			err = signErr
		} else {
			out(s.out, "Signature: %s\n", r.Signature)
		}
	case "verify":
		if v, verErr := s.client.Verify(ctx); verErr != nil {
			err = verErr
		} else {
			st := s.client.State()
			out(s.out, "Verification: %s (signer %s)\n", v, st.Recovered)
		}
	case "error":
		if msg := s.client.LastError(); msg != "" {
			outln(s.out, msg)
		} else {
			outln(s.out, "No error")
		}
	case "clear":
		s.client.ClearError()
	default:
		err = tethererr.WithSuggestion(tethererr.ErrInvalidInput,
			fmt.Sprintf("unknown command %q, type 'help'", name))
	}

	if err != nil {
		out(s.out, "error: %v\n", err)
	}
	return false
}

func (s *shell) selectNetwork(arg string) error {
	id, err := networks.ParseChainID(arg)
	if err != nil {
		return tethererr.WithCause(tethererr.ErrInvalidInput, err)
	}
	if err := s.client.SelectNetwork(id); err != nil {
		return err
	}
	out(s.out, "Selected %d\n", id)
	return nil
}

func (s *shell) switchNetwork(ctx context.Context, arg string) error {
	if arg != "" {
		if err := s.selectNetwork(arg); err != nil {
			return err
		}
	}
	outcome, err := s.client.SwitchNetwork(ctx)
	if err != nil {
		return err
	}
	st := s.client.State()
	out(s.out, "Network %s; wallet on %s (%d)\n", outcome, st.Network, st.ChainID)
	return nil
}

func (s *shell) printStatus() {
	st := s.client.State()
	if !st.Active {
		outln(s.out, "Not connected")
	} else {
		out(s.out, "%s %s on %s (%d)\n", st.Provider, st.Account, st.Network, st.ChainID)
	}
	if st.Message != "" {
		out(s.out, "Message: %s [%s]\n", st.Message, st.Workflow)
	}
	if st.Signature != "" {
		out(s.out, "Signature: %s\n", st.Signature)
	}
	if st.Verification != "unknown" {
		out(s.out, "Verification: %s\n", st.Verification)
	}
}
