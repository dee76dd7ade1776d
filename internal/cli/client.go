package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tether/internal/dapp"
	"github.com/mrz1836/tether/internal/metrics"
	"github.com/mrz1836/tether/internal/networks"
	"github.com/mrz1836/tether/internal/output"
	"github.com/mrz1836/tether/internal/provider"
	"github.com/mrz1836/tether/internal/session"
	"github.com/mrz1836/tether/internal/walletrpc"
)

// out writes formatted output, ignoring errors (CLI output).
func out(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// outln writes a line, ignoring errors (CLI output).
func outln(w io.Writer, args ...any) {
	_, _ = fmt.Fprintln(w, args...)
}

// newClient builds a dApp client from the command's configuration.
func newClient(cmd *cobra.Command) (*dapp.Client, error) {
	cc := GetCmdContext(cmd)
	if err := cc.Cfg.Validate(); err != nil {
		return nil, err
	}

	store, fellBack, err := session.NewStore(cc.Cfg.Session.Store, cc.Cfg.SessionFile(), nil)
	if err != nil {
		return nil, err
	}
	if fellBack {
		cc.Notify.Warn("keyring unavailable, remembering the provider in %s", cc.Cfg.SessionFile())
	}

	retry := walletrpc.DefaultRetryConfig()
	rpcOpts := &walletrpc.Options{
		Metrics: metrics.Global,
		Timeout: rpcTimeout(cc),
		Retry:   &retry,
	}
	if cc.Cfg.RPC.RateLimit > 0 {
		rpcOpts.Limiter = walletrpc.NewRateLimiter(cc.Cfg.RPC.RateLimit, cc.Cfg.RPC.Burst)
	}

	errOut := cmd.ErrOrStderr()
	registry := provider.NewDefaultRegistry(provider.Options{
		Endpoints: cc.Cfg.Endpoints(),
		RPC:       rpcOpts,
		Pairing: func(p provider.Pairing) error {
			if err := output.RenderPairing(errOut, p.URI()); err != nil {
				outln(errOut, p.URI())
			}
			return nil
		},
	})

	return dapp.New(&dapp.Config{
		Providers: registry,
		Store:     store,
		Networks:  networks.NewRegistry(cc.Cfg.ExtraNetworks()...),
		Logger:    cc.Log,
		Metrics:   metrics.Global,
	}), nil
}

// withClient runs fn against a client. When restore is set the remembered
// provider is reconnected first. The wallet connection is released afterwards
// but the remembered provider is kept.
func withClient(cmd *cobra.Command, restore bool, fn func(ctx context.Context, c *dapp.Client) error) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := walletContext(cmd)
	defer cancel()

	if restore {
		c.Restore(ctx)
	}
	return fn(ctx, c)
}

// requireSession reports ErrNoActiveSession with a hint when nothing was restored.
func requireSession(c *dapp.Client) error {
	if c.Session().Active {
		return nil
	}
	return noSessionErr()
}
