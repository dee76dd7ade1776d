package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tether/internal/walletrpc"
)

// walletRoundTrips bounds a whole command: a switch can prompt twice, and a
// sign with --verify runs after the connect prompt.
const walletRoundTrips = 4

// rpcTimeout is the configured per-request wallet timeout, zero when unset.
func rpcTimeout(cc *CommandContext) time.Duration {
	if cc == nil || cc.Cfg == nil || cc.Cfg.RPC.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(cc.Cfg.RPC.TimeoutSeconds) * time.Second
}

// commandBudget is how long one wallet command may run in total.
func commandBudget(cc *CommandContext) time.Duration {
	per := rpcTimeout(cc)
	if per == 0 {
		per = walletrpc.DefaultTimeout
	}
	return walletRoundTrips * per
}

// walletContext returns the deadline-bound context for a wallet command,
// rooted in the command's own context so Ctrl+C still cancels it.
func walletContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return contextWithTimeout(cmd, commandBudget(GetCmdContext(cmd)))
}

func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	return context.WithTimeout(base, d)
}
