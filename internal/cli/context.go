package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tether/internal/config"
	"github.com/mrz1836/tether/internal/output"
)

type cmdContextKey struct{}

// CommandContext holds dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Log    LogWriter
	Fmt    *output.Formatter
	Notify *output.Notifier
}

// NewCommandContext creates a context with the given dependencies.
func NewCommandContext(c *config.Config, log LogWriter, f *output.Formatter) *CommandContext {
	return &CommandContext{Cfg: c, Log: log, Fmt: f}
}

// WithNotifier sets the notifier used for human-readable status lines.
func (c *CommandContext) WithNotifier(n *output.Notifier) *CommandContext {
	c.Notify = n
	return c
}

// SetCmdContext attaches ctx to cmd.
func SetCmdContext(cmd *cobra.Command, ctx *CommandContext) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	cmd.SetContext(context.WithValue(base, cmdContextKey{}, ctx))
}

// GetCmdContext returns the context attached to cmd, or the global one.
func GetCmdContext(cmd *cobra.Command) *CommandContext {
	if base := cmd.Context(); base != nil {
		if ctx, ok := base.Value(cmdContextKey{}).(*CommandContext); ok {
			return ctx
		}
	}
	return cmdCtx
}
