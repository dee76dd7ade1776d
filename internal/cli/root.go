// Package cli implements the tether command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tether/internal/config"
	"github.com/mrz1836/tether/internal/output"
	tethererr "github.com/mrz1836/tether/pkg/errors"
)

// Command group IDs.
const (
	groupSession = "session"
	groupWallet  = "wallet"
	groupConfig  = "config"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
	cmdCtx    *CommandContext

	helpOnce sync.Once
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tether",
	Short: "Connect a wallet, switch networks and sign messages",
	Long: `Tether is a terminal client for browser-style wallet sessions.

It connects to a wallet through one of three providers (Coinbase Wallet,
WalletConnect or an injected JSON-RPC wallet), remembers the provider between
runs, asks the wallet to switch or register networks, and runs a
sign-then-verify round trip against the connected account.

Run 'tether peer serve' for a local development wallet to connect to.`,
	Example: `  tether peer serve &
  tether connect injected
  tether network switch 42220
  tether sign "hello" --verify
  tether shell`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute(info BuildInfo) error {
	SetBuildInfo(info)
	helpOnce.Do(func() { walkCommands(rootCmd, enrichParentLong) })

	if err := rootCmd.Execute(); err != nil {
		var fp FormatProvider
		if formatter != nil {
			fp = formatter
		}
		formatErr(os.Stderr, fp, err)
		return err
	}
	return nil
}

// formatErr prints err to w in the format fp reports, or as text before the
// output format is known.
func formatErr(w io.Writer, fp FormatProvider, err error) {
	format := output.FormatText
	if fp != nil {
		format = fp.Format()
	}
	_ = output.FormatError(w, err, format)
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return tethererr.ExitCode(err)
}

// initGlobals initializes global configuration, logger, and formatter.
func initGlobals(cmd *cobra.Command) error {
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	var err error
	cfg, err = config.Load(config.Path(home))
	if err != nil {
		// Use defaults if config doesn't exist
		cfg = config.Defaults()
		cfg.Home = home
	}

	config.ApplyEnvironment(cfg)
	config.SanitizeEndpoints(cfg)

	// Command-line flags win over file and environment
	if homeDir != "" {
		cfg.Home = homeDir
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}

	logger, err = config.NewLogger(config.ParseLogLevel(cfg.Logging.Level), cfg.Logging.File)
	if err != nil {
		logger = config.NullLogger()
	}

	formatter = output.NewFormatter(output.ParseFormat(cfg.Output.DefaultFormat), cmd.OutOrStdout())

	cmdCtx = NewCommandContext(cfg, logger, formatter).
		WithNotifier(output.NewNotifier(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Output.Color == "never"))
	SetCmdContext(cmd, cmdCtx)

	logger.Debug("tether %s home=%s format=%s", GetCurrentVersion(), cfg.Home, formatter.Format())
	return nil
}

// cleanup releases resources.
func cleanup() {
	if logger != nil {
		_ = logger.Close()
	}
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the global logger.
func Logger() *config.Logger {
	return logger
}

// Formatter returns the global output formatter.
func Formatter() *output.Formatter {
	return formatter
}

// Context returns the global command context.
func Context() *CommandContext {
	return cmdCtx
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupSession, Title: "Session:"},
		&cobra.Group{ID: groupWallet, Title: "Wallet Operations:"},
		&cobra.Group{ID: groupConfig, Title: "Configuration:"},
	)
	rootCmd.SetHelpCommandGroupID(groupConfig)

	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "tether data directory (default: ~/.tether)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}
