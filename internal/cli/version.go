package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo contains version information injected at build time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

//nolint:gochecknoglobals // set once from main
var buildInfo = BuildInfo{Version: "dev", Commit: "unknown", Date: "unknown"}

// SetBuildInfo records build metadata and sets the root --version output.
func SetBuildInfo(info BuildInfo) {
	buildInfo = info.withDefaults()
	rootCmd.Version = formatVersion(buildInfo)
}

func (b BuildInfo) withDefaults() BuildInfo {
	if b.Version == "" {
		b.Version = "dev"
	}
	if b.Commit == "" {
		b.Commit = "unknown"
	}
	if b.Date == "" {
		b.Date = "unknown"
	}
	return b
}

// GetCurrentVersion returns the running version.
func GetCurrentVersion() string {
	return buildInfo.Version
}

// formatVersion formats the version string for display.
func formatVersion(info BuildInfo) string {
	info = info.withDefaults()
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Show the tether version, commit and build date along with the Go runtime.`,
	Example: `  tether version
  tether version -o json`,
	GroupID: groupConfig,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := struct {
			Version string `json:"version"`
			Commit  string `json:"commit"`
			Date    string `json:"date"`
			Go      string `json:"go"`
		}{buildInfo.Version, buildInfo.Commit, buildInfo.Date, runtime.Version()}

		return GetCmdContext(cmd).Fmt.Render(info, func(w io.Writer) error {
			out(w, "tether %s (%s)\n", formatVersion(buildInfo), info.Go)
			return nil
		})
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
}
