// Package main is the entry point for the Vapi call browser. The bare `vcb`
// command opens the interactive TUI; subcommands cover one-shot cache
// maintenance and refreshes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/j-veylop/vapi-call-browser/internal/version"
)

func newRootCmd() *cobra.Command {
	var (
		offline    bool
		skipCheck  bool
		foreground bool
	)

	cmd := &cobra.Command{
		Use:   "vcb",
		Short: "Browse Vapi call records from a terminal",
		Long: `vcb is a terminal browser for Vapi telephony call records.

Calls are cached in a local SQLite database, so the browser works offline
and starts instantly; a background cycle keeps the cache fresh whenever the
network allows it.

Keyboard shortcuts:
  1-2             Switch between tabs (Browser, Cache)
  Tab/Shift+Tab   Navigate between tabs
  Up/Down         Select a call
  s               Sort calls
  r               Refresh the cache
  o               Toggle offline mode
  m               Toggle secret masking
  y / Y           Copy call id / transcript
  v               Open raw call JSON in $EDITOR
  ?               Toggle help
  q, Ctrl+C       Quit

Configuration is read from the environment and from .env files in the
current directory or ~/.config/vcb/. See VAPI_API_KEY, VCB_DB_PATH,
VCB_OFFLINE, VCB_REFRESH_SCHEDULE and friends.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowser(cmd, offline, skipCheck, foreground)
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "start in offline mode, serving only cached calls")
	cmd.Flags().BoolVar(&skipCheck, "skip-check", false, "serve the cache without the remote freshness probe")
	cmd.Flags().BoolVar(&foreground, "foreground", false, "run refresh cycles synchronously (debug)")

	cmd.Version = version.GetVersion()
	cmd.SetVersionTemplate(version.Info() + "\n")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newRefreshCmd())
	cmd.AddCommand(newCacheCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
