package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/j-veylop/vapi-call-browser/internal/config"
	"github.com/j-veylop/vapi-call-browser/internal/logger"
	"github.com/j-veylop/vapi-call-browser/internal/services"
)

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Run one cache update cycle and exit",
		Long: `Runs the same update cycle the TUI runs in the background: probe the
network, compare the cache against the API, and fetch when stale. Progress
is printed as it happens. A skipped refresh is not an error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh(cmd)
		},
	}
}

func runRefresh(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Init(cfg.LogPath, cfg.Debug); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()

	mgr := services.NewManager(cfg)
	defer mgr.Close()

	started := mgr.RefreshForeground(func(line string) {
		fmt.Fprintln(out, line)
	})
	if !started {
		fmt.Fprintln(out, "Refresh skipped: offline mode is set")
		return nil
	}

	if stats := mgr.CacheStats(); stats.Exists {
		fmt.Fprintf(out, "Cache now holds %d calls (%.2f MB)\n", stats.CallCount, stats.SizeMB())
	}
	return nil
}
