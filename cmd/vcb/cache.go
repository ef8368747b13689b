package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/j-veylop/vapi-call-browser/internal/config"
	"github.com/j-veylop/vapi-call-browser/internal/models"
	"github.com/j-veylop/vapi-call-browser/internal/store"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the local call cache",
	}

	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCacheVacuumCmd())
	cmd.AddCommand(newCacheClearCmd())
	return cmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheStats(cmd)
		},
	}
}

func runCacheStats(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	printCacheStats(cmd, store.StatsAt(cfg.DatabasePath))
	return nil
}

func printCacheStats(cmd *cobra.Command, stats models.CacheStats) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Path:    %s\n", stats.Path)
	fmt.Fprintf(out, "Status:  %s\n", stats.Status)
	if !stats.Exists {
		fmt.Fprintln(out, "\nThe cache file has not been created yet. Run `vcb refresh` to build it.")
		return
	}

	fmt.Fprintf(out, "Size:    %.2f MB\n", stats.SizeMB())
	fmt.Fprintf(out, "Calls:   %d\n", stats.CallCount)
	if !stats.OldestCachedAt.IsZero() {
		fmt.Fprintf(out, "Oldest:  %s\n", stats.OldestCachedAt.Format("Jan 2, 2006 15:04"))
	}
	if !stats.NewestCachedAt.IsZero() {
		fmt.Fprintf(out, "Newest:  %s\n", stats.NewestCachedAt.Format("Jan 2, 2006 15:04"))
	}
}

func newCacheVacuumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vacuum",
		Short: "Compact the cache database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheVacuum(cmd)
		},
	}
}

func runCacheVacuum(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if _, err := os.Stat(cfg.DatabasePath); err != nil {
		fmt.Fprintf(out, "Cache file %s does not exist, nothing to vacuum.\n", cfg.DatabasePath)
		return nil
	}
	before := store.StatsAt(cfg.DatabasePath)

	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open call cache: %w", err)
	}
	defer st.Close()

	if err := st.Vacuum(); err != nil {
		return fmt.Errorf("vacuum failed: %w", err)
	}

	after := store.StatsAt(cfg.DatabasePath)
	fmt.Fprintf(out, "Vacuumed %s: %.2f MB -> %.2f MB\n",
		cfg.DatabasePath, before.SizeMB(), after.SizeMB())
	return nil
}

func newCacheClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the cache database file",
		Long: `Deletes the local cache file. This only discards the local copy: the next
refresh rebuilds it from the API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClear(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip confirmation prompt")
	return cmd
}

func runCacheClear(cmd *cobra.Command, force bool) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if _, err := os.Stat(cfg.DatabasePath); err != nil {
		fmt.Fprintf(out, "Cache file %s does not exist.\n", cfg.DatabasePath)
		return nil
	}

	if !force && !confirmClear(cmd, cfg.DatabasePath) {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	if err := store.Remove(cfg.DatabasePath); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted %s\n", cfg.DatabasePath)
	return nil
}

func confirmClear(cmd *cobra.Command, path string) bool {
	out := cmd.OutOrStdout()
	in := cmd.InOrStdin()

	fmt.Fprintf(out, "This deletes the cached call data at %s.\n", path)
	fmt.Fprintln(out, "The next refresh will re-fetch everything from the API.")
	fmt.Fprintln(out)
	fmt.Fprint(out, "Type \"yes\" to confirm: ")

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()) == "yes"
	}
	return false
}
