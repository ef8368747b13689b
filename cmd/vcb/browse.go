package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/j-veylop/vapi-call-browser/internal/app"
	"github.com/j-veylop/vapi-call-browser/internal/config"
	"github.com/j-veylop/vapi-call-browser/internal/logger"
	"github.com/j-veylop/vapi-call-browser/internal/services"
	"github.com/j-veylop/vapi-call-browser/internal/ui/tabs/browser"
	"github.com/j-veylop/vapi-call-browser/internal/ui/tabs/cache"
)

// runBrowser launches the interactive TUI. Flags override whatever the
// environment configured.
func runBrowser(cmd *cobra.Command, offline, skipCheck, foreground bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if offline {
		cfg.Offline = true
	}
	if skipCheck {
		cfg.SkipCheck = true
	}
	if foreground {
		cfg.Foreground = true
	}

	// The TUI owns the terminal, so logs go to a file.
	if err := logger.Init(cfg.LogPath, cfg.Debug); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()

	mgr := services.NewManager(cfg)
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(mgr)

	// Each tab receives the shared application state for consistent data access
	state := model.GetState()
	model.SetTabs([]app.Tab{
		browser.New(state, mgr),
		cache.New(state, mgr),
	})

	// Periodic refresh and cache file watching start now; their events reach
	// the model through its subscription.
	mgr.StartBackground()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer (full terminal)
		tea.WithMouseCellMotion(), // Enable mouse support for selection
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
