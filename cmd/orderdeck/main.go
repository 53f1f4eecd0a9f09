// cmd/orderdeck/main.go
//
// Entry point for the orderdeck console.
//
// Flow:
// 1. Ensure the .orderdeck directory exists and load configuration
// 2. Open the file logger
// 3. Launch the TUI

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nlicea/orderdeck/internal/config"
	"github.com/nlicea/orderdeck/internal/logging"
	"github.com/nlicea/orderdeck/internal/tui"
)

func main() {
	home := os.Getenv("ORDERDECK_HOME")
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resolving home directory: %v\n", err)
			os.Exit(1)
		}
	}

	if err := config.InitDeckDir(home); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing .orderdeck directory: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(home)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogsDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()
	logger.Printf("orderdeck starting: %s", cfg)

	app, err := tui.NewApp(cfg, tui.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building console: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
