package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"

	"github.com/greener/waterdesk/internal/app"
	"github.com/greener/waterdesk/internal/model"
	"github.com/greener/waterdesk/internal/store"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	dataDir := flag.String("data-dir", model.DefaultDataDir(), "directory for the local database and log")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if err := run(*configPath, *dataDir, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "waterdesk: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, dataDir string, verbose bool) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory %s: %w", dataDir, err)
	}

	// The terminal belongs to the TUI; logs go to a file.
	logFile, err := os.OpenFile(
		filepath.Join(dataDir, "waterdesk.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644,
	)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(logFile, &tint.Options{
		Level:   level,
		NoColor: true,
	}))
	slog.SetDefault(logger)

	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	s, err := store.NewSQLiteStore(filepath.Join(dataDir, "waterdesk.db"))
	if err != nil {
		return err
	}
	defer s.Close()

	logger.Info("starting waterdesk",
		"business_id", cfg.Identity.BusinessID,
		"backend", cfg.Backend.BaseURL,
	)

	p := tea.NewProgram(
		app.New(s, cfg, configPath, logger),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}

	return nil
}
