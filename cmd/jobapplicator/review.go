package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobapplicator/internal/archive"
	"github.com/amishk599/jobapplicator/internal/tui"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Browse drafted letters interactively (TUI)",
	Long:  "Opens a split-pane view of the application history with each drafted letter. Requires the sqlite store.",
	RunE:  runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Store.Type != "sqlite" {
		fmt.Printf("Store type %q keeps no application history.\n", cfg.Store.Type)
		return nil
	}

	_, apps, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	history, err := apps.ListApplications()
	if err != nil {
		logger.Error("failed to list applications", "error", err)
		closeStore()
		os.Exit(1)
	}

	if err := tui.RunReview(history, archive.ReadLetter); err != nil {
		fmt.Printf("Review error: %v\n", err)
	}
	return nil
}
