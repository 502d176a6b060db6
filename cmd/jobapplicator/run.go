package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one cycle: scrape, rank, draft letters, exit",
	Long: "One full cycle: scrape every board, drop seen listings, rank the rest, " +
		"draft cover letters for the top max_apply jobs and schedule follow-ups.",
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequireOpenAI(); err != nil {
		logger.Error("cannot run", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"query", cfg.Query,
		"boards", len(cfg.Boards.Enabled()),
		"max_apply", cfg.MaxApply,
		"data_dir", cfg.DataDir,
		"store", cfg.Store.Type,
	)

	runner, closeStore, err := buildRunner(cfg, logger)
	if err != nil {
		logger.Error("failed to set up pipeline", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx); err != nil {
		logger.Error("run failed", "error", err)
		closeStore()
		os.Exit(1)
	}
	return nil
}
