package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobapplicator/internal/model"
	"github.com/amishk599/jobapplicator/internal/tui"
)

var noSpinner bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Scrape and rank once, print matches, exit",
	Long:  "Dry run: scrapes every board and prints fresh jobs by match score. Drafts nothing and writes nothing to the store.",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&noSpinner, "no-spinner", false, "log progress instead of showing a spinner")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequireOpenAI(); err != nil {
		logger.Error("cannot rank without embeddings", "error", err)
		os.Exit(1)
	}

	// The spinner redraws its line; any log output would tear it.
	pipelineLogger := logger
	if !noSpinner && !debug {
		pipelineLogger = discardLogger()
	}

	runner, closeStore, err := buildRunner(cfg, pipelineLogger)
	if err != nil {
		logger.Error("failed to set up pipeline", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var jobs []model.ScoredJob
	if noSpinner || debug {
		logger.Info("check mode: nothing will be drafted or marked as seen")
		jobs, err = runner.Check(ctx)
	} else {
		label := fmt.Sprintf("Scraping %d boards", len(runner.Sources()))
		jobs, err = tui.RunLoader(ctx, label, runner.Check)
	}
	if errors.Is(err, tui.ErrCancelled) {
		return nil
	}
	if err != nil {
		logger.Error("check failed", "error", err)
		closeStore()
		os.Exit(1)
	}

	printRanked(jobs, cfg.MaxApply)
	return nil
}

func printRanked(jobs []model.ScoredJob, maxApply int) {
	if len(jobs) == 0 {
		fmt.Println("No new jobs.")
		return
	}

	fmt.Printf("%-4s %-6s %-20s %-50s %s\n", "#", "Score", "Board", "Title", "URL")
	fmt.Println(strings.Repeat("─", 100))
	for i, j := range jobs {
		marker := " "
		if i < maxApply {
			marker = "*"
		}
		fmt.Printf("%-4s %-6.3f %-20s %-50s %s\n",
			fmt.Sprintf("%d%s", i+1, marker), j.Score, truncate(j.Board, 20), truncate(j.Title, 50), j.URL)
	}
	fmt.Printf("\nTotal: %d fresh jobs (* would be drafted)\n", len(jobs))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
