package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List all enabled boards",
	Long:  "Reads the config and prints every board that will be scraped, with its listing URL.",
	RunE:  runBoards,
}

func init() {
	rootCmd.AddCommand(boardsCmd)
}

func runBoards(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Query: %q\n\n", cfg.Query)
	fmt.Printf("%-25s %s\n", "Board", "URL")
	fmt.Println(strings.Repeat("─", 80))

	boards := createBoards(cfg, http.DefaultClient)
	for _, b := range boards {
		fmt.Printf("%-25s %s\n", b.Board(), b.ListURL())
	}

	fmt.Printf("\nTotal: %d boards, drafting up to %d letters per run\n", len(boards), cfg.MaxApply)
	return nil
}
