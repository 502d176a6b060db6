package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobapplicator/internal/archive"
	"github.com/amishk599/jobapplicator/internal/config"
)

var followupsAll bool

var followupsCmd = &cobra.Command{
	Use:   "followups",
	Short: "List follow-ups that are due",
	Long:  "Reads the follow-up schedule written by each run and prints the postings to chase today. --all includes upcoming ones.",
	RunE:  runFollowups,
}

func init() {
	followupsCmd.Flags().BoolVar(&followupsAll, "all", false, "also list follow-ups that are not due yet")
	rootCmd.AddCommand(followupsCmd)
}

func runFollowups(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	entries, err := archive.New(cfg.DataDir).Followups()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read follow-ups: %v\n", err)
		os.Exit(1)
	}

	now := time.Now()
	titles := dueTitles(cfg, now)

	fmt.Printf("%-8s %-17s %-40s %s\n", "Status", "Due", "Title", "URL")
	fmt.Println(strings.Repeat("─", 100))

	due := 0
	for _, f := range entries {
		status := "due"
		if f.Due.After(now) {
			if !followupsAll {
				continue
			}
			status = "upcoming"
		} else {
			due++
		}
		fmt.Printf("%-8s %-17s %-40s %s\n", status, f.Due.Local().Format("2006-01-02 15:04"), truncate(titles[f.URL], 40), f.URL)
	}

	fmt.Printf("\nTotal: %d scheduled, %d due\n", len(entries), due)
	return nil
}

// dueTitles maps posting URL to job title for applications in the history
// whose follow-up is due. Stores without history yield an empty map.
func dueTitles(cfg *config.Config, now time.Time) map[string]string {
	titles := make(map[string]string)
	_, apps, closeStore, err := openStore(cfg)
	if err != nil {
		return titles
	}
	defer closeStore()

	due, err := apps.DueFollowups(now)
	if err != nil {
		return titles
	}
	for _, a := range due {
		titles[a.Job.URL] = a.Job.Title
	}
	return titles
}
