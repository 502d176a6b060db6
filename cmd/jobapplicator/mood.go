package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobapplicator/internal/mood"
)

var (
	moodDate  string
	moodExact bool
)

var moodCmd = &cobra.Command{
	Use:   "mood",
	Short: "Print the quantum mood for a day",
	Long:  "Runs the daily circuit and prints the mood that would seed today's letters. The same day always yields the same mood.",
	RunE:  runMood,
}

func init() {
	moodCmd.Flags().StringVar(&moodDate, "date", "", "day to measure, YYYY-MM-DD (default: today)")
	moodCmd.Flags().BoolVar(&moodExact, "exact", false, "use exact expectation values instead of sampled shots")
	rootCmd.AddCommand(moodCmd)
}

func runMood(cmd *cobra.Command, args []string) error {
	day := time.Now()
	if moodDate != "" {
		d, err := time.ParseInLocation(time.DateOnly, moodDate, time.Local)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --date %q: %v\n", moodDate, err)
			os.Exit(1)
		}
		day = d
	}

	shots := mood.DefaultShots
	if moodExact {
		shots = 0
	} else if cfg, err := loadConfig(cfgPath); err == nil {
		shots = cfg.Mood.Shots
	}

	m := mood.ForDate(day, shots)
	fmt.Printf("%-12s %s\n", "Date", day.Format(time.DateOnly))
	fmt.Printf("%-12s %d\n", "Seed", mood.SeedForDate(day))
	fmt.Printf("%-12s %.4f\n", "Index", m.Index)
	fmt.Printf("%-12s %.4f\n", "Entropy", m.Entropy)
	fmt.Printf("%-12s %s\n", "Tag", m.Tag)
	fmt.Printf("%-12s %s\n", "Tone", m.Tone)
	fmt.Printf("%-12s %.2f\n", "Temperature", m.Temperature)
	fmt.Printf("%-12s %.2f\n", "Top-p", m.TopP)
	return nil
}
