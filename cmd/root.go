package cmd

import (
	"github.com/spf13/cobra"

	"github.com/DaBoss786/medswipe/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "medswipe",
	Short: "Swipe-style medical board review",
	Long:  "MedSwipe — quiz-based board review with streaks, spaced repetition and CME credit tracking.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MEDSWIPE_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")

	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(cmeCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(bookmarkCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then MEDSWIPE_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
