package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/DaBoss786/medswipe/internal/leveling"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show progress statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := env.loadRecord(cmd.Context())
		if err != nil {
			return err
		}

		s := rec.Stats
		level := leveling.Level(s.XP)
		pct := leveling.Progress(s.XP)

		fmt.Println(titleStyle.Render("MedSwipe progress"))
		fmt.Printf("%s %s\n", labelStyle.Render("Level:"), valueStyle.Render(fmt.Sprintf("%d (%d%% to next)", level, pct)))
		fmt.Printf("%s %s\n", labelStyle.Render("XP:"), valueStyle.Render(fmt.Sprintf("%d", s.XP)))
		fmt.Printf("%s %s\n", labelStyle.Render("Answered:"), valueStyle.Render(fmt.Sprintf("%d (%d correct, %d incorrect)", s.TotalAnswered, s.TotalCorrect, s.TotalIncorrect)))
		fmt.Printf("%s %s\n", labelStyle.Render("Day streak:"), valueStyle.Render(fmt.Sprintf("%d (longest %d)", rec.Streaks.CurrentStreak, rec.Streaks.LongestStreak)))
		fmt.Printf("%s %s\n", labelStyle.Render("Time in quiz:"), valueStyle.Render(formatDuration(s.TotalTimeSpentMs)))

		if len(s.Categories) > 0 {
			fmt.Println()
			fmt.Println(titleStyle.Render("By category"))
			names := make([]string, 0, len(s.Categories))
			width := 0
			for name := range s.Categories {
				names = append(names, name)
				if len(name) > width {
					width = len(name)
				}
			}
			sort.Strings(names)
			for _, name := range names {
				c := s.Categories[name]
				pad := strings.Repeat(" ", width-len(name))
				fmt.Printf("  %s%s  %s\n", name, pad,
					labelStyle.Render(fmt.Sprintf("%d answered, %d correct", c.Answered, c.Correct)))
			}
		}
		return nil
	},
}

func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return d.Round(time.Second).String()
}
