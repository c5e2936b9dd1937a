package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DaBoss786/medswipe/internal/profile"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show top users by XP",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		if env.sess.Guest {
			fmt.Println("The leaderboard requires a registered account.")
			return nil
		}

		limit := env.cfg.GetInt("leaderboard_size")
		results, err := env.store.QueryTop(cmd.Context(), "users/", "$.stats.xp", limit)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No users yet.")
			return nil
		}

		fmt.Println(titleStyle.Render("Leaderboard"))
		for i, r := range results {
			var rec profile.Record
			if err := json.Unmarshal(r.Data, &rec); err != nil {
				fmt.Fprintf(os.Stderr, "warning: skipping unreadable record %s: %v\n", r.Path, err)
				continue
			}
			name := strings.TrimPrefix(r.Path, "users/")
			marker := "  "
			if name == env.sess.UserID {
				marker = "> "
			}
			fmt.Printf("%s%2d. %-20s %s\n", marker, i+1, name,
				labelStyle.Render(fmt.Sprintf("%d XP, level %d", rec.Stats.XP, rec.Stats.Level)))
		}
		return nil
	},
}
