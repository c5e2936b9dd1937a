package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DaBoss786/medswipe/internal/profile"
	"github.com/DaBoss786/medswipe/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset quiz progress (keeps CME credits and review schedules)",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		confirm, _ := cmd.Flags().GetBool("yes")
		if !confirm {
			fmt.Println("This clears answered questions, stats and streaks. Re-run with --yes to confirm.")
			return nil
		}

		err = env.store.RunTransaction(cmd.Context(), func(tx *store.Tx) error {
			rec := profile.NewRecord()
			if err := tx.Get(profile.UserDocPath(env.sess.UserID), rec); err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			rec.ResetProgress()
			return tx.Set(profile.UserDocPath(env.sess.UserID), rec)
		})
		if err != nil {
			return fmt.Errorf("reset progress: %w", err)
		}

		fmt.Println("Progress reset.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
}
