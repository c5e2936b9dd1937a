package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DaBoss786/medswipe/internal/profile"
	"github.com/DaBoss786/medswipe/internal/store"
)

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark <question-id>",
	Short: "Toggle a bookmark on a question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		if env.sess.Guest {
			fmt.Println("Bookmarks require a registered account.")
			return nil
		}

		questionID := args[0]
		var bookmarked bool
		err = env.store.RunTransaction(cmd.Context(), func(tx *store.Tx) error {
			rec := profile.NewRecord()
			if err := tx.Get(profile.UserDocPath(env.sess.UserID), rec); err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			rec.EnsureDefaults()
			bookmarked = rec.ToggleBookmark(questionID)
			return tx.Set(profile.UserDocPath(env.sess.UserID), rec)
		})
		if err != nil {
			return fmt.Errorf("toggle bookmark: %w", err)
		}

		if bookmarked {
			fmt.Println("Bookmarked.")
		} else {
			fmt.Println("Bookmark removed.")
		}
		return nil
	},
}
