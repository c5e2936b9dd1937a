package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DaBoss786/medswipe/internal/dateutil"
	"github.com/DaBoss786/medswipe/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Start a review session with questions due today",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		if env.sess.Guest {
			fmt.Println("Spaced repetition requires a registered account. Set user_id in your config to continue.")
			return nil
		}

		ctx := cmd.Context()
		scheduler := review.NewScheduler(env.store)
		today := dateutil.Today(nil)

		due, err := scheduler.DueQuestions(ctx, env.sess, today)
		if err != nil {
			return err
		}
		if len(due) == 0 {
			fmt.Println("Nothing due for review today. Nice work!")
			return nil
		}

		bank, err := env.loadBank(ctx)
		if err != nil {
			return err
		}

		session := review.BuildReviewSession(bank, due)
		if len(session) == 0 {
			fmt.Println("Due questions are no longer present in the question bank.")
			return nil
		}

		fmt.Printf("%d question(s) due for review.\n", len(session))
		return runSession(ctx, env, session, sessionOptions{})
	},
}

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "Show the review schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx := cmd.Context()
		scheduler := review.NewScheduler(env.store)
		today := dateutil.Today(nil)

		due, err := scheduler.DueQuestions(ctx, env.sess, today)
		if err != nil {
			return err
		}

		fmt.Println(titleStyle.Render("Review schedule"))
		if len(due) == 0 {
			fmt.Println("No questions due today.")
		} else {
			fmt.Printf("%s %s\n", labelStyle.Render("Due today:"), valueStyle.Render(fmt.Sprintf("%d question(s)", len(due))))
			for _, id := range due {
				fmt.Println("  - " + truncateID(id))
			}
		}

		next, err := scheduler.NextUpcoming(ctx, env.sess, today)
		if err != nil {
			return err
		}
		if !next.IsZero() {
			fmt.Printf("%s %s\n", labelStyle.Render("Next upcoming review:"), valueStyle.Render(next.String()))
		}
		return nil
	},
}

func truncateID(id string) string {
	const max = 72
	if len(id) <= max {
		return id
	}
	return id[:max] + "..."
}
