package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/DaBoss786/medswipe/internal/cme"
	"github.com/DaBoss786/medswipe/internal/profile"
	"github.com/DaBoss786/medswipe/internal/progress"
	"github.com/DaBoss786/medswipe/internal/questions"
	"github.com/DaBoss786/medswipe/internal/review"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Start a quiz session",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		count, _ := cmd.Flags().GetInt("count")
		category, _ := cmd.Flags().GetString("category")
		cmeMode, _ := cmd.Flags().GetBool("cme")
		includeAnswered, _ := cmd.Flags().GetBool("include-answered")

		ctx := cmd.Context()
		bank, err := env.loadBank(ctx)
		if err != nil {
			return err
		}

		if cmeMode {
			if env.sess.Guest {
				fmt.Println("CME quizzes require a registered account. Set user_id in your config to continue.")
				return nil
			}
			bank = questions.OnlyCME(bank)
		}
		bank = questions.ByCategory(bank, category)

		if !includeAnswered {
			rec, err := env.loadRecord(ctx)
			if err != nil {
				return err
			}
			bank = questions.ExcludeAnswered(bank, rec.AnsweredQuestions)
		}

		if len(bank) == 0 {
			fmt.Println("No matching questions left. Try --include-answered or another category.")
			return nil
		}

		questions.Shuffle(bank)
		if count > 0 && count < len(bank) {
			bank = bank[:count]
		}

		return runSession(ctx, env, bank, sessionOptions{cme: cmeMode})
	},
}

func init() {
	quizCmd.Flags().Int("count", 10, "Number of questions in the session")
	quizCmd.Flags().String("category", "", "Restrict the quiz to one category")
	quizCmd.Flags().Bool("cme", false, "CME mode: only CME-eligible questions, tracked for credit")
	quizCmd.Flags().Bool("include-answered", false, "Include previously answered questions")
}

type sessionOptions struct {
	cme bool
}

// runSession drives an interactive question loop on stdin, recording each
// answer and prompting for a difficulty rating.
func runSession(ctx context.Context, env *appEnv, session []questions.Question, opts sessionOptions) error {
	recorder := progress.NewRecorder(env.store)
	scheduler := review.NewScheduler(env.store)
	ledger := cme.NewLedger(env.store)
	reader := bufio.NewReader(os.Stdin)

	answered, correct := 0, 0
	for i := range session {
		q := &session[i]
		fmt.Println()
		fmt.Println(titleStyle.Render(fmt.Sprintf("Question %d of %d", i+1, len(session))))
		fmt.Println(q.Text)
		for j, opt := range q.Options {
			fmt.Printf("  %s. %s\n", questions.OptionLetter(j), opt)
		}

		start := time.Now()
		answer, err := prompt(reader, fmt.Sprintf("Your answer (A-%s, q to quit): ", questions.OptionLetter(len(q.Options)-1)))
		if err != nil {
			return err
		}
		if strings.EqualFold(answer, "q") {
			break
		}
		elapsed := time.Since(start).Milliseconds()

		isCorrect := q.IsCorrect(answer)
		if isCorrect {
			fmt.Println(correctStyle.Render("Correct!"))
		} else {
			fmt.Println(incorrectStyle.Render("Incorrect. Answer: " + q.CorrectAnswer))
		}
		if q.Explanation != "" {
			fmt.Println(dimStyle.Render(q.Explanation))
		}

		result, err := recorder.RecordAnswer(ctx, env.sess.UserID, progress.AnswerInput{
			QuestionID:  q.ID(),
			Category:    q.Category,
			IsCorrect:   isCorrect,
			TimeSpentMs: elapsed,
		})
		if err != nil {
			// Nothing was persisted; the answer can be retried later.
			fmt.Fprintf(os.Stderr, "warning: could not record answer: %v\n", err)
			continue
		}
		answered++
		if isCorrect {
			correct++
		}

		for _, msg := range result.Messages {
			fmt.Println(bonusStyle.Render("★ " + msg))
		}
		if result.LeveledUp {
			fmt.Println(bonusStyle.Render(fmt.Sprintf("Level up! You are now level %d.", result.NewLevel)))
		}

		if opts.cme && q.CMEEligible {
			err := ledger.RecordAnswer(ctx, env.sess, cme.AnswerInput{
				QuestionID: q.ID(),
				Category:   q.Category,
				IsCorrect:  isCorrect,
			})
			if err != nil && !errors.Is(err, cme.ErrRegisteredOnly) {
				fmt.Fprintf(os.Stderr, "warning: could not record CME answer: %v\n", err)
			}
		}

		if env.sess.IsRegistered() {
			if err := promptRating(ctx, reader, scheduler, env, q.ID(), isCorrect); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				fmt.Fprintf(os.Stderr, "warning: could not schedule review: %v\n", err)
			}
		}
	}

	fmt.Println()
	fmt.Printf("Session complete: %d/%d correct.\n", correct, answered)
	return nil
}

// promptRating asks for a difficulty self-rating and schedules the next
// review. Skipping the rating skips scheduling.
func promptRating(ctx context.Context, reader *bufio.Reader, scheduler *review.Scheduler, env *appEnv, questionID string, isCorrect bool) error {
	answer, err := prompt(reader, "How hard was it? (e)asy / (m)edium / (h)ard, enter to skip: ")
	if err != nil {
		return err
	}

	var difficulty profile.Difficulty
	switch strings.ToLower(answer) {
	case "e", "easy":
		difficulty = profile.DifficultyEasy
	case "m", "medium":
		difficulty = profile.DifficultyMedium
	case "h", "hard":
		difficulty = profile.DifficultyHard
	default:
		return nil
	}

	interval := review.IntervalFor(isCorrect, difficulty)
	return scheduler.RecordRating(ctx, env.sess, questionID, isCorrect, difficulty, interval)
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", io.EOF
	}
	return strings.TrimSpace(line), nil
}
