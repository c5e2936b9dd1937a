package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/DaBoss786/medswipe/internal/certificate"
	"github.com/DaBoss786/medswipe/internal/cme"
	"github.com/DaBoss786/medswipe/internal/profile"
	"github.com/DaBoss786/medswipe/internal/questions"
)

var cmeCmd = &cobra.Command{
	Use:   "cme",
	Short: "CME credit tracking and claims",
}

var cmeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show CME credit balance and coverage",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		if env.sess.Guest {
			fmt.Println("CME tracking requires a registered account.")
			return nil
		}

		ctx := cmd.Context()
		rec, err := env.loadRecord(ctx)
		if err != nil {
			return err
		}

		fmt.Println(titleStyle.Render("CME credits"))
		fmt.Printf("%s %s\n", labelStyle.Render("Earned:"), valueStyle.Render(fmt.Sprintf("%.2f", rec.CMEStats.CreditsEarned)))
		fmt.Printf("%s %s\n", labelStyle.Render("Claimed:"), valueStyle.Render(fmt.Sprintf("%.2f", rec.CMEStats.CreditsClaimed)))
		fmt.Printf("%s %s\n", labelStyle.Render("Available:"), valueStyle.Render(fmt.Sprintf("%.2f", cme.Available(rec.CMEStats))))
		fmt.Printf("%s %s\n", labelStyle.Render("Answered:"), valueStyle.Render(fmt.Sprintf("%d (%d correct)", rec.CMEStats.TotalAnswered, rec.CMEStats.TotalCorrect)))

		// Coverage needs the bank; skip quietly if it isn't configured.
		if bank, err := env.loadBank(ctx); err == nil {
			remaining := cme.RemainingQuestions(questions.CountCMEEligible(bank), rec)
			fmt.Printf("%s %s\n", labelStyle.Render("Unanswered CME questions:"), valueStyle.Render(fmt.Sprintf("%d", remaining)))
		}

		if n := len(rec.CMEClaimHistory); n > 0 {
			last := rec.CMEClaimHistory[n-1]
			fmt.Printf("%s %s\n", labelStyle.Render("Last claim:"),
				valueStyle.Render(fmt.Sprintf("%.2f credits on %s", last.CreditsClaimed, last.Timestamp.Format("2006-01-02"))))
		}
		return nil
	},
}

var cmeClaimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim earned CME credits and generate a certificate",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		if env.sess.Guest {
			fmt.Println("CME claims require a registered account.")
			return nil
		}

		amount, _ := cmd.Flags().GetFloat64("credits")
		ctx := cmd.Context()
		reader := bufio.NewReader(os.Stdin)

		form, err := collectEvaluation(reader)
		if err != nil {
			return err
		}

		if amount == 0 {
			answer, err := prompt(reader, "Credits to claim (multiples of 0.25): ")
			if err != nil {
				return err
			}
			amount, err = strconv.ParseFloat(answer, 64)
			if err != nil {
				return fmt.Errorf("invalid credit amount %q", answer)
			}
		}

		// Validation failures are reported without touching the store.
		if errs := cme.ValidateEvaluation(*form); len(errs) > 0 {
			for _, e := range errs {
				fmt.Println(incorrectStyle.Render(e.Message))
			}
			return errors.New("evaluation form is incomplete")
		}
		if err := cme.ValidateAmount(amount); err != nil {
			return err
		}

		ledger := cme.NewLedger(env.store)
		claimID, err := ledger.Claim(ctx, env.sess, *form, amount)
		if err != nil {
			return err
		}
		fmt.Println(correctStyle.Render(fmt.Sprintf("Claimed %.2f credits.", amount)))

		// Certificate generation is best-effort: the claim above stays
		// committed even if this fails.
		endpoint := env.cfg.GetString("certificate_url")
		if endpoint == "" {
			fmt.Println(dimStyle.Render("No certificate service configured; certificate can be generated later."))
			return nil
		}

		client := certificate.NewClient(endpoint)
		result, err := client.Generate(ctx, certificate.GenerateRequest{
			FullName:       form.FullName,
			CreditsToClaim: amount,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: certificate generation failed: %v\n", err)
			fmt.Println("Your credits are claimed; retry the certificate from the claim history later.")
			return nil
		}

		if err := ledger.AttachCertificate(ctx, env.sess, claimID, result.DownloadURL, result.FileName); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not save certificate link: %v\n", err)
		}
		fmt.Printf("Certificate ready: %s\n", result.DownloadURL)
		return nil
	},
}

var cmeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export claim history to an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		if env.sess.Guest {
			fmt.Println("CME tracking requires a registered account.")
			return nil
		}

		out, _ := cmd.Flags().GetString("out")
		rec, err := env.loadRecord(cmd.Context())
		if err != nil {
			return err
		}
		if len(rec.CMEClaimHistory) == 0 {
			fmt.Println("No claims to export yet.")
			return nil
		}

		if err := cme.ExportHistory(rec, out); err != nil {
			return err
		}
		fmt.Printf("Exported %d claim(s) to %s\n", len(rec.CMEClaimHistory), out)
		return nil
	},
}

func init() {
	cmeClaimCmd.Flags().Float64("credits", 0, "Credit amount to claim (multiples of 0.25)")
	cmeExportCmd.Flags().String("out", "cme-claims.xlsx", "Output file path")

	cmeCmd.AddCommand(cmeStatusCmd)
	cmeCmd.AddCommand(cmeClaimCmd)
	cmeCmd.AddCommand(cmeExportCmd)
}

// collectEvaluation walks the required evaluation form on stdin.
func collectEvaluation(reader *bufio.Reader) (*profile.Evaluation, error) {
	form := &profile.Evaluation{}
	fields := []struct {
		label string
		dest  *string
	}{
		{"Full name (as it should appear on the certificate): ", &form.FullName},
		{"Practice setting: ", &form.PracticeSetting},
		{"Were the learning objectives met? (yes/partially/no): ", &form.LearningObjectivesMet},
		{"Was the content relevant to your practice? (yes/no): ", &form.RelevantToPractice},
		{"Will this activity change your practice? (yes/no): ", &form.WillChangePractice},
		{"Was commercial bias present? (yes/no): ", &form.CommercialBias},
	}
	for _, f := range fields {
		answer, err := prompt(reader, f.label)
		if err != nil {
			return nil, err
		}
		*f.dest = answer
	}

	if form.CommercialBias == "no" {
		comment, err := prompt(reader, "Comment on your commercial bias response: ")
		if err != nil {
			return nil, err
		}
		form.BiasComment = comment
	}
	return form, nil
}
