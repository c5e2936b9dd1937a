// Package cme is the continuing-medical-education credit ledger: a second
// accounting stream over CME-eligible questions with an explicit claim
// workflow. Claims never exceed earned credits and are always validated
// against freshly read state inside the claim transaction.
package cme

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/DaBoss786/medswipe/internal/identity"
	"github.com/DaBoss786/medswipe/internal/profile"
	"github.com/DaBoss786/medswipe/internal/store"
)

// CreditPerQuestion is the credit earned the first time a CME-eligible
// question is answered correctly.
const CreditPerQuestion = 0.25

// ErrRegisteredOnly is returned when a guest attempts a CME operation.
var ErrRegisteredOnly = errors.New("CME tracking requires a registered account")

// ErrInsufficientCredits is returned when a claim exceeds the available
// balance as read inside the claim transaction.
type ErrInsufficientCredits struct {
	Requested float64
	Available float64
}

func (e *ErrInsufficientCredits) Error() string {
	return fmt.Sprintf("requested %.2f credits but only %.2f available", e.Requested, e.Available)
}

// Ledger tracks CME answers and claims against user records.
type Ledger struct {
	store *store.Store

	now func() time.Time
}

// NewLedger creates a Ledger over the given store.
func NewLedger(s *store.Store) *Ledger {
	return &Ledger{store: s, now: time.Now}
}

// AnswerInput describes one answered CME-eligible question.
type AnswerInput struct {
	QuestionID string
	Category   string
	IsCorrect  bool
}

// RecordAnswer updates CME answer tracking for an eligible question.
// Unique questions answered correctly for the first time accrue
// CreditPerQuestion toward creditsEarned.
func (l *Ledger) RecordAnswer(ctx context.Context, sess identity.Session, in AnswerInput) error {
	if sess.Guest {
		return ErrRegisteredOnly
	}
	if in.QuestionID == "" {
		return errors.New("record cme answer: question id is required")
	}

	now := l.now()
	err := l.store.RunTransaction(ctx, func(tx *store.Tx) error {
		rec := profile.NewRecord()
		if err := tx.Get(profile.UserDocPath(sess.UserID), rec); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		rec.EnsureDefaults()

		rec.CMEStats.TotalAnswered++
		if in.IsCorrect {
			rec.CMEStats.TotalCorrect++
		}

		entry := rec.CMEAnsweredQuestions[in.QuestionID]
		if entry == nil {
			entry = &profile.CMEAnswer{
				FirstAnsweredAt: now,
				Category:        in.Category,
			}
			rec.CMEAnsweredQuestions[in.QuestionID] = entry
		}
		entry.LastAnsweredAt = now
		entry.TimesAnswered++

		// Credit accrues once per unique question, on its first correct
		// answer.
		if in.IsCorrect && !entry.EverCorrect {
			entry.EverCorrect = true
			rec.CMEStats.CreditsEarned = Round2(rec.CMEStats.CreditsEarned + CreditPerQuestion)
		}

		return tx.Set(profile.UserDocPath(sess.UserID), rec)
	})
	if err != nil {
		return fmt.Errorf("record cme answer: %w", err)
	}
	return nil
}

// Available returns the claimable balance: max(0, earned - claimed),
// rounded to two places.
func Available(stats profile.CMEStats) float64 {
	avail := Round2(stats.CreditsEarned - stats.CreditsClaimed)
	if avail < 0 {
		return 0
	}
	return avail
}

// Claim validates the evaluation form and amount, then atomically appends
// a claim-history entry and advances creditsClaimed. The balance check
// re-reads the latest record inside the transaction so a stale in-memory
// balance can never over-claim. Returns the new claim's id.
func (l *Ledger) Claim(ctx context.Context, sess identity.Session, form profile.Evaluation, amount float64) (string, error) {
	if sess.Guest {
		return "", ErrRegisteredOnly
	}
	if errs := ValidateEvaluation(form); len(errs) > 0 {
		return "", errs[0]
	}
	if err := ValidateAmount(amount); err != nil {
		return "", err
	}

	claimID := uuid.NewString()
	now := l.now()
	err := l.store.RunTransaction(ctx, func(tx *store.Tx) error {
		rec := profile.NewRecord()
		if err := tx.Get(profile.UserDocPath(sess.UserID), rec); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		rec.EnsureDefaults()

		if avail := Available(rec.CMEStats); amount > avail {
			return &ErrInsufficientCredits{Requested: amount, Available: avail}
		}

		rec.CMEClaimHistory = append(rec.CMEClaimHistory, &profile.ClaimRecord{
			ID:             claimID,
			Timestamp:      now,
			CreditsClaimed: amount,
			Evaluation:     form,
		})
		rec.CMEStats.CreditsClaimed = Round2(rec.CMEStats.CreditsClaimed + amount)
		return tx.Set(profile.UserDocPath(sess.UserID), rec)
	})
	if err != nil {
		var insufficient *ErrInsufficientCredits
		if errors.As(err, &insufficient) {
			return "", insufficient
		}
		return "", fmt.Errorf("claim credits: %w", err)
	}
	return claimID, nil
}

// AttachCertificate patches the claim-history entry with the certificate
// download reference. Best-effort by design: a failure here leaves the
// committed claim intact and only the artifact link missing.
func (l *Ledger) AttachCertificate(ctx context.Context, sess identity.Session, claimID, downloadURL, fileName string) error {
	if sess.Guest {
		return ErrRegisteredOnly
	}

	err := l.store.RunTransaction(ctx, func(tx *store.Tx) error {
		rec := profile.NewRecord()
		if err := tx.Get(profile.UserDocPath(sess.UserID), rec); err != nil {
			return err
		}
		for _, claim := range rec.CMEClaimHistory {
			if claim.ID == claimID {
				claim.DownloadURL = downloadURL
				claim.PDFFileName = fileName
				return tx.Set(profile.UserDocPath(sess.UserID), rec)
			}
		}
		return fmt.Errorf("claim %s not found", claimID)
	})
	if err != nil {
		return fmt.Errorf("attach certificate: %w", err)
	}
	return nil
}

// RemainingQuestions returns how many CME-eligible bank questions the
// user has not yet answered. Computed on demand, never stored.
func RemainingQuestions(totalEligibleInBank int, rec *profile.Record) int {
	remaining := totalEligibleInBank - len(rec.CMEAnsweredQuestions)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Round2 rounds a credit amount to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
