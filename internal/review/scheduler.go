// Package review schedules spaced-repetition reviews. Ratings map to
// fixed day intervals; due computation is date-only, so a question
// scheduled for today is due all day regardless of time.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DaBoss786/medswipe/internal/dateutil"
	"github.com/DaBoss786/medswipe/internal/identity"
	"github.com/DaBoss786/medswipe/internal/profile"
	"github.com/DaBoss786/medswipe/internal/questions"
	"github.com/DaBoss786/medswipe/internal/store"
)

// MinIntervalDays is the floor applied to every persisted interval.
const MinIntervalDays = 1

// ErrRegisteredOnly is returned when a guest attempts to schedule reviews.
var ErrRegisteredOnly = errors.New("spaced repetition requires a registered account")

// IntervalFor returns the review interval in days for a rated answer:
// correct answers space out by difficulty (easy 7, medium 3, hard 1),
// incorrect answers always come back the next day.
func IntervalFor(isCorrect bool, difficulty profile.Difficulty) int {
	if !isCorrect {
		return 1
	}
	switch difficulty {
	case profile.DifficultyEasy:
		return 7
	case profile.DifficultyMedium:
		return 3
	default:
		return 1
	}
}

// Scheduler reads and writes per-question review state.
type Scheduler struct {
	store *store.Store

	now func() time.Time
}

// NewScheduler creates a Scheduler over the given store.
func NewScheduler(s *store.Store) *Scheduler {
	return &Scheduler{store: s, now: time.Now}
}

// RecordRating persists the next review for a question after a difficulty
// rating. intervalDays is clamped to MinIntervalDays; the next review date
// is today plus the interval at date-only granularity.
func (s *Scheduler) RecordRating(ctx context.Context, sess identity.Session, questionID string, isCorrect bool, difficulty profile.Difficulty, intervalDays int) error {
	if sess.Guest {
		return ErrRegisteredOnly
	}
	if questionID == "" {
		return errors.New("record rating: question id is required")
	}
	if !difficulty.Valid() {
		return fmt.Errorf("record rating: unknown difficulty %q", difficulty)
	}
	if intervalDays < MinIntervalDays {
		intervalDays = MinIntervalDays
	}

	now := s.now()
	today := dateutil.FromTime(now)
	result := profile.ResultCorrect
	if !isCorrect {
		result = profile.ResultIncorrect
	}

	err := s.store.RunTransaction(ctx, func(tx *store.Tx) error {
		rec := profile.NewRecord()
		if err := tx.Get(profile.UserDocPath(sess.UserID), rec); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		rec.EnsureDefaults()

		prevCount := 0
		if prev := rec.SpacedRepetition[questionID]; prev != nil {
			prevCount = prev.ReviewCount
		}
		rec.SpacedRepetition[questionID] = &profile.ReviewEntry{
			LastReviewedAt: now,
			NextReviewDate: today.AddDays(intervalDays),
			IntervalDays:   intervalDays,
			Difficulty:     difficulty,
			LastResult:     result,
			ReviewCount:    prevCount + 1,
		}
		return tx.Set(profile.UserDocPath(sess.UserID), rec)
	})
	if err != nil {
		return fmt.Errorf("record rating: %w", err)
	}
	return nil
}

// DueQuestions returns the ids of questions whose next review date is
// today or earlier. Guests get an empty schedule, never an error; so does
// a user with no record yet.
func (s *Scheduler) DueQuestions(ctx context.Context, sess identity.Session, today dateutil.Day) ([]string, error) {
	rec, err := s.loadForRead(ctx, sess)
	if err != nil || rec == nil {
		return nil, err
	}

	var due []string
	for id, entry := range rec.SpacedRepetition {
		if !entry.NextReviewDate.IsZero() && !entry.NextReviewDate.After(today) {
			due = append(due, id)
		}
	}
	return due, nil
}

// NextUpcoming returns the earliest review date strictly after today, for
// dashboard display. The zero Day means nothing is scheduled ahead.
func (s *Scheduler) NextUpcoming(ctx context.Context, sess identity.Session, today dateutil.Day) (dateutil.Day, error) {
	rec, err := s.loadForRead(ctx, sess)
	if err != nil || rec == nil {
		return dateutil.Day{}, err
	}

	var next dateutil.Day
	for _, entry := range rec.SpacedRepetition {
		d := entry.NextReviewDate
		if d.IsZero() || !d.After(today) {
			continue
		}
		if next.IsZero() || d.Before(next) {
			next = d
		}
	}
	return next, nil
}

func (s *Scheduler) loadForRead(ctx context.Context, sess identity.Session) (*profile.Record, error) {
	if sess.Guest {
		return nil, nil
	}
	rec := profile.NewRecord()
	if err := s.store.Get(ctx, profile.UserDocPath(sess.UserID), rec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load review schedule: %w", err)
	}
	return rec, nil
}

// BuildReviewSession filters the bank to exactly the due question ids and
// shuffles them. Review sessions are pure reinforcement: new material is
// never mixed in.
func BuildReviewSession(bank []questions.Question, dueIDs []string) []questions.Question {
	session := questions.ByIDs(bank, dueIDs)
	questions.Shuffle(session)
	return session
}
