// Package progress records answer events against the user's progress
// document: counts, categories, daily streaks, XP, achievements and
// level-ups, all applied inside one store transaction.
package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DaBoss786/medswipe/internal/dateutil"
	"github.com/DaBoss786/medswipe/internal/leveling"
	"github.com/DaBoss786/medswipe/internal/profile"
	"github.com/DaBoss786/medswipe/internal/store"
)

// AnswerInput describes one answered question.
type AnswerInput struct {
	QuestionID  string
	Category    string
	IsCorrect   bool
	TimeSpentMs int64
}

// RecordResult reports what a recording changed, for UI feedback.
type RecordResult struct {
	// Messages describes each bonus XP event in display order.
	Messages []string

	XPEarned int
	TotalXP  int

	LeveledUp bool
	NewLevel  int

	CurrentDayStreak     int
	CurrentCorrectStreak int
}

// Recorder applies answer events to user progress records.
type Recorder struct {
	store *store.Store

	// now is the clock used for timestamps and streak dates.
	// Overridable in tests.
	now func() time.Time
}

// NewRecorder creates a Recorder over the given store.
func NewRecorder(s *store.Store) *Recorder {
	return &Recorder{store: s, now: time.Now}
}

// RecordAnswer atomically applies one answer event to the user's record
// and returns the resulting XP changes. Callers must invoke it at most
// once per question per quiz attempt; a duplicate call double-counts.
// On transaction failure nothing is persisted and the answer should be
// treated as not recorded.
func (r *Recorder) RecordAnswer(ctx context.Context, userID string, in AnswerInput) (*RecordResult, error) {
	if in.QuestionID == "" {
		return nil, errors.New("record answer: question id is required")
	}
	if in.TimeSpentMs < 0 {
		return nil, errors.New("record answer: time spent must be non-negative")
	}

	now := r.now()
	var result *RecordResult
	err := r.store.RunTransaction(ctx, func(tx *store.Tx) error {
		rec := profile.NewRecord()
		if err := tx.Get(profile.UserDocPath(userID), rec); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		result = applyAnswer(rec, in, now)
		return tx.Set(profile.UserDocPath(userID), rec)
	})
	if err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}
	return result, nil
}

// applyAnswer is the transaction body: a pure function of the freshly read
// record, the answer event and the clock. Safe to re-run on conflict retry.
func applyAnswer(rec *profile.Record, in AnswerInput, now time.Time) *RecordResult {
	rec.EnsureDefaults()
	res := &RecordResult{}

	// Consecutive-correct streak.
	if in.IsCorrect {
		rec.Stats.CurrentCorrectStreak++
	} else {
		rec.Stats.CurrentCorrectStreak = 0
	}

	// First-seen answer record. Overwrites on a duplicate call; preventing
	// duplicates is the caller's contract.
	rec.AnsweredQuestions[in.QuestionID] = &profile.AnsweredQuestion{
		IsCorrect:   in.IsCorrect,
		Category:    in.Category,
		Timestamp:   now,
		TimeSpentMs: in.TimeSpentMs,
	}

	// Totals.
	rec.Stats.TotalAnswered++
	if in.IsCorrect {
		rec.Stats.TotalCorrect++
	} else {
		rec.Stats.TotalIncorrect++
	}
	rec.Stats.TotalTimeSpentMs += in.TimeSpentMs

	// Per-category counts.
	cat := rec.Stats.Categories[in.Category]
	if cat == nil {
		cat = &profile.CategoryStats{}
		rec.Stats.Categories[in.Category] = cat
	}
	cat.Answered++
	if in.IsCorrect {
		cat.Correct++
	} else {
		cat.Incorrect++
	}

	streakChanged := updateDayStreak(rec, dateutil.FromTime(now))

	// XP accrual: 1 base, +2 when correct, then additive bonuses.
	earned := 1
	if in.IsCorrect {
		earned += 2
	}
	earned += awardBonuses(rec, streakChanged, res)

	oldLevel := rec.Stats.Level
	rec.Stats.XP += earned
	rec.Stats.Level = leveling.Level(rec.Stats.XP)

	res.XPEarned = earned
	res.TotalXP = rec.Stats.XP
	res.NewLevel = rec.Stats.Level
	res.LeveledUp = rec.Stats.Level > oldLevel
	res.CurrentDayStreak = rec.Streaks.CurrentStreak
	res.CurrentCorrectStreak = rec.Stats.CurrentCorrectStreak
	return res
}

// updateDayStreak applies the calendar-day streak rules and reports
// whether the streak count changed today.
func updateDayStreak(rec *profile.Record, today dateutil.Day) bool {
	s := &rec.Streaks
	changed := false

	switch {
	case s.LastAnsweredDate.IsZero():
		s.CurrentStreak = 1
		changed = true
	default:
		switch diff := today.DiffDays(s.LastAnsweredDate); {
		case diff <= 0:
			// Same day (or clock skew): streak count unchanged.
		case diff == 1:
			s.CurrentStreak++
			changed = true
		default:
			s.CurrentStreak = 1
			changed = true
		}
	}

	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	s.LastAnsweredDate = today
	return changed
}

// awardBonuses applies every bonus rule additively and returns the total
// bonus XP, appending one message per award.
func awardBonuses(rec *profile.Record, streakChanged bool, res *RecordResult) int {
	total := 0
	award := func(b bonus) {
		total += b.xp
		res.Messages = append(res.Messages, b.message)
	}
	oneTime := func(a Achievement) {
		if rec.Stats.Achievements[string(a)] {
			return
		}
		rec.Stats.Achievements[string(a)] = true
		award(oneTimeAchievements[a])
	}

	if rec.Stats.TotalAnswered == 10 {
		oneTime(AchFirstTen)
	}
	if rec.Streaks.CurrentStreak >= 7 {
		oneTime(AchWeekStreak)
	}
	if rec.Stats.CurrentCorrectStreak >= 5 {
		oneTime(AchFiveInARow)
	}

	// Day-streak milestones re-award, but only on days the streak moved.
	if streakChanged {
		if xp, ok := dayStreakMilestones[rec.Streaks.CurrentStreak]; ok {
			award(bonus{xp: xp, message: fmt.Sprintf("%d-day streak: +%d XP", rec.Streaks.CurrentStreak, xp)})
		}
	}

	// Cumulative-correct milestones fire once per exact total.
	if xp, ok := correctTotalMilestones[rec.Stats.TotalCorrect]; ok {
		key := string(correctTotalAchievement(rec.Stats.TotalCorrect))
		if !rec.Stats.Achievements[key] {
			rec.Stats.Achievements[key] = true
			award(bonus{xp: xp, message: fmt.Sprintf("%d total correct: +%d XP", rec.Stats.TotalCorrect, xp)})
		}
	}

	// Consecutive-correct milestones re-award on every exact hit.
	if xp, ok := consecutiveCorrectMilestones[rec.Stats.CurrentCorrectStreak]; ok {
		award(bonus{xp: xp, message: fmt.Sprintf("%d correct in a row: +%d XP", rec.Stats.CurrentCorrectStreak, xp)})
	}

	return total
}
