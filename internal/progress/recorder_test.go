package progress

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaBoss786/medswipe/internal/profile"
	"github.com/DaBoss786/medswipe/internal/store"
)

func answerAt(rec *profile.Record, correct bool, at time.Time) *RecordResult {
	return applyAnswer(rec, AnswerInput{
		QuestionID:  "q-" + at.Format(time.RFC3339Nano),
		Category:    "ENT",
		IsCorrect:   correct,
		TimeSpentMs: 1000,
	}, at)
}

func TestFirstCorrectAnswer(t *testing.T) {
	rec := profile.NewRecord()
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	res := applyAnswer(rec, AnswerInput{
		QuestionID:  "What is the most common cause of epistaxis?",
		Category:    "ENT",
		IsCorrect:   true,
		TimeSpentMs: 5000,
	}, now)

	assert.Equal(t, 3, res.TotalXP, "1 base + 2 correct")
	assert.Equal(t, 3, res.XPEarned)
	assert.Equal(t, 1, rec.Stats.TotalAnswered)
	assert.Equal(t, 1, rec.Stats.TotalCorrect)
	assert.Equal(t, 0, rec.Stats.TotalIncorrect)
	assert.Equal(t, int64(5000), rec.Stats.TotalTimeSpentMs)
	assert.Equal(t, 1, rec.Streaks.CurrentStreak)
	assert.False(t, res.LeveledUp)

	cat := rec.Stats.Categories["ENT"]
	require.NotNil(t, cat)
	assert.Equal(t, profile.CategoryStats{Answered: 1, Correct: 1, Incorrect: 0}, *cat)
}

func TestIncorrectAnswerXP(t *testing.T) {
	rec := profile.NewRecord()
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	res := answerAt(rec, false, now)
	assert.Equal(t, 1, res.XPEarned)
	assert.Equal(t, 1, rec.Stats.TotalIncorrect)
	assert.Equal(t, 0, rec.Stats.CurrentCorrectStreak)
}

func TestCorrectStreakResets(t *testing.T) {
	rec := profile.NewRecord()
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		answerAt(rec, true, now.Add(time.Duration(i)*time.Minute))
	}
	assert.Equal(t, 4, rec.Stats.CurrentCorrectStreak)

	answerAt(rec, false, now.Add(5*time.Minute))
	assert.Equal(t, 0, rec.Stats.CurrentCorrectStreak)
}

func TestDayStreak(t *testing.T) {
	rec := profile.NewRecord()
	day1 := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	answerAt(rec, true, day1)
	assert.Equal(t, 1, rec.Streaks.CurrentStreak)

	// Same day: count unchanged.
	answerAt(rec, true, day1.Add(4*time.Hour))
	assert.Equal(t, 1, rec.Streaks.CurrentStreak)

	// Next day: increment.
	answerAt(rec, true, day1.AddDate(0, 0, 1))
	assert.Equal(t, 2, rec.Streaks.CurrentStreak)

	answerAt(rec, true, day1.AddDate(0, 0, 2))
	assert.Equal(t, 3, rec.Streaks.CurrentStreak)
	assert.Equal(t, 3, rec.Streaks.LongestStreak)

	// Two-day gap: reset to 1, longest preserved.
	answerAt(rec, true, day1.AddDate(0, 0, 5))
	assert.Equal(t, 1, rec.Streaks.CurrentStreak)
	assert.Equal(t, 3, rec.Streaks.LongestStreak)
}

func TestDayStreakMilestoneOnlyWhenChanged(t *testing.T) {
	rec := profile.NewRecord()
	start := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	var msgs []string
	for d := 0; d < 3; d++ {
		res := answerAt(rec, false, start.AddDate(0, 0, d))
		msgs = append(msgs, res.Messages...)
	}
	assert.Contains(t, msgs, "3-day streak: +5 XP")

	// Another answer on day 3: streak unchanged, no re-award.
	res := answerAt(rec, false, start.AddDate(0, 0, 2).Add(time.Hour))
	assert.NotContains(t, res.Messages, "3-day streak: +5 XP")
}

func TestFirstTenQuestionsBonusOnce(t *testing.T) {
	rec := profile.NewRecord()
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	var tenth, eleventh *RecordResult
	for i := 1; i <= 11; i++ {
		res := answerAt(rec, false, now.Add(time.Duration(i)*time.Minute))
		switch i {
		case 10:
			tenth = res
		case 11:
			eleventh = res
		}
	}

	assert.Contains(t, tenth.Messages, "First 10 questions: +50 XP")
	assert.NotContains(t, eleventh.Messages, "First 10 questions: +50 XP")
}

func TestCumulativeCorrectMilestoneOnce(t *testing.T) {
	rec := profile.NewRecord()
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	seen := 0
	for i := 1; i <= 30; i++ {
		res := answerAt(rec, true, now.Add(time.Duration(i)*time.Minute))
		for _, m := range res.Messages {
			if m == "10 total correct: +10 XP" {
				seen++
			}
		}
	}
	assert.Equal(t, 1, seen, "10-correct milestone must fire exactly once")
	assert.True(t, rec.Stats.Achievements["correct_total_10"])
	assert.True(t, rec.Stats.Achievements["correct_total_25"])
}

func TestConsecutiveCorrectMilestoneReAwards(t *testing.T) {
	rec := profile.NewRecord()
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	tick := func() time.Time { now = now.Add(time.Minute); return now }

	hits := 0
	climb := func() {
		for i := 0; i < 5; i++ {
			res := answerAt(rec, true, tick())
			for _, m := range res.Messages {
				if m == "5 correct in a row: +10 XP" {
					hits++
				}
			}
		}
	}

	climb()
	answerAt(rec, false, tick()) // reset
	climb()
	assert.Equal(t, 2, hits, "consecutive milestone re-awards after reset and re-climb")
}

func TestFiveInARowAchievementOnce(t *testing.T) {
	rec := profile.NewRecord()
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	hits := 0
	for i := 0; i < 12; i++ {
		res := answerAt(rec, true, now.Add(time.Duration(i)*time.Minute))
		for _, m := range res.Messages {
			if m == "5 correct in a row: +20 XP" {
				hits++
			}
		}
	}
	assert.Equal(t, 1, hits)
}

func TestLevelUpDetected(t *testing.T) {
	rec := profile.NewRecord()
	rec.Stats.XP = 28
	rec.Stats.Level = 1
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	res := answerAt(rec, true, now) // 28 + 3 = 31 >= 30
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 2, res.NewLevel)
	assert.Equal(t, 2, rec.Stats.Level)
}

func TestLongestStreakNeverDecreases(t *testing.T) {
	rec := profile.NewRecord()
	start := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

	for d := 0; d < 4; d++ {
		answerAt(rec, true, start.AddDate(0, 0, d))
	}
	longest := rec.Streaks.LongestStreak

	answerAt(rec, true, start.AddDate(0, 0, 10))
	assert.Equal(t, longest, rec.Streaks.LongestStreak)
	assert.Equal(t, 1, rec.Streaks.CurrentStreak)
}

func TestRecordAnswerPersists(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	r := NewRecorder(s)
	r.now = func() time.Time {
		return time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	}

	ctx := context.Background()
	res, err := r.RecordAnswer(ctx, "u1", AnswerInput{
		QuestionID:  "q1",
		Category:    "Otology",
		IsCorrect:   true,
		TimeSpentMs: 2500,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalXP)

	var rec profile.Record
	require.NoError(t, s.Get(ctx, profile.UserDocPath("u1"), &rec))
	assert.Equal(t, 1, rec.Stats.TotalAnswered)
	assert.Equal(t, 3, rec.Stats.XP)
	require.Contains(t, rec.AnsweredQuestions, "q1")
	assert.True(t, rec.AnsweredQuestions["q1"].IsCorrect)
}

func TestRecordAnswerValidation(t *testing.T) {
	r := NewRecorder(nil)

	_, err := r.RecordAnswer(context.Background(), "u1", AnswerInput{QuestionID: ""})
	require.Error(t, err)

	_, err = r.RecordAnswer(context.Background(), "u1", AnswerInput{QuestionID: "q", TimeSpentMs: -1})
	require.Error(t, err)
}
