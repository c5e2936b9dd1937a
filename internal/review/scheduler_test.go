package review

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaBoss786/medswipe/internal/dateutil"
	"github.com/DaBoss786/medswipe/internal/identity"
	"github.com/DaBoss786/medswipe/internal/profile"
	"github.com/DaBoss786/medswipe/internal/questions"
	"github.com/DaBoss786/medswipe/internal/store"
)

func TestIntervalFor(t *testing.T) {
	tests := []struct {
		correct    bool
		difficulty profile.Difficulty
		want       int
	}{
		{true, profile.DifficultyEasy, 7},
		{true, profile.DifficultyMedium, 3},
		{true, profile.DifficultyHard, 1},
		{false, profile.DifficultyEasy, 1},
		{false, profile.DifficultyMedium, 1},
		{false, profile.DifficultyHard, 1},
	}

	for _, tt := range tests {
		got := IntervalFor(tt.correct, tt.difficulty)
		if got != tt.want {
			t.Errorf("IntervalFor(%v, %s) = %d, want %d", tt.correct, tt.difficulty, got, tt.want)
		}
	}
}

func newTestScheduler(t *testing.T, now time.Time) *Scheduler {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	sched := NewScheduler(s)
	sched.now = func() time.Time { return now }
	return sched
}

func TestRecordRatingPersistsEntry(t *testing.T) {
	now := time.Date(2025, time.May, 1, 14, 0, 0, 0, time.UTC)
	sched := newTestScheduler(t, now)
	sess := identity.Begin("u1")
	ctx := context.Background()

	require.NoError(t, sched.RecordRating(ctx, sess, "q1", true, profile.DifficultyEasy, 7))

	var rec profile.Record
	require.NoError(t, sched.store.Get(ctx, profile.UserDocPath("u1"), &rec))
	entry := rec.SpacedRepetition["q1"]
	require.NotNil(t, entry)
	assert.Equal(t, 7, entry.IntervalDays)
	assert.Equal(t, dateutil.New(2025, time.May, 8), entry.NextReviewDate)
	assert.Equal(t, profile.ResultCorrect, entry.LastResult)
	assert.Equal(t, 1, entry.ReviewCount)

	// A second rating increments the review count.
	require.NoError(t, sched.RecordRating(ctx, sess, "q1", false, profile.DifficultyHard, 1))
	require.NoError(t, sched.store.Get(ctx, profile.UserDocPath("u1"), &rec))
	assert.Equal(t, 2, rec.SpacedRepetition["q1"].ReviewCount)
	assert.Equal(t, profile.ResultIncorrect, rec.SpacedRepetition["q1"].LastResult)
}

func TestRecordRatingClampsInterval(t *testing.T) {
	now := time.Date(2025, time.May, 1, 14, 0, 0, 0, time.UTC)
	sched := newTestScheduler(t, now)
	ctx := context.Background()

	require.NoError(t, sched.RecordRating(ctx, identity.Begin("u1"), "q1", true, profile.DifficultyHard, 0))

	var rec profile.Record
	require.NoError(t, sched.store.Get(ctx, profile.UserDocPath("u1"), &rec))
	assert.Equal(t, 1, rec.SpacedRepetition["q1"].IntervalDays)
	assert.Equal(t, dateutil.New(2025, time.May, 2), rec.SpacedRepetition["q1"].NextReviewDate)
}

func TestRecordRatingGuestDenied(t *testing.T) {
	sched := newTestScheduler(t, time.Now())
	err := sched.RecordRating(context.Background(), identity.Begin(""), "q1", true, profile.DifficultyEasy, 7)
	assert.ErrorIs(t, err, ErrRegisteredOnly)
}

func TestDueQuestionsBoundary(t *testing.T) {
	now := time.Date(2025, time.May, 10, 8, 0, 0, 0, time.UTC)
	sched := newTestScheduler(t, now)
	sess := identity.Begin("u1")
	ctx := context.Background()
	today := dateutil.New(2025, time.May, 10)

	seed := map[string]dateutil.Day{
		"due-past":     dateutil.New(2025, time.May, 5),
		"due-today":    today,
		"not-due":      dateutil.New(2025, time.May, 11),
		"far-future":   dateutil.New(2025, time.June, 1),
	}
	require.NoError(t, sched.store.RunTransaction(ctx, func(tx *store.Tx) error {
		rec := profile.NewRecord()
		for id, d := range seed {
			rec.SpacedRepetition[id] = &profile.ReviewEntry{
				NextReviewDate: d,
				IntervalDays:   1,
				Difficulty:     profile.DifficultyMedium,
				LastResult:     profile.ResultCorrect,
				ReviewCount:    1,
			}
		}
		return tx.Set(profile.UserDocPath("u1"), rec)
	}))

	due, err := sched.DueQuestions(ctx, sess, today)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"due-past", "due-today"}, due)

	next, err := sched.NextUpcoming(ctx, sess, today)
	require.NoError(t, err)
	assert.Equal(t, dateutil.New(2025, time.May, 11), next)
}

func TestDueQuestionsGuestEmpty(t *testing.T) {
	sched := newTestScheduler(t, time.Now())

	due, err := sched.DueQuestions(context.Background(), identity.Begin(""), dateutil.Today(time.UTC))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestDueQuestionsNoRecord(t *testing.T) {
	sched := newTestScheduler(t, time.Now())

	due, err := sched.DueQuestions(context.Background(), identity.Begin("nobody"), dateutil.Today(time.UTC))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestBuildReviewSessionOnlyDue(t *testing.T) {
	bank := []questions.Question{
		{Text: "q1", Category: "ENT", Options: []string{"a", "b"}, CorrectAnswer: "A"},
		{Text: "q2", Category: "ENT", Options: []string{"a", "b"}, CorrectAnswer: "B"},
		{Text: "q3", Category: "ENT", Options: []string{"a", "b"}, CorrectAnswer: "A"},
	}

	session := BuildReviewSession(bank, []string{"q1", "q3"})
	require.Len(t, session, 2)
	for _, q := range session {
		assert.NotEqual(t, "q2", q.Text, "review session must not include questions that are not due")
	}
}
