// Package profile defines the per-user progress document. One Record per
// user holds everything the quiz mutates: answer stats, streaks, XP,
// spaced-repetition schedules, CME accounting and bookmarks.
package profile

import (
	"time"

	"github.com/DaBoss786/medswipe/internal/dateutil"
)

// Difficulty is a learner's self-rating of a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known difficulty rating.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Result is the outcome of the most recent review of a question.
type Result string

const (
	ResultCorrect   Result = "correct"
	ResultIncorrect Result = "incorrect"
)

// CategoryStats counts answers within one question category.
type CategoryStats struct {
	Answered  int `json:"answered"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// Stats is the general (non-CME) answer accounting.
type Stats struct {
	TotalAnswered        int                       `json:"totalAnswered"`
	TotalCorrect         int                       `json:"totalCorrect"`
	TotalIncorrect       int                       `json:"totalIncorrect"`
	Categories           map[string]*CategoryStats `json:"categories"`
	TotalTimeSpentMs     int64                     `json:"totalTimeSpent"`
	XP                   int                       `json:"xp"`
	Level                int                       `json:"level"`
	Achievements         map[string]bool           `json:"achievements"`
	CurrentCorrectStreak int                       `json:"currentCorrectStreak"`
}

// Streaks tracks consecutive calendar days with at least one answer.
type Streaks struct {
	LastAnsweredDate dateutil.Day `json:"lastAnsweredDate"`
	CurrentStreak    int          `json:"currentStreak"`
	LongestStreak    int          `json:"longestStreak"`
}

// AnsweredQuestion records the first-seen answer to a question.
type AnsweredQuestion struct {
	IsCorrect   bool      `json:"isCorrect"`
	Category    string    `json:"category"`
	Timestamp   time.Time `json:"timestamp"`
	TimeSpentMs int64     `json:"timeSpent"`
}

// ReviewEntry is the spaced-repetition state for one question.
type ReviewEntry struct {
	LastReviewedAt time.Time    `json:"lastReviewedAt"`
	NextReviewDate dateutil.Day `json:"nextReviewDate"`
	IntervalDays   int          `json:"reviewInterval"`
	Difficulty     Difficulty   `json:"difficulty"`
	LastResult     Result       `json:"lastResult"`
	ReviewCount    int          `json:"reviewCount"`
}

// CMEStats is the parallel accounting stream for CME-eligible answers.
// Credit amounts are decimals with two-place precision.
type CMEStats struct {
	TotalAnswered  int     `json:"totalAnswered"`
	TotalCorrect   int     `json:"totalCorrect"`
	CreditsEarned  float64 `json:"creditsEarned"`
	CreditsClaimed float64 `json:"creditsClaimed"`
}

// CMEAnswer records per-question CME answer metadata, kept separate from
// AnsweredQuestions so CME and regular quiz modes do not interfere.
type CMEAnswer struct {
	FirstAnsweredAt time.Time `json:"firstAnsweredAt"`
	LastAnsweredAt  time.Time `json:"lastAnsweredAt"`
	TimesAnswered   int       `json:"timesAnswered"`
	EverCorrect     bool      `json:"everCorrect"`
	Category        string    `json:"category"`
}

// Evaluation is the CME evaluation form submitted with a claim.
type Evaluation struct {
	FullName              string `json:"fullName"`
	PracticeSetting       string `json:"practiceSetting"`
	LearningObjectivesMet string `json:"learningObjectivesMet"`
	RelevantToPractice    string `json:"relevantToPractice"`
	WillChangePractice    string `json:"willChangePractice"`
	CommercialBias        string `json:"commercialBias"`
	BiasComment           string `json:"biasComment,omitempty"`
}

// ClaimRecord is one immutable entry in the CME claim history. The
// download fields are patched in best-effort after certificate generation.
type ClaimRecord struct {
	ID             string     `json:"id"`
	Timestamp      time.Time  `json:"timestamp"`
	CreditsClaimed float64    `json:"creditsClaimed"`
	Evaluation     Evaluation `json:"evaluationData"`
	DownloadURL    string     `json:"downloadUrl,omitempty"`
	PDFFileName    string     `json:"pdfFileName,omitempty"`
}

// Record is the full per-user progress document.
type Record struct {
	Stats                Stats                        `json:"stats"`
	Streaks              Streaks                      `json:"streaks"`
	AnsweredQuestions    map[string]*AnsweredQuestion `json:"answeredQuestions"`
	SpacedRepetition     map[string]*ReviewEntry      `json:"spacedRepetition"`
	CMEStats             CMEStats                     `json:"cmeStats"`
	CMEAnsweredQuestions map[string]*CMEAnswer        `json:"cmeAnsweredQuestions"`
	CMEClaimHistory      []*ClaimRecord               `json:"cmeClaimHistory"`
	Bookmarks            []string                     `json:"bookmarks"`
}

// NewRecord returns a zeroed Record with all sub-structures initialized,
// as created at first authentication.
func NewRecord() *Record {
	r := &Record{}
	r.EnsureDefaults()
	return r
}

// EnsureDefaults initializes any missing sub-structures so a partially
// populated (or brand-new) document is safe to mutate. Every transaction
// body calls this before touching the record.
func (r *Record) EnsureDefaults() {
	if r.Stats.Categories == nil {
		r.Stats.Categories = make(map[string]*CategoryStats)
	}
	if r.Stats.Achievements == nil {
		r.Stats.Achievements = make(map[string]bool)
	}
	if r.Stats.Level < 1 {
		r.Stats.Level = 1
	}
	if r.AnsweredQuestions == nil {
		r.AnsweredQuestions = make(map[string]*AnsweredQuestion)
	}
	if r.SpacedRepetition == nil {
		r.SpacedRepetition = make(map[string]*ReviewEntry)
	}
	if r.CMEAnsweredQuestions == nil {
		r.CMEAnsweredQuestions = make(map[string]*CMEAnswer)
	}
}

// ResetProgress clears answered questions, stats and streaks while
// preserving the record itself, CME accounting, review schedules and
// bookmarks.
func (r *Record) ResetProgress() {
	r.Stats = Stats{}
	r.Streaks = Streaks{}
	r.AnsweredQuestions = nil
	r.EnsureDefaults()
}

// HasBookmark reports whether questionID is bookmarked.
func (r *Record) HasBookmark(questionID string) bool {
	for _, id := range r.Bookmarks {
		if id == questionID {
			return true
		}
	}
	return false
}

// ToggleBookmark adds or removes questionID from the bookmark set and
// reports whether it is now bookmarked.
func (r *Record) ToggleBookmark(questionID string) bool {
	for i, id := range r.Bookmarks {
		if id == questionID {
			r.Bookmarks = append(r.Bookmarks[:i], r.Bookmarks[i+1:]...)
			return false
		}
	}
	r.Bookmarks = append(r.Bookmarks, questionID)
	return true
}

// UserDocPath returns the document path for a user's progress record.
func UserDocPath(userID string) string {
	return "users/" + userID
}
