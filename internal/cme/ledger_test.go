package cme

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaBoss786/medswipe/internal/identity"
	"github.com/DaBoss786/medswipe/internal/profile"
	"github.com/DaBoss786/medswipe/internal/store"
)

func validForm() profile.Evaluation {
	return profile.Evaluation{
		FullName:              "Dr. Jane Doe",
		PracticeSetting:       "Private practice",
		LearningObjectivesMet: "yes",
		RelevantToPractice:    "yes",
		WillChangePractice:    "no",
		CommercialBias:        "yes",
	}
}

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	l := NewLedger(s)
	l.now = func() time.Time {
		return time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)
	}
	return l
}

func seedEarned(t *testing.T, l *Ledger, uid string, earned float64) {
	t.Helper()
	require.NoError(t, l.store.RunTransaction(context.Background(), func(tx *store.Tx) error {
		rec := profile.NewRecord()
		rec.CMEStats.CreditsEarned = earned
		return tx.Set(profile.UserDocPath(uid), rec)
	}))
}

func TestRecordAnswerAccrual(t *testing.T) {
	l := newTestLedger(t)
	sess := identity.Begin("u1")
	ctx := context.Background()

	// First correct answer on a unique question earns 0.25.
	require.NoError(t, l.RecordAnswer(ctx, sess, AnswerInput{QuestionID: "q1", Category: "ENT", IsCorrect: true}))
	// Repeat of the same question earns nothing more.
	require.NoError(t, l.RecordAnswer(ctx, sess, AnswerInput{QuestionID: "q1", Category: "ENT", IsCorrect: true}))
	// Incorrect first answer earns nothing...
	require.NoError(t, l.RecordAnswer(ctx, sess, AnswerInput{QuestionID: "q2", Category: "ENT", IsCorrect: false}))
	// ...until it is eventually answered correctly.
	require.NoError(t, l.RecordAnswer(ctx, sess, AnswerInput{QuestionID: "q2", Category: "ENT", IsCorrect: true}))

	var rec profile.Record
	require.NoError(t, l.store.Get(ctx, profile.UserDocPath("u1"), &rec))
	assert.Equal(t, 0.5, rec.CMEStats.CreditsEarned)
	assert.Equal(t, 4, rec.CMEStats.TotalAnswered)
	assert.Equal(t, 3, rec.CMEStats.TotalCorrect)
	assert.Len(t, rec.CMEAnsweredQuestions, 2)
	assert.Equal(t, 2, rec.CMEAnsweredQuestions["q1"].TimesAnswered)
}

func TestRecordAnswerGuestDenied(t *testing.T) {
	l := newTestLedger(t)
	err := l.RecordAnswer(context.Background(), identity.Begin(""), AnswerInput{QuestionID: "q1", IsCorrect: true})
	assert.ErrorIs(t, err, ErrRegisteredOnly)
}

func TestClaimSucceedsAndDrainsBalance(t *testing.T) {
	l := newTestLedger(t)
	sess := identity.Begin("u1")
	ctx := context.Background()
	seedEarned(t, l, "u1", 1.00)

	claimID, err := l.Claim(ctx, sess, validForm(), 1.00)
	require.NoError(t, err)
	require.NotEmpty(t, claimID)

	var rec profile.Record
	require.NoError(t, l.store.Get(ctx, profile.UserDocPath("u1"), &rec))
	assert.Equal(t, 1.00, rec.CMEStats.CreditsClaimed)
	assert.Equal(t, 0.0, Available(rec.CMEStats))
	require.Len(t, rec.CMEClaimHistory, 1)
	assert.Equal(t, claimID, rec.CMEClaimHistory[0].ID)
	assert.Equal(t, "Dr. Jane Doe", rec.CMEClaimHistory[0].Evaluation.FullName)

	// Balance is empty: the next claim is rejected and claimed unchanged.
	_, err = l.Claim(ctx, sess, validForm(), 0.25)
	var insufficient *ErrInsufficientCredits
	require.ErrorAs(t, err, &insufficient)

	require.NoError(t, l.store.Get(ctx, profile.UserDocPath("u1"), &rec))
	assert.Equal(t, 1.00, rec.CMEStats.CreditsClaimed)
	assert.Len(t, rec.CMEClaimHistory, 1)
}

func TestClaimExceedingAvailableRejected(t *testing.T) {
	l := newTestLedger(t)
	sess := identity.Begin("u1")
	seedEarned(t, l, "u1", 0.50)

	_, err := l.Claim(context.Background(), sess, validForm(), 0.75)
	var insufficient *ErrInsufficientCredits
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 0.75, insufficient.Requested)
	assert.Equal(t, 0.50, insufficient.Available)
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		amount float64
		ok     bool
	}{
		{0.25, true},
		{0.50, true},
		{1.00, true},
		{2.75, true},
		{0, false},
		{-0.25, false},
		{0.30, false},
		{0.1, false},
		{1.001, false},
	}

	for _, tt := range tests {
		err := ValidateAmount(tt.amount)
		if tt.ok && err != nil {
			t.Errorf("ValidateAmount(%v) = %v, want nil", tt.amount, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("ValidateAmount(%v) = nil, want error", tt.amount)
		}
	}
}

func TestClaimInvalidAmountRejectedPreTransaction(t *testing.T) {
	l := newTestLedger(t)
	sess := identity.Begin("u1")
	seedEarned(t, l, "u1", 5.00)

	for _, amount := range []float64{0, -1, 0.30} {
		_, err := l.Claim(context.Background(), sess, validForm(), amount)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "amount %v", amount)
	}

	var rec profile.Record
	require.NoError(t, l.store.Get(context.Background(), profile.UserDocPath("u1"), &rec))
	assert.Empty(t, rec.CMEClaimHistory)
	assert.Equal(t, 0.0, rec.CMEStats.CreditsClaimed)
}

func TestValidateEvaluation(t *testing.T) {
	errs := ValidateEvaluation(validForm())
	assert.Empty(t, errs)

	form := validForm()
	form.FullName = "  "
	errs = ValidateEvaluation(form)
	require.Len(t, errs, 1)
	assert.Equal(t, "fullName", errs[0].Field)

	// Bias answered "no" requires a comment.
	form = validForm()
	form.CommercialBias = "no"
	errs = ValidateEvaluation(form)
	require.Len(t, errs, 1)
	assert.Equal(t, "biasComment", errs[0].Field)

	form.BiasComment = "Sponsored slides favored one vendor."
	assert.Empty(t, ValidateEvaluation(form))

	// Multiple violations each get their own message.
	errs = ValidateEvaluation(profile.Evaluation{})
	assert.GreaterOrEqual(t, len(errs), 5)
}

func TestAttachCertificateBestEffort(t *testing.T) {
	l := newTestLedger(t)
	sess := identity.Begin("u1")
	ctx := context.Background()
	seedEarned(t, l, "u1", 1.00)

	claimID, err := l.Claim(ctx, sess, validForm(), 0.50)
	require.NoError(t, err)

	require.NoError(t, l.AttachCertificate(ctx, sess, claimID, "https://example.com/cert.pdf", "cert.pdf"))

	var rec profile.Record
	require.NoError(t, l.store.Get(ctx, profile.UserDocPath("u1"), &rec))
	assert.Equal(t, "https://example.com/cert.pdf", rec.CMEClaimHistory[0].DownloadURL)
	assert.Equal(t, "cert.pdf", rec.CMEClaimHistory[0].PDFFileName)

	// Unknown claim id fails without touching the claim itself.
	require.Error(t, l.AttachCertificate(ctx, sess, "nope", "u", "f"))
	require.NoError(t, l.store.Get(ctx, profile.UserDocPath("u1"), &rec))
	assert.Equal(t, 0.50, rec.CMEStats.CreditsClaimed)
}

func TestRemainingQuestions(t *testing.T) {
	rec := profile.NewRecord()
	rec.CMEAnsweredQuestions["a"] = &profile.CMEAnswer{}
	rec.CMEAnsweredQuestions["b"] = &profile.CMEAnswer{}

	assert.Equal(t, 8, RemainingQuestions(10, rec))
	assert.Equal(t, 0, RemainingQuestions(1, rec))
}

func TestExportHistory(t *testing.T) {
	rec := profile.NewRecord()
	rec.CMEClaimHistory = []*profile.ClaimRecord{
		{
			ID:             "c1",
			Timestamp:      time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC),
			CreditsClaimed: 0.75,
			Evaluation:     validForm(),
			DownloadURL:    "https://example.com/cert.pdf",
			PDFFileName:    "cert.pdf",
		},
	}

	path := filepath.Join(t.TempDir(), "claims.xlsx")
	require.NoError(t, ExportHistory(rec, path))
	assert.FileExists(t, path)
}
