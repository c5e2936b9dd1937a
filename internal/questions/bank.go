// Package questions loads and filters the question bank. The bank is
// authored externally; question text doubles as the stable identifier.
package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"strings"

	"github.com/DaBoss786/medswipe/internal/profile"
)

// Question is one entry in the question bank.
type Question struct {
	// Text is the question prompt. It must be unique across the bank and
	// stable over time because it is used as the question identifier.
	Text string `json:"question"`

	Category string `json:"category"`

	// Options holds the answer choices, in display order (A through E).
	// Banks may supply between 2 and 5 options.
	Options []string `json:"options"`

	// CorrectAnswer is the letter of the correct option ("A".."E").
	CorrectAnswer string `json:"correctAnswer"`

	Explanation string `json:"explanation"`

	// ImageURL is an optional illustration.
	ImageURL string `json:"imageUrl,omitempty"`

	// CMEEligible marks questions that count toward CME credit.
	CMEEligible bool `json:"cmeEligible"`
}

// ID returns the question's stable identifier.
func (q *Question) ID() string {
	return q.Text
}

// IsCorrect reports whether the given option letter answers q correctly.
func (q *Question) IsCorrect(letter string) bool {
	return strings.EqualFold(strings.TrimSpace(letter), q.CorrectAnswer)
}

// OptionLetter returns the letter for option index i (0 -> "A").
func OptionLetter(i int) string {
	return string(rune('A' + i))
}

// maxBankBytes bounds how much bank data is read from a remote source.
const maxBankBytes = 32 << 20

// Load reads the question bank from a local file path or an http(s) URL,
// validates it against the bank schema, and rejects duplicate question
// text.
func Load(ctx context.Context, source string) ([]Question, error) {
	raw, err := fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	if err := validateBank(raw); err != nil {
		return nil, err
	}

	var bank []Question
	if err := json.Unmarshal(raw, &bank); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}

	seen := make(map[string]bool, len(bank))
	for _, q := range bank {
		if seen[q.Text] {
			return nil, fmt.Errorf("duplicate question text %q: question text is the identifier and must be unique", truncate(q.Text, 60))
		}
		seen[q.Text] = true
	}
	return bank, nil
}

func fetch(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("build bank request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch question bank: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch question bank: unexpected status %s", resp.Status)
		}
		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBankBytes))
		if err != nil {
			return nil, fmt.Errorf("read question bank: %w", err)
		}
		return raw, nil
	}

	raw, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return raw, nil
}

// ExcludeAnswered filters out questions the user has already answered,
// so new quizzes default to unseen material.
func ExcludeAnswered(bank []Question, answered map[string]*profile.AnsweredQuestion) []Question {
	var out []Question
	for _, q := range bank {
		if _, ok := answered[q.ID()]; !ok {
			out = append(out, q)
		}
	}
	return out
}

// OnlyCME filters the bank to CME-eligible questions.
func OnlyCME(bank []Question) []Question {
	var out []Question
	for _, q := range bank {
		if q.CMEEligible {
			out = append(out, q)
		}
	}
	return out
}

// ByCategory filters the bank to one category. An empty category returns
// the bank unchanged.
func ByCategory(bank []Question, category string) []Question {
	if category == "" {
		return bank
	}
	var out []Question
	for _, q := range bank {
		if strings.EqualFold(q.Category, category) {
			out = append(out, q)
		}
	}
	return out
}

// ByIDs returns the bank entries whose ids appear in ids, preserving bank
// order. Unknown ids are ignored.
func ByIDs(bank []Question, ids []string) []Question {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []Question
	for _, q := range bank {
		if want[q.ID()] {
			out = append(out, q)
		}
	}
	return out
}

// CountCMEEligible returns how many bank questions are CME-eligible.
func CountCMEEligible(bank []Question) int {
	n := 0
	for _, q := range bank {
		if q.CMEEligible {
			n++
		}
	}
	return n
}

// Shuffle randomizes question order in place.
func Shuffle(bank []Question) {
	rand.Shuffle(len(bank), func(i, j int) {
		bank[i], bank[j] = bank[j], bank[i]
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
