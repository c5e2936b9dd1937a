package cme

import (
	"fmt"
	"math"
	"strings"

	"github.com/DaBoss786/medswipe/internal/profile"
)

// ValidationError is a pre-transaction rejection of a claim input, with a
// user-facing message. Validation failures never reach the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// yesNo are the accepted answers for single-select yes/no fields.
var yesNo = []string{"yes", "no"}

// objectiveAnswers are the accepted answers for the learning-objectives
// question.
var objectiveAnswers = []string{"yes", "partially", "no"}

// ValidateEvaluation checks the CME evaluation form and returns one
// ValidationError per violated rule.
func ValidateEvaluation(form profile.Evaluation) []*ValidationError {
	var errs []*ValidationError
	add := func(field, message string) {
		errs = append(errs, &ValidationError{Field: field, Message: message})
	}

	if strings.TrimSpace(form.FullName) == "" {
		add("fullName", "Please enter your full name as it should appear on the certificate.")
	}
	if strings.TrimSpace(form.PracticeSetting) == "" {
		add("practiceSetting", "Please select your practice setting.")
	}
	if !oneOf(form.LearningObjectivesMet, objectiveAnswers) {
		add("learningObjectivesMet", "Please indicate whether the learning objectives were met.")
	}
	if !oneOf(form.RelevantToPractice, yesNo) {
		add("relevantToPractice", "Please indicate whether the content was relevant to your practice.")
	}
	if !oneOf(form.WillChangePractice, yesNo) {
		add("willChangePractice", "Please indicate whether this activity will change your practice.")
	}
	if !oneOf(form.CommercialBias, yesNo) {
		add("commercialBias", "Please indicate whether commercial bias was present.")
	} else if strings.EqualFold(form.CommercialBias, "no") && strings.TrimSpace(form.BiasComment) == "" {
		add("biasComment", "A comment is required for your commercial bias response.")
	}

	return errs
}

// ValidateAmount checks a requested claim amount: strictly positive and a
// multiple of 0.25 credits.
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return &ValidationError{Field: "credits", Message: "Credit amount must be greater than zero."}
	}
	cents := math.Round(amount * 100)
	if math.Abs(amount*100-cents) > 1e-6 || int64(cents)%25 != 0 {
		return &ValidationError{
			Field:   "credits",
			Message: fmt.Sprintf("Credit amount %.2f is not a multiple of 0.25.", amount),
		}
	}
	return nil
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(value), a) {
			return true
		}
	}
	return false
}
