package validator

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mentorlink/feedback-service/internal/models"
)

// ValidateAnswers checks a submitted answer map against a form's question
// list, in definition order. Required questions must carry a non-empty
// answer; present answers get the type-specific check (rating range, option
// membership). Answers keyed by ids the form does not define are tolerated
// and left in place — stale client payloads submit successfully, which
// matches the behavior the product has always had.
func ValidateAnswers(questions []models.Question, answers models.AnswerMap) ValidationErrors {
	for _, q := range questions {
		answer, present := answers[q.ID]
		if isEmptyAnswer(answer) {
			present = false
		}

		if q.Required && !present {
			return ValidationErrors{{
				Field:   q.ID,
				Message: fmt.Sprintf("answer required for question: %s", q.Label),
				Rule:    RuleRequiredAnswer,
			}}
		}
		if !present {
			continue
		}

		switch q.Type {
		case models.QuestionRating:
			value, ok := toNumber(answer)
			if !ok || q.MinRating == nil || q.MaxRating == nil ||
				value < float64(*q.MinRating) || value > float64(*q.MaxRating) {
				min, max := 0, 0
				if q.MinRating != nil {
					min = *q.MinRating
				}
				if q.MaxRating != nil {
					max = *q.MaxRating
				}
				return ValidationErrors{{
					Field:   q.ID,
					Message: fmt.Sprintf("invalid rating for %q. Must be between %d and %d", q.Label, min, max),
					Value:   answer,
					Rule:    RuleInvalidRating,
				}}
			}
		case models.QuestionSelect, models.QuestionRadio:
			text, ok := answer.(string)
			if !ok || !containsOption(q.Options, text) {
				return ValidationErrors{{
					Field:   q.ID,
					Message: fmt.Sprintf("invalid option for %q", q.Label),
					Value:   answer,
					Rule:    RuleInvalidOption,
				}}
			}
		}
		// text/textarea answers are stored opaquely; no length rules here.
	}

	return nil
}

func isEmptyAnswer(answer interface{}) bool {
	if answer == nil {
		return true
	}
	if s, ok := answer.(string); ok && s == "" {
		return true
	}
	return false
}

// toNumber coerces the loosely-typed JSON answer value into a float. Clients
// send ratings as numbers or numeric strings depending on the input widget.
func toNumber(answer interface{}) (float64, bool) {
	switch v := answer.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func containsOption(options []string, answer string) bool {
	for _, option := range options {
		if option == answer {
			return true
		}
	}
	return false
}
