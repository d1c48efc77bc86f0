package validator

import (
	"fmt"
	"strings"

	"github.com/mentorlink/feedback-service/internal/models"
)

// ValidateQuestion checks a single candidate question for structural
// well-formedness: recognized type, non-empty bounded label, and the
// type-conditional fields (options for select/radio, a sane rating range for
// rating). It is a pure check with no cross-question knowledge; duplicate-id
// detection belongs to ValidateQuestionSet.
func ValidateQuestion(q models.Question) ValidationErrors {
	var errs ValidationErrors

	label := strings.TrimSpace(q.Label)
	if label == "" || len(q.Label) > models.QuestionLabelMaxLen {
		errs = append(errs, ValidationError{
			Field:   "label",
			Message: fmt.Sprintf("must be between 1 and %d characters", models.QuestionLabelMaxLen),
			Value:   q.Label,
			Rule:    RuleInvalidQuestion,
		})
	}

	if !q.Type.Valid() {
		errs = append(errs, ValidationError{
			Field:   "type",
			Message: "must be one of: text, textarea, select, radio, rating",
			Value:   string(q.Type),
			Rule:    RuleInvalidQuestion,
		})
		return errs
	}

	switch {
	case q.Type.HasOptions():
		if len(q.Options) == 0 {
			errs = append(errs, ValidationError{
				Field:   "options",
				Message: fmt.Sprintf("question %q must have options", label),
				Rule:    RuleInvalidQuestion,
			})
		}
	case q.Type == models.QuestionRating:
		if q.MinRating == nil || q.MaxRating == nil {
			errs = append(errs, ValidationError{
				Field:   "rating",
				Message: fmt.Sprintf("question %q must have min and max rating", label),
				Rule:    RuleInvalidQuestion,
			})
			break
		}
		if *q.MinRating < 1 || *q.MaxRating > models.RatingMax {
			errs = append(errs, ValidationError{
				Field:   "rating",
				Message: fmt.Sprintf("rating bounds for %q must lie within 1 and %d", label, models.RatingMax),
				Value:   fmt.Sprintf("%d-%d", *q.MinRating, *q.MaxRating),
				Rule:    RuleInvalidQuestion,
			})
		}
		if *q.MinRating >= *q.MaxRating {
			errs = append(errs, ValidationError{
				Field:   "rating",
				Message: fmt.Sprintf("min rating must be less than max rating for %q", label),
				Value:   fmt.Sprintf("%d-%d", *q.MinRating, *q.MaxRating),
				Rule:    RuleInvalidQuestion,
			})
		}
	}

	return errs
}

// ValidateQuestionSet validates a whole form definition before it may be
// persisted, on create and on edit alike. The first malformed question aborts
// the check with that question's error, tagged with its position; duplicate
// ids and the empty form are rejected as their own rule codes.
func ValidateQuestionSet(questions []models.Question) ValidationErrors {
	if len(questions) == 0 {
		return ValidationErrors{{
			Field:   "questions",
			Message: "form must have at least one question",
			Rule:    RuleEmptyForm,
		}}
	}

	seen := make(map[string]struct{}, len(questions))
	for i, q := range questions {
		if errs := ValidateQuestion(q); len(errs) > 0 {
			for j := range errs {
				errs[j].Field = fmt.Sprintf("questions[%d].%s", i, errs[j].Field)
			}
			return errs
		}
		if q.ID == "" {
			return ValidationErrors{{
				Field:   fmt.Sprintf("questions[%d].id", i),
				Message: "question id is required",
				Rule:    RuleInvalidQuestion,
			}}
		}
		if _, dup := seen[q.ID]; dup {
			return ValidationErrors{{
				Field:   fmt.Sprintf("questions[%d].id", i),
				Message: "question ids must be unique",
				Value:   q.ID,
				Rule:    RuleDuplicateQuestion,
			}}
		}
		seen[q.ID] = struct{}{}
	}

	return nil
}
