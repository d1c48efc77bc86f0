package validator

import (
	"strings"
	"testing"

	"github.com/mentorlink/feedback-service/internal/models"
)

func intPtr(v int) *int { return &v }

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question models.Question
		wantRule string
	}{
		{
			name:     "valid text question",
			question: models.Question{ID: "q1", Type: models.QuestionText, Label: "How did it go?"},
		},
		{
			name:     "valid rating question",
			question: models.Question{ID: "q1", Type: models.QuestionRating, Label: "Score", MinRating: intPtr(1), MaxRating: intPtr(5)},
		},
		{
			name:     "valid select question",
			question: models.Question{ID: "q1", Type: models.QuestionSelect, Label: "Pick", Options: []string{"a", "b"}},
		},
		{
			name:     "empty label",
			question: models.Question{ID: "q1", Type: models.QuestionText, Label: ""},
			wantRule: RuleInvalidQuestion,
		},
		{
			name:     "label too long",
			question: models.Question{ID: "q1", Type: models.QuestionText, Label: strings.Repeat("x", 501)},
			wantRule: RuleInvalidQuestion,
		},
		{
			name:     "unknown type",
			question: models.Question{ID: "q1", Type: "checkbox", Label: "Pick"},
			wantRule: RuleInvalidQuestion,
		},
		{
			name:     "select without options",
			question: models.Question{ID: "q1", Type: models.QuestionSelect, Label: "Pick"},
			wantRule: RuleInvalidQuestion,
		},
		{
			name:     "radio with empty options",
			question: models.Question{ID: "q1", Type: models.QuestionRadio, Label: "Pick", Options: []string{}},
			wantRule: RuleInvalidQuestion,
		},
		{
			name:     "rating missing bounds",
			question: models.Question{ID: "q1", Type: models.QuestionRating, Label: "Score"},
			wantRule: RuleInvalidQuestion,
		},
		{
			name:     "rating min above max",
			question: models.Question{ID: "q1", Type: models.QuestionRating, Label: "Score", MinRating: intPtr(5), MaxRating: intPtr(3)},
			wantRule: RuleInvalidQuestion,
		},
		{
			name:     "rating min equal to max",
			question: models.Question{ID: "q1", Type: models.QuestionRating, Label: "Score", MinRating: intPtr(3), MaxRating: intPtr(3)},
			wantRule: RuleInvalidQuestion,
		},
		{
			name:     "rating min below one",
			question: models.Question{ID: "q1", Type: models.QuestionRating, Label: "Score", MinRating: intPtr(0), MaxRating: intPtr(5)},
			wantRule: RuleInvalidQuestion,
		},
		{
			name:     "rating max above ten",
			question: models.Question{ID: "q1", Type: models.QuestionRating, Label: "Score", MinRating: intPtr(1), MaxRating: intPtr(11)},
			wantRule: RuleInvalidQuestion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateQuestion(tt.question)
			if tt.wantRule == "" {
				if len(errs) != 0 {
					t.Fatalf("expected no errors, got %v", errs)
				}
				return
			}
			if len(errs) == 0 {
				t.Fatalf("expected rule %s, got none", tt.wantRule)
			}
			if errs[0].Rule != tt.wantRule {
				t.Errorf("rule = %s, want %s", errs[0].Rule, tt.wantRule)
			}
		})
	}
}

func TestValidateQuestionSet(t *testing.T) {
	valid := func(id string) models.Question {
		return models.Question{ID: id, Type: models.QuestionText, Label: "Question " + id}
	}

	t.Run("empty set rejected", func(t *testing.T) {
		errs := ValidateQuestionSet(nil)
		if len(errs) != 1 || errs[0].Rule != RuleEmptyForm {
			t.Fatalf("expected empty_form, got %v", errs)
		}
	})

	t.Run("valid set passes", func(t *testing.T) {
		errs := ValidateQuestionSet([]models.Question{valid("q1"), valid("q2")})
		if len(errs) != 0 {
			t.Fatalf("expected no errors, got %v", errs)
		}
	})

	t.Run("missing id rejected", func(t *testing.T) {
		q := valid("")
		errs := ValidateQuestionSet([]models.Question{q})
		if len(errs) == 0 || errs[0].Rule != RuleInvalidQuestion {
			t.Fatalf("expected invalid_question, got %v", errs)
		}
	})

	t.Run("duplicate ids rejected", func(t *testing.T) {
		errs := ValidateQuestionSet([]models.Question{valid("q1"), valid("q1")})
		if len(errs) == 0 || errs[0].Rule != RuleDuplicateQuestion {
			t.Fatalf("expected duplicate_question_id, got %v", errs)
		}
	})

	t.Run("malformed question reports position", func(t *testing.T) {
		bad := models.Question{ID: "q2", Type: models.QuestionSelect, Label: "Pick"}
		errs := ValidateQuestionSet([]models.Question{valid("q1"), bad})
		if len(errs) == 0 {
			t.Fatal("expected errors")
		}
		if !strings.HasPrefix(errs[0].Field, "questions[1].") {
			t.Errorf("field = %s, want questions[1] prefix", errs[0].Field)
		}
	})
}
