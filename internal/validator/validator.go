package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/mentorlink/feedback-service/internal/models"
)

// Rule codes carried on ValidationError so handlers and clients can route a
// failure to the offending form input.
const (
	RuleInvalidQuestion    = "invalid_question"
	RuleDuplicateQuestion  = "duplicate_question_id"
	RuleEmptyForm          = "empty_form"
	RuleRequiredAnswer     = "missing_required_answer"
	RuleInvalidRating      = "invalid_rating_value"
	RuleInvalidOption      = "invalid_option_value"
	RuleInvalidDateRange   = "invalid_date_range"
	RuleStructValidation   = "struct"
)

// ValidationError names a single offending field or question.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// ToValidationErrors converts go-playground struct errors to the shared shape.
func ToValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "request", Message: err.Error(), Rule: RuleStructValidation}}
	}
	var errs ValidationErrors
	for _, fe := range fieldErrs {
		errs = append(errs, ValidationError{
			Field:   fe.Field(),
			Message: messageForTag(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return errs
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "uuid":
		return "must be a valid id"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// Validator wraps struct-tag validation and the form/answer engines behind one
// dependency the services share.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := &Validator{validate: validator.New()}
	v.registerRules()
	return v
}

// Validate runs struct-tag validation and returns the shared error shape.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (v *Validator) registerRules() {
	v.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		return models.QuestionType(fl.Field().String()).Valid()
	})

	v.validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	})

	v.validate.RegisterValidation("user_status", func(fl validator.FieldLevel) bool {
		return models.UserStatus(fl.Field().String()).Valid()
	})
}
