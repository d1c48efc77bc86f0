package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionTextarea QuestionType = "textarea"
	QuestionSelect   QuestionType = "select"
	QuestionRadio    QuestionType = "radio"
	QuestionRating   QuestionType = "rating"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionText, QuestionTextarea, QuestionSelect, QuestionRadio, QuestionRating:
		return true
	}
	return false
}

// HasOptions reports whether answers to this question type must come from a
// fixed option list.
func (t QuestionType) HasOptions() bool {
	return t == QuestionSelect || t == QuestionRadio
}

const (
	QuestionLabelMaxLen = 500
	RatingMax           = 10
)

// Question is a single entry in a form definition. Only the fields legal for
// its type are populated: Options for select/radio, MinRating/MaxRating for
// rating. Questions live inside the form's JSONB column, not in their own
// table, so a submission is always interpreted against the exact question set
// it was answered under.
type Question struct {
	ID       string       `json:"id"`
	Type     QuestionType `json:"type"`
	Label    string       `json:"label"`
	Required bool         `json:"required"`

	// select/radio only
	Options []string `json:"options,omitempty"`

	// rating only
	MinRating *int `json:"minRating,omitempty"`
	MaxRating *int `json:"maxRating,omitempty"`
}

type FeedbackForm struct {
	ID          string  `json:"id" gorm:"primaryKey;size:255"`
	Name        string  `json:"name" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"size:1000"`

	// Ordered question list as JSONB ([]Question).
	Questions datatypes.JSON `json:"questions" gorm:"type:jsonb;not null"`

	CreatedBy string    `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Creator *User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`

	// Computed
	EventCount      int64 `json:"event_count" gorm:"-"`
	SubmissionCount int64 `json:"submission_count" gorm:"-"`
}

func (FeedbackForm) TableName() string {
	return "feedback_forms"
}

// QuestionList decodes the JSONB question column in definition order.
func (f *FeedbackForm) QuestionList() ([]Question, error) {
	if len(f.Questions) == 0 {
		return nil, nil
	}
	var questions []Question
	if err := json.Unmarshal(f.Questions, &questions); err != nil {
		return nil, fmt.Errorf("malformed question list on form %s: %w", f.ID, err)
	}
	return questions, nil
}

// SetQuestionList encodes an already-validated question list into the JSONB
// column.
func (f *FeedbackForm) SetQuestionList(questions []Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}
	f.Questions = data
	return nil
}
