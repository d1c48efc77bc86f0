package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AnswerMap maps question id to the submitted answer value. Values are stored
// verbatim; the answer validation engine checks them before persistence but
// never normalizes or filters them.
type AnswerMap map[string]interface{}

func (am AnswerMap) Value() (driver.Value, error) {
	if am == nil {
		am = AnswerMap{}
	}
	return json.Marshal(am)
}

func (am *AnswerMap) Scan(value interface{}) error {
	if value == nil {
		*am = AnswerMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, am)
	case string:
		return json.Unmarshal([]byte(v), am)
	default:
		return fmt.Errorf("unsupported answer map source type %T", value)
	}
}

// FeedbackSubmission holds the current feedback a mentor has recorded for one
// assignment. Keyed by the same triple as MenteeAssignment; resubmitting
// replaces the answers and refreshes SubmissionDate, there is no history.
type FeedbackSubmission struct {
	ID       string `json:"id" gorm:"primaryKey;size:255"`
	MenteeID string `json:"mentee_id" gorm:"not null;size:255;uniqueIndex:idx_submission_triple,priority:1"`
	MentorID string `json:"mentor_id" gorm:"not null;index;size:255;uniqueIndex:idx_submission_triple,priority:2"`
	EventID  string `json:"event_id" gorm:"not null;index;size:255;uniqueIndex:idx_submission_triple,priority:3"`

	// Copied from the event at submission time so the submission stays
	// interpretable even if unrelated event wiring changes.
	FeedbackFormID string `json:"feedback_form_id" gorm:"not null;index;size:255"`

	Answers        AnswerMap `json:"answers" gorm:"type:jsonb;not null"`
	SubmissionDate time.Time `json:"submission_date" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Mentee       *User         `json:"mentee,omitempty" gorm:"foreignKey:MenteeID"`
	Mentor       *User         `json:"mentor,omitempty" gorm:"foreignKey:MentorID"`
	Event        *Event        `json:"event,omitempty" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	FeedbackForm *FeedbackForm `json:"feedback_form,omitempty" gorm:"foreignKey:FeedbackFormID"`
}

func (FeedbackSubmission) TableName() string {
	return "feedback_submissions"
}
