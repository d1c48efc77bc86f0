package models

import "time"

type Event struct {
	ID          string  `json:"id" gorm:"primaryKey;size:255"`
	Name        string  `json:"name" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"size:1000"`

	StartDate time.Time `json:"start_date" gorm:"not null"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`

	OrganizerID string `json:"organizer_id" gorm:"not null;index;size:255"`

	// Bound once at creation; never updated afterwards so every submission
	// made during the event answers the same form version.
	FeedbackFormID string `json:"feedback_form_id" gorm:"not null;index;size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Organizer    *User         `json:"organizer,omitempty" gorm:"foreignKey:OrganizerID"`
	FeedbackForm *FeedbackForm `json:"feedback_form,omitempty" gorm:"foreignKey:FeedbackFormID"`

	// Computed
	AssignmentCount int64 `json:"assignment_count" gorm:"-"`
	SubmissionCount int64 `json:"submission_count" gorm:"-"`
}

func (Event) TableName() string {
	return "events"
}
