package models

import "time"

// MenteeAssignment authorizes one mentor to submit feedback about one mentee
// for one event. The (mentee, mentor, event) triple is the natural key; a
// mentee may have several mentors in the same event and vice versa, but the
// exact triple is unique.
type MenteeAssignment struct {
	ID       string `json:"id" gorm:"primaryKey;size:255"`
	MenteeID string `json:"mentee_id" gorm:"not null;size:255;uniqueIndex:idx_assignment_triple,priority:1"`
	MentorID string `json:"mentor_id" gorm:"not null;index;size:255;uniqueIndex:idx_assignment_triple,priority:2"`
	EventID  string `json:"event_id" gorm:"not null;index;size:255;uniqueIndex:idx_assignment_triple,priority:3"`

	AssignedAt time.Time `json:"assigned_at"`

	// Relations
	Mentee *User  `json:"mentee,omitempty" gorm:"foreignKey:MenteeID"`
	Mentor *User  `json:"mentor,omitempty" gorm:"foreignKey:MentorID"`
	Event  *Event `json:"event,omitempty" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
}

func (MenteeAssignment) TableName() string {
	return "mentee_assignments"
}
