package events

import (
	"time"
)

// Event topics
const (
	TopicFeedbackSubmitted = "feedback.submitted"
	TopicAssignmentCreated = "assignment.created"
	TopicAssignmentInvited = "assignment.invited"
)

// Event is the envelope every published message shares.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// FeedbackSubmittedEvent fires on every submission write, including
// overwrites of an earlier submission.
type FeedbackSubmittedEvent struct {
	SubmissionID string    `json:"submission_id"`
	EventID      string    `json:"event_id"`
	FormID       string    `json:"form_id"`
	MenteeID     string    `json:"mentee_id"`
	MentorID     string    `json:"mentor_id"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// AssignmentCreatedEvent fires when an assignment triple is first created.
// Idempotent re-assigns do not publish.
type AssignmentCreatedEvent struct {
	AssignmentID string `json:"assignment_id"`
	EventID      string `json:"event_id"`
	MenteeID     string `json:"mentee_id"`
	MentorID     string `json:"mentor_id"`
	AssignedBy   string `json:"assigned_by"`
}

// AssignmentInvitedEvent fires when a bulk-assign row referenced an email
// with no account yet.
type AssignmentInvitedEvent struct {
	EventID      string `json:"event_id"`
	InvitedEmail string `json:"invited_email"`
	InvitedAs    string `json:"invited_as"` // "mentee" or "mentor"
	InvitedBy    string `json:"invited_by"`
}
