package validator

import (
	"time"

	"github.com/mentorlink/feedback-service/internal/models"
)

// QuestionRequest mirrors models.Question on the wire. Shape checks live in
// struct tags; the type-conditional rules live in ValidateQuestion.
type QuestionRequest struct {
	ID       string   `json:"id"`
	Type     string   `json:"type" validate:"required,question_type"`
	Label    string   `json:"label" validate:"required,max=500"`
	Required bool     `json:"required"`
	Options  []string `json:"options" validate:"omitempty,dive,max=200"`

	MinRating *int `json:"minRating"`
	MaxRating *int `json:"maxRating"`
}

func (q QuestionRequest) Model() models.Question {
	return models.Question{
		ID:        q.ID,
		Type:      models.QuestionType(q.Type),
		Label:     q.Label,
		Required:  q.Required,
		Options:   q.Options,
		MinRating: q.MinRating,
		MaxRating: q.MaxRating,
	}
}

// QuestionModels converts a request question list preserving order.
func QuestionModels(reqs []QuestionRequest) []models.Question {
	questions := make([]models.Question, len(reqs))
	for i, r := range reqs {
		questions[i] = r.Model()
	}
	return questions
}

// FormCreateRequest creates a feedback form.
type FormCreateRequest struct {
	Name        string            `json:"name" validate:"required,min=1,max=200"`
	Description *string           `json:"description" validate:"omitempty,max=1000"`
	Questions   []QuestionRequest `json:"questions" validate:"required"`
}

// FormUpdateRequest edits a feedback form. Nil fields are left untouched.
type FormUpdateRequest struct {
	Name        *string           `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string           `json:"description" validate:"omitempty,max=1000"`
	Questions   []QuestionRequest `json:"questions"`
}

// ExtractQuestionsRequest carries a base64 form image for OCR extraction.
type ExtractQuestionsRequest struct {
	ImageData string `json:"image_data" validate:"required"`
}

// EventCreateRequest creates an event bound to a feedback form.
type EventCreateRequest struct {
	Name           string    `json:"name" validate:"required,min=1,max=200"`
	Description    *string   `json:"description" validate:"omitempty,max=1000"`
	StartDate      time.Time `json:"start_date" validate:"required"`
	EndDate        time.Time `json:"end_date" validate:"required"`
	FeedbackFormID string    `json:"feedback_form_id" validate:"required"`
}

// EventUpdateRequest edits an event. The form binding is intentionally not
// updatable.
type EventUpdateRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// AssignRequest creates one mentee/mentor assignment for an event.
type AssignRequest struct {
	MenteeID string `json:"mentee_id" validate:"required"`
	MentorID string `json:"mentor_id" validate:"required"`
	EventID  string `json:"event_id" validate:"required"`
}

// BulkAssignRow pairs a mentee with a mentor by email.
type BulkAssignRow struct {
	MenteeEmail string `json:"mentee_email" validate:"required,email"`
	MentorEmail string `json:"mentor_email" validate:"required,email"`
}

// BulkAssignRequest assigns many pairs at once; rows resolve users by email
// and succeed or fail independently.
type BulkAssignRequest struct {
	EventID     string          `json:"event_id" validate:"required"`
	Assignments []BulkAssignRow `json:"assignments" validate:"required,min=1,dive"`
}

// SubmitFeedbackRequest records a mentor's answers for one assignment.
type SubmitFeedbackRequest struct {
	MenteeID string           `json:"mentee_id" validate:"required"`
	EventID  string           `json:"event_id" validate:"required"`
	Answers  models.AnswerMap `json:"answers" validate:"required"`
}

// UpdateProfileRequest edits the caller's own profile.
type UpdateProfileRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	CompanyName *string `json:"company_name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// UpdateRolesRequest replaces a user's role set (admin only).
type UpdateRolesRequest struct {
	Roles []string `json:"roles" validate:"required,dive,role"`
}

// UpdateStatusRequest changes a user's status (admin only).
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,user_status"`
}
