package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mentorlink/feedback-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type FormFilters struct {
	CreatedBy *string    `json:"created_by"`
	Query     string     `json:"query"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "created_at", "name"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

type EventFilters struct {
	OrganizerID    *string    `json:"organizer_id"`
	FeedbackFormID *string    `json:"feedback_form_id"`
	Query          string     `json:"query"`
	StartsAfter    *time.Time `json:"starts_after"`
	EndsBefore     *time.Time `json:"ends_before"`
	Limit          int        `json:"limit"`
	Offset         int        `json:"offset"`
	SortBy         string     `json:"sort_by"`
	SortOrder      string     `json:"sort_order"`
}

type AssignmentFilters struct {
	EventID  *string `json:"event_id"`
	MenteeID *string `json:"mentee_id"`
	MentorID *string `json:"mentor_id"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
}

type SubmissionFilters struct {
	EventID  *string    `json:"event_id"`
	MenteeID *string    `json:"mentee_id"`
	MentorID *string    `json:"mentor_id"`
	FormID   *string    `json:"form_id"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

// AssignmentStatus is one row of an event's submission-rate report.
type AssignmentStatus struct {
	AssignmentID   string     `json:"assignment_id"`
	MenteeID       string     `json:"mentee_id"`
	MenteeName     string     `json:"mentee_name"`
	MenteeEmail    string     `json:"mentee_email"`
	MentorID       string     `json:"mentor_id"`
	MentorName     string     `json:"mentor_name"`
	MentorEmail    string     `json:"mentor_email"`
	Submitted      bool       `json:"submitted"`
	SubmissionDate *time.Time `json:"submission_date"`
}

type MentorBreakdown struct {
	MentorID    string  `json:"mentor_id"`
	MentorName  string  `json:"mentor_name"`
	MentorEmail string  `json:"mentor_email"`
	Assigned    int     `json:"assigned"`
	Submitted   int     `json:"submitted"`
	Rate        float64 `json:"rate"`
}

type SubmissionRateReport struct {
	EventID          string             `json:"event_id"`
	EventName        string             `json:"event_name"`
	TotalAssignments int                `json:"total_assignments"`
	TotalSubmissions int                `json:"total_submissions"`
	Rate             float64            `json:"rate"`
	Assignments      []AssignmentStatus `json:"assignments"`
	Mentors          []MentorBreakdown  `json:"mentors"`
}

// ===== REPOSITORY INTERFACES =====

type FormRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, form *models.FeedbackForm) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.FeedbackForm, error)
	GetByIDWithCounts(ctx context.Context, tx *gorm.DB, id string) (*models.FeedbackForm, error)
	Update(ctx context.Context, tx *gorm.DB, form *models.FeedbackForm) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters FormFilters) ([]*models.FeedbackForm, int64, error)

	// Usage checks backing the lock rules
	CountEvents(ctx context.Context, tx *gorm.DB, formID string) (int64, error)
	CountSubmissions(ctx context.Context, tx *gorm.DB, formID string) (int64, error)
	ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error)
}

type EventRepository interface {
	Create(ctx context.Context, tx *gorm.DB, event *models.Event) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Event, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id string) (*models.Event, error)
	Update(ctx context.Context, tx *gorm.DB, event *models.Event) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	List(ctx context.Context, tx *gorm.DB, filters EventFilters) ([]*models.Event, int64, error)
	ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error)
}

type AssignmentRepository interface {
	// Upsert creates the assignment or leaves an identical triple untouched.
	// Returns false when the triple already existed.
	Upsert(ctx context.Context, tx *gorm.DB, assignment *models.MenteeAssignment) (bool, error)
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.MenteeAssignment, error)
	GetByTriple(ctx context.Context, tx *gorm.DB, menteeID, mentorID, eventID string) (*models.MenteeAssignment, error)
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	List(ctx context.Context, tx *gorm.DB, filters AssignmentFilters) ([]*models.MenteeAssignment, int64, error)
	ExistsTriple(ctx context.Context, tx *gorm.DB, menteeID, mentorID, eventID string) (bool, error)
	CountByEvent(ctx context.Context, tx *gorm.DB, eventID string) (int64, error)
}

type SubmissionRepository interface {
	// Upsert inserts or overwrites the submission for its triple, refreshing
	// answers and submission date.
	Upsert(ctx context.Context, tx *gorm.DB, submission *models.FeedbackSubmission) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.FeedbackSubmission, error)
	GetByTriple(ctx context.Context, tx *gorm.DB, menteeID, mentorID, eventID string) (*models.FeedbackSubmission, error)
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	List(ctx context.Context, tx *gorm.DB, filters SubmissionFilters) ([]*models.FeedbackSubmission, int64, error)
	CountByEvent(ctx context.Context, tx *gorm.DB, eventID string) (int64, error)
}

type ReportRepository interface {
	// SubmissionRate builds the event's full rate report from assignments
	// joined with submissions and user records.
	SubmissionRate(ctx context.Context, tx *gorm.DB, eventID string) (*SubmissionRateReport, error)
}
