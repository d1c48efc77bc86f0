package services

import (
	"context"
	"io"

	"github.com/mentorlink/feedback-service/internal/models"
	"github.com/mentorlink/feedback-service/internal/repositories"
	"github.com/mentorlink/feedback-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Request types live with the validation tags
type CreateFormRequest = validator.FormCreateRequest
type UpdateFormRequest = validator.FormUpdateRequest
type ExtractQuestionsRequest = validator.ExtractQuestionsRequest
type CreateEventRequest = validator.EventCreateRequest
type UpdateEventRequest = validator.EventUpdateRequest
type AssignRequest = validator.AssignRequest
type BulkAssignRequest = validator.BulkAssignRequest
type BulkAssignRow = validator.BulkAssignRow
type SubmitFeedbackRequest = validator.SubmitFeedbackRequest
type UpdateProfileRequest = validator.UpdateProfileRequest
type UpdateRolesRequest = validator.UpdateRolesRequest
type UpdateStatusRequest = validator.UpdateStatusRequest

type FormResponse struct {
	*models.FeedbackForm
	QuestionList []models.Question `json:"question_list"`
	CanEdit      bool              `json:"can_edit"`
	CanDelete    bool              `json:"can_delete"`
}

type FormListResponse struct {
	Forms []*FormResponse `json:"forms"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

type EventResponse struct {
	*models.Event
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type EventListResponse struct {
	Events []*EventResponse `json:"events"`
	Total  int64            `json:"total"`
	Page   int              `json:"page"`
	Size   int              `json:"size"`
}

type AssignmentResponse struct {
	*models.MenteeAssignment
	Created bool `json:"created"`
}

type AssignmentListResponse struct {
	Assignments []*models.MenteeAssignment `json:"assignments"`
	Total       int64                      `json:"total"`
	Page        int                        `json:"page"`
	Size        int                        `json:"size"`
}

// Bulk assign row outcomes
const (
	BulkOutcomeCreated       = "created"
	BulkOutcomeInvitedMentee = "invited_mentee"
	BulkOutcomeInvitedMentor = "invited_mentor"
	BulkOutcomeError         = "error"
)

type BulkAssignRowResult struct {
	Row         int    `json:"row"`
	MenteeEmail string `json:"mentee_email"`
	MentorEmail string `json:"mentor_email"`
	Outcome     string `json:"outcome"`
	Error       string `json:"error,omitempty"`
}

type BulkAssignResult struct {
	EventID string                `json:"event_id"`
	Results []BulkAssignRowResult `json:"results"`
	Created int                   `json:"created"`
	Invited int                   `json:"invited"`
	Errors  []string              `json:"errors"`
}

type SubmissionResponse struct {
	*models.FeedbackSubmission
}

type SubmissionListResponse struct {
	Submissions []*models.FeedbackSubmission `json:"submissions"`
	Total       int64                        `json:"total"`
	Page        int                          `json:"page"`
	Size        int                          `json:"size"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// ===== SERVICE INTERFACES =====

type FormService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateFormRequest, creatorID string) (*FormResponse, error)
	GetByID(ctx context.Context, id string, userID string) (*FormResponse, error)
	Update(ctx context.Context, id string, req *UpdateFormRequest, userID string) (*FormResponse, error)
	Delete(ctx context.Context, id string, userID string) error

	// List operations
	List(ctx context.Context, filters repositories.FormFilters, userID string) (*FormListResponse, error)

	// OCR extraction; returns candidate questions, does not persist anything
	ExtractFromImage(ctx context.Context, req *ExtractQuestionsRequest, userID string) ([]models.Question, error)
}

type EventService interface {
	Create(ctx context.Context, req *CreateEventRequest, organizerID string) (*EventResponse, error)
	GetByID(ctx context.Context, id string, userID string) (*EventResponse, error)
	Update(ctx context.Context, id string, req *UpdateEventRequest, userID string) (*EventResponse, error)
	Delete(ctx context.Context, id string, userID string) error

	List(ctx context.Context, filters repositories.EventFilters, userID string) (*EventListResponse, error)
}

type AssignmentService interface {
	// Assign pairs a mentee and mentor for an event, idempotently
	Assign(ctx context.Context, req *AssignRequest, callerID string) (*AssignmentResponse, error)

	// BulkAssign processes many email pairs; rows fail independently
	BulkAssign(ctx context.Context, req *BulkAssignRequest, callerID string) (*BulkAssignResult, error)

	ListForEvent(ctx context.Context, eventID string, filters repositories.AssignmentFilters, callerID string) (*AssignmentListResponse, error)
	ListForMentor(ctx context.Context, mentorID string, filters repositories.AssignmentFilters) (*AssignmentListResponse, error)
	Remove(ctx context.Context, assignmentID string, callerID string) error

	// Organizer helpers for building assignment rosters
	SearchUsers(ctx context.Context, query string, limit int) ([]*models.User, error)
	CheckUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type SubmissionService interface {
	// Submit validates answers against the event's form and upserts by triple
	Submit(ctx context.Context, req *SubmitFeedbackRequest, mentorID string) (*SubmissionResponse, error)

	GetByID(ctx context.Context, id string, callerID string) (*SubmissionResponse, error)
	ListForMentee(ctx context.Context, menteeID string, filters repositories.SubmissionFilters) (*SubmissionListResponse, error)
	ListForMentor(ctx context.Context, mentorID string, filters repositories.SubmissionFilters) (*SubmissionListResponse, error)
}

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.User, error)

	// Admin operations
	ListUsers(ctx context.Context, filters repositories.UserFilters, callerID string) (*UserListResponse, error)
	UpdateRoles(ctx context.Context, targetID string, req *UpdateRolesRequest, callerID string) (*models.User, error)
	UpdateStatus(ctx context.Context, targetID string, req *UpdateStatusRequest, callerID string) (*models.User, error)

	// Provision creates the local user row on first sign-in
	Provision(ctx context.Context, id, email string, name *string) (*models.User, error)
}

type ReportService interface {
	SubmissionRates(ctx context.Context, eventID string, callerID string) (*repositories.SubmissionRateReport, error)
}

type ImportExportService interface {
	// ImportAssignments parses an xlsx roster and bulk-assigns its rows
	ImportAssignments(ctx context.Context, eventID string, workbook io.Reader, callerID string) (*BulkAssignResult, error)

	// ExportSubmissionRates renders the event's rate report as an xlsx workbook
	ExportSubmissionRates(ctx context.Context, eventID string, callerID string) ([]byte, string, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Form() FormService
	Event() EventService
	Assignment() AssignmentService
	Submission() SubmissionService
	User() UserService
	Report() ReportService
	ImportExport() ImportExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
