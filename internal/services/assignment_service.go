package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mentorlink/feedback-service/internal/email"
	"github.com/mentorlink/feedback-service/internal/events"
	"github.com/mentorlink/feedback-service/internal/models"
	"github.com/mentorlink/feedback-service/internal/repositories"
	"github.com/mentorlink/feedback-service/internal/validator"
)

type assignmentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	email     email.EmailClient
}

func NewAssignmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher, emailClient email.EmailClient) AssignmentService {
	return &assignmentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		publisher: publisher,
		email:     emailClient,
	}
}

// Assign pairs a mentee and mentor for an event. The triple is idempotent: a
// repeated assignment returns the existing record with Created=false.
func (s *assignmentService) Assign(ctx context.Context, req *AssignRequest, callerID string) (*AssignmentResponse, error) {
	s.logger.Info("Assigning mentee to mentor",
		"event_id", req.EventID,
		"mentee_id", req.MenteeID,
		"mentor_id", req.MentorID,
		"caller_id", callerID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	event, err := s.requireOwnedEvent(ctx, req.EventID, callerID, "assign")
	if err != nil {
		return nil, err
	}

	mentee, mentor, err := s.resolvePair(ctx, req.MenteeID, req.MentorID)
	if err != nil {
		return nil, err
	}

	assignment := &models.MenteeAssignment{
		ID:         uuid.NewString(),
		MenteeID:   mentee.ID,
		MentorID:   mentor.ID,
		EventID:    event.ID,
		AssignedAt: time.Now().UTC(),
	}

	created, err := s.repo.Assignment().Upsert(ctx, nil, assignment)
	if err != nil {
		return nil, fmt.Errorf("failed to assign: %w", err)
	}

	if !created {
		existing, err := s.repo.Assignment().GetByTriple(ctx, nil, mentee.ID, mentor.ID, event.ID)
		if err != nil {
			return nil, fmt.Errorf("load existing assignment: %w", err)
		}
		return &AssignmentResponse{MenteeAssignment: existing, Created: false}, nil
	}

	s.notifyAssigned(ctx, assignment, mentee, mentor, event, callerID)

	s.logger.Info("Assignment created", "assignment_id", assignment.ID)
	return &AssignmentResponse{MenteeAssignment: assignment, Created: true}, nil
}

// BulkAssign resolves each email pair and assigns it, one row at a time. Rows
// succeed or fail independently; rows committed before a failure stand.
func (s *assignmentService) BulkAssign(ctx context.Context, req *BulkAssignRequest, callerID string) (*BulkAssignResult, error) {
	s.logger.Info("Bulk assigning",
		"event_id", req.EventID,
		"row_count", len(req.Assignments),
		"caller_id", callerID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	event, err := s.requireOwnedEvent(ctx, req.EventID, callerID, "bulk_assign")
	if err != nil {
		return nil, err
	}

	result := &BulkAssignResult{EventID: event.ID}
	for i, row := range req.Assignments {
		outcome := s.processBulkRow(ctx, event, row, callerID)
		outcome.Row = i + 1
		outcome.MenteeEmail = row.MenteeEmail
		outcome.MentorEmail = row.MentorEmail

		result.Results = append(result.Results, outcome)
		switch outcome.Outcome {
		case BulkOutcomeCreated:
			result.Created++
		case BulkOutcomeInvitedMentee, BulkOutcomeInvitedMentor:
			result.Invited++
		case BulkOutcomeError:
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", i+1, outcome.Error))
		}
	}

	s.logger.Info("Bulk assign finished",
		"event_id", event.ID,
		"created", result.Created,
		"invited", result.Invited,
		"errors", len(result.Errors))

	return result, nil
}

func (s *assignmentService) processBulkRow(ctx context.Context, event *models.Event, row BulkAssignRow, callerID string) BulkAssignRowResult {
	mentee, err := s.repo.User().GetByEmail(ctx, nil, row.MenteeEmail)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.invite(ctx, event, row.MenteeEmail, "mentee", callerID)
			return BulkAssignRowResult{Outcome: BulkOutcomeInvitedMentee}
		}
		return BulkAssignRowResult{Outcome: BulkOutcomeError, Error: err.Error()}
	}

	mentor, err := s.repo.User().GetByEmail(ctx, nil, row.MentorEmail)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.invite(ctx, event, row.MentorEmail, "mentor", callerID)
			return BulkAssignRowResult{Outcome: BulkOutcomeInvitedMentor}
		}
		return BulkAssignRowResult{Outcome: BulkOutcomeError, Error: err.Error()}
	}

	if !mentee.Roles.Has(models.RoleMentee) {
		return BulkAssignRowResult{Outcome: BulkOutcomeError, Error: fmt.Sprintf("%s does not hold the mentee role", row.MenteeEmail)}
	}
	if !mentor.Roles.Has(models.RoleMentor) {
		return BulkAssignRowResult{Outcome: BulkOutcomeError, Error: fmt.Sprintf("%s does not hold the mentor role", row.MentorEmail)}
	}

	assignment := &models.MenteeAssignment{
		ID:         uuid.NewString(),
		MenteeID:   mentee.ID,
		MentorID:   mentor.ID,
		EventID:    event.ID,
		AssignedAt: time.Now().UTC(),
	}

	created, err := s.repo.Assignment().Upsert(ctx, nil, assignment)
	if err != nil {
		return BulkAssignRowResult{Outcome: BulkOutcomeError, Error: err.Error()}
	}
	if created {
		s.notifyAssigned(ctx, assignment, mentee, mentor, event, callerID)
	}

	return BulkAssignRowResult{Outcome: BulkOutcomeCreated}
}

func (s *assignmentService) ListForEvent(ctx context.Context, eventID string, filters repositories.AssignmentFilters, callerID string) (*AssignmentListResponse, error) {
	if _, err := s.requireOwnedEvent(ctx, eventID, callerID, "list_assignments"); err != nil {
		return nil, err
	}

	filters.EventID = &eventID
	return s.list(ctx, filters)
}

func (s *assignmentService) ListForMentor(ctx context.Context, mentorID string, filters repositories.AssignmentFilters) (*AssignmentListResponse, error) {
	filters.MentorID = &mentorID
	return s.list(ctx, filters)
}

func (s *assignmentService) Remove(ctx context.Context, assignmentID string, callerID string) error {
	s.logger.Info("Removing assignment", "assignment_id", assignmentID, "caller_id", callerID)

	assignment, err := s.repo.Assignment().GetByID(ctx, nil, assignmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssignmentNotFound
		}
		return err
	}

	if _, err := s.requireOwnedEvent(ctx, assignment.EventID, callerID, "remove_assignment"); err != nil {
		return err
	}

	if err := s.repo.Assignment().Delete(ctx, nil, assignmentID); err != nil {
		return fmt.Errorf("failed to remove assignment: %w", err)
	}

	s.logger.Info("Assignment removed", "assignment_id", assignmentID)
	return nil
}

func (s *assignmentService) SearchUsers(ctx context.Context, query string, limit int) ([]*models.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.repo.User().Search(ctx, nil, query, limit)
}

func (s *assignmentService) CheckUserByEmail(ctx context.Context, emailAddr string) (*models.User, error) {
	user, err := s.repo.User().GetByEmail(ctx, nil, emailAddr)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ===== HELPERS =====

func (s *assignmentService) requireOwnedEvent(ctx context.Context, eventID, callerID, action string) (*models.Event, error) {
	event, err := s.repo.Event().GetByID(ctx, nil, eventID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	caller, err := requireUser(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !canActOn(caller, event.OrganizerID) {
		return nil, NewPermissionError(callerID, eventID, "event", action, "not organizer")
	}
	return event, nil
}

func (s *assignmentService) resolvePair(ctx context.Context, menteeID, mentorID string) (*models.User, *models.User, error) {
	mentee, err := s.repo.User().GetByID(ctx, nil, menteeID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	mentor, err := s.repo.User().GetByID(ctx, nil, mentorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	if !mentee.Roles.Has(models.RoleMentee) {
		return nil, nil, fmt.Errorf("%w: %s is not a mentee", ErrRoleMismatch, mentee.Email)
	}
	if !mentor.Roles.Has(models.RoleMentor) {
		return nil, nil, fmt.Errorf("%w: %s is not a mentor", ErrRoleMismatch, mentor.Email)
	}
	return mentee, mentor, nil
}

func (s *assignmentService) list(ctx context.Context, filters repositories.AssignmentFilters) (*AssignmentListResponse, error) {
	assignments, total, err := s.repo.Assignment().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return &AssignmentListResponse{
		Assignments: assignments,
		Total:       total,
		Page:        pageFromOffset(filters.Offset, filters.Limit),
		Size:        filters.Limit,
	}, nil
}

// notifyAssigned publishes the created event and emails both sides. All of it
// is best-effort; the assignment stands either way.
func (s *assignmentService) notifyAssigned(ctx context.Context, assignment *models.MenteeAssignment, mentee, mentor *models.User, event *models.Event, callerID string) {
	if err := s.publisher.Publish(ctx, events.TopicAssignmentCreated, events.AssignmentCreatedEvent{
		AssignmentID: assignment.ID,
		EventID:      event.ID,
		MenteeID:     mentee.ID,
		MentorID:     mentor.ID,
		AssignedBy:   callerID,
	}); err != nil {
		s.logger.Warn("Failed to publish assignment event",
			"assignment_id", assignment.ID,
			"error", err)
	}

	s.email.SendAssignmentNotificationEmail(mentee, "mentee", event.Name)
	s.email.SendAssignmentNotificationEmail(mentor, "mentor", event.Name)
}

// invite handles a bulk row email with no account behind it. The original
// kept no pending-invite record; the email plus the published event is all.
func (s *assignmentService) invite(ctx context.Context, event *models.Event, emailAddr, invitedAs, callerID string) {
	if err := s.publisher.Publish(ctx, events.TopicAssignmentInvited, events.AssignmentInvitedEvent{
		EventID:      event.ID,
		InvitedEmail: emailAddr,
		InvitedAs:    invitedAs,
		InvitedBy:    callerID,
	}); err != nil {
		s.logger.Warn("Failed to publish invitation event",
			"event_id", event.ID,
			"error", err)
	}

	s.email.SendAssignmentInvitationEmail(emailAddr, invitedAs, event.Name)
}
