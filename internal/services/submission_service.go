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

type submissionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	email     email.EmailClient
}

func NewSubmissionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher, emailClient email.EmailClient) SubmissionService {
	return &submissionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		publisher: publisher,
		email:     emailClient,
	}
}

// Submit records the mentor's feedback for an assigned mentee. Answers are
// validated against the event's form and stored verbatim. Resubmitting the
// same triple replaces the previous answers.
func (s *submissionService) Submit(ctx context.Context, req *SubmitFeedbackRequest, mentorID string) (*SubmissionResponse, error) {
	s.logger.Info("Submitting feedback",
		"event_id", req.EventID,
		"mentee_id", req.MenteeID,
		"mentor_id", mentorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	event, err := s.repo.Event().GetByID(ctx, nil, req.EventID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	assigned, err := s.repo.Assignment().ExistsTriple(ctx, nil, req.MenteeID, mentorID, event.ID)
	if err != nil {
		return nil, fmt.Errorf("check assignment: %w", err)
	}
	if !assigned {
		return nil, ErrNotAssigned
	}

	form, err := s.repo.Form().GetByID(ctx, nil, event.FeedbackFormID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}
	questions, err := form.QuestionList()
	if err != nil {
		return nil, fmt.Errorf("decode form questions: %w", err)
	}

	if errs := validator.ValidateAnswers(questions, req.Answers); len(errs) > 0 {
		return nil, errs
	}

	submission := &models.FeedbackSubmission{
		ID:             uuid.NewString(),
		MenteeID:       req.MenteeID,
		MentorID:       mentorID,
		EventID:        event.ID,
		FeedbackFormID: event.FeedbackFormID,
		Answers:        req.Answers,
		SubmissionDate: time.Now().UTC(),
	}

	if err := s.repo.Submission().Upsert(ctx, nil, submission); err != nil {
		return nil, fmt.Errorf("failed to store submission: %w", err)
	}

	s.notifySubmitted(ctx, submission, event)

	s.logger.Info("Feedback stored", "submission_id", submission.ID)
	return &SubmissionResponse{FeedbackSubmission: submission}, nil
}

// GetByID returns a submission to its mentor, its mentee, or an admin.
func (s *submissionService) GetByID(ctx context.Context, id string, callerID string) (*SubmissionResponse, error) {
	submission, err := s.repo.Submission().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	caller, err := requireUser(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if callerID != submission.MenteeID && callerID != submission.MentorID && !caller.IsAdmin() {
		return nil, NewPermissionError(callerID, id, "submission", "read", "not a participant")
	}

	return &SubmissionResponse{FeedbackSubmission: submission}, nil
}

func (s *submissionService) ListForMentee(ctx context.Context, menteeID string, filters repositories.SubmissionFilters) (*SubmissionListResponse, error) {
	filters.MenteeID = &menteeID
	return s.list(ctx, filters)
}

func (s *submissionService) ListForMentor(ctx context.Context, mentorID string, filters repositories.SubmissionFilters) (*SubmissionListResponse, error) {
	filters.MentorID = &mentorID
	return s.list(ctx, filters)
}

func (s *submissionService) list(ctx context.Context, filters repositories.SubmissionFilters) (*SubmissionListResponse, error) {
	submissions, total, err := s.repo.Submission().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return &SubmissionListResponse{
		Submissions: submissions,
		Total:       total,
		Page:        pageFromOffset(filters.Offset, filters.Limit),
		Size:        filters.Limit,
	}, nil
}

// notifySubmitted publishes the submitted event and mails the mentee. Both
// are best-effort; a stored submission is never rolled back over them.
func (s *submissionService) notifySubmitted(ctx context.Context, submission *models.FeedbackSubmission, event *models.Event) {
	if err := s.publisher.Publish(ctx, events.TopicFeedbackSubmitted, events.FeedbackSubmittedEvent{
		SubmissionID: submission.ID,
		EventID:      event.ID,
		FormID:       submission.FeedbackFormID,
		MenteeID:     submission.MenteeID,
		MentorID:     submission.MentorID,
		SubmittedAt:  submission.SubmissionDate,
	}); err != nil {
		s.logger.Warn("Failed to publish submission event",
			"submission_id", submission.ID,
			"error", err)
	}

	mentee, err := s.repo.User().GetByID(ctx, nil, submission.MenteeID)
	if err != nil {
		s.logger.Warn("Skipping feedback email, mentee lookup failed",
			"mentee_id", submission.MenteeID,
			"error", err)
		return
	}
	mentorName := submission.MentorID
	if mentor, err := s.repo.User().GetByID(ctx, nil, submission.MentorID); err == nil && mentor.Name != nil {
		mentorName = *mentor.Name
	}
	s.email.SendFeedbackReceivedEmail(mentee, mentorName, event.Name)
}
