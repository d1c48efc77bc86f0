package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mentorlink/feedback-service/internal/models"
	"github.com/mentorlink/feedback-service/internal/repositories"
	"github.com/mentorlink/feedback-service/internal/validator"
)

type eventService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewEventService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator) EventService {
	return &eventService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
	}
}

func (s *eventService) Create(ctx context.Context, req *CreateEventRequest, organizerID string) (*EventResponse, error) {
	s.logger.Info("Creating event", "organizer_id", organizerID, "name", req.Name)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, validator.ValidationErrors{{
			Field:   "end_date",
			Message: "end date must not be before start date",
			Rule:    validator.RuleInvalidDateRange,
		}}
	}

	exists, err := s.repo.Form().ExistsByID(ctx, nil, req.FeedbackFormID)
	if err != nil {
		return nil, fmt.Errorf("check feedback form: %w", err)
	}
	if !exists {
		return nil, ErrFormNotFound
	}

	event := &models.Event{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Description:    req.Description,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		OrganizerID:    organizerID,
		FeedbackFormID: req.FeedbackFormID,
	}

	if err := s.repo.Event().Create(ctx, nil, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.logger.Info("Event created", "event_id", event.ID)

	return s.GetByID(ctx, event.ID, organizerID)
}

func (s *eventService) GetByID(ctx context.Context, id string, userID string) (*EventResponse, error) {
	event, err := s.repo.Event().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	user, err := requireUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	owned := canActOn(user, event.OrganizerID)
	return &EventResponse{
		Event:     event,
		CanEdit:   owned,
		CanDelete: owned,
	}, nil
}

// Update edits name, description and dates. The form binding never changes
// after create; submissions are validated against it.
func (s *eventService) Update(ctx context.Context, id string, req *UpdateEventRequest, userID string) (*EventResponse, error) {
	s.logger.Info("Updating event", "event_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	event, err := s.repo.Event().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	user, err := requireUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if !canActOn(user, event.OrganizerID) {
		return nil, NewPermissionError(userID, id, "event", "update", "not organizer")
	}

	if req.Name != nil {
		event.Name = *req.Name
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.StartDate != nil {
		event.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		event.EndDate = *req.EndDate
	}

	// Range check runs over the merged dates, so moving just one bound
	// cannot cross the other.
	if event.EndDate.Before(event.StartDate) {
		return nil, validator.ValidationErrors{{
			Field:   "end_date",
			Message: "end date must not be before start date",
			Rule:    validator.RuleInvalidDateRange,
		}}
	}

	if err := s.repo.Event().Update(ctx, nil, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.logger.Info("Event updated", "event_id", id)

	return s.GetByID(ctx, id, userID)
}

func (s *eventService) Delete(ctx context.Context, id string, userID string) error {
	s.logger.Info("Deleting event", "event_id", id, "user_id", userID)

	event, err := s.repo.Event().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrEventNotFound
		}
		return err
	}

	user, err := requireUser(ctx, s.repo, userID)
	if err != nil {
		return err
	}
	if !canActOn(user, event.OrganizerID) {
		return NewPermissionError(userID, id, "event", "delete", "not organizer")
	}

	if err := s.repo.Event().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	s.logger.Info("Event deleted", "event_id", id)
	return nil
}

func (s *eventService) List(ctx context.Context, filters repositories.EventFilters, userID string) (*EventListResponse, error) {
	events, total, err := s.repo.Event().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	user, err := requireUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*EventResponse, 0, len(events))
	for _, event := range events {
		owned := canActOn(user, event.OrganizerID)
		responses = append(responses, &EventResponse{
			Event:     event,
			CanEdit:   owned,
			CanDelete: owned,
		})
	}

	return &EventListResponse{
		Events: responses,
		Total:  total,
		Page:   pageFromOffset(filters.Offset, filters.Limit),
		Size:   filters.Limit,
	}, nil
}
