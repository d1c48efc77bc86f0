package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mentorlink/feedback-service/internal/models"
	"github.com/mentorlink/feedback-service/internal/ocr"
	"github.com/mentorlink/feedback-service/internal/repositories"
	"github.com/mentorlink/feedback-service/internal/validator"
)

type formService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	extractor ocr.Extractor
}

func NewFormService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, extractor ocr.Extractor) FormService {
	return &formService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		extractor: extractor,
	}
}

func (s *formService) Create(ctx context.Context, req *CreateFormRequest, creatorID string) (*FormResponse, error) {
	s.logger.Info("Creating feedback form", "creator_id", creatorID, "name", req.Name)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	questions := validator.QuestionModels(req.Questions)
	if errs := validator.ValidateQuestionSet(questions); len(errs) > 0 {
		return nil, errs
	}

	form := &models.FeedbackForm{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   creatorID,
	}
	if err := form.SetQuestionList(questions); err != nil {
		return nil, fmt.Errorf("encode questions: %w", err)
	}

	if err := s.repo.Form().Create(ctx, nil, form); err != nil {
		return nil, fmt.Errorf("failed to create feedback form: %w", err)
	}

	s.logger.Info("Feedback form created", "form_id", form.ID)

	return s.buildResponse(ctx, form, creatorID)
}

func (s *formService) GetByID(ctx context.Context, id string, userID string) (*FormResponse, error) {
	form, err := s.repo.Form().GetByIDWithCounts(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}

	return s.buildResponse(ctx, form, userID)
}

func (s *formService) Update(ctx context.Context, id string, req *UpdateFormRequest, userID string) (*FormResponse, error) {
	s.logger.Info("Updating feedback form", "form_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	form, err := s.repo.Form().GetByIDWithCounts(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}

	user, err := requireUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if !canActOn(user, form.CreatedBy) {
		return nil, NewPermissionError(userID, id, "form", "update", "not owner")
	}

	// The lock comes before content validation and binds admins too: answers
	// already collected must keep matching their question schema.
	if form.SubmissionCount > 0 {
		return nil, ErrFormLocked
	}

	if req.Name != nil {
		form.Name = *req.Name
	}
	if req.Description != nil {
		form.Description = req.Description
	}
	if req.Questions != nil {
		questions := validator.QuestionModels(req.Questions)
		if errs := validator.ValidateQuestionSet(questions); len(errs) > 0 {
			return nil, errs
		}
		if err := form.SetQuestionList(questions); err != nil {
			return nil, fmt.Errorf("encode questions: %w", err)
		}
	}

	if err := s.repo.Form().Update(ctx, nil, form); err != nil {
		return nil, fmt.Errorf("failed to update feedback form: %w", err)
	}

	s.logger.Info("Feedback form updated", "form_id", id)

	return s.buildResponse(ctx, form, userID)
}

func (s *formService) Delete(ctx context.Context, id string, userID string) error {
	s.logger.Info("Deleting feedback form", "form_id", id, "user_id", userID)

	form, err := s.repo.Form().GetByIDWithCounts(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrFormNotFound
		}
		return err
	}

	user, err := requireUser(ctx, s.repo, userID)
	if err != nil {
		return err
	}
	if !canActOn(user, form.CreatedBy) {
		return NewPermissionError(userID, id, "form", "delete", "not owner")
	}

	if form.EventCount > 0 {
		return ErrFormInUse
	}

	if err := s.repo.Form().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete feedback form: %w", err)
	}

	s.logger.Info("Feedback form deleted", "form_id", id)
	return nil
}

func (s *formService) List(ctx context.Context, filters repositories.FormFilters, userID string) (*FormListResponse, error) {
	forms, total, err := s.repo.Form().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback forms: %w", err)
	}

	user, err := requireUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*FormResponse, 0, len(forms))
	for _, form := range forms {
		questions, qErr := form.QuestionList()
		if qErr != nil {
			return nil, fmt.Errorf("decode questions for form %s: %w", form.ID, qErr)
		}
		responses = append(responses, &FormResponse{
			FeedbackForm: form,
			QuestionList: questions,
			CanEdit:      canActOn(user, form.CreatedBy),
			CanDelete:    canActOn(user, form.CreatedBy),
		})
	}

	return &FormListResponse{
		Forms: responses,
		Total: total,
		Page:  pageFromOffset(filters.Offset, filters.Limit),
		Size:  filters.Limit,
	}, nil
}

// ExtractFromImage runs OCR over an uploaded form image and re-validates the
// model's output with the same rules manual questions get. Nothing is
// persisted; the client reviews the candidates before saving.
func (s *formService) ExtractFromImage(ctx context.Context, req *ExtractQuestionsRequest, userID string) ([]models.Question, error) {
	s.logger.Info("Extracting questions from image", "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if s.extractor == nil {
		return nil, fmt.Errorf("%w: no extractor configured", ErrExtractionFailed)
	}

	questions, err := s.extractor.ExtractQuestions(ctx, req.ImageData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	for i, q := range questions {
		if errs := validator.ValidateQuestion(q); len(errs) > 0 {
			return nil, fmt.Errorf("%w: extracted question %d: %s", ErrExtractionFailed, i+1, errs[0].Message)
		}
	}

	s.logger.Info("Questions extracted", "user_id", userID, "question_count", len(questions))
	return questions, nil
}

func (s *formService) buildResponse(ctx context.Context, form *models.FeedbackForm, userID string) (*FormResponse, error) {
	questions, err := form.QuestionList()
	if err != nil {
		return nil, fmt.Errorf("decode questions for form %s: %w", form.ID, err)
	}

	user, err := requireUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	owned := canActOn(user, form.CreatedBy)
	return &FormResponse{
		FeedbackForm: form,
		QuestionList: questions,
		CanEdit:      owned && form.SubmissionCount == 0,
		CanDelete:    owned && form.EventCount == 0,
	}, nil
}

func pageFromOffset(offset, limit int) int {
	if limit <= 0 {
		return 1
	}
	return offset/limit + 1
}
