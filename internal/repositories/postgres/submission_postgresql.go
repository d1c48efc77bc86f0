package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mentorlink/feedback-service/internal/cache"
	"github.com/mentorlink/feedback-service/internal/models"
	"github.com/mentorlink/feedback-service/internal/repositories"
)

type SubmissionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewSubmissionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func (s *SubmissionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

// Upsert writes the submission for its (mentee, mentor, event) triple. A
// resubmission overwrites answers, the denormalized form id and the
// submission date; the row id and created_at stay with the first write.
func (s *SubmissionPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, submission *models.FeedbackSubmission) error {
	db := s.getDB(tx)
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "mentee_id"}, {Name: "mentor_id"}, {Name: "event_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"answers", "feedback_form_id", "submission_date", "updated_at"}),
		}).
		Create(submission).Error
	if err != nil {
		return handleDBError(err, "upsert submission")
	}

	s.cacheManager.InvalidateSubmissionReports(ctx, submission.EventID, submission.FeedbackFormID)
	return nil
}

func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.FeedbackSubmission, error) {
	db := s.getDB(tx)
	var submission models.FeedbackSubmission

	if err := db.WithContext(ctx).
		Preload("Mentee").
		Preload("Mentor").
		Preload("Event").
		Preload("FeedbackForm").
		Where("id = ?", id).
		First(&submission).Error; err != nil {
		return nil, handleDBError(err, "get submission by id")
	}

	return &submission, nil
}

func (s *SubmissionPostgreSQL) GetByTriple(ctx context.Context, tx *gorm.DB, menteeID, mentorID, eventID string) (*models.FeedbackSubmission, error) {
	db := s.getDB(tx)
	var submission models.FeedbackSubmission

	if err := db.WithContext(ctx).
		Where("mentee_id = ? AND mentor_id = ? AND event_id = ?", menteeID, mentorID, eventID).
		First(&submission).Error; err != nil {
		return nil, handleDBError(err, "get submission by triple")
	}

	return &submission, nil
}

func (s *SubmissionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := s.getDB(tx)
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&models.FeedbackSubmission{})
	if result.Error != nil {
		return handleDBError(result.Error, "delete submission")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete submission")
	}
	return nil
}

func (s *SubmissionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SubmissionFilters) ([]*models.FeedbackSubmission, int64, error) {
	db := s.getDB(tx)
	var submissions []*models.FeedbackSubmission
	var total int64

	query := db.WithContext(ctx).Model(&models.FeedbackSubmission{})
	query = s.helpers.ApplySubmissionFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count submissions")
	}

	query = query.Preload("Mentor").Preload("Event").Preload("FeedbackForm")
	query = s.helpers.ApplyPaginationAndSort(query, "submission_date", "desc", filters.Limit, filters.Offset)

	if err := query.Find(&submissions).Error; err != nil {
		return nil, 0, handleDBError(err, "list submissions")
	}

	return submissions, total, nil
}

func (s *SubmissionPostgreSQL) CountByEvent(ctx context.Context, tx *gorm.DB, eventID string) (int64, error) {
	db := s.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.FeedbackSubmission{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return 0, handleDBError(err, "count submissions for event")
	}
	return count, nil
}
