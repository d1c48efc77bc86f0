package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mentorlink/feedback-service/internal/cache"
	"github.com/mentorlink/feedback-service/internal/models"
	"github.com/mentorlink/feedback-service/internal/repositories"
)

type FormPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewFormPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.FormRepository {
	return &FormPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (f *FormPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return f.db
}

func (f *FormPostgreSQL) Create(ctx context.Context, tx *gorm.DB, form *models.FeedbackForm) error {
	db := f.getDB(tx)
	if err := db.WithContext(ctx).Create(form).Error; err != nil {
		return handleDBError(err, "create feedback form")
	}
	f.cacheManager.InvalidateForm(ctx, form.ID)
	return nil
}

// GetByID retrieves a form by ID with caching
func (f *FormPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.FeedbackForm, error) {
	db := f.getDB(tx)
	cacheKey := fmt.Sprintf("id:%s", id)
	var form models.FeedbackForm

	err := f.cacheManager.Form.CacheOrExecute(ctx, cacheKey, &form, cache.FormCacheConfig.TTL, func() (interface{}, error) {
		var dbForm models.FeedbackForm
		err := db.WithContext(ctx).
			Preload("Creator").
			Where("id = ?", id).
			First(&dbForm).Error
		if err != nil {
			return nil, err
		}
		return &dbForm, nil
	})
	if err != nil {
		return nil, handleDBError(err, "get feedback form by id")
	}

	return &form, nil
}

// GetByIDWithCounts loads a form plus the usage counts the lock rules need.
// Counts are never cached; they gate mutations.
func (f *FormPostgreSQL) GetByIDWithCounts(ctx context.Context, tx *gorm.DB, id string) (*models.FeedbackForm, error) {
	db := f.getDB(tx)
	var form models.FeedbackForm

	if err := db.WithContext(ctx).
		Preload("Creator").
		Where("id = ?", id).
		First(&form).Error; err != nil {
		return nil, handleDBError(err, "get feedback form with counts")
	}

	eventCount, err := f.CountEvents(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	submissionCount, err := f.CountSubmissions(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	form.EventCount = eventCount
	form.SubmissionCount = submissionCount
	return &form, nil
}

func (f *FormPostgreSQL) Update(ctx context.Context, tx *gorm.DB, form *models.FeedbackForm) error {
	db := f.getDB(tx)
	if err := db.WithContext(ctx).Save(form).Error; err != nil {
		return handleDBError(err, "update feedback form")
	}
	f.cacheManager.InvalidateForm(ctx, form.ID)
	return nil
}

func (f *FormPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := f.getDB(tx)
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&models.FeedbackForm{})
	if result.Error != nil {
		return handleDBError(result.Error, "delete feedback form")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete feedback form")
	}
	f.cacheManager.InvalidateForm(ctx, id)
	return nil
}

func (f *FormPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.FormFilters) ([]*models.FeedbackForm, int64, error) {
	db := f.getDB(tx)
	var forms []*models.FeedbackForm
	var total int64

	query := db.WithContext(ctx).Model(&models.FeedbackForm{})
	query = f.helpers.ApplyFormFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count feedback forms")
	}

	query = query.Preload("Creator")
	query = f.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&forms).Error; err != nil {
		return nil, 0, handleDBError(err, "list feedback forms")
	}

	return forms, total, nil
}

func (f *FormPostgreSQL) CountEvents(ctx context.Context, tx *gorm.DB, formID string) (int64, error) {
	db := f.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Event{}).
		Where("feedback_form_id = ?", formID).
		Count(&count).Error
	if err != nil {
		return 0, handleDBError(err, "count events for form")
	}
	return count, nil
}

func (f *FormPostgreSQL) CountSubmissions(ctx context.Context, tx *gorm.DB, formID string) (int64, error) {
	db := f.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.FeedbackSubmission{}).
		Where("feedback_form_id = ?", formID).
		Count(&count).Error
	if err != nil {
		return 0, handleDBError(err, "count submissions for form")
	}
	return count, nil
}

func (f *FormPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	db := f.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.FeedbackForm{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, handleDBError(err, "check feedback form exists")
	}
	return count > 0, nil
}
