package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mentorlink/feedback-service/internal/cache"
	"github.com/mentorlink/feedback-service/internal/models"
	"github.com/mentorlink/feedback-service/internal/repositories"
)

type EventPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewEventPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.EventRepository {
	return &EventPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func (e *EventPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}

func (e *EventPostgreSQL) Create(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	db := e.getDB(tx)
	if err := db.WithContext(ctx).Create(event).Error; err != nil {
		return handleDBError(err, "create event")
	}
	e.cacheManager.InvalidateEvent(ctx, event.ID)
	return nil
}

// GetByID retrieves an event by ID with caching
func (e *EventPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Event, error) {
	db := e.getDB(tx)
	cacheKey := fmt.Sprintf("id:%s", id)
	var event models.Event

	err := e.cacheManager.Event.CacheOrExecute(ctx, cacheKey, &event, cache.EventCacheConfig.TTL, func() (interface{}, error) {
		var dbEvent models.Event
		err := db.WithContext(ctx).
			Where("id = ?", id).
			First(&dbEvent).Error
		if err != nil {
			return nil, err
		}
		return &dbEvent, nil
	})
	if err != nil {
		return nil, handleDBError(err, "get event by id")
	}

	return &event, nil
}

// GetByIDWithDetails loads an event with its form, organizer and live counts.
func (e *EventPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id string) (*models.Event, error) {
	db := e.getDB(tx)
	var event models.Event

	if err := db.WithContext(ctx).
		Preload("Organizer").
		Preload("FeedbackForm").
		Where("id = ?", id).
		First(&event).Error; err != nil {
		return nil, handleDBError(err, "get event with details")
	}

	if err := db.WithContext(ctx).
		Model(&models.MenteeAssignment{}).
		Where("event_id = ?", id).
		Count(&event.AssignmentCount).Error; err != nil {
		return nil, handleDBError(err, "count event assignments")
	}

	if err := db.WithContext(ctx).
		Model(&models.FeedbackSubmission{}).
		Where("event_id = ?", id).
		Count(&event.SubmissionCount).Error; err != nil {
		return nil, handleDBError(err, "count event submissions")
	}

	return &event, nil
}

func (e *EventPostgreSQL) Update(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	db := e.getDB(tx)
	if err := db.WithContext(ctx).Save(event).Error; err != nil {
		return handleDBError(err, "update event")
	}
	e.cacheManager.InvalidateEvent(ctx, event.ID)
	return nil
}

// Delete removes the event; assignments and submissions go with it through
// the FK cascade.
func (e *EventPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := e.getDB(tx)
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&models.Event{})
	if result.Error != nil {
		return handleDBError(result.Error, "delete event")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete event")
	}
	e.cacheManager.InvalidateEvent(ctx, id)
	return nil
}

func (e *EventPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.EventFilters) ([]*models.Event, int64, error) {
	db := e.getDB(tx)
	var events []*models.Event
	var total int64

	query := db.WithContext(ctx).Model(&models.Event{})
	query = e.helpers.ApplyEventFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count events")
	}

	query = query.Preload("FeedbackForm")
	query = e.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&events).Error; err != nil {
		return nil, 0, handleDBError(err, "list events")
	}

	return events, total, nil
}

func (e *EventPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	db := e.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, handleDBError(err, "check event exists")
	}
	return count > 0, nil
}
