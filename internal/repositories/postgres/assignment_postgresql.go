package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mentorlink/feedback-service/internal/models"
	"github.com/mentorlink/feedback-service/internal/repositories"
)

type AssignmentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAssignmentPostgreSQL(db *gorm.DB) repositories.AssignmentRepository {
	return &AssignmentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (a *AssignmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

// Upsert inserts the assignment, treating a duplicate triple as a no-op.
// The unique index on (mentee_id, mentor_id, event_id) carries the
// idempotency; no read-before-write race.
func (a *AssignmentPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, assignment *models.MenteeAssignment) (bool, error) {
	db := a.getDB(tx)
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "mentee_id"}, {Name: "mentor_id"}, {Name: "event_id"}},
			DoNothing: true,
		}).
		Create(assignment)
	if result.Error != nil {
		return false, handleDBError(result.Error, "upsert assignment")
	}
	return result.RowsAffected > 0, nil
}

func (a *AssignmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.MenteeAssignment, error) {
	db := a.getDB(tx)
	var assignment models.MenteeAssignment

	if err := db.WithContext(ctx).
		Preload("Mentee").
		Preload("Mentor").
		Preload("Event").
		Where("id = ?", id).
		First(&assignment).Error; err != nil {
		return nil, handleDBError(err, "get assignment by id")
	}

	return &assignment, nil
}

func (a *AssignmentPostgreSQL) GetByTriple(ctx context.Context, tx *gorm.DB, menteeID, mentorID, eventID string) (*models.MenteeAssignment, error) {
	db := a.getDB(tx)
	var assignment models.MenteeAssignment

	if err := db.WithContext(ctx).
		Where("mentee_id = ? AND mentor_id = ? AND event_id = ?", menteeID, mentorID, eventID).
		First(&assignment).Error; err != nil {
		return nil, handleDBError(err, "get assignment by triple")
	}

	return &assignment, nil
}

func (a *AssignmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := a.getDB(tx)
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&models.MenteeAssignment{})
	if result.Error != nil {
		return handleDBError(result.Error, "delete assignment")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete assignment")
	}
	return nil
}

func (a *AssignmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AssignmentFilters) ([]*models.MenteeAssignment, int64, error) {
	db := a.getDB(tx)
	var assignments []*models.MenteeAssignment
	var total int64

	query := db.WithContext(ctx).Model(&models.MenteeAssignment{})
	if filters.EventID != nil {
		query = query.Where("event_id = ?", *filters.EventID)
	}
	if filters.MenteeID != nil {
		query = query.Where("mentee_id = ?", *filters.MenteeID)
	}
	if filters.MentorID != nil {
		query = query.Where("mentor_id = ?", *filters.MentorID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count assignments")
	}

	query = query.Preload("Mentee").Preload("Mentor").Preload("Event")
	query = a.helpers.ApplyPaginationAndSort(query, "assigned_at", "desc", filters.Limit, filters.Offset)

	if err := query.Find(&assignments).Error; err != nil {
		return nil, 0, handleDBError(err, "list assignments")
	}

	return assignments, total, nil
}

func (a *AssignmentPostgreSQL) ExistsTriple(ctx context.Context, tx *gorm.DB, menteeID, mentorID, eventID string) (bool, error) {
	db := a.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.MenteeAssignment{}).
		Where("mentee_id = ? AND mentor_id = ? AND event_id = ?", menteeID, mentorID, eventID).
		Count(&count).Error
	if err != nil {
		return false, handleDBError(err, "check assignment exists")
	}
	return count > 0, nil
}

func (a *AssignmentPostgreSQL) CountByEvent(ctx context.Context, tx *gorm.DB, eventID string) (int64, error) {
	db := a.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.MenteeAssignment{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return 0, handleDBError(err, "count assignments for event")
	}
	return count, nil
}
