package postgres

import (
	"gorm.io/gorm"

	"github.com/mentorlink/feedback-service/internal/repositories"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// handleDBError is a package-level helper for wrapping database errors.
// gorm.ErrRecordNotFound stays in the chain so IsNotFoundError keeps working.
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return &dbError{operation: operation, err: err}
}

type dbError struct {
	operation string
	err       error
}

func (e *dbError) Error() string {
	return e.operation + " failed: " + e.err.Error()
}

func (e *dbError) Unwrap() error {
	return e.err
}

// ApplyFormFilters applies common filters to form queries
func (h *SharedHelpers) ApplyFormFilters(query *gorm.DB, filters repositories.FormFilters) *gorm.DB {
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Query != "" {
		query = query.Where("name ILIKE ?", "%"+filters.Query+"%")
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

// ApplyEventFilters applies common filters to event queries
func (h *SharedHelpers) ApplyEventFilters(query *gorm.DB, filters repositories.EventFilters) *gorm.DB {
	if filters.OrganizerID != nil {
		query = query.Where("organizer_id = ?", *filters.OrganizerID)
	}
	if filters.FeedbackFormID != nil {
		query = query.Where("feedback_form_id = ?", *filters.FeedbackFormID)
	}
	if filters.Query != "" {
		query = query.Where("name ILIKE ?", "%"+filters.Query+"%")
	}
	if filters.StartsAfter != nil {
		query = query.Where("start_date >= ?", *filters.StartsAfter)
	}
	if filters.EndsBefore != nil {
		query = query.Where("end_date <= ?", *filters.EndsBefore)
	}
	return query
}

// ApplySubmissionFilters applies common filters to submission queries
func (h *SharedHelpers) ApplySubmissionFilters(query *gorm.DB, filters repositories.SubmissionFilters) *gorm.DB {
	if filters.EventID != nil {
		query = query.Where("event_id = ?", *filters.EventID)
	}
	if filters.MenteeID != nil {
		query = query.Where("mentee_id = ?", *filters.MenteeID)
	}
	if filters.MentorID != nil {
		query = query.Where("mentor_id = ?", *filters.MentorID)
	}
	if filters.FormID != nil {
		query = query.Where("feedback_form_id = ?", *filters.FormID)
	}
	if filters.DateFrom != nil {
		query = query.Where("submission_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("submission_date <= ?", *filters.DateTo)
	}
	return query
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at":      true,
		"updated_at":      true,
		"id":              true,
		"name":            true,
		"start_date":      true,
		"end_date":        true,
		"submission_date": true,
		"assigned_at":     true,
		"email":           true,
	}

	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
