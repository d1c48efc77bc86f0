package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mentorlink/feedback-service/internal/cache"
	"github.com/mentorlink/feedback-service/internal/models"
	"github.com/mentorlink/feedback-service/internal/repositories"
)

type ReportPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewReportPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ReportRepository {
	return &ReportPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (r *ReportPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// submissionRateRow is the flat join the report is assembled from.
type submissionRateRow struct {
	AssignmentID   string
	MenteeID       string
	MenteeName     *string
	MenteeEmail    string
	MentorID       string
	MentorName     *string
	MentorEmail    string
	SubmissionDate *time.Time
}

// SubmissionRate builds the event's rate report with caching. One query
// left-joins assignments to submissions on the triple; mentor rollups are
// computed in memory since events stay small.
func (r *ReportPostgreSQL) SubmissionRate(ctx context.Context, tx *gorm.DB, eventID string) (*repositories.SubmissionRateReport, error) {
	db := r.getDB(tx)
	cacheKey := fmt.Sprintf("event:%s:rate", eventID)
	var report repositories.SubmissionRateReport

	err := r.cacheManager.Report.CacheOrExecute(ctx, cacheKey, &report, cache.ReportCacheConfig.TTL, func() (interface{}, error) {
		return r.buildSubmissionRate(ctx, db, eventID)
	})
	if err != nil {
		return nil, handleDBError(err, "build submission rate report")
	}

	return &report, nil
}

func (r *ReportPostgreSQL) buildSubmissionRate(ctx context.Context, db *gorm.DB, eventID string) (*repositories.SubmissionRateReport, error) {
	var event models.Event
	if err := db.WithContext(ctx).Where("id = ?", eventID).First(&event).Error; err != nil {
		return nil, err
	}

	var rows []submissionRateRow
	err := db.WithContext(ctx).
		Model(&models.MenteeAssignment{}).
		Select(`mentee_assignments.id AS assignment_id,
			mentee_assignments.mentee_id,
			mentees.name AS mentee_name,
			mentees.email AS mentee_email,
			mentee_assignments.mentor_id,
			mentors.name AS mentor_name,
			mentors.email AS mentor_email,
			feedback_submissions.submission_date`).
		Joins(`JOIN users AS mentees ON mentees.id = mentee_assignments.mentee_id`).
		Joins(`JOIN users AS mentors ON mentors.id = mentee_assignments.mentor_id`).
		Joins(`LEFT JOIN feedback_submissions
			ON feedback_submissions.mentee_id = mentee_assignments.mentee_id
			AND feedback_submissions.mentor_id = mentee_assignments.mentor_id
			AND feedback_submissions.event_id = mentee_assignments.event_id`).
		Where("mentee_assignments.event_id = ?", eventID).
		Order("mentors.email ASC, mentees.email ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	report := &repositories.SubmissionRateReport{
		EventID:     event.ID,
		EventName:   event.Name,
		Assignments: make([]repositories.AssignmentStatus, 0, len(rows)),
	}

	mentorIndex := make(map[string]int)
	for _, row := range rows {
		status := repositories.AssignmentStatus{
			AssignmentID:   row.AssignmentID,
			MenteeID:       row.MenteeID,
			MenteeEmail:    row.MenteeEmail,
			MentorID:       row.MentorID,
			MentorEmail:    row.MentorEmail,
			Submitted:      row.SubmissionDate != nil,
			SubmissionDate: row.SubmissionDate,
		}
		if row.MenteeName != nil {
			status.MenteeName = *row.MenteeName
		}
		if row.MentorName != nil {
			status.MentorName = *row.MentorName
		}
		report.Assignments = append(report.Assignments, status)
		report.TotalAssignments++
		if status.Submitted {
			report.TotalSubmissions++
		}

		idx, ok := mentorIndex[row.MentorID]
		if !ok {
			idx = len(report.Mentors)
			mentorIndex[row.MentorID] = idx
			report.Mentors = append(report.Mentors, repositories.MentorBreakdown{
				MentorID:    status.MentorID,
				MentorName:  status.MentorName,
				MentorEmail: status.MentorEmail,
			})
		}
		report.Mentors[idx].Assigned++
		if status.Submitted {
			report.Mentors[idx].Submitted++
		}
	}

	if report.TotalAssignments > 0 {
		report.Rate = float64(report.TotalSubmissions) / float64(report.TotalAssignments) * 100
	}
	for i := range report.Mentors {
		if report.Mentors[i].Assigned > 0 {
			report.Mentors[i].Rate = float64(report.Mentors[i].Submitted) / float64(report.Mentors[i].Assigned) * 100
		}
	}

	return report, nil
}
