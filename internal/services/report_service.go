package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/mentorlink/feedback-service/internal/repositories"
)

type reportService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// SubmissionRates builds the per-event rate report for the event's organizer
// or an admin.
func (s *reportService) SubmissionRates(ctx context.Context, eventID string, callerID string) (*repositories.SubmissionRateReport, error) {
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
		return nil, NewPermissionError(callerID, eventID, "event", "report", "not organizer")
	}

	report, err := s.repo.Report().SubmissionRate(ctx, nil, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to build submission rate report: %w", err)
	}

	s.logger.Info("Submission rate report built",
		"event_id", eventID,
		"assignments", report.TotalAssignments,
		"submissions", report.TotalSubmissions)

	return report, nil
}
