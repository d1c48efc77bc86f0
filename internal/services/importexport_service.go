package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mentorlink/feedback-service/internal/validator"
)

const (
	rosterSheetMaxRows = 5000

	exportSheetSummary     = "Summary"
	exportSheetAssignments = "Assignments"
	exportSheetMentors     = "Mentors"
)

type importExportService struct {
	assignments AssignmentService
	reports     ReportService
	logger      *slog.Logger
}

func NewImportExportService(assignments AssignmentService, reports ReportService, logger *slog.Logger) ImportExportService {
	return &importExportService{
		assignments: assignments,
		reports:     reports,
		logger:      logger,
	}
}

// ImportAssignments reads an xlsx roster and feeds it through the bulk-assign
// flow. Column A holds the mentee email, column B the mentor email; the first
// row is skipped when it does not look like an email pair.
func (s *importExportService) ImportAssignments(ctx context.Context, eventID string, workbook io.Reader, callerID string) (*BulkAssignResult, error) {
	s.logger.Info("Importing assignment roster", "event_id", eventID, "caller_id", callerID)

	f, err := excelize.OpenReader(workbook)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) > rosterSheetMaxRows {
		return nil, fmt.Errorf("roster exceeds %d rows", rosterSheetMaxRows)
	}

	req := &BulkAssignRequest{EventID: eventID}
	for i, row := range rows {
		mentee, mentor := cellAt(row, 0), cellAt(row, 1)
		if mentee == "" && mentor == "" {
			continue
		}
		// Header row tolerance: skip the first row when neither cell
		// parses as an email address.
		if i == 0 && !looksLikeEmail(mentee) && !looksLikeEmail(mentor) {
			continue
		}
		req.Assignments = append(req.Assignments, validator.BulkAssignRow{
			MenteeEmail: mentee,
			MentorEmail: mentor,
		})
	}

	if len(req.Assignments) == 0 {
		return nil, fmt.Errorf("roster contains no assignment rows")
	}

	return s.assignments.BulkAssign(ctx, req, callerID)
}

// ExportSubmissionRates renders the event's rate report as an xlsx workbook
// and returns it with a suggested filename.
func (s *importExportService) ExportSubmissionRates(ctx context.Context, eventID string, callerID string) ([]byte, string, error) {
	report, err := s.reports.SubmissionRates(ctx, eventID, callerID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", exportSheetSummary)
	summary := [][]interface{}{
		{"Event", report.EventName},
		{"Event ID", report.EventID},
		{"Total assignments", report.TotalAssignments},
		{"Total submissions", report.TotalSubmissions},
		{"Submission rate (%)", report.Rate},
		{"Exported at", time.Now().UTC().Format(time.RFC3339)},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(exportSheetSummary, cell, &row); err != nil {
			return nil, "", fmt.Errorf("write summary row: %w", err)
		}
	}

	if _, err := f.NewSheet(exportSheetAssignments); err != nil {
		return nil, "", fmt.Errorf("create assignments sheet: %w", err)
	}
	header := []interface{}{"Mentee", "Mentee email", "Mentor", "Mentor email", "Submitted", "Submission date"}
	if err := f.SetSheetRow(exportSheetAssignments, "A1", &header); err != nil {
		return nil, "", fmt.Errorf("write assignments header: %w", err)
	}
	for i, a := range report.Assignments {
		submitted := "no"
		submittedAt := ""
		if a.Submitted {
			submitted = "yes"
			if a.SubmissionDate != nil {
				submittedAt = a.SubmissionDate.UTC().Format(time.RFC3339)
			}
		}
		row := []interface{}{a.MenteeName, a.MenteeEmail, a.MentorName, a.MentorEmail, submitted, submittedAt}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheetAssignments, cell, &row); err != nil {
			return nil, "", fmt.Errorf("write assignment row: %w", err)
		}
	}

	if _, err := f.NewSheet(exportSheetMentors); err != nil {
		return nil, "", fmt.Errorf("create mentors sheet: %w", err)
	}
	mentorHeader := []interface{}{"Mentor", "Mentor email", "Assigned", "Submitted", "Rate (%)"}
	if err := f.SetSheetRow(exportSheetMentors, "A1", &mentorHeader); err != nil {
		return nil, "", fmt.Errorf("write mentors header: %w", err)
	}
	for i, m := range report.Mentors {
		row := []interface{}{m.MentorName, m.MentorEmail, m.Assigned, m.Submitted, m.Rate}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheetMentors, cell, &row); err != nil {
			return nil, "", fmt.Errorf("write mentor row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("submission-rates-%s-%s.xlsx", sanitizeFilename(report.EventName), time.Now().UTC().Format("2006-01-02"))
	s.logger.Info("Submission rate report exported", "event_id", eventID, "bytes", buf.Len())
	return buf.Bytes(), filename, nil
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func looksLikeEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && strings.Contains(s[at:], ".")
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "event"
	}
	return b.String()
}
