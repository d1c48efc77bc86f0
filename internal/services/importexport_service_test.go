package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mentorlink/feedback-service/internal/events"
	"github.com/mentorlink/feedback-service/internal/models"
	"github.com/mentorlink/feedback-service/internal/validator"
)

func rosterWorkbook(t *testing.T, rows [][]string) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		if err := f.SetSheetRow("Sheet1", cell, &vals); err != nil {
			t.Fatalf("build roster: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("render roster: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func newImportExportFixture() (*fakeRepo, ImportExportService) {
	repo := newFakeRepo()
	logger := testLogger()
	publisher := events.NewMockEventPublisher(logger)
	emailClient := &recordingEmailClient{}

	seedUser(repo, "org-1", "org@example.com", models.RoleOrganizer)
	seedUser(repo, "men-1", "mentee@example.com", models.RoleMentee)
	seedUser(repo, "mtr-1", "mentor@example.com", models.RoleMentor)
	repo.events["evt-1"] = &models.Event{
		ID:             "evt-1",
		Name:           "Spring Cohort 2026",
		OrganizerID:    "org-1",
		FeedbackFormID: "form-1",
	}

	assignments := NewAssignmentService(repo, nil, logger, validator.New(), publisher, emailClient)
	reports := NewReportService(repo, nil, logger)
	return repo, NewImportExportService(assignments, reports, logger)
}

func TestImportExportService_ImportAssignments(t *testing.T) {
	ctx := context.Background()
	repo, svc := newImportExportFixture()

	workbook := rosterWorkbook(t, [][]string{
		{"Mentee", "Mentor"},
		{"mentee@example.com", "mentor@example.com"},
		{"ghost@example.com", "mentor@example.com"},
		{"", ""},
	})

	result, err := svc.ImportAssignments(ctx, "evt-1", workbook, "org-1")
	if err != nil {
		t.Fatalf("ImportAssignments failed: %v", err)
	}
	if result.Created != 1 {
		t.Errorf("expected 1 created, got %d", result.Created)
	}
	if result.Invited != 1 {
		t.Errorf("expected 1 invited, got %d", result.Invited)
	}
	if len(repo.assignments) != 1 {
		t.Errorf("expected 1 stored assignment, got %d", len(repo.assignments))
	}
}

func TestImportExportService_ImportAssignments_EmptyRoster(t *testing.T) {
	ctx := context.Background()
	_, svc := newImportExportFixture()

	workbook := rosterWorkbook(t, [][]string{{"Mentee", "Mentor"}})
	if _, err := svc.ImportAssignments(ctx, "evt-1", workbook, "org-1"); err == nil {
		t.Fatal("expected error for roster without data rows")
	}
}

func TestImportExportService_ExportSubmissionRates(t *testing.T) {
	ctx := context.Background()
	repo, svc := newImportExportFixture()
	repo.assignments["asg-1"] = &models.MenteeAssignment{
		ID: "asg-1", MenteeID: "men-1", MentorID: "mtr-1", EventID: "evt-1",
	}

	data, filename, err := svc.ExportSubmissionRates(ctx, "evt-1", "org-1")
	if err != nil {
		t.Fatalf("ExportSubmissionRates failed: %v", err)
	}
	if !strings.HasPrefix(filename, "submission-rates-spring-cohort-2026-") || !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("unexpected filename %q", filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("exported workbook does not open: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{exportSheetSummary, exportSheetAssignments, exportSheetMentors} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Errorf("missing sheet %s", sheet)
		}
	}
	rows, err := f.GetRows(exportSheetAssignments)
	if err != nil {
		t.Fatalf("read assignments sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one assignment row, got %d", len(rows))
	}
	if rows[1][1] != "mentee@example.com" {
		t.Errorf("expected mentee email in export, got %v", rows[1])
	}
}
