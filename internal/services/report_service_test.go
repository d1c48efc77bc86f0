package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mentorlink/feedback-service/internal/models"
)

func seedReportFixture(repo *fakeRepo) {
	seedUser(repo, "org-1", "org@example.com", models.RoleOrganizer)
	seedUser(repo, "men-1", "mentee1@example.com", models.RoleMentee)
	seedUser(repo, "men-2", "mentee2@example.com", models.RoleMentee)
	seedUser(repo, "mtr-1", "mentor@example.com", models.RoleMentor)

	repo.events["evt-1"] = &models.Event{
		ID:             "evt-1",
		Name:           "Spring cohort",
		OrganizerID:    "org-1",
		FeedbackFormID: "form-1",
	}
	repo.assignments["asg-1"] = &models.MenteeAssignment{
		ID: "asg-1", MenteeID: "men-1", MentorID: "mtr-1", EventID: "evt-1",
	}
	repo.assignments["asg-2"] = &models.MenteeAssignment{
		ID: "asg-2", MenteeID: "men-2", MentorID: "mtr-1", EventID: "evt-1",
	}
	repo.submissions["sub-1"] = &models.FeedbackSubmission{
		ID: "sub-1", MenteeID: "men-1", MentorID: "mtr-1", EventID: "evt-1",
		FeedbackFormID: "form-1", SubmissionDate: time.Now(),
		Answers: models.AnswerMap{"q-1": "ok"},
	}
}

func TestReportService_SubmissionRates(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	seedReportFixture(repo)
	svc := NewReportService(repo, nil, testLogger())

	report, err := svc.SubmissionRates(ctx, "evt-1", "org-1")
	if err != nil {
		t.Fatalf("SubmissionRates failed: %v", err)
	}
	if report.TotalAssignments != 2 {
		t.Errorf("expected 2 assignments, got %d", report.TotalAssignments)
	}
	if report.TotalSubmissions != 1 {
		t.Errorf("expected 1 submission, got %d", report.TotalSubmissions)
	}
	if report.Rate != 50 {
		t.Errorf("expected 50%% rate, got %v", report.Rate)
	}
	if len(report.Mentors) != 1 {
		t.Fatalf("expected 1 mentor row, got %d", len(report.Mentors))
	}
	if report.Mentors[0].Assigned != 2 || report.Mentors[0].Submitted != 1 {
		t.Errorf("unexpected mentor breakdown: %+v", report.Mentors[0])
	}
}

func TestReportService_SubmissionRates_Access(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	seedReportFixture(repo)
	seedUser(repo, "mtr-2", "other@example.com", models.RoleMentor)
	seedUser(repo, "admin-1", "admin@example.com", models.RoleAdmin)
	svc := NewReportService(repo, nil, testLogger())

	if _, err := svc.SubmissionRates(ctx, "evt-1", "mtr-2"); !IsPermissionError(err) {
		t.Fatalf("expected permission error, got %v", err)
	}
	if _, err := svc.SubmissionRates(ctx, "evt-1", "admin-1"); err != nil {
		t.Fatalf("admin should read any report: %v", err)
	}
	if _, err := svc.SubmissionRates(ctx, "missing", "org-1"); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}
