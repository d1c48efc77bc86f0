package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mentorlink/feedback-service/internal/models"
	"github.com/mentorlink/feedback-service/internal/repositories"
	"github.com/mentorlink/feedback-service/internal/validator"
)

func newFormServiceForTest(repo repositories.Repository) FormService {
	return NewFormService(repo, nil, testLogger(), validator.New(), nil)
}

func seedUser(repo *fakeRepo, id, email string, roles ...models.Role) *models.User {
	u := &models.User{
		ID:     id,
		Email:  email,
		Roles:  models.RoleList(roles),
		Status: models.StatusActive,
	}
	repo.users[id] = u
	return u
}

func ratingBounds(min, max int) (*int, *int) {
	return &min, &max
}

func sampleQuestions() []validator.QuestionRequest {
	min, max := ratingBounds(1, 5)
	return []validator.QuestionRequest{
		{Type: "text", Label: "What went well?", Required: true},
		{Type: "rating", Label: "Overall score", Required: true, MinRating: min, MaxRating: max},
		{Type: "select", Label: "Would you recommend continuing?", Options: []string{"Yes", "No"}},
	}
}

func TestFormService_Create(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	seedUser(repo, "org-1", "org@example.com", models.RoleOrganizer)
	svc := newFormServiceForTest(repo)

	resp, err := svc.Create(ctx, &CreateFormRequest{
		Name:      "Q1 mentor feedback",
		Questions: sampleQuestions(),
	}, "org-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if resp.ID == "" {
		t.Error("expected generated form id")
	}
	if len(resp.QuestionList) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(resp.QuestionList))
	}
	for _, q := range resp.QuestionList {
		if q.ID == "" {
			t.Errorf("question %q has no generated id", q.Label)
		}
	}
	if !resp.CanEdit || !resp.CanDelete {
		t.Error("fresh form should be editable and deletable by its creator")
	}
}

func TestFormService_Create_RejectsBadQuestions(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	seedUser(repo, "org-1", "org@example.com", models.RoleOrganizer)
	svc := newFormServiceForTest(repo)

	min, max := ratingBounds(5, 2)
	_, err := svc.Create(ctx, &CreateFormRequest{
		Name: "Broken",
		Questions: []validator.QuestionRequest{
			{Type: "rating", Label: "Score", MinRating: min, MaxRating: max},
		},
	}, "org-1")

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
}

func TestFormService_Update_LockedAfterSubmission(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	seedUser(repo, "org-1", "org@example.com", models.RoleOrganizer)
	seedUser(repo, "admin-1", "admin@example.com", models.RoleAdmin)
	svc := newFormServiceForTest(repo)

	resp, err := svc.Create(ctx, &CreateFormRequest{Name: "F", Questions: sampleQuestions()}, "org-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	repo.submissions["sub-1"] = &models.FeedbackSubmission{
		ID:             "sub-1",
		MenteeID:       "men-1",
		MentorID:       "mtr-1",
		EventID:        "evt-1",
		FeedbackFormID: resp.ID,
		SubmissionDate: time.Now(),
	}

	newName := "Renamed"
	_, err = svc.Update(ctx, resp.ID, &UpdateFormRequest{Name: &newName}, "org-1")
	if !errors.Is(err, ErrFormLocked) {
		t.Fatalf("expected ErrFormLocked, got %v", err)
	}

	// The lock holds for admins as well.
	_, err = svc.Update(ctx, resp.ID, &UpdateFormRequest{Name: &newName}, "admin-1")
	if !errors.Is(err, ErrFormLocked) {
		t.Fatalf("expected ErrFormLocked for admin, got %v", err)
	}
}

func TestFormService_Update_NotOwner(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	seedUser(repo, "org-1", "org@example.com", models.RoleOrganizer)
	seedUser(repo, "org-2", "other@example.com", models.RoleOrganizer)
	svc := newFormServiceForTest(repo)

	resp, err := svc.Create(ctx, &CreateFormRequest{Name: "F", Questions: sampleQuestions()}, "org-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newName := "Hijacked"
	_, err = svc.Update(ctx, resp.ID, &UpdateFormRequest{Name: &newName}, "org-2")
	if !IsPermissionError(err) {
		t.Fatalf("expected permission error, got %v", err)
	}
}

func TestFormService_Delete_InUse(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	seedUser(repo, "org-1", "org@example.com", models.RoleOrganizer)
	svc := newFormServiceForTest(repo)

	resp, err := svc.Create(ctx, &CreateFormRequest{Name: "F", Questions: sampleQuestions()}, "org-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	repo.events["evt-1"] = &models.Event{
		ID:             "evt-1",
		Name:           "Spring cohort",
		OrganizerID:    "org-1",
		FeedbackFormID: resp.ID,
	}

	if err := svc.Delete(ctx, resp.ID, "org-1"); !errors.Is(err, ErrFormInUse) {
		t.Fatalf("expected ErrFormInUse, got %v", err)
	}

	delete(repo.events, "evt-1")
	if err := svc.Delete(ctx, resp.ID, "org-1"); err != nil {
		t.Fatalf("Delete after detach failed: %v", err)
	}
	if _, ok := repo.forms[resp.ID]; ok {
		t.Error("form should be gone")
	}
}

func TestFormService_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	seedUser(repo, "u-1", "u@example.com", models.RoleUser)
	svc := newFormServiceForTest(repo)

	if _, err := svc.GetByID(ctx, "missing", "u-1"); !errors.Is(err, ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
}
