package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mentorlink/feedback-service/internal/events"
	"github.com/mentorlink/feedback-service/internal/models"
	"github.com/mentorlink/feedback-service/internal/validator"
)

type submissionFixture struct {
	repo      *fakeRepo
	publisher *events.MockEventPublisher
	email     *recordingEmailClient
	svc       SubmissionService
}

// newSubmissionFixture seeds an event with a rating form and one
// mentee/mentor assignment.
func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()

	repo := newFakeRepo()
	logger := testLogger()
	publisher := events.NewMockEventPublisher(logger)
	emailClient := &recordingEmailClient{}

	seedUser(repo, "org-1", "organizer@example.com", models.RoleOrganizer)
	seedUser(repo, "men-1", "mentee@example.com", models.RoleMentee)
	seedUser(repo, "mtr-1", "mentor@example.com", models.RoleMentor)

	min, max := 1, 5
	form := &models.FeedbackForm{ID: "form-1", Name: "Cohort feedback", CreatedBy: "org-1"}
	err := form.SetQuestionList([]models.Question{
		{ID: "q-progress", Type: models.QuestionText, Label: "Progress notes", Required: true},
		{ID: "q-score", Type: models.QuestionRating, Label: "Score", Required: true, MinRating: &min, MaxRating: &max},
		{ID: "q-continue", Type: models.QuestionSelect, Label: "Continue?", Options: []string{"Yes", "No"}},
	})
	if err != nil {
		t.Fatalf("seed form: %v", err)
	}
	repo.forms[form.ID] = form

	repo.events["evt-1"] = &models.Event{
		ID:             "evt-1",
		Name:           "Spring cohort",
		OrganizerID:    "org-1",
		FeedbackFormID: "form-1",
	}
	repo.assignments["asg-1"] = &models.MenteeAssignment{
		ID:       "asg-1",
		MenteeID: "men-1",
		MentorID: "mtr-1",
		EventID:  "evt-1",
	}

	return &submissionFixture{
		repo:      repo,
		publisher: publisher,
		email:     emailClient,
		svc:       NewSubmissionService(repo, nil, logger, validator.New(), publisher, emailClient),
	}
}

func validAnswers() models.AnswerMap {
	return models.AnswerMap{
		"q-progress": "Strong progress on goal setting",
		"q-score":    4,
		"q-continue": "Yes",
	}
}

func TestSubmissionService_Submit(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(t)

	resp, err := fx.svc.Submit(ctx, &SubmitFeedbackRequest{
		MenteeID: "men-1",
		EventID:  "evt-1",
		Answers:  validAnswers(),
	}, "mtr-1")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if resp.FeedbackFormID != "form-1" {
		t.Errorf("expected denormalized form id, got %q", resp.FeedbackFormID)
	}
	if resp.SubmissionDate.IsZero() {
		t.Error("submission date should be set")
	}

	published := fx.publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.TopicFeedbackSubmitted {
		t.Fatalf("expected one %s event, got %v", events.TopicFeedbackSubmitted, published)
	}
	if len(fx.email.sent) != 1 || fx.email.sent[0] != "mentee@example.com" {
		t.Errorf("expected feedback email to mentee, got %v", fx.email.sent)
	}
}

func TestSubmissionService_Submit_NotAssigned(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(t)
	seedUser(fx.repo, "mtr-2", "mentor2@example.com", models.RoleMentor)

	_, err := fx.svc.Submit(ctx, &SubmitFeedbackRequest{
		MenteeID: "men-1",
		EventID:  "evt-1",
		Answers:  validAnswers(),
	}, "mtr-2")
	if !errors.Is(err, ErrNotAssigned) {
		t.Fatalf("expected ErrNotAssigned, got %v", err)
	}
}

func TestSubmissionService_Submit_InvalidAnswers(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(t)

	tests := []struct {
		name    string
		answers models.AnswerMap
		field   string
	}{
		{
			name:    "missing required answer",
			answers: models.AnswerMap{"q-score": 4},
			field:   "q-progress",
		},
		{
			name: "rating above maximum",
			answers: models.AnswerMap{
				"q-progress": "ok",
				"q-score":    6,
			},
			field: "q-score",
		},
		{
			name: "option not in list",
			answers: models.AnswerMap{
				"q-progress": "ok",
				"q-score":    3,
				"q-continue": "Maybe",
			},
			field: "q-continue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.Submit(ctx, &SubmitFeedbackRequest{
				MenteeID: "men-1",
				EventID:  "evt-1",
				Answers:  tt.answers,
			}, "mtr-1")

			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected validation errors, got %v", err)
			}
			found := false
			for _, ve := range verrs {
				if ve.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.field, verrs)
			}
		})
	}

	if n := len(fx.repo.submissions); n != 0 {
		t.Errorf("invalid submissions must not be stored, found %d", n)
	}
}

func TestSubmissionService_Submit_Overwrite(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(t)

	first, err := fx.svc.Submit(ctx, &SubmitFeedbackRequest{
		MenteeID: "men-1",
		EventID:  "evt-1",
		Answers:  validAnswers(),
	}, "mtr-1")
	if err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}
	firstDate := first.SubmissionDate

	time.Sleep(time.Millisecond)

	updated := validAnswers()
	updated["q-score"] = 2
	if _, err := fx.svc.Submit(ctx, &SubmitFeedbackRequest{
		MenteeID: "men-1",
		EventID:  "evt-1",
		Answers:  updated,
	}, "mtr-1"); err != nil {
		t.Fatalf("second Submit failed: %v", err)
	}

	if n := len(fx.repo.submissions); n != 1 {
		t.Fatalf("resubmission must overwrite, found %d rows", n)
	}
	stored, err := fx.repo.Submission().GetByTriple(ctx, nil, "men-1", "mtr-1", "evt-1")
	if err != nil {
		t.Fatalf("GetByTriple failed: %v", err)
	}
	if stored.Answers["q-score"] != 2 {
		t.Errorf("expected overwritten score 2, got %v", stored.Answers["q-score"])
	}
	if !stored.SubmissionDate.After(firstDate) {
		t.Error("submission date should refresh on overwrite")
	}
}

func TestSubmissionService_GetByID_Access(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(t)
	seedUser(fx.repo, "admin-1", "admin@example.com", models.RoleAdmin)
	seedUser(fx.repo, "stranger", "stranger@example.com", models.RoleMentor)

	resp, err := fx.svc.Submit(ctx, &SubmitFeedbackRequest{
		MenteeID: "men-1",
		EventID:  "evt-1",
		Answers:  validAnswers(),
	}, "mtr-1")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	for _, caller := range []string{"men-1", "mtr-1", "admin-1"} {
		if _, err := fx.svc.GetByID(ctx, resp.ID, caller); err != nil {
			t.Errorf("caller %s should read the submission: %v", caller, err)
		}
	}
	if _, err := fx.svc.GetByID(ctx, resp.ID, "stranger"); !IsPermissionError(err) {
		t.Errorf("expected permission error for stranger, got %v", err)
	}
}
