package services

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/mentorlink/feedback-service/internal/models"
	"github.com/mentorlink/feedback-service/internal/repositories"
)

// fakeRepo is an in-memory Repository for service tests. All sub-repos share
// the same maps, transactions run the callback against the same instance.
type fakeRepo struct {
	users       map[string]*models.User
	forms       map[string]*models.FeedbackForm
	events      map[string]*models.Event
	assignments map[string]*models.MenteeAssignment
	submissions map[string]*models.FeedbackSubmission
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:       make(map[string]*models.User),
		forms:       make(map[string]*models.FeedbackForm),
		events:      make(map[string]*models.Event),
		assignments: make(map[string]*models.MenteeAssignment),
		submissions: make(map[string]*models.FeedbackSubmission),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func strPtr(s string) *string { return &s }

func (r *fakeRepo) User() repositories.UserRepository             { return &fakeUserRepo{r} }
func (r *fakeRepo) Form() repositories.FormRepository             { return &fakeFormRepo{r} }
func (r *fakeRepo) Event() repositories.EventRepository           { return &fakeEventRepo{r} }
func (r *fakeRepo) Assignment() repositories.AssignmentRepository { return &fakeAssignmentRepo{r} }
func (r *fakeRepo) Submission() repositories.SubmissionRepository { return &fakeSubmissionRepo{r} }
func (r *fakeRepo) Report() repositories.ReportRepository         { return &fakeReportRepo{r} }

func (r *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}
func (r *fakeRepo) Ping(ctx context.Context) error { return nil }
func (r *fakeRepo) Close() error                   { return nil }

// ===== USERS =====

type fakeUserRepo struct{ r *fakeRepo }

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	f.r.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if _, ok := f.r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.r.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) UpdateRoles(ctx context.Context, tx *gorm.DB, id string, roles models.RoleList) error {
	u, ok := f.r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Roles = roles
	return nil
}

func (f *fakeUserRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.UserStatus) error {
	u, ok := f.r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Status = status
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	u, ok := f.r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	for _, u := range f.r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.User, error) {
	var out []*models.User
	for _, id := range ids {
		if u, ok := f.r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range f.r.users {
		if filters.Role != nil && !u.Roles.Has(*filters.Role) {
			continue
		}
		if filters.Query != "" && !strings.Contains(u.Email, filters.Query) {
			continue
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) Search(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*models.User, error) {
	var out []*models.User
	for _, u := range f.r.users {
		if strings.Contains(u.Email, query) {
			out = append(out, u)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeUserRepo) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	_, ok := f.r.users[id]
	return ok, nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, tx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (f *fakeUserRepo) HasRole(ctx context.Context, tx *gorm.DB, id string, role models.Role) (bool, error) {
	u, ok := f.r.users[id]
	if !ok {
		return false, nil
	}
	return u.Roles.Has(role), nil
}

func (f *fakeUserRepo) CountAdminsForUpdate(ctx context.Context, tx *gorm.DB) (int64, error) {
	var n int64
	for _, u := range f.r.users {
		if u.IsAdmin() {
			n++
		}
	}
	return n, nil
}

// ===== FORMS =====

type fakeFormRepo struct{ r *fakeRepo }

func (f *fakeFormRepo) Create(ctx context.Context, tx *gorm.DB, form *models.FeedbackForm) error {
	f.r.forms[form.ID] = form
	return nil
}

func (f *fakeFormRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.FeedbackForm, error) {
	form, ok := f.r.forms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return form, nil
}

func (f *fakeFormRepo) GetByIDWithCounts(ctx context.Context, tx *gorm.DB, id string) (*models.FeedbackForm, error) {
	form, err := f.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	form.EventCount, _ = f.CountEvents(ctx, tx, id)
	form.SubmissionCount, _ = f.CountSubmissions(ctx, tx, id)
	return form, nil
}

func (f *fakeFormRepo) Update(ctx context.Context, tx *gorm.DB, form *models.FeedbackForm) error {
	if _, ok := f.r.forms[form.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.r.forms[form.ID] = form
	return nil
}

func (f *fakeFormRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	if _, ok := f.r.forms[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.r.forms, id)
	return nil
}

func (f *fakeFormRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.FormFilters) ([]*models.FeedbackForm, int64, error) {
	var out []*models.FeedbackForm
	for _, form := range f.r.forms {
		if filters.CreatedBy != nil && form.CreatedBy != *filters.CreatedBy {
			continue
		}
		out = append(out, form)
	}
	return out, int64(len(out)), nil
}

func (f *fakeFormRepo) CountEvents(ctx context.Context, tx *gorm.DB, formID string) (int64, error) {
	var n int64
	for _, e := range f.r.events {
		if e.FeedbackFormID == formID {
			n++
		}
	}
	return n, nil
}

func (f *fakeFormRepo) CountSubmissions(ctx context.Context, tx *gorm.DB, formID string) (int64, error) {
	var n int64
	for _, s := range f.r.submissions {
		if s.FeedbackFormID == formID {
			n++
		}
	}
	return n, nil
}

func (f *fakeFormRepo) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	_, ok := f.r.forms[id]
	return ok, nil
}

// ===== EVENTS =====

type fakeEventRepo struct{ r *fakeRepo }

func (f *fakeEventRepo) Create(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	f.r.events[event.ID] = event
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Event, error) {
	e, ok := f.r.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (f *fakeEventRepo) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id string) (*models.Event, error) {
	e, err := f.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	e.AssignmentCount, _ = f.r.Assignment().CountByEvent(ctx, tx, id)
	e.SubmissionCount, _ = f.r.Submission().CountByEvent(ctx, tx, id)
	e.Organizer = f.r.users[e.OrganizerID]
	e.FeedbackForm = f.r.forms[e.FeedbackFormID]
	return e, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	if _, ok := f.r.events[event.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.r.events[event.ID] = event
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	if _, ok := f.r.events[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.r.events, id)
	return nil
}

func (f *fakeEventRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.EventFilters) ([]*models.Event, int64, error) {
	var out []*models.Event
	for _, e := range f.r.events {
		if filters.OrganizerID != nil && e.OrganizerID != *filters.OrganizerID {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (f *fakeEventRepo) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	_, ok := f.r.events[id]
	return ok, nil
}

// ===== ASSIGNMENTS =====

type fakeAssignmentRepo struct{ r *fakeRepo }

func (f *fakeAssignmentRepo) Upsert(ctx context.Context, tx *gorm.DB, assignment *models.MenteeAssignment) (bool, error) {
	for _, a := range f.r.assignments {
		if a.MenteeID == assignment.MenteeID && a.MentorID == assignment.MentorID && a.EventID == assignment.EventID {
			return false, nil
		}
	}
	f.r.assignments[assignment.ID] = assignment
	return true, nil
}

func (f *fakeAssignmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.MenteeAssignment, error) {
	a, ok := f.r.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (f *fakeAssignmentRepo) GetByTriple(ctx context.Context, tx *gorm.DB, menteeID, mentorID, eventID string) (*models.MenteeAssignment, error) {
	for _, a := range f.r.assignments {
		if a.MenteeID == menteeID && a.MentorID == mentorID && a.EventID == eventID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAssignmentRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	if _, ok := f.r.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.r.assignments, id)
	return nil
}

func (f *fakeAssignmentRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.AssignmentFilters) ([]*models.MenteeAssignment, int64, error) {
	var out []*models.MenteeAssignment
	for _, a := range f.r.assignments {
		if filters.EventID != nil && a.EventID != *filters.EventID {
			continue
		}
		if filters.MentorID != nil && a.MentorID != *filters.MentorID {
			continue
		}
		if filters.MenteeID != nil && a.MenteeID != *filters.MenteeID {
			continue
		}
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (f *fakeAssignmentRepo) ExistsTriple(ctx context.Context, tx *gorm.DB, menteeID, mentorID, eventID string) (bool, error) {
	_, err := f.GetByTriple(ctx, tx, menteeID, mentorID, eventID)
	return err == nil, nil
}

func (f *fakeAssignmentRepo) CountByEvent(ctx context.Context, tx *gorm.DB, eventID string) (int64, error) {
	var n int64
	for _, a := range f.r.assignments {
		if a.EventID == eventID {
			n++
		}
	}
	return n, nil
}

// ===== SUBMISSIONS =====

type fakeSubmissionRepo struct{ r *fakeRepo }

func (f *fakeSubmissionRepo) Upsert(ctx context.Context, tx *gorm.DB, submission *models.FeedbackSubmission) error {
	for _, s := range f.r.submissions {
		if s.MenteeID == submission.MenteeID && s.MentorID == submission.MentorID && s.EventID == submission.EventID {
			s.Answers = submission.Answers
			s.FeedbackFormID = submission.FeedbackFormID
			s.SubmissionDate = submission.SubmissionDate
			return nil
		}
	}
	f.r.submissions[submission.ID] = submission
	return nil
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.FeedbackSubmission, error) {
	s, ok := f.r.submissions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (f *fakeSubmissionRepo) GetByTriple(ctx context.Context, tx *gorm.DB, menteeID, mentorID, eventID string) (*models.FeedbackSubmission, error) {
	for _, s := range f.r.submissions {
		if s.MenteeID == menteeID && s.MentorID == mentorID && s.EventID == eventID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	if _, ok := f.r.submissions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.r.submissions, id)
	return nil
}

func (f *fakeSubmissionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.SubmissionFilters) ([]*models.FeedbackSubmission, int64, error) {
	var out []*models.FeedbackSubmission
	for _, s := range f.r.submissions {
		if filters.EventID != nil && s.EventID != *filters.EventID {
			continue
		}
		if filters.MenteeID != nil && s.MenteeID != *filters.MenteeID {
			continue
		}
		if filters.MentorID != nil && s.MentorID != *filters.MentorID {
			continue
		}
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (f *fakeSubmissionRepo) CountByEvent(ctx context.Context, tx *gorm.DB, eventID string) (int64, error) {
	var n int64
	for _, s := range f.r.submissions {
		if s.EventID == eventID {
			n++
		}
	}
	return n, nil
}

// ===== REPORTS =====

type fakeReportRepo struct{ r *fakeRepo }

func (f *fakeReportRepo) SubmissionRate(ctx context.Context, tx *gorm.DB, eventID string) (*repositories.SubmissionRateReport, error) {
	event, ok := f.r.events[eventID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	report := &repositories.SubmissionRateReport{EventID: eventID, EventName: event.Name}
	mentors := make(map[string]*repositories.MentorBreakdown)
	for _, a := range f.r.assignments {
		if a.EventID != eventID {
			continue
		}
		status := repositories.AssignmentStatus{
			AssignmentID: a.ID,
			MenteeID:     a.MenteeID,
			MentorID:     a.MentorID,
		}
		if mentee, ok := f.r.users[a.MenteeID]; ok {
			status.MenteeEmail = mentee.Email
		}
		if mentor, ok := f.r.users[a.MentorID]; ok {
			status.MentorEmail = mentor.Email
		}
		if sub, err := f.r.Submission().GetByTriple(ctx, tx, a.MenteeID, a.MentorID, a.EventID); err == nil {
			status.Submitted = true
			status.SubmissionDate = &sub.SubmissionDate
		}

		report.TotalAssignments++
		mb, ok := mentors[a.MentorID]
		if !ok {
			mb = &repositories.MentorBreakdown{MentorID: a.MentorID, MentorEmail: status.MentorEmail}
			mentors[a.MentorID] = mb
		}
		mb.Assigned++
		if status.Submitted {
			report.TotalSubmissions++
			mb.Submitted++
		}
		report.Assignments = append(report.Assignments, status)
	}

	for _, mb := range mentors {
		if mb.Assigned > 0 {
			mb.Rate = float64(mb.Submitted) / float64(mb.Assigned) * 100
		}
		report.Mentors = append(report.Mentors, *mb)
	}
	if report.TotalAssignments > 0 {
		report.Rate = float64(report.TotalSubmissions) / float64(report.TotalAssignments) * 100
	}
	return report, nil
}
