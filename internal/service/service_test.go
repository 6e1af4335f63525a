package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/alumni-connect/internal/apperrors"
	"github.com/iliyamo/alumni-connect/internal/model"
)

const testSecret = "test-secret"

// env wires every service over one in-memory database.
type env struct {
	db        *memDB
	publisher *recordingPublisher
	pictures  *memPictures

	auth          *AuthService
	users         *UserService
	opportunities *OpportunityService
	applications  *ApplicationService
	mentorship    *MentorshipService
	workshops     *WorkshopService
	notifications *NotificationService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := newMemDB()
	users := memUsers{db}
	e := &env{db: db, publisher: &recordingPublisher{}, pictures: &memPictures{}}
	e.notifications = NewNotificationService(memNotifications{db}, users, e.publisher)
	e.auth = NewAuthService(users, testSecret, 24*time.Hour, bcrypt.MinCost)
	e.users = NewUserService(users, e.pictures)
	e.opportunities = NewOpportunityService(memOpps{db}, memApps{db}, users)
	e.applications = NewApplicationService(memOpps{db}, memApps{db}, e.notifications)
	e.mentorship = NewMentorshipService(users, memMentorship{db}, e.notifications)
	e.workshops = NewWorkshopService(memWorkshops{db}, users, e.notifications)
	e.workshops.now = func() time.Time { return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC) }
	return e
}

func (e *env) register(t *testing.T, name, email, role string) Actor {
	t.Helper()
	res, err := e.auth.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "pa55word", Role: role})
	require.NoError(t, err)
	return Actor{ID: res.User.ID, Role: res.User.Role}
}

func validOpportunity() OpportunityInput {
	day := func(d int) Date { return Date{time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)} }
	return OpportunityInput{
		Title:               "Landing page",
		Description:         "Build a landing page",
		RequiredSkills:      SkillList{"html", "css"},
		ExperienceLevel:     "Beginner",
		Deliverables:        "Responsive page",
		StartDate:           day(1),
		Deadline:            day(20),
		Budget:              "500",
		PaymentType:         model.PaymentFixed,
		ApplicationDeadline: day(10),
	}
}

func requireCode(t *testing.T, err error, want *apperrors.AppError) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, want, "got %v", err)
}
