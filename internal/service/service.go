// Package service holds the business rules of the API.  Services depend on
// the store interfaces below so they can run against MySQL repositories in
// production and in-memory fakes in tests.
package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/iliyamo/alumni-connect/internal/apperrors"
	"github.com/iliyamo/alumni-connect/internal/model"
	"github.com/iliyamo/alumni-connect/internal/queue"
	"github.com/iliyamo/alumni-connect/internal/repository"
	"github.com/iliyamo/alumni-connect/internal/validator"
)

// Actor is the authenticated caller as established by the JWT middleware.
type Actor struct {
	ID   uint64
	Role string
}

// Clock returns the current time.  Services read it instead of time.Now so
// tests can pin workshop lifecycles and token timestamps.
type Clock func() time.Time

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	ListByRole(ctx context.Context, role string) ([]*model.User, error)
	UpdateProfile(ctx context.Context, id uint64, name string, p model.Profile) error
}

type OpportunityStore interface {
	Create(ctx context.Context, o *model.Opportunity) error
	GetByID(ctx context.Context, id uint64) (*model.Opportunity, error)
	List(ctx context.Context) ([]*model.Opportunity, error)
	ListByPoster(ctx context.Context, posterID uint64) ([]*model.Opportunity, error)
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error
}

type ApplicationStore interface {
	Create(ctx context.Context, a *model.Application) error
	GetByPair(ctx context.Context, opportunityID, studentID uint64) (*model.Application, error)
	UpdateStatus(ctx context.Context, id uint64, from, to string) error
	ListByStudent(ctx context.Context, studentID uint64) ([]*model.Application, error)
	ListByPoster(ctx context.Context, posterID uint64) ([]*model.Application, error)
}

type MentorshipStore interface {
	Create(ctx context.Context, m *model.MentorshipRequest) error
	GetByID(ctx context.Context, id uint64) (*model.MentorshipRequest, error)
	GetByPair(ctx context.Context, studentID, mentorID uint64) (*model.MentorshipRequest, error)
	Reopen(ctx context.Context, id uint64, message string) error
	UpdateStatus(ctx context.Context, id uint64, from, to string) error
	ListByStudent(ctx context.Context, studentID uint64) ([]*model.MentorshipRequest, error)
	ListByMentor(ctx context.Context, mentorID uint64) ([]*model.MentorshipRequest, error)
}

type WorkshopStore interface {
	Create(ctx context.Context, w *model.Workshop) error
	GetByID(ctx context.Context, id uint64) (*model.Workshop, error)
	List(ctx context.Context) ([]*model.Workshop, error)
	ListByOrganizer(ctx context.Context, organizerID uint64) ([]*model.Workshop, error)
	Update(ctx context.Context, w *model.Workshop) error
	Delete(ctx context.Context, id uint64) error
	AddRegistration(ctx context.Context, workshopID, userID uint64) error
	RemoveRegistration(ctx context.Context, workshopID, userID uint64) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByRecipient(ctx context.Context, recipientID uint64) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id, recipientID uint64) error
	MarkAllRead(ctx context.Context, recipientID uint64) (int64, error)
}

// EventPublisher hands notification events to the broker.
type EventPublisher interface {
	PublishNotification(ctx context.Context, ev queue.NotificationCreatedEvent) error
}

// PictureStore saves and removes uploaded profile pictures.
type PictureStore interface {
	Save(r io.Reader) (string, error)
	Remove(public string) error
}

// Notifier is the single side-effect entry point used by every component
// that reacts to a state change.
type Notifier interface {
	Notify(ctx context.Context, n NotificationInput) error
}

func requireRole(a Actor, role string) error {
	if a.ID == 0 {
		return apperrors.ErrUnauthenticated
	}
	if a.Role != role {
		return apperrors.ErrForbidden.WithMessage("Access denied: " + role + " only")
	}
	return nil
}

// notFound maps repository "not found" sentinels to a 404 and everything
// else to a 500.
func notFound(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrOpportunityNotFound),
		errors.Is(err, repository.ErrApplicationNotFound),
		errors.Is(err, repository.ErrMentorshipNotFound),
		errors.Is(err, repository.ErrWorkshopNotFound),
		errors.Is(err, repository.ErrNotificationNotFound):
		return apperrors.ErrNotFound.WithMessage(what + " not found")
	default:
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperrors.Internal(err)
	}
}

// invalid converts a validator failure into the client-facing error: missing
// fields win over format problems.
func invalid(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperrors.ErrValidation.WithInternal(err)
	}
	if missing := ve.Missing(); len(missing) > 0 {
		return apperrors.ErrMissingField.WithDetail("missingFields", missing)
	}
	if ve.Has("emailaddr") {
		return apperrors.ErrMalformedEmail
	}
	return apperrors.ErrValidation.WithDetail("fields", []validator.ValidationError(ve))
}
