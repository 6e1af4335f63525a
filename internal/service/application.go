package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/alumni-connect/internal/apperrors"
	"github.com/iliyamo/alumni-connect/internal/metrics"
	"github.com/iliyamo/alumni-connect/internal/model"
	"github.com/iliyamo/alumni-connect/internal/repository"
)

// StatusUpdateInput is the body of PUT /api/job-applications/update-status.
type StatusUpdateInput struct {
	OpportunityID any    `json:"opportunityId"`
	StudentID     any    `json:"studentId"`
	Status        string `json:"status"`
}

// ApplicationService runs the application decision workflow.
type ApplicationService struct {
	opps     OpportunityStore
	apps     ApplicationStore
	notifier Notifier
}

func NewApplicationService(opps OpportunityStore, apps ApplicationStore, notifier Notifier) *ApplicationService {
	return &ApplicationService{opps: opps, apps: apps, notifier: notifier}
}

// UpdateStatus lets the poster decide on an application.  Re-sending the
// current status is a no-op; a decided application cannot change again.
func (s *ApplicationService) UpdateStatus(ctx context.Context, a Actor, in StatusUpdateInput) (*model.Application, error) {
	if err := requireRole(a, model.RoleAlumni); err != nil {
		return nil, err
	}
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if !model.ValidDecisionStatus(status) {
		return nil, apperrors.ErrInvalidStatus.WithDetail("allowed", []string{model.StatusPending, model.StatusAccepted, model.StatusRejected})
	}
	oppID, ok := parseID(in.OpportunityID)
	if !ok {
		return nil, apperrors.ErrInvalidID.WithMessage("Invalid opportunityId")
	}
	studentID, ok := parseID(in.StudentID)
	if !ok {
		return nil, apperrors.ErrInvalidID.WithMessage("Invalid studentId")
	}

	o, err := s.opps.GetByID(ctx, oppID)
	if err != nil {
		return nil, notFound(err, "Opportunity")
	}
	if o.PostedByID != a.ID {
		return nil, apperrors.ErrForbidden.WithMessage("You can only manage applications to your own opportunities")
	}
	app, err := s.apps.GetByPair(ctx, oppID, studentID)
	if err != nil {
		return nil, notFound(err, "Application")
	}

	old := app.Status
	if old == status {
		return app, nil
	}
	if !model.CanTransition(old, status) {
		return nil, apperrors.ErrInvalidTransition.WithDetail("current", old)
	}
	if err := s.apps.UpdateStatus(ctx, app.ID, old, status); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.ErrInvalidTransition
		}
		return nil, apperrors.Internal(err)
	}
	metrics.StatusTransitions.WithLabelValues("application", status).Inc()

	notify(ctx, s.notifier, NotificationInput{
		RecipientID: studentID,
		Type:        model.NotifyJobApplication,
		Title:       "Application " + status,
		Message:     fmt.Sprintf("Your application for %q changed from %s to %s", o.Title, old, status),
		RelatedID:   app.ID,
	})

	updated, err := s.apps.GetByPair(ctx, oppID, studentID)
	if err != nil {
		return nil, notFound(err, "Application")
	}
	return updated, nil
}

// ListForStudent returns the caller's applications with the opportunity populated.
func (s *ApplicationService) ListForStudent(ctx context.Context, a Actor) ([]*model.Application, error) {
	if err := requireRole(a, model.RoleStudent); err != nil {
		return nil, err
	}
	list, err := s.apps.ListByStudent(ctx, a.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

// ListForAlumni returns every application to any of the caller's postings.
func (s *ApplicationService) ListForAlumni(ctx context.Context, a Actor) ([]*model.Application, error) {
	if err := requireRole(a, model.RoleAlumni); err != nil {
		return nil, err
	}
	list, err := s.apps.ListByPoster(ctx, a.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}
