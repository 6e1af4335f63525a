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

type MentorshipInput struct {
	MentorID any    `json:"mentorId"`
	Message  string `json:"message"`
}

type MentorshipStatusInput struct {
	Status string `json:"status"`
}

// MentorshipService runs the mentorship request workflow.
type MentorshipService struct {
	users    UserStore
	requests MentorshipStore
	notifier Notifier
}

func NewMentorshipService(users UserStore, requests MentorshipStore, notifier Notifier) *MentorshipService {
	return &MentorshipService{users: users, requests: requests, notifier: notifier}
}

// Request asks an alumni for mentorship.  A previously rejected request for
// the same pair is reopened; a pending or accepted one blocks a new request.
func (s *MentorshipService) Request(ctx context.Context, a Actor, in MentorshipInput) (*model.MentorshipRequest, error) {
	if err := requireRole(a, model.RoleStudent); err != nil {
		return nil, err
	}
	mentorID, ok := parseID(in.MentorID)
	if !ok {
		return nil, apperrors.ErrInvalidID.WithMessage("Invalid mentor ID")
	}
	mentor, err := s.users.GetByID(ctx, mentorID)
	if err != nil {
		return nil, notFound(err, "Mentor")
	}
	if mentor.Role != model.RoleAlumni {
		return nil, apperrors.ErrNotAlumni
	}
	message := strings.TrimSpace(in.Message)

	var id uint64
	existing, err := s.requests.GetByPair(ctx, a.ID, mentorID)
	switch {
	case err == nil && existing.Active():
		return nil, apperrors.ErrDuplicateActive
	case err == nil:
		if err := s.requests.Reopen(ctx, existing.ID, message); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return nil, apperrors.ErrDuplicateActive
			}
			return nil, apperrors.Internal(err)
		}
		id = existing.ID
	case errors.Is(err, repository.ErrMentorshipNotFound):
		m := &model.MentorshipRequest{StudentID: a.ID, MentorID: mentorID, Message: message}
		if err := s.requests.Create(ctx, m); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, apperrors.ErrDuplicateActive
			}
			return nil, apperrors.Internal(err)
		}
		id = m.ID
	default:
		return nil, apperrors.Internal(err)
	}

	created, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Mentorship request")
	}
	created.Mentor = created.Mentor.PublicView()
	return created, nil
}

// UpdateStatus lets the mentor accept or reject a request.  The student is
// notified of every change.
func (s *MentorshipService) UpdateStatus(ctx context.Context, a Actor, id uint64, in MentorshipStatusInput) (*model.MentorshipRequest, error) {
	if err := requireRole(a, model.RoleAlumni); err != nil {
		return nil, err
	}
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status != model.StatusAccepted && status != model.StatusRejected {
		return nil, apperrors.ErrInvalidStatus.WithDetail("allowed", []string{model.StatusAccepted, model.StatusRejected})
	}
	if id == 0 {
		return nil, apperrors.ErrInvalidID
	}
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Mentorship request")
	}
	if req.MentorID != a.ID {
		return nil, apperrors.ErrForbidden.WithMessage("Only the requested mentor can update this request")
	}

	old := req.Status
	if old == status {
		req.Student = req.Student.PublicView()
		return req, nil
	}
	if !model.CanTransition(old, status) {
		return nil, apperrors.ErrInvalidTransition.WithDetail("current", old)
	}
	if err := s.requests.UpdateStatus(ctx, id, old, status); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.ErrInvalidTransition
		}
		return nil, apperrors.Internal(err)
	}
	metrics.StatusTransitions.WithLabelValues("mentorship", status).Inc()

	notify(ctx, s.notifier, NotificationInput{
		RecipientID: req.StudentID,
		Type:        model.NotifyMentorship,
		Title:       "Mentorship request " + status,
		Message:     fmt.Sprintf("%s %s your mentorship request (%s → %s)", req.Mentor.Name, status, old, status),
		RelatedID:   req.ID,
	})

	updated, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Mentorship request")
	}
	updated.Student = updated.Student.PublicView()
	return updated, nil
}

// ListForStudent returns the caller's requests with mentor profiles.
func (s *MentorshipService) ListForStudent(ctx context.Context, a Actor) ([]*model.MentorshipRequest, error) {
	if err := requireRole(a, model.RoleStudent); err != nil {
		return nil, err
	}
	list, err := s.requests.ListByStudent(ctx, a.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return normalizeRequests(list, func(m *model.MentorshipRequest) { m.Mentor = m.Mentor.PublicView() }), nil
}

// ListForMentor returns the requests addressed to the caller with student profiles.
func (s *MentorshipService) ListForMentor(ctx context.Context, a Actor) ([]*model.MentorshipRequest, error) {
	if err := requireRole(a, model.RoleAlumni); err != nil {
		return nil, err
	}
	list, err := s.requests.ListByMentor(ctx, a.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return normalizeRequests(list, func(m *model.MentorshipRequest) { m.Student = m.Student.PublicView() }), nil
}

// normalizeRequests drops rows whose student or mentor no longer resolves
// and applies view to the rest.  Both listings go through it.
func normalizeRequests(in []*model.MentorshipRequest, view func(*model.MentorshipRequest)) []*model.MentorshipRequest {
	out := make([]*model.MentorshipRequest, 0, len(in))
	for _, m := range in {
		if m == nil || m.Student == nil || m.Mentor == nil {
			continue
		}
		view(m)
		out = append(out, m)
	}
	return out
}
