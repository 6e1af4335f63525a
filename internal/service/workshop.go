package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/alumni-connect/internal/apperrors"
	"github.com/iliyamo/alumni-connect/internal/model"
	"github.com/iliyamo/alumni-connect/internal/repository"
)

// WorkshopInput is used for both create and update.  Pointer fields tell an
// update which values were provided; create requires the core ones.
type WorkshopInput struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Date            *Date   `json:"date"`
	DurationMinutes *int    `json:"durationMinutes"`
	Mode            *string `json:"mode"`
	Location        *string `json:"location"`
	MeetingLink     *string `json:"meetingLink"`
	TargetAudience  *string `json:"targetAudience"`
	Capacity        *int    `json:"capacity"`
	Status          *string `json:"status"`
}

// apply copies every provided field onto w.
func (in WorkshopInput) apply(w *model.Workshop) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&w.Title, in.Title)
	set(&w.Description, in.Description)
	set(&w.Location, in.Location)
	set(&w.MeetingLink, in.MeetingLink)
	set(&w.TargetAudience, in.TargetAudience)
	if in.Mode != nil {
		w.Mode = strings.ToLower(strings.TrimSpace(*in.Mode))
	}
	if in.Status != nil {
		w.Status = strings.ToLower(strings.TrimSpace(*in.Status))
	}
	if in.Date != nil {
		w.Date = in.Date.Time
	}
	if in.DurationMinutes != nil {
		w.DurationMinutes = *in.DurationMinutes
	}
	if in.Capacity != nil {
		w.Capacity = *in.Capacity
	}
}

// validateWorkshop checks a complete (created or merged) record.
func validateWorkshop(w *model.Workshop) error {
	var missing []string
	if w.Title == "" {
		missing = append(missing, "title")
	}
	if w.Description == "" {
		missing = append(missing, "description")
	}
	if w.Date.IsZero() {
		missing = append(missing, "date")
	}
	if w.Mode == "" {
		missing = append(missing, "mode")
	}
	if w.TargetAudience == "" {
		missing = append(missing, "targetAudience")
	}
	if len(missing) > 0 {
		return apperrors.ErrMissingField.WithDetail("missingFields", missing)
	}
	if !model.ValidMode(w.Mode) {
		return apperrors.ErrValidation.WithMessage("Mode must be online, offline or hybrid").WithDetail("fields", []string{"mode"})
	}
	if w.Mode != model.ModeOnline && w.Location == "" {
		return apperrors.ErrValidation.WithMessage("Location is required for offline and hybrid workshops").
			WithDetail("fields", []string{"location"})
	}
	if !model.ValidWorkshopStatus(w.Status) {
		return apperrors.ErrInvalidStatus.WithDetail("allowed", []string{
			model.WorkshopUpcoming, model.WorkshopOngoing, model.WorkshopCompleted, model.WorkshopCancelled})
	}
	if w.DurationMinutes < 0 || w.Capacity < 0 {
		return apperrors.ErrValidation.WithMessage("Duration and capacity cannot be negative")
	}
	return nil
}

// WorkshopService manages workshops and their registrations.
type WorkshopService struct {
	workshops WorkshopStore
	users     UserStore
	notifier  Notifier
	now       Clock
}

func NewWorkshopService(workshops WorkshopStore, users UserStore, notifier Notifier) *WorkshopService {
	return &WorkshopService{workshops: workshops, users: users, notifier: notifier, now: time.Now}
}

// withStatus replaces the stored status by the effective one.
func (s *WorkshopService) withStatus(w *model.Workshop) *model.Workshop {
	w.Status = model.ComputeStatus(s.now(), w.Date, w.Duration(), w.Status)
	return w
}

func (s *WorkshopService) Create(ctx context.Context, a Actor, in WorkshopInput) (*model.Workshop, error) {
	if err := requireRole(a, model.RoleAlumni); err != nil {
		return nil, err
	}
	organizer, err := s.users.GetByID(ctx, a.ID)
	if err != nil {
		return nil, notFound(err, "User")
	}
	w := &model.Workshop{Status: model.WorkshopUpcoming, DurationMinutes: int(model.DefaultWorkshopDuration / time.Minute)}
	in.apply(w)
	if err := validateWorkshop(w); err != nil {
		return nil, err
	}
	w.OrganizerID = organizer.ID
	w.Organizer = organizer.Ref()
	if err := s.workshops.Create(ctx, w); err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.withStatus(w), nil
}

// Update overwrites the provided fields and re-validates the result.
func (s *WorkshopService) Update(ctx context.Context, a Actor, id uint64, in WorkshopInput) (*model.Workshop, error) {
	w, err := s.owned(ctx, a, id)
	if err != nil {
		return nil, err
	}
	in.apply(w)
	if err := validateWorkshop(w); err != nil {
		return nil, err
	}
	if err := s.workshops.Update(ctx, w); err != nil {
		return nil, notFound(err, "Workshop")
	}
	return s.Get(ctx, id)
}

func (s *WorkshopService) Delete(ctx context.Context, a Actor, id uint64) error {
	if _, err := s.owned(ctx, a, id); err != nil {
		return err
	}
	return notFound(s.workshops.Delete(ctx, id), "Workshop")
}

func (s *WorkshopService) owned(ctx context.Context, a Actor, id uint64) (*model.Workshop, error) {
	if err := requireRole(a, model.RoleAlumni); err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, apperrors.ErrInvalidID
	}
	w, err := s.workshops.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Workshop")
	}
	if w.OrganizerID != a.ID {
		return nil, apperrors.ErrForbidden.WithMessage("Only the organizer can change this workshop")
	}
	return w, nil
}

// Register adds the caller to the workshop.  Registration is only open while
// the workshop is upcoming and, when a capacity is set, has free seats.
func (s *WorkshopService) Register(ctx context.Context, a Actor, id uint64) (*model.Workshop, error) {
	if err := requireRole(a, model.RoleStudent); err != nil {
		return nil, err
	}
	w, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.Status != model.WorkshopUpcoming {
		return nil, apperrors.ErrInvalidState.WithDetail("status", w.Status)
	}
	if w.IsRegistered(a.ID) {
		return nil, apperrors.ErrAlreadyRegistered
	}
	if err := s.workshops.AddRegistration(ctx, id, a.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperrors.ErrAlreadyRegistered
		case errors.Is(err, repository.ErrCapacityReached):
			return nil, apperrors.ErrWorkshopFull
		}
		return nil, notFound(err, "Workshop")
	}
	s.notifyOrganizer(ctx, w, a.ID, "registered for")
	return s.Get(ctx, id)
}

// CancelRegistration removes the caller from the workshop.
func (s *WorkshopService) CancelRegistration(ctx context.Context, a Actor, id uint64) (*model.Workshop, error) {
	if err := requireRole(a, model.RoleStudent); err != nil {
		return nil, err
	}
	w, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !w.IsRegistered(a.ID) {
		return nil, apperrors.ErrNotRegistered
	}
	if err := s.workshops.RemoveRegistration(ctx, id, a.ID); err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return nil, apperrors.ErrNotRegistered
		}
		return nil, apperrors.Internal(err)
	}
	s.notifyOrganizer(ctx, w, a.ID, "cancelled their registration for")
	return s.Get(ctx, id)
}

func (s *WorkshopService) notifyOrganizer(ctx context.Context, w *model.Workshop, studentID uint64, verb string) {
	name := "A student"
	if u, err := s.users.GetByID(ctx, studentID); err == nil {
		name = u.Name
	}
	notify(ctx, s.notifier, NotificationInput{
		RecipientID: w.OrganizerID,
		Type:        model.NotifyWorkshop,
		Title:       "Workshop registration",
		Message:     fmt.Sprintf("%s %s %q", name, verb, w.Title),
		RelatedID:   w.ID,
	})
}

func (s *WorkshopService) Get(ctx context.Context, id uint64) (*model.Workshop, error) {
	if id == 0 {
		return nil, apperrors.ErrInvalidID
	}
	w, err := s.workshops.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Workshop")
	}
	return s.withStatus(w), nil
}

// List returns all workshops, latest date first.
func (s *WorkshopService) List(ctx context.Context) ([]*model.Workshop, error) {
	list, err := s.workshops.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	for _, w := range list {
		s.withStatus(w)
	}
	return list, nil
}

func (s *WorkshopService) ListByOrganizer(ctx context.Context, organizerID uint64) ([]*model.Workshop, error) {
	if organizerID == 0 {
		return nil, apperrors.ErrInvalidID
	}
	list, err := s.workshops.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	for _, w := range list {
		s.withStatus(w)
	}
	return list, nil
}
