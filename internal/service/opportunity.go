package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/alumni-connect/internal/apperrors"
	"github.com/iliyamo/alumni-connect/internal/model"
	"github.com/iliyamo/alumni-connect/internal/repository"
	"github.com/iliyamo/alumni-connect/internal/validator"
)

// OpportunityInput is the body of POST /api/jobs.
type OpportunityInput struct {
	Title               string    `json:"title" validate:"required"`
	Description         string    `json:"description" validate:"required"`
	Category            string    `json:"category"`
	RequiredSkills      SkillList `json:"requiredSkills" validate:"required,min=1"`
	ExperienceLevel     string    `json:"experienceLevel" validate:"required,oneof=Beginner Intermediate Expert"`
	Deliverables        string    `json:"deliverables" validate:"required"`
	StartDate           Date      `json:"startDate"`
	Deadline            Date      `json:"deadline"`
	Budget              string    `json:"budget" validate:"required"`
	PaymentType         string    `json:"paymentType" validate:"required,oneof=Fixed Hourly"`
	ApplicationDeadline Date      `json:"applicationDeadline"`
}

func (in *OpportunityInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Deliverables = strings.TrimSpace(in.Deliverables)
	in.Budget = strings.TrimSpace(in.Budget)
	in.ExperienceLevel = strings.TrimSpace(in.ExperienceLevel)
	in.PaymentType = strings.TrimSpace(in.PaymentType)
}

// validate reports every missing field at once.  Dates are checked by hand
// because the struct-level required rule does not apply to them.
func (in *OpportunityInput) validate() error {
	var (
		missing []string
		ve      validator.ValidationErrors
	)
	if err := validator.ValidateStruct(in); err != nil {
		if !errors.As(err, &ve) {
			return apperrors.ErrValidation.WithInternal(err)
		}
		missing = ve.Missing()
		for _, e := range ve {
			if e.Field == "requiredSkills" && e.Tag == "min" {
				missing = append(missing, e.Field)
			}
		}
	}
	for name, d := range map[string]Date{
		"startDate":           in.StartDate,
		"deadline":            in.Deadline,
		"applicationDeadline": in.ApplicationDeadline,
	} {
		if d.IsZero() {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return apperrors.ErrMissingField.WithDetail("missingFields", sortedFields(missing))
	}
	if len(ve) > 0 {
		return apperrors.ErrValidation.WithDetail("fields", []validator.ValidationError(ve))
	}
	return nil
}

// fieldOrder is the order missing fields are reported in.
var fieldOrder = []string{"title", "description", "requiredSkills", "experienceLevel", "deliverables",
	"startDate", "deadline", "budget", "paymentType", "applicationDeadline"}

func sortedFields(in []string) []string {
	seen := make(map[string]bool, len(in))
	for _, f := range in {
		seen[f] = true
	}
	out := make([]string, 0, len(seen))
	for _, f := range fieldOrder {
		if seen[f] {
			out = append(out, f)
			delete(seen, f)
		}
	}
	for _, f := range in {
		if seen[f] {
			out = append(out, f)
			delete(seen, f)
		}
	}
	return out
}

// OpportunityService handles job postings and applying to them.
type OpportunityService struct {
	opps  OpportunityStore
	apps  ApplicationStore
	users UserStore
}

func NewOpportunityService(opps OpportunityStore, apps ApplicationStore, users UserStore) *OpportunityService {
	return &OpportunityService{opps: opps, apps: apps, users: users}
}

// Create posts a new opportunity.  Only alumni may post; the contact
// details are copied from the poster's account.
func (s *OpportunityService) Create(ctx context.Context, a Actor, in OpportunityInput) (*model.Opportunity, error) {
	if err := requireRole(a, model.RoleAlumni); err != nil {
		return nil, err
	}
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	poster, err := s.users.GetByID(ctx, a.ID)
	if err != nil {
		return nil, notFound(err, "User")
	}
	o := &model.Opportunity{
		Title:               in.Title,
		Description:         in.Description,
		Category:            in.Category,
		RequiredSkills:      []string(in.RequiredSkills),
		ExperienceLevel:     in.ExperienceLevel,
		Deliverables:        in.Deliverables,
		StartDate:           in.StartDate.Time,
		Deadline:            in.Deadline.Time,
		ApplicationDeadline: in.ApplicationDeadline.Time,
		Budget:              in.Budget,
		PaymentType:         in.PaymentType,
		ContactName:         poster.Name,
		ContactEmail:        poster.Email,
		PostedByID:          poster.ID,
		PostedBy:            poster.Ref(),
		Applicants:          []*model.UserRef{},
	}
	if err := s.opps.Create(ctx, o); err != nil {
		return nil, apperrors.Internal(err)
	}
	return o, nil
}

// List returns every opportunity, newest first.
func (s *OpportunityService) List(ctx context.Context) ([]*model.Opportunity, error) {
	list, err := s.opps.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

func (s *OpportunityService) Get(ctx context.Context, id uint64) (*model.Opportunity, error) {
	if id == 0 {
		return nil, apperrors.ErrInvalidID
	}
	o, err := s.opps.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Opportunity")
	}
	return o, nil
}

// ListMine returns the caller's own postings.
func (s *OpportunityService) ListMine(ctx context.Context, a Actor) ([]*model.Opportunity, error) {
	if err := requireRole(a, model.RoleAlumni); err != nil {
		return nil, err
	}
	list, err := s.opps.ListByPoster(ctx, a.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

// Apply records the caller as an applicant.  The application row is the
// only record of it; applicant lists are derived from those rows.
func (s *OpportunityService) Apply(ctx context.Context, a Actor, opportunityID uint64) (*model.Application, error) {
	if err := requireRole(a, model.RoleStudent); err != nil {
		return nil, err
	}
	if opportunityID == 0 {
		return nil, apperrors.ErrInvalidID
	}
	o, err := s.opps.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, notFound(err, "Opportunity")
	}
	app := &model.Application{OpportunityID: o.ID, StudentID: a.ID, Status: model.StatusPending}
	if err := s.apps.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrAlreadyApplied
		}
		return nil, apperrors.Internal(err)
	}
	created, err := s.apps.GetByPair(ctx, o.ID, a.ID)
	if err != nil {
		return nil, notFound(err, "Application")
	}
	return created, nil
}

// Delete removes one of the caller's postings.  Postings with applications
// are kept.
func (s *OpportunityService) Delete(ctx context.Context, a Actor, id uint64) error {
	if err := requireRole(a, model.RoleAlumni); err != nil {
		return err
	}
	if id == 0 {
		return apperrors.ErrInvalidID
	}
	err := s.opps.DeleteByIDAndOwner(ctx, id, a.ID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrForbidden):
		return apperrors.ErrForbidden.WithMessage("You can only delete your own opportunities")
	case errors.Is(err, repository.ErrConflict):
		return apperrors.ErrConflict.WithMessage("Opportunity already has applications")
	}
	return notFound(err, "Opportunity")
}
