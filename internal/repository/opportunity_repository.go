package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iliyamo/alumni-connect/internal/model"
)

// OpportunityRepo encapsulates all database queries related to job postings.
// Applicant lists are always derived from the applications table, never
// stored on the posting itself.
type OpportunityRepo struct {
	db *sql.DB
}

func NewOpportunityRepo(db *sql.DB) *OpportunityRepo {
	return &OpportunityRepo{db: db}
}

const opportunitySelect = `SELECT o.id, o.title, o.description, o.category, o.required_skills,
	o.experience_level, o.deliverables, o.start_date, o.deadline, o.application_deadline,
	o.budget, o.payment_type, o.contact_name, o.contact_email, o.posted_by, o.created_at,
	u.name, u.email
	FROM opportunities o
	JOIN users u ON u.id = o.posted_by`

func scanOpportunity(s rowScanner) (*model.Opportunity, error) {
	var (
		o      model.Opportunity
		skills []byte
		ref    model.UserRef
	)
	err := s.Scan(&o.ID, &o.Title, &o.Description, &o.Category, &skills,
		&o.ExperienceLevel, &o.Deliverables, &o.StartDate, &o.Deadline, &o.ApplicationDeadline,
		&o.Budget, &o.PaymentType, &o.ContactName, &o.ContactEmail, &o.PostedByID, &o.CreatedAt,
		&ref.Name, &ref.Email)
	if err != nil {
		return nil, err
	}
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &o.RequiredSkills); err != nil {
			return nil, err
		}
	}
	if o.RequiredSkills == nil {
		o.RequiredSkills = []string{}
	}
	ref.ID = o.PostedByID
	o.PostedBy = &ref
	o.Applicants = []*model.UserRef{}
	return &o, nil
}

// Create inserts a new posting and populates ID and CreatedAt.
func (r *OpportunityRepo) Create(ctx context.Context, o *model.Opportunity) error {
	skills, err := json.Marshal(o.RequiredSkills)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO opportunities
		 (title, description, category, required_skills, experience_level, deliverables,
		  start_date, deadline, application_deadline, budget, payment_type,
		  contact_name, contact_email, posted_by)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.Title, o.Description, o.Category, skills, o.ExperienceLevel, o.Deliverables,
		o.StartDate, o.Deadline, o.ApplicationDeadline, o.Budget, o.PaymentType,
		o.ContactName, o.ContactEmail, o.PostedByID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	if o.Applicants == nil {
		o.Applicants = []*model.UserRef{}
	}
	return r.db.QueryRowContext(ctx, "SELECT created_at FROM opportunities WHERE id = ?", o.ID).Scan(&o.CreatedAt)
}

// GetByID returns the posting with poster and applicants populated.
func (r *OpportunityRepo) GetByID(ctx context.Context, id uint64) (*model.Opportunity, error) {
	o, err := scanOpportunity(r.db.QueryRowContext(ctx, opportunitySelect+" WHERE o.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOpportunityNotFound
		}
		return nil, err
	}
	if err := r.loadApplicants(ctx, []*model.Opportunity{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// List returns all postings, newest first.
func (r *OpportunityRepo) List(ctx context.Context) ([]*model.Opportunity, error) {
	return r.query(ctx, opportunitySelect+" ORDER BY o.created_at DESC, o.id DESC")
}

// ListByPoster returns the postings created by one alumni, newest first.
func (r *OpportunityRepo) ListByPoster(ctx context.Context, posterID uint64) ([]*model.Opportunity, error) {
	return r.query(ctx, opportunitySelect+" WHERE o.posted_by = ? ORDER BY o.created_at DESC, o.id DESC", posterID)
}

func (r *OpportunityRepo) query(ctx context.Context, q string, args ...any) ([]*model.Opportunity, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Opportunity{}
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadApplicants(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadApplicants fills Applicants for every posting with one query over the
// applications table.
func (r *OpportunityRepo) loadApplicants(ctx context.Context, items []*model.Opportunity) error {
	if len(items) == 0 {
		return nil
	}
	byID := make(map[uint64]*model.Opportunity, len(items))
	ids := make([]uint64, 0, len(items))
	for _, o := range items {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.opportunity_id, u.id, u.name, u.email
		 FROM applications a
		 JOIN users u ON u.id = a.student_id
		 WHERE a.opportunity_id IN (`+placeholders(len(ids))+`)
		 ORDER BY a.applied_at, a.id`, idArgs(ids)...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			oppID uint64
			ref   model.UserRef
		)
		if err := rows.Scan(&oppID, &ref.ID, &ref.Name, &ref.Email); err != nil {
			return err
		}
		if o := byID[oppID]; o != nil {
			o.Applicants = append(o.Applicants, &ref)
		}
	}
	return rows.Err()
}

// DeleteByIDAndOwner removes a posting that belongs to ownerID.  Postings that
// already received applications are kept (ErrConflict) so students do not
// lose their application history.
func (r *OpportunityRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var dbOwner uint64
	if err = tx.QueryRowContext(ctx, "SELECT posted_by FROM opportunities WHERE id = ? FOR UPDATE", id).Scan(&dbOwner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOpportunityNotFound
		}
		return err
	}
	if dbOwner != ownerID {
		return ErrForbidden
	}
	var n int
	if err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM applications WHERE opportunity_id = ?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	_, err = tx.ExecContext(ctx, "DELETE FROM opportunities WHERE id = ?", id)
	return err
}
